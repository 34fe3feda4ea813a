// internal/service/inventory/interfaces/http_handler_test.go
package interfaces_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"vertex/internal/service/inventory/application"
	"vertex/internal/service/inventory/infrastructure"
	"vertex/internal/service/inventory/interfaces"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := application.NewInventoryService(
		infrastructure.NewMemoryStockRepository(),
		application.NewLocalLocker(),
		otel.Tracer("test"),
	)
	mux := http.NewServeMux()
	interfaces.NewInventoryHandler(svc).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBool(t *testing.T, resp *http.Response) bool {
	t.Helper()
	var v bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestInventoryEndpoints(t *testing.T) {
	server := newTestServer(t)

	// 建一条库存
	resp := doRequest(t, http.MethodPost, server.URL+"/api/inventory",
		`{"productId": 42, "quantity": 10, "warehouseLocation": "A-1", "reorderLevel": 5}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, float64(42), created["productId"])
	assert.Equal(t, float64(10), created["availableQuantity"])

	// 同商品重复建档冲突
	resp = doRequest(t, http.MethodPost, server.URL+"/api/inventory",
		`{"productId": 42, "quantity": 1}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// 校验与预占
	resp = doRequest(t, http.MethodGet, server.URL+"/api/inventory/check/42/10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBool(t, resp))

	resp = doRequest(t, http.MethodGet, server.URL+"/api/inventory/reserve/42/6", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBool(t, resp))

	// 剩余可用量 4，校验 5 失败
	resp = doRequest(t, http.MethodGet, server.URL+"/api/inventory/check/42/5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeBool(t, resp))

	// 确认与释放
	resp = doRequest(t, http.MethodPost, server.URL+"/api/inventory/confirm/42/4", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBool(t, resp))

	resp = doRequest(t, http.MethodPost, server.URL+"/api/inventory/release/42/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBool(t, resp))

	// 台账现状：quantity 6，reserved 0
	resp = doRequest(t, http.MethodGet, server.URL+"/api/inventory/product/42", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var record map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, float64(6), record["quantity"])
	assert.Equal(t, float64(0), record["reservedQuantity"])

	// 补货
	resp = doRequest(t, http.MethodPost, server.URL+"/api/inventory/restock/42?quantity=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, server.URL+"/api/inventory/restock/999?quantity=10", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 未知商品的校验与预占返回 false 而不是 404
	resp = doRequest(t, http.MethodGet, server.URL+"/api/inventory/check/999/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeBool(t, resp))

	resp = doRequest(t, http.MethodGet, server.URL+"/api/inventory/reserve/999/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeBool(t, resp))

	// 非法数量
	resp = doRequest(t, http.MethodGet, server.URL+"/api/inventory/check/42/0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 列表
	resp = doRequest(t, http.MethodGet, server.URL+"/api/inventory", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestInventoryUpdateAndDelete(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/inventory",
		`{"productId": 7, "quantity": 3}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	id := int(created["id"].(float64))

	resp = doRequest(t, http.MethodPut, server.URL+"/api/inventory/"+strconv.Itoa(id),
		`{"quantity": 99, "warehouseLocation": "Z-9", "reorderLevel": 12}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, float64(99), updated["quantity"])
	assert.Equal(t, "Z-9", updated["warehouseLocation"])

	resp = doRequest(t, http.MethodDelete, server.URL+"/api/inventory/"+strconv.Itoa(id), "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, server.URL+"/api/inventory/"+strconv.Itoa(id), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
