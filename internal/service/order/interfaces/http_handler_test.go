// internal/service/order/interfaces/http_handler_test.go
package interfaces_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"vertex/internal/service/order/application"
	"vertex/internal/service/order/infrastructure"
	"vertex/internal/service/order/interfaces"
)

// stubInventory 总是放行的库存端口。
type stubInventory struct {
	available bool
}

func (s *stubInventory) CheckAvailability(context.Context, uint64, int) (bool, error) {
	return s.available, nil
}

func (s *stubInventory) ReserveStock(context.Context, uint64, int) (bool, error) {
	return s.available, nil
}

func newTestServer(t *testing.T, inventory *stubInventory) *httptest.Server {
	t.Helper()
	svc := application.NewOrderApplicationService(
		infrastructure.NewMemoryOrderRepository(),
		inventory,
		otel.Tracer("test"),
	)
	mux := http.NewServeMux()
	interfaces.NewOrderHandler(svc).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const orderBody = `{
	"userId": "user-1",
	"items": [
		{"productId": 1, "quantity": 2, "unitPrice": 10},
		{"productId": 2, "quantity": 1, "unitPrice": 25}
	]
}`

func TestOrderEndpoints(t *testing.T) {
	server := newTestServer(t, &stubInventory{available: true})

	resp := doRequest(t, http.MethodPost, server.URL+"/api/orders", orderBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "CONFIRMED", created["status"])
	assert.Equal(t, float64(45), created["totalAmount"])
	id := created["id"].(string)

	resp = doRequest(t, http.MethodGet, server.URL+"/api/orders/"+id, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, server.URL+"/api/orders/user/user-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)

	resp = doRequest(t, http.MethodGet, server.URL+"/api/orders/status/CONFIRMED", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, server.URL+"/api/orders/status/BOGUS", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, http.MethodPatch, server.URL+"/api/orders/"+id+"/status?status=SHIPPED", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, "SHIPPED", updated["status"])

	resp = doRequest(t, http.MethodDelete, server.URL+"/api/orders/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, server.URL+"/api/orders/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateOrderRejectionStatusCodes(t *testing.T) {
	server := newTestServer(t, &stubInventory{available: false})

	// 缺货拒单
	resp := doRequest(t, http.MethodPost, server.URL+"/api/orders", orderBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// 非法请求体
	resp = doRequest(t, http.MethodPost, server.URL+"/api/orders", `{"userId": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
