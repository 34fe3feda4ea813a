// internal/service/order/infrastructure/adapter/inventory_http_adapter_test.go
package adapter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"vertex/internal/pkg/httpclient"
	"vertex/internal/pkg/resilience"
	"vertex/internal/service/order/infrastructure/adapter"
)

func testSettings() resilience.Settings {
	return resilience.Settings{
		FailureRatio: 0.5,
		WindowSize:   10,
		OpenCooldown: time.Minute,
		MaxAttempts:  2,
		BackoffBase:  time.Millisecond,
	}
}

func newTestAdapter(t *testing.T, handler http.Handler) *adapter.InventoryHTTPAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := httpclient.NewClient(otel.Tracer("test"), httpclient.StaticResolver{
		"inventory-service": server.URL,
	})
	registry := resilience.NewRegistry()
	return adapter.NewInventoryHTTPAdapter(client,
		resilience.NewExecutor(registry, t.Name()+"/check", testSettings()),
		resilience.NewExecutor(registry, t.Name()+"/reserve", testSettings()),
	)
}

func TestCheckAvailabilityDecodesResponse(t *testing.T) {
	var gotPath string
	inv := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(true)
	}))

	available, err := inv.CheckAvailability(context.Background(), 42, 3)
	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, "/api/inventory/check/42/3", gotPath)
}

func TestCheckAvailabilityFallsBackToUnavailable(t *testing.T) {
	calls := 0
	inv := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	// 库存服务持续 5xx：重试耗尽后降级为"不可用"，不对外报错
	available, err := inv.CheckAvailability(context.Background(), 42, 3)
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, 2, calls)
}

func TestReserveStockPropagatesFailure(t *testing.T) {
	inv := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	// 预占没有降级路径，失败必须上抛
	_, err := inv.ReserveStock(context.Background(), 42, 3)
	assert.Error(t, err)
}

func TestReserveStockDecodesRejection(t *testing.T) {
	var gotPath string
	inv := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(false)
	}))

	reserved, err := inv.ReserveStock(context.Background(), 42, 99)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "/api/inventory/reserve/42/99", gotPath)
}
