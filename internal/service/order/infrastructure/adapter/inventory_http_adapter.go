// internal/service/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"vertex/internal/pkg/httpclient"
	"vertex/internal/pkg/logger"
	"vertex/internal/pkg/resilience"
	"vertex/internal/service/order/domain/port"
)

const inventoryServiceName = "inventory-service"

// 调用组名。check 与 reserve 分别熔断，查询链路抖动不会拖垮预占链路。
const (
	CheckCallGroup   = "inventory.check"
	ReserveCallGroup = "inventory.reserve"
)

// InventoryHTTPAdapter 实现 port.InventoryService，
// 通过 HTTP 调用库存服务，并把每次调用包进重试与熔断。
type InventoryHTTPAdapter struct {
	client      *httpclient.Client
	checkExec   *resilience.Executor
	reserveExec *resilience.Executor
}

var _ port.InventoryService = (*InventoryHTTPAdapter)(nil)

func NewInventoryHTTPAdapter(client *httpclient.Client, checkExec, reserveExec *resilience.Executor) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client, checkExec: checkExec, reserveExec: reserveExec}
}

// CheckAvailability 查询可用量。失败时降级为"不可用"：
// 查不到真实库存就当缺货处理，宁可拒单也不超卖。
func (a *InventoryHTTPAdapter) CheckAvailability(ctx context.Context, productID uint64, quantity int) (bool, error) {
	path := fmt.Sprintf("/api/inventory/check/%d/%d", productID, quantity)
	return resilience.Do(ctx, a.checkExec,
		func(ctx context.Context) (bool, error) {
			var available bool
			if err := a.client.Get(ctx, inventoryServiceName, path, &available); err != nil {
				return false, err
			}
			return available, nil
		},
		func(ctx context.Context, cause error) (bool, error) {
			logger.Ctx(ctx).Warn().Err(cause).
				Uint64("product_id", productID).
				Msg("Availability check degraded to unavailable")
			return false, nil
		})
}

// ReserveStock 预占库存。没有降级路径：预占是有副作用的写操作，
// 失败必须原样上抛，由下单流程决定如何收场。
func (a *InventoryHTTPAdapter) ReserveStock(ctx context.Context, productID uint64, quantity int) (bool, error) {
	path := fmt.Sprintf("/api/inventory/reserve/%d/%d", productID, quantity)
	return resilience.Do(ctx, a.reserveExec,
		func(ctx context.Context) (bool, error) {
			var reserved bool
			if err := a.client.Get(ctx, inventoryServiceName, path, &reserved); err != nil {
				return false, err
			}
			return reserved, nil
		},
		nil)
}
