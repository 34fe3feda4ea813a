// internal/service/order/application/service_test.go
package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"vertex/internal/service/order/application"
	"vertex/internal/service/order/domain"
	"vertex/internal/service/order/infrastructure"
)

// fakeInventory 模拟库存端口，按商品记录可用量与已预占量。
type fakeInventory struct {
	available     map[uint64]int
	reserved      map[uint64]int
	checkErr      error
	reserveErr    error
	refuseReserve bool
}

func newFakeInventory(available map[uint64]int) *fakeInventory {
	return &fakeInventory{available: available, reserved: make(map[uint64]int)}
}

func (f *fakeInventory) CheckAvailability(_ context.Context, productID uint64, quantity int) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.available[productID] >= quantity, nil
}

func (f *fakeInventory) ReserveStock(_ context.Context, productID uint64, quantity int) (bool, error) {
	if f.reserveErr != nil {
		return false, f.reserveErr
	}
	if f.refuseReserve {
		return false, nil
	}
	if f.available[productID] < quantity {
		return false, nil
	}
	f.available[productID] -= quantity
	f.reserved[productID] += quantity
	return true, nil
}

type capturingEventPublisher struct {
	events []*domain.OrderPlaced
}

func (p *capturingEventPublisher) PublishOrderPlaced(_ context.Context, event *domain.OrderPlaced) error {
	p.events = append(p.events, event)
	return nil
}

func newTestService(inventory *fakeInventory) (*application.OrderApplicationService, *infrastructure.MemoryOrderRepository) {
	repo := infrastructure.NewMemoryOrderRepository()
	svc := application.NewOrderApplicationService(repo, inventory, otel.Tracer("test"))
	return svc, repo
}

func twoItemRequest() *application.CreateOrderRequest {
	return &application.CreateOrderRequest{
		UserID: "user-1",
		Items: []application.CreateOrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: 10},
			{ProductID: 2, Quantity: 1, UnitPrice: 25},
		},
	}
}

func TestCreateOrderSuccess(t *testing.T) {
	inventory := newFakeInventory(map[uint64]int{1: 5, 2: 5})
	svc, repo := newTestService(inventory)
	pub := &capturingEventPublisher{}
	svc.SetEventPublisher(pub)

	order, err := svc.CreateOrder(context.Background(), twoItemRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, order.Status)
	assert.InDelta(t, 45.0, order.TotalAmount, 1e-9)
	assert.Equal(t, 2, inventory.reserved[1])
	assert.Equal(t, 1, inventory.reserved[2])

	persisted, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, persisted.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, order.ID, pub.events[0].OrderID)
	assert.InDelta(t, 45.0, pub.events[0].TotalAmount, 1e-9)
}

func TestCreateOrderInsufficientStockLeavesEarlierReservations(t *testing.T) {
	// 第二个商品缺货：第一个商品已预占的库存保持原样，订单不落库
	inventory := newFakeInventory(map[uint64]int{1: 5, 2: 0})
	svc, repo := newTestService(inventory)

	_, err := svc.CreateOrder(context.Background(), twoItemRequest())
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 2, inventory.reserved[1])
	assert.Equal(t, 0, inventory.reserved[2])

	orders, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderInventoryUnreachable(t *testing.T) {
	inventory := newFakeInventory(map[uint64]int{1: 5, 2: 5})
	inventory.checkErr = errors.New("connection refused")
	svc, repo := newTestService(inventory)

	_, err := svc.CreateOrder(context.Background(), twoItemRequest())
	require.ErrorIs(t, err, domain.ErrInventoryUnreachable)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	orders, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderReserveFailureIsUnreachable(t *testing.T) {
	inventory := newFakeInventory(map[uint64]int{1: 5, 2: 5})
	inventory.reserveErr = errors.New("connection reset")
	svc, _ := newTestService(inventory)

	_, err := svc.CreateOrder(context.Background(), twoItemRequest())
	assert.ErrorIs(t, err, domain.ErrInventoryUnreachable)
}

func TestCreateOrderReserveRefusalIsUnreachable(t *testing.T) {
	// 校验通过但预占返回 false：按台账异常处理而不是缺货
	inventory := newFakeInventory(map[uint64]int{1: 5, 2: 5})
	inventory.refuseReserve = true
	svc, _ := newTestService(inventory)

	_, err := svc.CreateOrder(context.Background(), twoItemRequest())
	require.ErrorIs(t, err, domain.ErrInventoryUnreachable)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCreateOrderRejectsInvalidRequest(t *testing.T) {
	inventory := newFakeInventory(map[uint64]int{1: 5})
	svc, _ := newTestService(inventory)

	_, err := svc.CreateOrder(context.Background(), &application.CreateOrderRequest{UserID: "user-1"})
	require.ErrorIs(t, err, domain.ErrInvalidOrder)
	// 校验失败前不触碰库存
	assert.Empty(t, inventory.reserved)
}

func TestOrderQueries(t *testing.T) {
	inventory := newFakeInventory(map[uint64]int{1: 100})
	svc, _ := newTestService(inventory)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, &application.CreateOrderRequest{
		UserID: "alice",
		Items:  []application.CreateOrderItem{{ProductID: 1, Quantity: 1, UnitPrice: 3}},
	})
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, &application.CreateOrderRequest{
		UserID: "bob",
		Items:  []application.CreateOrderItem{{ProductID: 1, Quantity: 2, UnitPrice: 3}},
	})
	require.NoError(t, err)

	byID, err := svc.GetOrderByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.UserID)

	byUser, err := svc.GetOrdersByUserID(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	confirmed, err := svc.GetOrdersByStatus(ctx, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Len(t, confirmed, 2)

	_, err = svc.GetOrdersByStatus(ctx, domain.Status("BOGUS"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	all, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateOrderStatus(t *testing.T) {
	inventory := newFakeInventory(map[uint64]int{1: 100})
	svc, _ := newTestService(inventory)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &application.CreateOrderRequest{
		UserID: "alice",
		Items:  []application.CreateOrderItem{{ProductID: 1, Quantity: 1, UnitPrice: 3}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(ctx, order.ID, domain.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, updated.Status)

	_, err = svc.UpdateOrderStatus(ctx, order.ID, domain.Status("BOGUS"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.UpdateOrderStatus(ctx, "missing", domain.StatusShipped)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteOrder(t *testing.T) {
	inventory := newFakeInventory(map[uint64]int{1: 100})
	svc, _ := newTestService(inventory)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &application.CreateOrderRequest{
		UserID: "alice",
		Items:  []application.CreateOrderItem{{ProductID: 1, Quantity: 1, UnitPrice: 3}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, order.ID))
	assert.ErrorIs(t, svc.DeleteOrder(ctx, order.ID), domain.ErrNotFound)
}
