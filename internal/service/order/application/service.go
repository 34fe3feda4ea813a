// internal/service/order/application/service.go
package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"vertex/internal/pkg/logger"
	"vertex/internal/service/order/domain"
	"vertex/internal/service/order/domain/port"
)

// EventPublisher 在订单确认后对外发布 OrderPlaced 事件（Kafka 适配器实现）。
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *domain.OrderPlaced) error
}

// OrderApplicationService 编排下单流程并承载订单的查询与管理操作。
type OrderApplicationService struct {
	orderRepo domain.OrderRepository
	inventory port.InventoryService
	tracer    trace.Tracer
	publisher EventPublisher
}

func NewOrderApplicationService(orderRepo domain.OrderRepository, inventory port.InventoryService, tracer trace.Tracer) *OrderApplicationService {
	return &OrderApplicationService{orderRepo: orderRepo, inventory: inventory, tracer: tracer}
}

// SetEventPublisher 挂接事件发布方，不设置则跳过发布。
func (s *OrderApplicationService) SetEventPublisher(p EventPublisher) {
	s.publisher = p
}

// SetInventoryPort 注入库存端口。组装根要等注册中心客户端就绪后
// 才能构造出站适配器，所以允许在启动阶段晚绑定。
func (s *OrderApplicationService) SetInventoryPort(inventory port.InventoryService) {
	s.inventory = inventory
}

// CreateOrder 执行下单流程：逐行校验并预占库存，全部成功才落库。
//
// 流程是顺序的、无补偿的：第 N 行失败时，前 N-1 行已预占的库存保持原样，
// 订单本身不会被持久化。预占回收依赖上游取消或人工干预走释放接口。
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID), attribute.Int("order.item_count", len(req.Items)))

	order, err := domain.NewOrder(req.UserID, req.ToOrderItems())
	if err != nil {
		span.RecordError(err)
		recordOrderPlacement("rejected")
		return nil, err
	}

	for _, item := range order.Items {
		available, err := s.inventory.CheckAvailability(ctx, item.ProductID, item.Quantity)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "availability check failed")
			recordOrderPlacement("unreachable")
			return nil, fmt.Errorf("check product %d: %w", item.ProductID, domain.ErrInventoryUnreachable)
		}
		if !available {
			logger.Ctx(ctx).Warn().
				Str("order_id", order.ID).
				Uint64("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("Order rejected: insufficient stock")
			recordOrderPlacement("insufficient_stock")
			return nil, fmt.Errorf("product %d: %w", item.ProductID, domain.ErrInsufficientStock)
		}

		reserved, err := s.inventory.ReserveStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reserve failed")
			recordOrderPlacement("unreachable")
			return nil, fmt.Errorf("reserve product %d: %w", item.ProductID, domain.ErrInventoryUnreachable)
		}
		if !reserved {
			// 校验刚通过却预占失败，按台账异常处理而不是缺货
			logger.Ctx(ctx).Warn().
				Str("order_id", order.ID).
				Uint64("product_id", item.ProductID).
				Msg("Reservation refused right after availability check passed")
			recordOrderPlacement("unreachable")
			return nil, fmt.Errorf("reserve product %d: %w", item.ProductID, domain.ErrInventoryUnreachable)
		}
		span.AddEvent("stock reserved", trace.WithAttributes(attribute.Int64("product.id", int64(item.ProductID))))
	}

	order.MarkConfirmed()
	if err := s.orderRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist order")
		recordOrderPlacement("error")
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, domain.NewOrderPlaced(order)); err != nil {
			// 事件丢失不回滚订单，下游靠对账补偿
			logger.Ctx(ctx).Error().Err(err).Str("order_id", order.ID).Msg("Failed to publish order placed event")
		}
	}

	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Float64("total_amount", order.TotalAmount).
		Msg("Order confirmed")
	recordOrderPlacement("ok")
	return order, nil
}

// GetOrderByID 按 ID 查询订单。
func (s *OrderApplicationService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// GetOrdersByUserID 查询某用户的全部订单。
func (s *OrderApplicationService) GetOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orderRepo.FindByUserID(ctx, userID)
}

// GetOrdersByStatus 查询某状态下的全部订单。
func (s *OrderApplicationService) GetOrdersByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	return s.orderRepo.FindByStatus(ctx, status)
}

// ListOrders 返回全部订单。
func (s *OrderApplicationService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

// UpdateOrderStatus 管理侧覆盖订单状态。
func (s *OrderApplicationService) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.UpdateStatus")
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("order_id", id).Str("status", string(status)).Msg("Order status updated")
	return order, nil
}

// DeleteOrder 删除订单。
func (s *OrderApplicationService) DeleteOrder(ctx context.Context, id string) error {
	return s.orderRepo.DeleteByID(ctx, id)
}
