// internal/service/inventory/application/alert.go
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"
	"vertex/internal/pkg/logger"
	"vertex/internal/service/inventory/domain"
)

// LowStockAlert 是低库存建议补货事件，纯通知性质，不回写台账。
type LowStockAlert struct {
	ProductID    uint64    `json:"productId"`
	Quantity     int       `json:"quantity"`
	Reserved     int       `json:"reserved"`
	Available    int       `json:"available"`
	ReorderLevel int       `json:"reorderLevel"`
	FiredAt      time.Time `json:"firedAt"`
}

// AlertPublisher 把低库存事件发往外部（Kafka 适配器实现）。
type AlertPublisher interface {
	PublishLowStock(ctx context.Context, alert LowStockAlert) error
}

// StockAlerter 在每次台账变更后评估一条可配置的 CEL 规则，
// 命中时发出 LowStockAlert。规则只能读台账快照，永远不阻塞、不修改主流程。
type StockAlerter struct {
	program   cel.Program
	publisher AlertPublisher
}

// NewStockAlerter 编译规则表达式。可用变量：
// quantity、reserved、available、reorder_level（均为 int）。
func NewStockAlerter(rule string, publisher AlertPublisher) (*StockAlerter, error) {
	env, err := cel.NewEnv(
		cel.Variable("quantity", cel.IntType),
		cel.Variable("reserved", cel.IntType),
		cel.Variable("available", cel.IntType),
		cel.Variable("reorder_level", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build CEL environment: %w", err)
	}

	ast, iss := env.Compile(rule)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("invalid low-stock rule %q: %w", rule, iss.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("low-stock rule %q must evaluate to bool, got %s", rule, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build CEL program: %w", err)
	}
	return &StockAlerter{program: program, publisher: publisher}, nil
}

// StockChanged 实现 ChangeListener。
func (a *StockAlerter) StockChanged(ctx context.Context, record *domain.StockRecord, op string) {
	if op == OpDelete {
		return
	}

	out, _, err := a.program.Eval(map[string]any{
		"quantity":      record.Quantity,
		"reserved":      record.Reserved,
		"available":     record.Available(),
		"reorder_level": record.ReorderLevel,
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Uint64("product_id", record.ProductID).Msg("Low-stock rule evaluation failed")
		return
	}
	fired, ok := out.Value().(bool)
	if !ok || !fired {
		return
	}

	alert := LowStockAlert{
		ProductID:    record.ProductID,
		Quantity:     record.Quantity,
		Reserved:     record.Reserved,
		Available:    record.Available(),
		ReorderLevel: record.ReorderLevel,
		FiredAt:      time.Now(),
	}
	if err := a.publisher.PublishLowStock(ctx, alert); err != nil {
		// 告警丢失可以容忍，主流程不受影响
		logger.Ctx(ctx).Error().Err(err).Uint64("product_id", record.ProductID).Msg("Failed to publish low-stock alert")
		return
	}
	logger.Ctx(ctx).Warn().
		Uint64("product_id", record.ProductID).
		Int("available", alert.Available).
		Int("reorder_level", alert.ReorderLevel).
		Str("op", op).
		Msg("Low-stock alert fired")
}
