// internal/service/inventory/application/alert_test.go
package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vertex/internal/service/inventory/application"
	"vertex/internal/service/inventory/domain"
)

type capturingPublisher struct {
	alerts []application.LowStockAlert
	err    error
}

func (p *capturingPublisher) PublishLowStock(_ context.Context, alert application.LowStockAlert) error {
	if p.err != nil {
		return p.err
	}
	p.alerts = append(p.alerts, alert)
	return nil
}

func TestStockAlerterFiresWhenRuleMatches(t *testing.T) {
	pub := &capturingPublisher{}
	alerter, err := application.NewStockAlerter("available < reorder_level", pub)
	require.NoError(t, err)

	record := &domain.StockRecord{ProductID: 7, Quantity: 10, Reserved: 8, ReorderLevel: 5}
	alerter.StockChanged(context.Background(), record, application.OpReserve)

	require.Len(t, pub.alerts, 1)
	alert := pub.alerts[0]
	assert.Equal(t, uint64(7), alert.ProductID)
	assert.Equal(t, 2, alert.Available)
	assert.Equal(t, 5, alert.ReorderLevel)
	assert.False(t, alert.FiredAt.IsZero())
}

func TestStockAlerterSilentWhenRuleDoesNotMatch(t *testing.T) {
	pub := &capturingPublisher{}
	alerter, err := application.NewStockAlerter("available < reorder_level", pub)
	require.NoError(t, err)

	record := &domain.StockRecord{ProductID: 7, Quantity: 10, Reserved: 2, ReorderLevel: 5}
	alerter.StockChanged(context.Background(), record, application.OpReserve)

	assert.Empty(t, pub.alerts)
}

func TestStockAlerterIgnoresDeletes(t *testing.T) {
	pub := &capturingPublisher{}
	alerter, err := application.NewStockAlerter("true", pub)
	require.NoError(t, err)

	record := &domain.StockRecord{ProductID: 7, ReorderLevel: 5}
	alerter.StockChanged(context.Background(), record, application.OpDelete)

	assert.Empty(t, pub.alerts)
}

func TestNewStockAlerterRejectsBadRules(t *testing.T) {
	_, err := application.NewStockAlerter("available <", &capturingPublisher{})
	assert.Error(t, err)

	// 规则必须产出布尔值
	_, err = application.NewStockAlerter("available + 1", &capturingPublisher{})
	assert.Error(t, err)
}
