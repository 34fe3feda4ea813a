// internal/service/order/domain/order_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderComputesTotal(t *testing.T) {
	order, err := NewOrder("user-1", []OrderItem{
		{ProductID: 1, Quantity: 2, UnitPrice: 10},
		{ProductID: 2, Quantity: 1, UnitPrice: 25},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, StatusPending, order.Status)
	assert.InDelta(t, 45.0, order.TotalAmount, 1e-9)
}

func TestNewOrderValidation(t *testing.T) {
	_, err := NewOrder("", []OrderItem{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NewOrder("user-1", nil)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NewOrder("user-1", []OrderItem{{ProductID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NewOrder("user-1", []OrderItem{{ProductID: 0, Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NewOrder("user-1", []OrderItem{{ProductID: 1, Quantity: 1, UnitPrice: -1}})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestSetStatusAllowsAnyValidTransition(t *testing.T) {
	order, err := NewOrder("user-1", []OrderItem{{ProductID: 1, Quantity: 1, UnitPrice: 5}})
	require.NoError(t, err)
	order.MarkConfirmed()

	// 状态机不约束流转路径，已送达也能改回待处理
	require.NoError(t, order.SetStatus(StatusDelivered))
	require.NoError(t, order.SetStatus(StatusPending))
	assert.Equal(t, StatusPending, order.Status)

	err = order.SetStatus(Status("PAUSED"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusPending, order.Status)
}
