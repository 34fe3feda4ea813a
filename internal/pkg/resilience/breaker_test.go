// internal/pkg/resilience/breaker_test.go
package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(s Settings) *Breaker {
	return newBreaker("test-group", s.withDefaults())
}

func TestBreakerStaysClosedAtThreshold(t *testing.T) {
	b := newTestBreaker(Settings{FailureRatio: 0.5, WindowSize: 10})

	// 50% 失败率不超过阈值，阈值必须被严格超过才熔断
	for i := 0; i < 5; i++ {
		require.NoError(t, b.allow())
		b.onFailure()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, b.allow())
		b.onSuccess()
	}

	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerOpensAboveThreshold(t *testing.T) {
	b := newTestBreaker(Settings{FailureRatio: 0.5, WindowSize: 10})

	for i := 0; i < 6; i++ {
		require.NoError(t, b.allow())
		b.onFailure()
	}

	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.allow(), ErrCircuitOpen)
}

func TestBreakerSlidingWindowEvictsOldCalls(t *testing.T) {
	b := newTestBreaker(Settings{FailureRatio: 0.5, WindowSize: 4})

	// 窗口填满失败前先填满成功，旧结果被逐出后失败占比才会超标
	for i := 0; i < 4; i++ {
		b.onSuccess()
	}
	b.onFailure()
	b.onFailure()
	assert.Equal(t, StateClosed, b.State())

	b.onFailure()
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerCooldownTransitionsToHalfOpen(t *testing.T) {
	b := newTestBreaker(Settings{FailureRatio: 0.5, WindowSize: 2, OpenCooldown: 10 * time.Second, HalfOpenMaxCalls: 1})
	current := time.Unix(1000, 0)
	b.now = func() time.Time { return current }

	b.onFailure()
	b.onFailure()
	require.Equal(t, StateOpen, b.State())
	require.ErrorIs(t, b.allow(), ErrCircuitOpen)

	// 冷却期内依旧短路
	current = current.Add(9 * time.Second)
	require.ErrorIs(t, b.allow(), ErrCircuitOpen)

	// 冷却结束后放行一个试探调用，名额用完继续短路
	current = current.Add(2 * time.Second)
	require.NoError(t, b.allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.ErrorIs(t, b.allow(), ErrCircuitOpen)
}

func TestBreakerHalfOpenSuccessCloses(t *testing.T) {
	b := newTestBreaker(Settings{FailureRatio: 0.5, WindowSize: 2, OpenCooldown: time.Second})
	current := time.Unix(1000, 0)
	b.now = func() time.Time { return current }

	b.onFailure()
	b.onFailure()
	current = current.Add(2 * time.Second)
	require.NoError(t, b.allow())

	b.onSuccess()
	assert.Equal(t, StateClosed, b.State())

	// 闭合后统计已清零，单次失败不会立即重新熔断
	b.onFailure()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := newTestBreaker(Settings{FailureRatio: 0.5, WindowSize: 2, OpenCooldown: 10 * time.Second})
	current := time.Unix(1000, 0)
	b.now = func() time.Time { return current }

	b.onFailure()
	b.onFailure()
	current = current.Add(11 * time.Second)
	require.NoError(t, b.allow())
	require.Equal(t, StateHalfOpen, b.State())

	b.onFailure()
	assert.Equal(t, StateOpen, b.State())

	// 冷却钟被重置，再等一个完整冷却期才能试探
	current = current.Add(9 * time.Second)
	assert.ErrorIs(t, b.allow(), ErrCircuitOpen)
	current = current.Add(2 * time.Second)
	assert.NoError(t, b.allow())
}

func TestRegistrySharesBreakerByGroup(t *testing.T) {
	reg := NewRegistry()
	s := Settings{}.withDefaults()

	b1 := reg.Breaker("inventory.check", s)
	b2 := reg.Breaker("inventory.check", s)
	b3 := reg.Breaker("inventory.reserve", s)

	assert.Same(t, b1, b2)
	assert.NotSame(t, b1, b3)
}
