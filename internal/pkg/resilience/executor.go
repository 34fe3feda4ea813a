// internal/pkg/resilience/executor.go
package resilience

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Settings 是一个调用组的完整韧性参数。
type Settings struct {
	// FailureRatio 是滑动窗口内触发熔断的失败比例阈值（严格大于才触发）。
	FailureRatio float64
	// WindowSize 是滑动窗口覆盖的逻辑调用数。
	WindowSize int
	// OpenCooldown 是 OPEN 状态的冷却时长，到期后进入 HALF_OPEN。
	OpenCooldown time.Duration
	// HalfOpenMaxCalls 是 HALF_OPEN 下允许同时在途的试探调用数。
	HalfOpenMaxCalls int
	// MaxAttempts 是单次逻辑调用内的最大尝试次数（含首次）。
	MaxAttempts int
	// BackoffBase 是重试退避的基础时长，按尝试次数指数放大并加抖动。
	BackoffBase time.Duration
	// AttemptTimeout 是单次尝试的超时上限，保证调用永不无限阻塞。
	AttemptTimeout time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.5
	}
	if s.WindowSize <= 0 {
		s.WindowSize = 10
	}
	if s.OpenCooldown <= 0 {
		s.OpenCooldown = 10 * time.Second
	}
	if s.HalfOpenMaxCalls <= 0 {
		s.HalfOpenMaxCalls = 1
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 3
	}
	if s.BackoffBase <= 0 {
		s.BackoffBase = 100 * time.Millisecond
	}
	if s.AttemptTimeout <= 0 {
		s.AttemptTimeout = 3 * time.Second
	}
	return s
}

// Executor 把任意远程调用包上重试与熔断，签名不变。
// 一次逻辑调用要么完全成功，要么把重试预算耗尽后才对熔断器计一次失败。
type Executor struct {
	breaker  *Breaker
	settings Settings
}

// NewExecutor 为指定调用组创建执行器。同名调用组共享同一个熔断器。
func NewExecutor(reg *Registry, group string, s Settings) *Executor {
	s = s.withDefaults()
	return &Executor{
		breaker:  reg.Breaker(group, s),
		settings: s,
	}
}

// Do 执行 fn。失败路径：
//   - 熔断短路：不发起任何尝试，走 fallback（无 fallback 则返回 ErrCircuitOpen）；
//   - 永久性错误：立即停止重试并原样上抛，不走 fallback，不计为链路故障；
//   - 重试耗尽：对熔断器记一次失败，走 fallback（无 fallback 则返回最后的错误）。
//
// fallback 只在终局失败时被调用一次，绝不在成功路径上执行。
func (e *Executor) Do(ctx context.Context, fn func(context.Context) error, fallback func(context.Context, error) error) error {
	group := e.breaker.name

	if err := e.breaker.allow(); err != nil {
		recordCall(group, outcomeShortCircuit)
		if fallback != nil {
			return fallback(ctx, ErrCircuitOpen)
		}
		return ErrCircuitOpen
	}

	var lastErr error
	for attempt := 1; attempt <= e.settings.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.settings.AttemptTimeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			e.breaker.onSuccess()
			recordCall(group, outcomeSuccess)
			return nil
		}
		if IsPermanent(err) {
			// 依赖方给出了明确的业务结论，不是链路故障
			e.breaker.onSuccess()
			recordCall(group, outcomePermanent)
			return err
		}

		lastErr = err
		if attempt == e.settings.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			e.breaker.onFailure()
			recordCall(group, outcomeFailure)
			return ctx.Err()
		case <-time.After(backoffDelay(e.settings.BackoffBase, attempt)):
		}
	}

	e.breaker.onFailure()
	recordCall(group, outcomeFailure)
	if fallback != nil {
		return fallback(ctx, lastErr)
	}
	return lastErr
}

// Do 是 Executor.Do 的带返回值版本。
func Do[T any](ctx context.Context, e *Executor, fn func(context.Context) (T, error), fallback func(context.Context, error) (T, error)) (T, error) {
	var result T
	wrapped := func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}
	var fb func(context.Context, error) error
	if fallback != nil {
		fb = func(ctx context.Context, cause error) error {
			v, err := fallback(ctx, cause)
			if err != nil {
				return err
			}
			result = v
			return nil
		}
	}
	if err := e.Do(ctx, wrapped, fb); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// backoffDelay 计算第 attempt 次尝试之后的退避：base * 2^(attempt-1) 加随机抖动。
func backoffDelay(base time.Duration, attempt int) time.Duration {
	backoff := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	return backoff + jitter
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 把一个错误标记为永久性：执行器不会为它重试，也不会触发 fallback。
// 用于 NotFound、Conflict、库存不足这类重试无意义的业务失败。
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent 判断错误链上是否带有永久性标记。
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
