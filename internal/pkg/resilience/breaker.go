// internal/pkg/resilience/breaker.go
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen 表示调用被熔断器直接短路，未发起任何远程尝试。
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State 是熔断器的三态。
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Breaker 是单个调用组的熔断器。
// CLOSED 下在滑动窗口里统计失败比例，超过阈值进入 OPEN；
// OPEN 在冷却期内短路所有调用，冷却结束后进入 HALF_OPEN 放行试探；
// HALF_OPEN 下一次成功回到 CLOSED，一次失败回到 OPEN 并重置冷却钟。
type Breaker struct {
	name         string
	failureRatio float64
	windowSize   int
	openCooldown time.Duration
	halfOpenMax  int

	mu               sync.Mutex
	state            State
	window           []bool // 环形缓冲，true 表示失败
	head             int
	filled           int
	failures         int
	openUntil        time.Time
	halfOpenInFlight int

	now func() time.Time
}

func newBreaker(name string, s Settings) *Breaker {
	b := &Breaker{
		name:         name,
		failureRatio: s.FailureRatio,
		windowSize:   s.WindowSize,
		openCooldown: s.OpenCooldown,
		halfOpenMax:  s.HalfOpenMaxCalls,
		window:       make([]bool, s.WindowSize),
		now:          time.Now,
	}
	setBreakerStateGauge(name, StateClosed)
	return b
}

// State 返回当前状态。
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// allow 判断一次调用能否放行；HALF_OPEN 下同时占用一个试探名额。
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Before(b.openUntil) {
			return ErrCircuitOpen
		}
		// 冷却结束，无论历史如何都放行试探
		b.setState(StateHalfOpen)
		b.halfOpenInFlight = 0
	}

	if b.state == StateHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMax {
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
	}
	return nil
}

// onSuccess 记录一次逻辑调用成功。
func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		// 试探成功，闭合并清空统计
		b.resetWindow()
		b.setState(StateClosed)
	case StateClosed:
		b.record(false)
	}
}

// onFailure 记录一次逻辑调用失败（重试耗尽后才算一次失败）。
func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.trip()
	case StateClosed:
		b.record(true)
		if float64(b.failures)/float64(b.windowSize) > b.failureRatio {
			b.trip()
		}
	}
}

func (b *Breaker) record(failure bool) {
	if b.filled == b.windowSize {
		if b.window[b.head] {
			b.failures--
		}
	} else {
		b.filled++
	}
	b.window[b.head] = failure
	if failure {
		b.failures++
	}
	b.head = (b.head + 1) % b.windowSize
}

func (b *Breaker) trip() {
	b.resetWindow()
	b.openUntil = b.now().Add(b.openCooldown)
	b.halfOpenInFlight = 0
	b.setState(StateOpen)
}

func (b *Breaker) resetWindow() {
	for i := range b.window {
		b.window[i] = false
	}
	b.head = 0
	b.filled = 0
	b.failures = 0
	b.halfOpenInFlight = 0
}

func (b *Breaker) setState(s State) {
	b.state = s
	setBreakerStateGauge(b.name, s)
}

// Registry 按调用组名持有熔断器；首个调用创建，进程存活期间不销毁。
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
}

func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*Breaker)}
}

// Breaker 返回指定调用组的熔断器，不存在时用给定参数创建。
func (r *Registry) Breaker(name string, s Settings) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := newBreaker(name, s)
	r.breakers[name] = b
	return b
}
