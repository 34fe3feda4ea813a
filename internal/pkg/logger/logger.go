// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init 配置全局 zerolog Logger，所有日志都携带 service 字段。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回 context 中注入的请求级 Logger；若不存在则回退到全局 Logger。
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// WithTraceID 构造一个带 trace_id 字段的 Logger 并注入 context。
// HTTP 中间件在提取追踪上下文后调用。
func WithTraceID(ctx context.Context, traceID string) context.Context {
	l := log.With().Str("trace_id", traceID).Logger()
	return l.WithContext(ctx)
}
