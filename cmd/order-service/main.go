// cmd/order-service/main.go
package main

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"vertex/internal/pkg/bootstrap"
	"vertex/internal/pkg/config"
	"vertex/internal/pkg/httpclient"
	"vertex/internal/pkg/mq"
	"vertex/internal/pkg/resilience"
	"vertex/internal/service/order/application"
	"vertex/internal/service/order/domain"
	"vertex/internal/service/order/infrastructure"
	"vertex/internal/service/order/infrastructure/adapter"
	"vertex/internal/service/order/interfaces"
)

const (
	serviceName = "order-service"
	servicePort = 8081
)

// main 是订单服务的组装根：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init(serviceName)
	cfg := config.Get()
	tracer := otel.Tracer(serviceName)

	repo := newOrderRepository(cfg)

	// 出站 HTTP 客户端：配置了 Nacos 走服务发现，否则用静态地址表
	registry := resilience.NewRegistry()
	var cleanups []func(ctx context.Context)

	service := application.NewOrderApplicationService(repo, nil, tracer)

	if cfg.Infra.Kafka.Brokers != "" {
		writer := mq.NewKafkaWriter(strings.Split(cfg.Infra.Kafka.Brokers, ","), cfg.Infra.Kafka.OrderPlacedTopic)
		service.SetEventPublisher(infrastructure.NewKafkaEventPublisher(writer))
		cleanups = append(cleanups, func(ctx context.Context) { writer.Close() })
	}

	handler := interfaces.NewOrderHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			var resolver httpclient.Resolver = httpclient.StaticResolver(cfg.Services)
			if appCtx.Nacos != nil {
				resolver = &httpclient.NacosResolver{Client: appCtx.Nacos}
			}
			client := httpclient.NewClient(tracer, resolver)
			inventory := adapter.NewInventoryHTTPAdapter(client,
				newExecutor(registry, adapter.CheckCallGroup, cfg),
				newExecutor(registry, adapter.ReserveCallGroup, cfg),
			)
			service.SetInventoryPort(inventory)

			handler.RegisterRoutes(appCtx.Mux)
		},
		Cleanup: func(ctx context.Context) {
			for _, cleanup := range cleanups {
				cleanup(ctx)
			}
		},
	})
}

func newOrderRepository(cfg config.Config) domain.OrderRepository {
	if cfg.Infra.Mysql.DSN == "" {
		log.Warn().Msg("MySQL DSN not configured, using in-memory order repository")
		return infrastructure.NewMemoryOrderRepository()
	}
	db, err := gorm.Open(gormmysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormOrderRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate order schema")
	}
	return repo
}

// newExecutor 把配置里的调用组参数映射成执行器；未配置的组用默认值。
func newExecutor(registry *resilience.Registry, group string, cfg config.Config) *resilience.Executor {
	var settings resilience.Settings
	if cg, ok := cfg.Resilience[group]; ok {
		settings = resilience.Settings{
			FailureRatio:     cg.FailureRatio,
			WindowSize:       cg.WindowSize,
			OpenCooldown:     cg.OpenCooldown.Std(),
			HalfOpenMaxCalls: cg.HalfOpenMaxCalls,
			MaxAttempts:      cg.MaxAttempts,
			BackoffBase:      cg.BackoffBase.Std(),
			AttemptTimeout:   cg.AttemptTimeout.Std(),
		}
	}
	return resilience.NewExecutor(registry, group, settings)
}
