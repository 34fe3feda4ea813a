// cmd/inventory-service/main.go
package main

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"vertex/internal/pkg/bootstrap"
	"vertex/internal/pkg/config"
	"vertex/internal/pkg/mq"
	"vertex/internal/pkg/redis"
	"vertex/internal/pkg/zookeeper"
	"vertex/internal/service/inventory/application"
	"vertex/internal/service/inventory/domain"
	"vertex/internal/service/inventory/infrastructure"
	"vertex/internal/service/inventory/interfaces"
)

const (
	serviceName = "inventory-service"
	servicePort = 8082
)

// main 是库存服务的组装根：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init(serviceName)
	cfg := config.Get()
	tracer := otel.Tracer(serviceName)

	// 持久化：配置了 MySQL 走 GORM，否则落到内存实现，便于本地裸跑
	repo := newStockRepository(cfg)

	// 锁：配置了 ZooKeeper 走分布式锁，否则进程内互斥
	locks, zkConn := newLocker(cfg)

	service := application.NewInventoryService(repo, locks, tracer)

	var cleanups []func(ctx context.Context)

	if cfg.Infra.Redis.Addrs != "" {
		redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize redis client")
		}
		service.SetCache(infrastructure.NewRedisStockCache(redisClient))
		cleanups = append(cleanups, func(ctx context.Context) { redisClient.Close() })
	}

	if cfg.Infra.Kafka.Brokers != "" {
		alertWriter := mq.NewKafkaWriter(strings.Split(cfg.Infra.Kafka.Brokers, ","), cfg.Infra.Kafka.LowStockTopic)
		alerter, err := application.NewStockAlerter(cfg.Inventory.LowStockRule, infrastructure.NewKafkaAlertPublisher(alertWriter))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to compile low-stock rule")
		}
		service.AddListener(alerter)
		cleanups = append(cleanups, func(ctx context.Context) { alertWriter.Close() })
	}

	hub := interfaces.NewStockWatchHub()
	service.AddListener(hub)
	cleanups = append(cleanups, func(ctx context.Context) { hub.Close() })

	if zkConn != nil {
		cleanups = append(cleanups, func(ctx context.Context) { zkConn.Close() })
	}

	handler := interfaces.NewInventoryHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
			appCtx.Mux.HandleFunc("/ws/stock", hub.ServeWS)
		},
		Cleanup: func(ctx context.Context) {
			for _, cleanup := range cleanups {
				cleanup(ctx)
			}
		},
	})
}

func newStockRepository(cfg config.Config) domain.StockRepository {
	if cfg.Infra.Mysql.DSN == "" {
		log.Warn().Msg("MySQL DSN not configured, using in-memory stock repository")
		return infrastructure.NewMemoryStockRepository()
	}
	db, err := gorm.Open(gormmysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormStockRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate inventory schema")
	}
	return repo
}

func newLocker(cfg config.Config) (application.Locker, *zookeeper.Conn) {
	if cfg.Infra.Zookeeper.Addrs == "" {
		return application.NewLocalLocker(), nil
	}
	conn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Addrs, 5*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to zookeeper")
	}
	return infrastructure.NewZkLocker(conn), conn
}
