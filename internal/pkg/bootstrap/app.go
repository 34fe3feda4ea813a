// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"vertex/internal/pkg/config"
	"vertex/internal/pkg/logger"
	"vertex/internal/pkg/nacos"
	"vertex/internal/pkg/tracing"
)

// AppCtx 暴露给各服务注册路由时使用的共享组件。
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// AppInfo 描述启动一个微服务所需的信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
	// Cleanup 在优雅关停时执行，用于关闭 kafka writer、redis 连接等。
	Cleanup func(ctx context.Context)
}

// Init 加载配置并初始化全局 Logger。必须在 StartService 之前调用。
func Init(serviceName string) {
	config.Init()
	logger.Init(serviceName)
}

// StartService 封装所有微服务的通用启动与优雅关停逻辑。
func StartService(info AppInfo) {
	cfg := config.Get()

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// Nacos 是可选的；未配置时走静态地址表
	var namingClient *nacos.Client
	var ip string
	if cfg.Infra.Nacos.ServerAddrs != "" {
		namingClient, err = nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		ip, err = outboundIP()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := namingClient.Register(info.ServiceName, ip, info.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: namingClient})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}

	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msgf("%s listening", info.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msgf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 关停顺序：先摘流量，再清理业务资源，最后冲刷追踪数据
	if namingClient != nil {
		if err := namingClient.Deregister(info.ServiceName, ip, info.Port); err != nil {
			log.Error().Err(err).Msg("Error deregistering from Nacos")
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error shutting down http server")
	}
	if info.Cleanup != nil {
		info.Cleanup(ctx)
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error shutting down tracer provider")
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
	}
	log.Info().Msgf("Service %s gracefully shut down.", info.ServiceName)
}

// outboundIP 返回本机对外通信使用的 IP，用于注册中心上报。
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}
