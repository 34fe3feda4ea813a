// internal/pkg/httpclient/client.go
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"vertex/internal/pkg/nacos"
)

// Resolver 把服务名解析为基础地址。
type Resolver interface {
	Resolve(serviceName string) (string, error)
}

// StaticResolver 使用配置里的固定地址表，适用于未接入注册中心的部署和测试。
type StaticResolver map[string]string

func (r StaticResolver) Resolve(serviceName string) (string, error) {
	addr, ok := r[serviceName]
	if !ok {
		return "", fmt.Errorf("no address configured for service %q", serviceName)
	}
	return addr, nil
}

// NacosResolver 通过 Nacos 做服务发现。
type NacosResolver struct {
	Client *nacos.Client
}

func (r *NacosResolver) Resolve(serviceName string) (string, error) {
	addr, err := r.Client.Discover(serviceName)
	if err != nil {
		return "", err
	}
	return "http://" + addr, nil
}

// Client 是一个可追踪的、带服务发现的 HTTP 客户端。
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	Resolver   Resolver
}

// NewClient 创建客户端实例。
// 不设置 http.Client 的 Timeout，让超时完全受控于每次请求传入的 context。
func NewClient(tracer trace.Tracer, resolver Resolver) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		HTTPClient: httpClient,
		Resolver:   resolver,
	}
}

// Get 向目标服务发起 GET 调用，并把 JSON 响应体解码进 out（out 可为 nil）。
func (c *Client) Get(ctx context.Context, serviceName, path string, out any) error {
	base, err := c.Resolver.Resolve(serviceName)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", serviceName)
	}

	target, err := url.Parse(base + path)
	if err != nil {
		return errors.Wrapf(err, "bad target url for %s", serviceName)
	}

	spanName := fmt.Sprintf("call-%s", strings.Split(target.Host, ":")[0])
	ctx, span := c.Tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.String("http.url", target.String()),
		attribute.String("http.method", http.MethodGet),
		attribute.String("peer.service", serviceName),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("service %s returned status %s", serviceName, resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return errors.Wrapf(err, "decode response from %s", serviceName)
	}
	return nil
}
