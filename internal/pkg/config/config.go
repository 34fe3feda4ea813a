// internal/pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是进程级配置的根结构，从 YAML 文件加载，环境变量可覆盖关键地址。
type Config struct {
	Infra struct {
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers          string `yaml:"brokers"`
			OrderPlacedTopic string `yaml:"orderPlacedTopic"`
			LowStockTopic    string `yaml:"lowStockTopic"`
		} `yaml:"kafka"`
		Nacos struct {
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
		Zookeeper struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"zookeeper"`
	} `yaml:"infra"`

	// Services 是静态服务地址表，未接入 Nacos 时 httpclient 用它做寻址。
	Services map[string]string `yaml:"services"`

	// Resilience 按调用组配置重试与熔断参数。
	Resilience map[string]CallGroup `yaml:"resilience"`

	Inventory struct {
		// LowStockRule 是 CEL 表达式，决定何时发出低库存告警。
		LowStockRule string `yaml:"lowStockRule"`
	} `yaml:"inventory"`
}

// CallGroup 是单个调用组的韧性参数。零值字段由 resilience 包补默认值。
type CallGroup struct {
	FailureRatio     float64  `yaml:"failureRatio"`
	WindowSize       int      `yaml:"windowSize"`
	OpenCooldown     Duration `yaml:"openCooldown"`
	HalfOpenMaxCalls int      `yaml:"halfOpenMaxCalls"`
	MaxAttempts      int      `yaml:"maxAttempts"`
	BackoffBase      Duration `yaml:"backoffBase"`
	AttemptTimeout   Duration `yaml:"attemptTimeout"`
}

// Duration 让 YAML 里可以写 "500ms"、"5s" 这类可读时长。
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std 转回标准库的 time.Duration。
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

var (
	current Config
	once    sync.Once
)

// Init 加载配置。CONFIG_FILE 未设置或文件缺失时使用内置默认值，
// 这让服务在本地无任何外部设施时也能直接启动。
func Init() {
	once.Do(func() {
		current = defaults()
		path := os.Getenv("CONFIG_FILE")
		if path == "" {
			return
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("FATAL: cannot read config file %s: %v", path, err))
		}
		if err := yaml.Unmarshal(raw, &current); err != nil {
			panic(fmt.Sprintf("FATAL: cannot parse config file %s: %v", path, err))
		}
		applyEnvOverrides(&current)
	})
}

// Get 返回当前配置。必须先调用 Init。
func Get() Config {
	return current
}

func defaults() Config {
	var c Config
	c.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	c.Infra.Kafka.Brokers = "localhost:9092"
	c.Infra.Kafka.OrderPlacedTopic = "order-placed"
	c.Infra.Kafka.LowStockTopic = "inventory-low-stock"
	c.Infra.Nacos.Group = "DEFAULT_GROUP"
	c.Services = map[string]string{
		"inventory-service": "http://localhost:8082",
		"order-service":     "http://localhost:8081",
	}
	c.Inventory.LowStockRule = "available < reorder_level"
	return c
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		c.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		c.Infra.Mysql.DSN = v
	}
	if v := os.Getenv("REDIS_ADDRS"); v != "" {
		c.Infra.Redis.Addrs = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Infra.Kafka.Brokers = v
	}
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		c.Infra.Nacos.ServerAddrs = v
	}
	if v := os.Getenv("ZOOKEEPER_ADDRS"); v != "" {
		c.Infra.Zookeeper.Addrs = v
	}
	if v := os.Getenv("INVENTORY_SERVICE_ADDR"); v != "" {
		c.Services["inventory-service"] = v
	}
}
