// Package config 提供 TOML 配置加载与环境变量覆盖
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/privx-exchange/privx-exchange-backend/pkg/logger"
)

// Config 服务配置
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`
	// 数据库配置
	Database DatabaseConfig `mapstructure:"database"`
	// 账本节点配置
	Ledger LedgerConfig `mapstructure:"ledger"`
	// 链上结算配置
	Settlement SettlementConfig `mapstructure:"settlement"`
	// Kafka 配置
	Kafka KafkaConfig `mapstructure:"kafka"`
	// 后台轮询配置
	Workers WorkersConfig `mapstructure:"workers"`
	// 日志配置
	Logger logger.Config `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 交易对目录（启动时种子化）
	Tokens []TokenConfig `mapstructure:"tokens"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	// 监听地址
	Host string `mapstructure:"host"`
	// 监听端口
	Port int `mapstructure:"port"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动：mysql
	Driver string `mapstructure:"driver"`
	// 数据源名称
	DSN string `mapstructure:"dsn"`
	// 最大连接数
	MaxOpenConns int `mapstructure:"max_open_conns"`
	// 最大空闲连接数
	MaxIdleConns int `mapstructure:"max_idle_conns"`
	// 连接最大存活时间（秒）
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`
	// 是否打印 SQL 日志
	LogEnabled bool `mapstructure:"log_enabled"`
	// 慢查询阈值（毫秒）
	SlowQueryThreshold int `mapstructure:"slow_query_threshold"`
}

// LedgerConfig 账本节点配置
type LedgerConfig struct {
	// 节点地址，例如 http://127.0.0.1:3030
	Host string `mapstructure:"host"`
	// 网络名称，例如 testnet3
	Network string `mapstructure:"network"`
	// 监听的链上程序 ID
	ProgramID string `mapstructure:"program_id"`
	// 请求超时（秒）
	Timeout int `mapstructure:"timeout"`
	// 单次拉取的最大区块数
	BatchSize int `mapstructure:"batch_size"`
	// 轮询间隔（秒）
	PollInterval int `mapstructure:"poll_interval"`
}

// SettlementConfig 链上结算配置
type SettlementConfig struct {
	// 结算服务地址
	Host string `mapstructure:"host"`
	// 网络名称
	Network string `mapstructure:"network"`
	// 结算程序 ID
	ProgramID string `mapstructure:"program_id"`
	// 调用私钥
	PrivateKey string `mapstructure:"private_key"`
	// 调用手续费
	Fee int64 `mapstructure:"fee"`
	// 请求超时（秒）
	Timeout int `mapstructure:"timeout"`
	// 轮询间隔（秒）
	PollInterval int `mapstructure:"poll_interval"`
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	// 是否启用成交事件发布
	Enabled bool `mapstructure:"enabled"`
	// Broker 地址列表
	Brokers []string `mapstructure:"brokers"`
	// 成交事件主题
	TradeTopic string `mapstructure:"trade_topic"`
	// 最大重试次数
	MaxRetries int `mapstructure:"max_retries"`
	// 重试退避（毫秒）
	RetryBackoff int `mapstructure:"retry_backoff"`
}

// WorkersConfig 后台轮询配置
type WorkersConfig struct {
	// 撮合轮询间隔（秒）
	MatchInterval int `mapstructure:"match_interval"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled"`
	// Prometheus 监听端口
	Port int `mapstructure:"port"`
	// 指标路径
	Path string `mapstructure:"path"`
}

// TokenConfig 交易对配置
type TokenConfig struct {
	ID             uint64 `mapstructure:"id"`
	Base           string `mapstructure:"base"`
	Quote          string `mapstructure:"quote"`
	Symbol         string `mapstructure:"symbol"`
	SellFunction   string `mapstructure:"sell_function"`
	BuyFunction    string `mapstructure:"buy_function"`
	SettleFunction string `mapstructure:"settle_function"`
}

// Load 从 TOML 文件加载配置，默认值兜底，支持 PRIVX_ 前缀环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvPrefix("PRIVX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	if c.Ledger.Host == "" {
		return fmt.Errorf("ledger host is required")
	}
	if c.Ledger.BatchSize <= 0 {
		return fmt.Errorf("invalid ledger batch_size: %d", c.Ledger.BatchSize)
	}
	if c.Settlement.Host == "" {
		return fmt.Errorf("settlement host is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8000)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 1000)

	v.SetDefault("ledger.network", "testnet3")
	v.SetDefault("ledger.timeout", 15)
	v.SetDefault("ledger.batch_size", 50)
	v.SetDefault("ledger.poll_interval", 10)

	v.SetDefault("settlement.network", "testnet3")
	v.SetDefault("settlement.fee", 1000)
	v.SetDefault("settlement.timeout", 30)
	v.SetDefault("settlement.poll_interval", 2)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.trade_topic", "exchange.trades")
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)

	v.SetDefault("workers.match_interval", 10)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/app.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}

// GetEnv 获取环境变量，支持默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
