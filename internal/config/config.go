package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Tracing       TracingConfig       `toml:"tracing"`
	SalonService  ServiceClientConfig `toml:"salon_service"`
	ClientService ServiceClientConfig `toml:"client_service"`
	Redis         RedisConfig         `toml:"redis"`
	Kafka         KafkaConfig         `toml:"kafka"`
	Outbox        OutboxConfig        `toml:"outbox"`
	Slots         SlotsConfig         `toml:"slots"`
	RateLimit     RateLimitConfig     `toml:"rate_limit"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	TxTimeout       int    `toml:"tx_timeout"`        // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, sslMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type TracingConfig struct {
	Enabled      bool    `toml:"enabled"`
	OTLPEndpoint string  `toml:"otlp_endpoint"`
	SampleRatio  float64 `toml:"sample_ratio"`
}

type ServiceClientConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type RedisConfig struct {
	Enabled          bool   `toml:"enabled"`
	Addr             string `toml:"addr"`
	Password         string `toml:"password"`
	DB               int    `toml:"db"`
	CatalogTTL       int    `toml:"catalog_ttl"` // секунды
	DialTimeoutMilli int    `toml:"dial_timeout_ms"`
}

type KafkaConfig struct {
	Brokers string `toml:"brokers"` // через запятую
	Topic   string `toml:"topic"`
}

// BrokerList разбирает список брокеров
func (k KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

type OutboxConfig struct {
	Enabled      bool `toml:"enabled"`
	PollInterval int  `toml:"poll_interval_ms"`
	BatchSize    int  `toml:"batch_size"`
}

type SlotsConfig struct {
	MaxRangeDays      int `toml:"max_range_days"`
	CacheTTL          int `toml:"cache_ttl"`          // секунды, 0 - кэш выключен
	GenerationTimeout int `toml:"generation_timeout"` // секунды
	Concurrency       int `toml:"concurrency"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Load читает TOML-файл, применяет переменные окружения и проверяет обязательные поля
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			TxTimeout:       5,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "salon-booking-service"},
		Tracing: TracingConfig{SampleRatio: 1},
		Kafka:   KafkaConfig{Topic: "salon.appointments"},
		Outbox:  OutboxConfig{PollInterval: 1000, BatchSize: 100},
		Redis:   RedisConfig{CatalogTTL: 60, DialTimeoutMilli: 500},
		Slots: SlotsConfig{
			MaxRangeDays:      14,
			CacheTTL:          30,
			GenerationTimeout: 5,
			Concurrency:       8,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 20, Burst: 40},
	}
}

// applyEnv переопределяет секреты и адреса из окружения (удобно для docker-compose)
func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "SMC_DB_HOST")
	setInt(&cfg.Database.Port, "SMC_DB_PORT")
	setString(&cfg.Database.User, "SMC_DB_USER")
	setString(&cfg.Database.Password, "SMC_DB_PASSWORD")
	setString(&cfg.Database.DBName, "SMC_DB_NAME")
	setString(&cfg.Redis.Addr, "SMC_REDIS_ADDR")
	setString(&cfg.Redis.Password, "SMC_REDIS_PASSWORD")
	setString(&cfg.Kafka.Brokers, "SMC_KAFKA_BROKERS")
	setString(&cfg.SalonService.URL, "SMC_SALON_SERVICE_URL")
	setString(&cfg.ClientService.URL, "SMC_CLIENT_SERVICE_URL")
	setString(&cfg.Tracing.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var errs []error
	if c.Server.HTTPPort <= 0 {
		errs = append(errs, errors.New("server.http_port must be positive"))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		errs = append(errs, errors.New("database.host and database.dbname are required"))
	}
	if c.SalonService.URL == "" {
		errs = append(errs, errors.New("salon_service.url is required"))
	}
	if c.ClientService.URL == "" {
		errs = append(errs, errors.New("client_service.url is required"))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}
	if c.Outbox.Enabled && len(c.Kafka.BrokerList()) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required when outbox is enabled"))
	}
	if c.Slots.MaxRangeDays <= 0 {
		errs = append(errs, errors.New("slots.max_range_days must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
