package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv              = "STOREFRONT_APP_ENV"
	EnvPort                = "STOREFRONT_APP_PORT"
	EnvJWTSecret           = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer           = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins          = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvOrderServiceMode    = "STOREFRONT_ORDER_SERVICE_MODE"
	EnvOrderServiceBaseURL = "STOREFRONT_ORDER_SERVICE_BASE_URL"
	EnvRedisURL            = "STOREFRONT_REDIS_URL"
)

type Config struct {
	App          AppConfig
	JWT          JWTConfig
	OrderService OrderServiceConfig
	Poller       PollerConfig
	Redis        RedisConfig
	Fees         FeesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.OrderService.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" required:"true"`
}

const (
	// OrderServiceModeHTTP talks to a real deployment over HTTP.
	OrderServiceModeHTTP = "http"
	// OrderServiceModeMemory runs the in-process simulator.
	OrderServiceModeMemory = "memory"
)

type OrderServiceConfig struct {
	Mode    string        `envconfig:"STOREFRONT_ORDER_SERVICE_MODE" default:"memory"`
	BaseURL string        `envconfig:"STOREFRONT_ORDER_SERVICE_BASE_URL"`
	Timeout time.Duration `envconfig:"STOREFRONT_ORDER_SERVICE_TIMEOUT" default:"10s"`
}

func (o OrderServiceConfig) validate() error {
	switch strings.ToLower(o.Mode) {
	case OrderServiceModeMemory:
		return nil
	case OrderServiceModeHTTP:
		if strings.TrimSpace(o.BaseURL) == "" {
			return fmt.Errorf("%s is required when %s=http", EnvOrderServiceBaseURL, EnvOrderServiceMode)
		}
		return nil
	default:
		return fmt.Errorf("unknown order service mode %q", o.Mode)
	}
}

type PollerConfig struct {
	Interval time.Duration `envconfig:"STOREFRONT_POLLER_INTERVAL" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured at all. The
// idempotency guard degrades to passthrough without one.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// FeesConfig seeds the simulator's delivery and service fees. The real
// Order Service prices orders itself; these are never applied client-side.
type FeesConfig struct {
	Delivery string `envconfig:"STOREFRONT_SIM_DELIVERY_FEE" default:"5.00"`
	Service  string `envconfig:"STOREFRONT_SIM_SERVICE_FEE" default:"2.00"`
}
