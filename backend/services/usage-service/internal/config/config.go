package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "energydash/backend/libs/config"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverBolt     = "bolt"
)

// Config defines usage service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"USAGE_HTTP_PORT"`
	} `yaml:"http"`
	Store struct {
		Driver  string        `yaml:"driver" env:"USAGE_STORE_DRIVER"`
		Timeout time.Duration `yaml:"timeout" env:"USAGE_STORE_TIMEOUT"`
	} `yaml:"store"`
	Database struct {
		DSN          string `yaml:"dsn" env:"USAGE_POSTGRES_DSN"`
		MaxOpenConns int    `yaml:"maxOpenConns" env:"USAGE_POSTGRES_MAX_OPEN_CONNS"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"USAGE_REDIS_ADDR"`
		Password string `yaml:"password" env:"USAGE_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"USAGE_REDIS_DB"`
	} `yaml:"redis"`
	Bolt struct {
		Path string `yaml:"path" env:"USAGE_BOLT_PATH"`
	} `yaml:"bolt"`
	JWT struct {
		Secret string `yaml:"secret" env:"USAGE_JWT_SECRET"`
		Issuer string `yaml:"issuer" env:"USAGE_JWT_ISSUER"`
	} `yaml:"jwt"`
	Billing struct {
		DefaultRatePerKWh float64 `yaml:"defaultRatePerKwh" env:"USAGE_DEFAULT_RATE_PER_KWH"`
	} `yaml:"billing"`
	LLM struct {
		Endpoint string        `yaml:"endpoint" env:"USAGE_LLM_ENDPOINT"`
		Model    string        `yaml:"model" env:"USAGE_LLM_MODEL"`
		APIKey   string        `yaml:"apiKey" env:"OPENAI_API_KEY"`
		Timeout  time.Duration `yaml:"timeout" env:"USAGE_LLM_TIMEOUT"`
	} `yaml:"llm"`
	MQTT struct {
		Broker      string `yaml:"broker" env:"USAGE_MQTT_BROKER"`
		ClientID    string `yaml:"clientId" env:"USAGE_MQTT_CLIENT_ID"`
		Username    string `yaml:"username" env:"USAGE_MQTT_USERNAME"`
		Password    string `yaml:"password" env:"USAGE_MQTT_PASSWORD"`
		TopicPrefix string `yaml:"topicPrefix" env:"USAGE_MQTT_TOPIC_PREFIX"`
	} `yaml:"mqtt"`
	WebSocket struct {
		WriteTimeout time.Duration `yaml:"writeTimeout" env:"USAGE_WS_WRITE_TIMEOUT"`
	} `yaml:"websocket"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = "8090"
	cfg.Store.Driver = DriverBolt
	cfg.Store.Timeout = 5 * time.Second
	cfg.Redis.Addr = "localhost:6379"
	cfg.Bolt.Path = "data/usage.db"
	cfg.Billing.DefaultRatePerKWh = 0.12
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.LLM.Timeout = 30 * time.Second
	cfg.WebSocket.WriteTimeout = 10 * time.Second
	return cfg
}

// Load reads configuration via shared helper and validates the store section.
func Load() (*Config, error) {
	cfg := defaults()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the selected store driver needs.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("config: database dsn required for postgres store")
		}
	case DriverRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("config: redis addr required for redis store")
		}
	case DriverBolt:
		if strings.TrimSpace(c.Bolt.Path) == "" {
			return errors.New("config: bolt path required for bolt store")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Billing.DefaultRatePerKWh < 0 {
		return errors.New("config: default rate must not be negative")
	}
	return nil
}

// ValidateServer adds the checks only the HTTP service needs.
func (c *Config) ValidateServer() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt secret required")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8090"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ChatEnabled reports whether an LLM provider is configured.
func (c *Config) ChatEnabled() bool {
	return strings.TrimSpace(c.LLM.APIKey) != "" || strings.TrimSpace(c.LLM.Endpoint) != ""
}

// MQTTEnabled reports whether entries are forwarded to a broker.
func (c *Config) MQTTEnabled() bool {
	return strings.TrimSpace(c.MQTT.Broker) != ""
}
