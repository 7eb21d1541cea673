package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	CartAPIBase     string        `envconfig:"CART_API_BASE" default:"http://localhost:3000"`
	GraphQLEndpoint string        `envconfig:"GRAPHQL_ENDPOINT" default:"http://localhost:3000/graphql"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogJSON         bool          `envconfig:"LOG_JSON" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
