package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	CatalogPath string `env:"CATALOG_PATH"`
	JWTSecret   string `env:"JWT_SECRET"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	BatchRateLimit         int `env:"BATCH_RATE_LIMIT" envDefault:"20"`
	BatchRateWindowSeconds int `env:"BATCH_RATE_WINDOW_SECONDS" envDefault:"60"`
	BatchWorkers           int `env:"BATCH_WORKERS" envDefault:"8"`
	BatchMaxFemales        int `env:"BATCH_MAX_FEMALES" envDefault:"100"`
}

// BatchRateWindow devuelve la ventana del limitador como duración.
func (c *Config) BatchRateWindow() time.Duration {
	return time.Duration(c.BatchRateWindowSeconds) * time.Second
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
