package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"zoonica-gateway/internal/domain/tracking"
)

// Config se arma desde variables de entorno (ver tags envconfig).
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	AppName string `envconfig:"APP_NAME" default:"zoonica-gateway"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Backend Zoónica
	APIBaseURL string        `envconfig:"ZOONICA_API_BASE_URL" default:"https://backendmaguey.onrender.com/api"`
	APITimeout time.Duration `envconfig:"ZOONICA_API_TIMEOUT" default:"10s"`
	// Reintentos de lecturas mientras el hosting del backend despierta.
	// El historial clínico nunca reintenta, valga lo que valga.
	APIRetries int `envconfig:"ZOONICA_API_RETRIES" default:"0"`

	// Opcional: si viene, las sesiones van a Postgres. Si no, in-memory.
	DBDSN string `envconfig:"DB_DSN"`

	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// Modo dev: acepta X-Debug-User-ID sin sesión.
	DebugAuth bool `envconfig:"DEBUG_AUTH" default:"false"`

	Tracking TrackingConfig
}

// TrackingConfig es la política de watchPosition.
type TrackingConfig struct {
	HighAccuracy    bool          `envconfig:"TRACKING_HIGH_ACCURACY" default:"true"`
	DistanceFilter  float64       `envconfig:"TRACKING_DISTANCE_FILTER" default:"1"`
	Interval        time.Duration `envconfig:"TRACKING_INTERVAL" default:"2s"`
	FastestInterval time.Duration `envconfig:"TRACKING_FASTEST_INTERVAL" default:"1s"`

	// Sesiones sin requests en IdleTTL se cierran (dispositivo que desapareció).
	IdleTTL time.Duration `envconfig:"TRACKING_IDLE_TTL" default:"10m"`
}

func (t TrackingConfig) WatchOptions() tracking.WatchOptions {
	return tracking.WatchOptions{
		EnableHighAccuracy: t.HighAccuracy,
		DistanceFilter:     t.DistanceFilter,
		Interval:           t.Interval,
		FastestInterval:    t.FastestInterval,
	}
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.APIRetries < 0 {
		return Config{}, fmt.Errorf("load config: ZOONICA_API_RETRIES must be >= 0, got %d", cfg.APIRetries)
	}
	if cfg.Tracking.FastestInterval > cfg.Tracking.Interval {
		return Config{}, fmt.Errorf("load config: TRACKING_FASTEST_INTERVAL (%s) exceeds TRACKING_INTERVAL (%s)",
			cfg.Tracking.FastestInterval, cfg.Tracking.Interval)
	}
	return cfg, nil
}

// Addr devuelve ":PORT".
func (c Config) Addr() string {
	return ":" + c.Port
}
