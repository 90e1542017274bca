package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/vaani/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"VAANI_RUNTIME_PATH" envDefault:".vaani"`

	// Context management
	HistoryWindow int           `env:"HISTORY_WINDOW" envDefault:"10"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	MaxSessions   int           `env:"MAX_SESSIONS" envDefault:"10000"`

	// Orchestrator thresholds
	PatternConfidentThreshold float64 `env:"PATTERN_CONFIDENT_THRESHOLD" envDefault:"0.9"`
	ContextTrustThreshold     float64 `env:"CONTEXT_TRUST_THRESHOLD" envDefault:"0.7"`

	// Store backend: "memory" or "sqlite"
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "vaani.db")
}
