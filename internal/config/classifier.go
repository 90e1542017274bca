package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/vaani/pkg/log"
)

type RemoteClassifierConfig struct {
	BaseURL string `env:"CLASSIFIER_BASE_URL" envDefault:"https://api.openai.com"`
	// Empty key disables remote escalation; local cascades plus the
	// deterministic fallbacks still produce a result.
	APIKey string `env:"CLASSIFIER_API_KEY"`
	Model  string `env:"CLASSIFIER_MODEL" envDefault:"gpt-4o-mini"`

	// One hard timeout per call; the pipeline proceeds on expiry.
	Timeout time.Duration `env:"CLASSIFIER_TIMEOUT" envDefault:"4s"`

	// Token budget for serialized history in the prompt.
	HistoryTokenBudget int `env:"CLASSIFIER_HISTORY_TOKENS" envDefault:"1200"`
	HistoryTurns       int `env:"CLASSIFIER_HISTORY_TURNS" envDefault:"5"`
}

func NewRemoteClassifierConfig(ctx context.Context) *RemoteClassifierConfig {
	c := &RemoteClassifierConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Remote Classifier config")
	}
	return c
}
