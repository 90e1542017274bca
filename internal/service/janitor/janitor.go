// Package janitor evicts idle sessions from the context store on a timer.
package janitor

import (
	"context"
	"time"

	"github.com/sandevgo/vaani/pkg/log"
)

const defaultInterval = 5 * time.Minute

// Sweeper is the store-side eviction hook.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type Janitor struct {
	sweeper  Sweeper
	Interval time.Duration
}

func New(sweeper Sweeper) *Janitor {
	return &Janitor{
		sweeper:  sweeper,
		Interval: defaultInterval,
	}
}

func (j *Janitor) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Dur("interval", j.Interval).Msg("starting session janitor")

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			evicted, err := j.sweeper.Sweep(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if evicted > 0 {
				logger.Debug().Int("evicted", evicted).Msg("swept idle sessions")
			}
		}
	}
}

func (j *Janitor) Shutdown(ctx context.Context) error {
	return nil
}
