package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sandevgo/vaani/internal/config"
	"github.com/sandevgo/vaani/internal/core"
	"github.com/sandevgo/vaani/internal/providers/llm"
	"github.com/sandevgo/vaani/internal/service/contextual"
	"github.com/sandevgo/vaani/internal/service/intent"
	"github.com/sandevgo/vaani/internal/service/janitor"
	"github.com/sandevgo/vaani/internal/service/language"
	"github.com/sandevgo/vaani/internal/service/orchestrator"
	"github.com/sandevgo/vaani/internal/storage/memstore"
	"github.com/sandevgo/vaani/internal/storage/sqlite"
	"github.com/sandevgo/vaani/pkg/log"
	"github.com/sandevgo/vaani/pkg/srv"
)

// pipeline holds the wired classification core plus its background services.
type pipeline struct {
	appCfg   *config.AppConfig
	orch     *orchestrator.Orchestrator
	services []srv.Service
}

// newPipeline builds the full classification pipeline from the environment.
func newPipeline(ctx context.Context) *pipeline {
	logger := log.FromCtx(ctx)

	if err := godotenv.Load(); err == nil {
		logger.Debug().Msg("loaded .env")
	}

	appCfg := config.NewAppConfig(ctx)
	clsCfg := config.NewRemoteClassifierConfig(ctx)

	matcher, err := intent.NewMatcher()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load intent rules")
	}

	var (
		remote   *llm.Classifier
		langRem  core.LanguageDetector
		semantic core.SemanticClassifier
		relation core.RelationClassifier
	)
	if clsCfg.APIKey != "" {
		remote = llm.NewClassifier(clsCfg)
		langRem = llm.NewDetector(remote)
		semantic = remote
		relation = remote
	} else {
		logger.Warn().Msg("no classifier API key, remote escalation disabled")
	}

	detector := language.NewDetector(langRem)

	var (
		store    core.ContextStore
		sweeper  janitor.Sweeper
		services []srv.Service
	)
	switch appCfg.StoreBackend {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open context store")
		}
		sessions := sqlite.NewSessions(db, appCfg.SessionTTL, appCfg.HistoryWindow)
		store, sweeper = sessions, sessions
		services = append(services, srv.NewCleanup(db.Close))
	default:
		mem := memstore.New(appCfg.SessionTTL, appCfg.HistoryWindow, appCfg.MaxSessions)
		store, sweeper = mem, mem
	}

	orch := orchestrator.New(
		orchestrator.Config{
			PatternConfident: appCfg.PatternConfidentThreshold,
			ContextTrust:     appCfg.ContextTrustThreshold,
		},
		store,
		detector,
		matcher,
		contextual.NewClassifier(matcher, relation),
		semantic,
	)

	return &pipeline{
		appCfg:   appCfg,
		orch:     orch,
		services: append(services, janitor.New(sweeper)),
	}
}
