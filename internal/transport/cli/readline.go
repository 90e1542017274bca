// Package cli is the debug REPL transport: each line is classified against
// a live session so context carry-over can be exercised interactively.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/sandevgo/vaani/internal/config"
	"github.com/sandevgo/vaani/internal/core"
	"github.com/sandevgo/vaani/internal/service/orchestrator"
	"github.com/sandevgo/vaani/internal/service/ui"
	"github.com/sandevgo/vaani/pkg/log"
)

const defaultSessionID = "cli-local"

type ReadLine struct {
	cfg  *config.AppConfig
	orch *orchestrator.Orchestrator
	rl   *readline.Instance
}

func NewReadLine(orch *orchestrator.Orchestrator, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{cfg: cfg, orch: orch, rl: rl}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("starting classification REPL")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("readline: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		result := r.orch.Handle(ctx, core.IncomingMessage{
			Text:      line,
			Type:      core.MessageText,
			SessionID: defaultSessionID,
			Timestamp: time.Now(),
		})
		printResult(result)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	return r.rl.Close()
}

func printResult(res core.ClassificationResult) {
	fmt.Printf("%s  %s\n",
		ui.IntentStyle.Render(res.Intent.String()),
		ui.DescStyle.Render(fmt.Sprintf("conf=%.2f source=%s lang=%s", res.Confidence, res.Source, res.Language)))

	if len(res.Entities) > 0 {
		keys := make([]string, 0, len(res.Entities))
		for k := range res.Entities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, res.Entities[k]))
		}
		fmt.Println(ui.EntityStyle.Render("  " + strings.Join(parts, "  ")))
	}
	if res.Error != "" {
		fmt.Println(ui.WarnStyle.Render("  error: " + res.Error))
	}
}
