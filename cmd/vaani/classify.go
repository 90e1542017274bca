package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/vaani/internal/transport/cli"
	"github.com/sandevgo/vaani/pkg/log"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Interactive classification REPL",
	Long:  `Starts a readline loop that classifies each input line against a live session, showing intent, confidence, entities and context carry-over.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		p := newPipeline(ctx)

		repl, err := cli.NewReadLine(p.orch, p.appCfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := repl.Shutdown(ctx); err != nil {
				log.FromCtx(ctx).Error().Err(err).Msg("repl shutdown failed")
			}
		}()

		return repl.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
