package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/vaani/pkg/log"
	"github.com/sandevgo/vaani/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Vaani classification service",
	Long:  `Initializes the classification pipeline and runs its background workers until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting vaani")

		p := newPipeline(ctx)

		srv.StartServices(ctx, p.services)

		srv.ShutdownServices(ctx, p.services)
		logger.Info().Msg("vaani has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
