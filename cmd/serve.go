package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bz888/parley/internal/api/server"
	"github.com/bz888/parley/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run only the chat proxy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// logs go to the terminal
		if err := logger.InitLogger(true, cfg.LogPath, os.Stderr); err != nil {
			return err
		}
		defer logger.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(cfg, nil).Run(ctx)
	},
}
