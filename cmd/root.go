package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bz888/parley/internal/api"
	"github.com/bz888/parley/internal/api/server"
	"github.com/bz888/parley/internal/config"
	"github.com/bz888/parley/internal/logger"
	"github.com/bz888/parley/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Terminal chat client for a Groq backed chat proxy",
	Long: `parley is a terminal chat client. By default it also starts the chat
proxy in the background so that the API key never leaves the server side.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	addFlags(rootCmd)
	rootCmd.AddCommand(serveCmd)
}

func addFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.Bool("dev", false, "Enable development mode with debug logging")
	flags.String("logPath", "", "Directory to write log files to")
	flags.Int("port", 0, "Port for the chat proxy (overrides PORT)")
	cmd.Flags().Bool("no-server", false, "Do not start the embedded proxy; use PARLEY_PROXY_URL")
}

// loadConfig reads the environment and applies command line flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if cfg.Dev, err = flags.GetBool("dev"); err != nil {
		return nil, err
	}
	if cfg.LogPath, err = flags.GetString("logPath"); err != nil {
		return nil, err
	}
	if flags.Changed("port") {
		if cfg.Port, err = flags.GetInt("port"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("no-server") != nil {
		if cfg.NoServer, err = flags.GetBool("no-server"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	proxyURL := cfg.ProxyURL
	if !cfg.NoServer {
		proxyURL = cfg.LocalProxyURL()
	}

	app := ui.New(api.NewClient(proxyURL), ui.Options{
		ThinkingDelay: cfg.ThinkingDelay,
		ShowDebug:     cfg.Dev,
	})
	if err := logger.InitLogger(cfg.Dev, cfg.LogPath, app.Console()); err != nil {
		return err
	}
	defer logger.Close()
	log := logger.NewLogger("main")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	serverDone := make(chan struct{})
	if cfg.NoServer {
		close(serverDone)
		log.Info("using external proxy", "url", proxyURL)
	} else {
		go func() {
			defer close(serverDone)
			if err := server.New(cfg, nil).Run(ctx); err != nil {
				log.Error("proxy stopped", "error", err.Error())
			}
		}()
	}

	runErr := app.Run()
	cancel()

	select {
	case <-serverDone:
	case <-time.After(10 * time.Second):
		log.Warn("proxy did not shut down in time")
	}
	return runErr
}
