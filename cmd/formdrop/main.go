package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/FormDrop/internal/app"
	"github.com/dharsanguruparan/FormDrop/internal/config"
	"github.com/dharsanguruparan/FormDrop/internal/logger"
)

var (
	configFile string
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "formdrop: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formdrop",
		Short: "Submit contact, job application and job posting forms to webhooks",
		Long: `FormDrop validates form input, encodes it the way each webhook expects
(query string or multipart) and submits it once. It can also run as a relay
that accepts browser form posts and proxies dev webhooks.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (default formdrop.yaml if present)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.AddCommand(
		newSubmitCmd(),
		newJobsCmd(),
		newInspectCmd(),
		newServeCmd(),
		newDBCmd(),
	)
	return cmd
}

func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func wire(ctx context.Context) (*app.Deps, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Wire(ctx, cfg, log)
}
