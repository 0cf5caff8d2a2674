package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dnchinmayee/Text-retriving/internal/config"
	"github.com/dnchinmayee/Text-retriving/internal/lexicon"
	"github.com/dnchinmayee/Text-retriving/internal/logger"
	"github.com/dnchinmayee/Text-retriving/internal/metrics"
)

const serviceName = "filingmetrics"

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Sentiment and readability metrics for financial filings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(runCmd(opts))
	rootCmd.AddCommand(scoreCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(columnsCmd())
	return rootCmd
}

// setup loads the config and builds the logger every command shares.
func (o *rootOptions) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	log := logger.NewWriter(cmd.ErrOrStderr(), serviceName, cfg.LogLevel)
	return cfg, log, nil
}

func loadEngine(cfg *config.Config, log *slog.Logger) (*metrics.Engine, error) {
	set, err := lexicon.LoadSet(lexicon.Paths{
		MasterDictionary: cfg.Lexicons.MasterDictionary,
		Uncertainty:      cfg.Lexicons.Uncertainty,
		Constraining:     cfg.Lexicons.Constraining,
	})
	if err != nil {
		return nil, fmt.Errorf("load lexicons: %w", err)
	}
	log.Info("lexicons loaded",
		"positive", set.Positive.Len(),
		"negative", set.Negative.Len(),
		"uncertainty", set.Uncertainty.Len(),
		"constraining", set.Constraining.Len(),
	)
	return metrics.NewEngine(set)
}

func columnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Print the output schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range metrics.Columns {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}
