package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dnchinmayee/Text-retriving/internal/config"
	"github.com/dnchinmayee/Text-retriving/internal/db"
	"github.com/dnchinmayee/Text-retriving/internal/fetch"
	"github.com/dnchinmayee/Text-retriving/internal/output"
	"github.com/dnchinmayee/Text-retriving/internal/runner"
	"github.com/dnchinmayee/Text-retriving/internal/search"
	"github.com/dnchinmayee/Text-retriving/internal/source"
	"github.com/dnchinmayee/Text-retriving/internal/telemetry"
	"github.com/dnchinmayee/Text-retriving/internal/workspace"
)

// defaultWorkspace selects the per-user workspace in the home directory.
const defaultWorkspace = "default"

func runCmd(opts *rootOptions) *cobra.Command {
	var (
		input   string
		glob    string
		csvPath string
		sqlite  string
		ws      string
		workers int
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score every filing of an input table and write the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Input.File = input
			}
			if flags.Changed("glob") {
				cfg.Input.Glob = glob
				cfg.Input.File = ""
			}
			if flags.Changed("output") {
				cfg.Output.CSV = csvPath
			}
			if flags.Changed("sqlite") {
				cfg.Output.SQLite = sqlite
			}
			if flags.Changed("workspace") {
				cfg.Output.Workspace = ws
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("limit") {
				cfg.Input.Limit = limit
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return runBatch(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input CSV with one filing per row")
	cmd.Flags().StringVar(&glob, "glob", "", "score local files matching this pattern instead of an input CSV")
	cmd.Flags().StringVarP(&csvPath, "output", "o", "", "output CSV path")
	cmd.Flags().StringVar(&sqlite, "sqlite", "", "also append the run to this SQLite database")
	cmd.Flags().StringVar(&ws, "workspace", "", "also keep a JSON run report under this workspace")
	cmd.Flags().Lookup("workspace").NoOptDefVal = defaultWorkspace
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel documents (0 = number of CPUs)")
	cmd.Flags().IntVar(&limit, "limit", 0, "score only the first N inputs")
	return cmd
}

func runBatch(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	shutdown, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:  serviceName,
		Endpoint:     cfg.Telemetry.OTLPEndpoint,
		Insecure:     true,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("tracer shutdown", "err", err)
		}
	}()

	engine, err := loadEngine(cfg, log)
	if err != nil {
		return err
	}
	table, inputs, err := readInputs(cfg)
	if err != nil {
		return err
	}
	inputs = source.Limit(inputs, cfg.Input.Limit)

	m := telemetry.NewMetrics()
	cache, closeCache := buildCache(cfg)
	defer closeCache()
	fetcher := fetch.New(fetch.Options{
		Headers:       cfg.Fetch.Headers,
		Timeout:       cfg.Fetch.Timeout,
		RatePerSecond: cfg.Fetch.RatePerSecond,
		MaxAttempts:   cfg.Fetch.MaxAttempts,
	}, cache, log, m)

	summary, runErr := runner.New(engine, runner.NewLoader(fetcher), log, m).Run(ctx, table, inputs, cfg.Workers)
	if summary == nil {
		return runErr
	}

	// Partial results of an interrupted run are still written out.
	saveCtx := context.WithoutCancel(ctx)
	sinks, closeSinks, err := buildSinks(saveCtx, cfg, log)
	if err != nil {
		return errors.Join(runErr, err)
	}
	defer closeSinks()
	saveErr := runner.SaveAll(saveCtx, summary, sinks...)

	if err := m.WriteTextfile(cfg.Telemetry.MetricsFile); err != nil {
		log.Warn("write metrics textfile", "err", err)
	}
	return errors.Join(runErr, saveErr)
}

func readInputs(cfg *config.Config) (*source.Table, []source.Input, error) {
	if cfg.Input.Glob != "" {
		return source.Glob(cfg.Input.Glob)
	}
	table, err := source.ReadTable(cfg.Input.File)
	if err != nil {
		return nil, nil, err
	}
	inputs, err := table.Inputs(cfg.Input.IDColumn, cfg.Input.BaseURL)
	if err != nil {
		return nil, nil, err
	}
	return table, inputs, nil
}

func buildCache(cfg *config.Config) (fetch.Cache, func()) {
	if cfg.Fetch.RedisAddr != "" {
		c := fetch.NewRedisCache(cfg.Fetch.RedisAddr, cfg.Fetch.CacheTTL)
		return c, func() { _ = c.Close() }
	}
	if cfg.Fetch.CacheSize > 0 {
		return fetch.NewMemoryCache(cfg.Fetch.CacheSize, cfg.Fetch.CacheTTL), func() {}
	}
	return nil, func() {}
}

func buildSinks(ctx context.Context, cfg *config.Config, log *slog.Logger) ([]runner.Sink, func(), error) {
	var sinks []runner.Sink
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Output.CSV != "" {
		sinks = append(sinks, output.CSVSink{Path: cfg.Output.CSV})
	}
	if cfg.Output.SQLite != "" {
		sinks = append(sinks, db.SQLiteStore{Path: cfg.Output.SQLite})
	}
	if cfg.Output.Postgres != "" {
		store, err := db.NewPostgresStore(ctx, cfg.Output.Postgres)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, store.Close)
		sinks = append(sinks, store)
	}
	if cfg.Output.ElasticsearchAddr != "" {
		idx, err := search.New(cfg.Output.ElasticsearchAddr, cfg.Output.ElasticsearchIndex, log)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, idx)
	}
	if cfg.Output.Workspace != "" {
		root := cfg.Output.Workspace
		if root == defaultWorkspace {
			var err error
			if root, err = workspace.EnsureDefault(); err != nil {
				closeAll()
				return nil, nil, err
			}
		}
		sinks = append(sinks, workspace.ReportSink{Root: root})
	}
	return sinks, closeAll, nil
}
