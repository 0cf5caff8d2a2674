package main

import (
	"github.com/spf13/cobra"

	"github.com/dnchinmayee/Text-retriving/internal/server"
	"github.com/dnchinmayee/Text-retriving/internal/telemetry"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the metrics engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			engine, err := loadEngine(cfg, log)
			if err != nil {
				return err
			}
			return server.New(engine, telemetry.NewMetrics(), log, cfg.Workers).Run(cmd.Context(), cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
