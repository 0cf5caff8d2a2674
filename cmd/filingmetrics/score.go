package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dnchinmayee/Text-retriving/internal/ingest"
	"github.com/dnchinmayee/Text-retriving/internal/metrics"
)

type scoreOutput struct {
	ID     string          `json:"id"`
	Record *metrics.Record `json:"record,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func scoreCmd(opts *rootOptions) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "score FILE...",
		Short: "Score local documents and print their metrics as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			engine, err := loadEngine(cfg, log)
			if err != nil {
				return err
			}

			results := make([]scoreOutput, len(args))
			docs := make([]metrics.Document, 0, len(args))
			positions := make([]int, 0, len(args))
			for i, path := range args {
				results[i].ID = path
				parsed, err := ingest.ParseFile(path)
				if err != nil {
					results[i].Error = err.Error()
					continue
				}
				docs = append(docs, metrics.Document{ID: path, Text: parsed.Text})
				positions = append(positions, i)
			}

			outcomes, err := engine.ScoreBatch(cmd.Context(), docs, workers)
			for _, o := range outcomes {
				r := &results[positions[o.Index]]
				r.Record = o.Record
				r.Error = o.Reason()
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return fmt.Errorf("write results: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel documents (0 = number of CPUs)")
	return cmd
}
