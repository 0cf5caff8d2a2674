package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/runner"
)

const (
	ErrorColumn  = "error"
	notProcessed = "not processed"
)

// CSVSink writes the input table back out with the metric columns and an
// error column appended. Every input row is written; rows without a record
// keep empty metric cells.
type CSVSink struct {
	Path string
}

func (s CSVSink) Name() string { return "csv" }

func (s CSVSink) Save(_ context.Context, summary *runner.Summary) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := Write(f, summary); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func Write(w io.Writer, summary *runner.Summary) error {
	cw := csv.NewWriter(w)

	header := append([]string{}, summary.Table.Header...)
	header = append(header, metrics.Columns...)
	header = append(header, ErrorColumn)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	byRow := summary.ByRow()
	for i, row := range summary.Table.Rows {
		out := make([]string, 0, len(header))
		out = append(out, pad(row, len(summary.Table.Header))...)

		o, ok := byRow[i]
		switch {
		case !ok:
			out = append(out, make([]string, len(metrics.Columns))...)
			out = append(out, notProcessed)
		case o.Failed():
			out = append(out, make([]string, len(metrics.Columns))...)
			out = append(out, o.Reason())
		default:
			for _, v := range o.Record.Values() {
				out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
			}
			out = append(out, "")
		}
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row[:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
