package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/runner"
	"github.com/dnchinmayee/Text-retriving/internal/source"
)

func testSummary() *runner.Summary {
	table := &source.Table{
		Header: []string{"CIK", "SECFNAME"},
		Rows: [][]string{
			{"3662", "a.txt"},
			{"3662", "b.txt"},
			{"4000"},
		},
	}
	inputs := []source.Input{
		{Index: 0, ID: "a.txt"},
		{Index: 1, ID: "b.txt"},
		{Index: 2, ID: ""},
	}
	return &runner.Summary{
		RunID:  "run-1",
		Table:  table,
		Inputs: inputs,
		Outcomes: []metrics.Outcome{
			{Index: 0, ID: "a.txt", Record: &metrics.Record{PositiveScore: 2, PolarityScore: 0.5, WordCount: 10, AverageSentenceLength: 3.25}},
			{Index: 1, ID: "b.txt", Err: errors.New("document b.txt: degenerate document")},
		},
	}
}

func TestWriteAppendsMetricColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testSummary()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	header := rows[0]
	require.Equal(t, "CIK", header[0])
	require.Equal(t, metrics.Columns, header[2:2+len(metrics.Columns)])
	require.Equal(t, ErrorColumn, header[len(header)-1])

	scored := rows[1]
	require.Equal(t, "2", scored[2])
	require.Equal(t, "0.5", scored[4])
	require.Equal(t, "3.25", scored[5])
	require.Equal(t, "10", scored[9])
	require.Empty(t, scored[len(scored)-1])

	failed := rows[2]
	require.Empty(t, failed[2])
	require.Contains(t, failed[len(failed)-1], "degenerate")

	missing := rows[3]
	require.Equal(t, "4000", missing[0])
	require.Empty(t, missing[1])
	require.Equal(t, notProcessed, missing[len(missing)-1])
}

func TestCSVSinkCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "Output.csv")
	sink := CSVSink{Path: path}
	require.Equal(t, "csv", sink.Name())
	require.NoError(t, sink.Save(t.Context(), testSummary()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "positive_score")
}
