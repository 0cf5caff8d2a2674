package workspace

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/runner"
	"github.com/dnchinmayee/Text-retriving/internal/source"
)

func TestEnsureAt(t *testing.T) {
	base := filepath.Join(t.TempDir(), BaseDirName)
	root, err := EnsureAt(base)
	if err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	for _, p := range []string{
		filepath.Join(root, "runs"),
		filepath.Join(root, "configs", "settings.json"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected path to exist %s: %v", p, err)
		}
	}
}

func TestReportSinkWritesRunReport(t *testing.T) {
	base := filepath.Join(t.TempDir(), BaseDirName)
	summary := &runner.Summary{
		RunID:  "0b7c6a5e-run",
		Inputs: []source.Input{{Index: 0, ID: "a.txt"}, {Index: 1, ID: "b.txt"}, {Index: 2, ID: "c.txt"}},
		Outcomes: []metrics.Outcome{
			{Index: 0, ID: "a.txt", Record: &metrics.Record{WordCount: 3}},
			{Index: 1, ID: "b.txt", Err: errors.New("degenerate document")},
		},
	}

	if err := (ReportSink{Root: base}).Save(t.Context(), summary); err != nil {
		t.Fatalf("save report: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(base, "runs", "0b7c6a5e-run", "report.json"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Documents != 3 || report.Scored != 1 || report.Failed != 1 || report.Unprocessed != 1 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].Row != 1 || report.Failures[0].ID != "b.txt" {
		t.Fatalf("unexpected failures %+v", report.Failures)
	}
	if len(report.Columns) != len(metrics.Columns) {
		t.Fatalf("expected %d columns, got %d", len(metrics.Columns), len(report.Columns))
	}
}

func TestSanitizeRunID(t *testing.T) {
	cases := map[string]string{
		"../../etc": "etc",
		"":          "unnamed",
		"run-1":     "run-1",
		"a/b/..":    "unnamed",
	}
	for in, want := range cases {
		if got := sanitizeRunID(in); got != want {
			t.Fatalf("sanitizeRunID(%q) = %q, want %q", in, got, want)
		}
	}
}
