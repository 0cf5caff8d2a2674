package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dnchinmayee/Text-retriving/internal/metrics"
	"github.com/dnchinmayee/Text-retriving/internal/runner"
)

type Failure struct {
	Row    int    `json:"row"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type Report struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Documents   int       `json:"documents"`
	Scored      int       `json:"scored"`
	Failed      int       `json:"failed"`
	Unprocessed int       `json:"unprocessed"`
	Columns     []string  `json:"columns"`
	Failures    []Failure `json:"failures"`
}

type RunInfo struct {
	ID         string
	Root       string
	ReportPath string
}

func CreateRun(workspaceRoot, runID string) (*RunInfo, error) {
	id := sanitizeRunID(runID)
	runRoot := filepath.Join(workspaceRoot, "runs", id)
	if err := os.MkdirAll(runRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &RunInfo{
		ID:         id,
		Root:       runRoot,
		ReportPath: filepath.Join(runRoot, "report.json"),
	}, nil
}

func BuildReport(s *runner.Summary) Report {
	scored, failed, unprocessed := s.Counts()
	report := Report{
		RunID:       s.RunID,
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		Documents:   len(s.Inputs),
		Scored:      scored,
		Failed:      failed,
		Unprocessed: unprocessed,
		Columns:     metrics.Columns,
		Failures:    []Failure{},
	}
	for _, o := range s.Outcomes {
		if o.Failed() {
			report.Failures = append(report.Failures, Failure{
				Row:    s.Inputs[o.Index].Index,
				ID:     o.ID,
				Reason: o.Reason(),
			})
		}
	}
	return report
}

func SaveReport(path string, report Report) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReportSink keeps a JSON report per run under the workspace.
type ReportSink struct {
	Root string
}

func (s ReportSink) Name() string { return "workspace" }

func (s ReportSink) Save(_ context.Context, summary *runner.Summary) error {
	root, err := EnsureAt(s.Root)
	if err != nil {
		return err
	}
	run, err := CreateRun(root, summary.RunID)
	if err != nil {
		return err
	}
	return SaveReport(run.ReportPath, BuildReport(summary))
}

func sanitizeRunID(id string) string {
	base := filepath.Base(strings.TrimSpace(id))
	base = strings.ReplaceAll(base, "..", "")
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "unnamed"
	}
	return base
}
