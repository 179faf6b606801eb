package reporter

import (
	"encoding/json"
	"io"
	"time"

	"surf-report/internal/junit"
)

// Summary is the machine-readable companion to the XML report: the
// aggregate outcome the runner bases its exit code on, plus the
// per-namespace breakdown CI dashboards read.
type Summary struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Hostname  string    `json:"hostname"`
	Path      string    `json:"report_path"`

	Tests    int  `json:"tests"`
	Failures int  `json:"failures"`
	Errors   int  `json:"errors"`
	Skipped  int  `json:"skipped"`
	Passed   bool `json:"passed"`

	Suites []SuiteSummary `json:"suites,omitempty"`
}

type SuiteSummary struct {
	Name     string `json:"name"`
	Tests    int    `json:"tests"`
	Failures int    `json:"failures"`
	Errors   int    `json:"errors"`
	Skipped  int    `json:"skipped"`
	Time     string `json:"time"`
}

func summarize(doc *junit.Testsuites, meta *runMeta, path string) *Summary {
	s := &Summary{
		RunID:     meta.ID,
		StartedAt: meta.Started,
		Hostname:  meta.Hostname,
		Path:      path,
		Tests:     doc.Tests,
		Failures:  doc.Failures,
		Errors:    doc.Errors,
		Skipped:   doc.Skipped,
		Passed:    doc.Failures == 0 && doc.Errors == 0,
	}
	for _, ts := range doc.Suites {
		s.Suites = append(s.Suites, SuiteSummary{
			Name:     ts.Name,
			Tests:    ts.Tests,
			Failures: ts.Failures,
			Errors:   ts.Errors,
			Skipped:  ts.Skipped,
			Time:     ts.Time,
		})
	}
	return s
}

// WriteJSON writes the summary artifact next to the XML report.
func WriteJSON(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
