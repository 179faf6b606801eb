package reporter_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"surf-report/internal/capture"
	"surf-report/internal/reporter"
	"surf-report/internal/result"
)

func sampleTree() *result.Suite {
	return &result.Suite{
		Label: "nightly",
		Kind:  result.KindRun,
		Children: []result.Node{
			&result.Suite{
				Kind:  result.KindNamespace,
				Label: "pkg.mod",
				Children: []result.Node{
					&result.TestCase{Name: "adds numbers", Status: result.StatusPassed, Duration: 1_500_000_000},
					&result.TestCase{Name: "subtracts", Status: result.StatusFailed, Message: "expected 2 got 3"},
				},
			},
		},
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(reporter.EnvReportPath, "")
	require.Equal(t, reporter.DefaultReportPath, reporter.ResolvePath(""))

	t.Setenv(reporter.EnvReportPath, "env/junit.xml")
	require.Equal(t, "env/junit.xml", reporter.ResolvePath(""))

	// explicit override wins over the environment
	require.Equal(t, "given.xml", reporter.ResolvePath("given.xml"))
}

func TestReporter_WritesReportAndSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "junit.xml")
	var notices bytes.Buffer

	rep := reporter.New(reporter.Options{Path: path, Notices: &notices})
	rep.RunStarted()
	sum, err := rep.RunFinished(sampleTree())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.True(t, strings.HasPrefix(content, `<?xml version="1.0" encoding="UTF-8"?>`))
	require.Contains(t, content, `<testsuite name="pkg.mod" tests="2" failures="1"`)
	require.Contains(t, content, `<property name="run.id"`)

	require.Equal(t, 2, sum.Tests)
	require.Equal(t, 1, sum.Failures)
	require.False(t, sum.Passed)
	require.Equal(t, path, sum.Path)
	require.NotEmpty(t, sum.RunID)
	require.NotEmpty(t, sum.Hostname)

	require.Contains(t, notices.String(), path)
}

func TestReporter_EnvPathOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "from-env.xml")
	t.Setenv(reporter.EnvReportPath, path)

	rep := reporter.New(reporter.Options{Notices: &bytes.Buffer{}})
	rep.RunStarted()
	_, err := rep.RunFinished(sampleTree())
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestReporter_OverwritesExistingReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junit.xml")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	rep := reporter.New(reporter.Options{Path: path, Notices: &bytes.Buffer{}})
	rep.RunStarted()
	_, err := rep.RunFinished(sampleTree())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "stale")
}

func TestReporter_RunsAreResettable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junit.xml")

	rep := reporter.New(reporter.Options{Path: path, Notices: &bytes.Buffer{}})

	rep.RunStarted()
	first, err := rep.RunFinished(sampleTree())
	require.NoError(t, err)

	rep.RunStarted()
	second, err := rep.RunFinished(sampleTree())
	require.NoError(t, err)

	require.NotEqual(t, first.RunID, second.RunID)
}

func TestReporter_CaptureReleasedBeforeRenderFailure(t *testing.T) {
	origOut := os.Stdout

	rec := capture.NewRecorder()
	rep := reporter.New(reporter.Options{
		Path:     filepath.Join(t.TempDir(), "junit.xml"),
		Recorder: rec,
		Notices:  &bytes.Buffer{},
	})

	rep.RunStarted()
	rep.Recorder().BeginCase()

	// wrong root kind: flattening fails after capture is released
	_, err := rep.RunFinished(&result.Suite{Kind: result.KindNamespace})
	require.Error(t, err)
	require.Same(t, origOut, os.Stdout)
}

func TestReporter_RunFinishedWithoutStart(t *testing.T) {
	rep := reporter.New(reporter.Options{
		Path:    filepath.Join(t.TempDir(), "junit.xml"),
		Notices: &bytes.Buffer{},
	})
	sum, err := rep.RunFinished(sampleTree())
	require.NoError(t, err)
	require.NotEmpty(t, sum.RunID)
}

func TestReporter_WriteFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	// the resolved path is a directory: create must fail
	rep := reporter.New(reporter.Options{Path: dir, Notices: &bytes.Buffer{}})
	rep.RunStarted()
	_, err := rep.RunFinished(sampleTree())
	require.Error(t, err)
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junit.xml")

	rep := reporter.New(reporter.Options{Path: path, Notices: &bytes.Buffer{}})
	rep.RunStarted()
	sum, err := rep.RunFinished(sampleTree())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, reporter.WriteJSON(&buf, sum))

	var back reporter.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	require.Equal(t, sum.Tests, back.Tests)
	require.Equal(t, sum.RunID, back.RunID)
	require.Len(t, back.Suites, 1)
	require.Equal(t, "pkg.mod", back.Suites[0].Name)
}
