package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"surf-report/internal/capture"
	"surf-report/internal/classify"
	"surf-report/internal/flatten"
	"surf-report/internal/junit"
	"surf-report/internal/props"
	"surf-report/internal/result"
)

const (
	// EnvReportPath overrides the report location when no explicit path
	// is configured.
	EnvReportPath = "SURF_REPORT_PATH"

	DefaultReportPath = "reports/junit.xml"
)

// ResolvePath picks the report path: explicit override, then the
// environment variable, then the default. Exactly one wins.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvReportPath); p != "" {
		return p
	}
	return DefaultReportPath
}

// Options configures a Reporter for embedding in a runner.
type Options struct {
	// Path is the explicit report path override; empty falls through to
	// the environment variable and then the default.
	Path string

	Classifier *classify.Classifier

	// Recorder, when set, is armed for the span of each run so the
	// runner can capture per-case output through it.
	Recorder *capture.Recorder

	// PropertyFiles are optional flat JSON files merged into the
	// <properties> block after the fixed runtime set.
	PropertyFiles []string

	// Notices receives the one-line confirmation; defaults to stdout.
	Notices io.Writer
}

// Reporter turns the external runner's two lifecycle events into a
// written JUnit document. It stays silent between the events so a
// human-facing progress reporter can run alongside.
type Reporter struct {
	explicit      string
	classifier    *classify.Classifier
	recorder      *capture.Recorder
	propertyFiles []string
	notices       io.Writer

	meta *runMeta // run-scoped, nil between runs
}

type runMeta struct {
	ID       string
	Started  time.Time
	Hostname string
}

func New(opts Options) *Reporter {
	cl := opts.Classifier
	if cl == nil {
		cl = classify.Default()
	}
	notices := opts.Notices
	if notices == nil {
		notices = os.Stdout
	}
	return &Reporter{
		explicit:      opts.Path,
		classifier:    cl,
		recorder:      opts.Recorder,
		propertyFiles: opts.PropertyFiles,
		notices:       notices,
	}
}

// Recorder exposes the capture recorder so the runner can wrap its
// execution primitive with BeginCase/EndCase (or Capture). Nil when
// capture was not configured.
func (r *Reporter) Recorder() *capture.Recorder { return r.recorder }

// RunStarted resets run-scoped metadata and arms output capture. A
// second RunStarted before RunFinished discards the stale run first, so
// capture state never stacks.
func (r *Reporter) RunStarted() {
	if r.meta != nil && r.recorder != nil {
		r.recorder.Uninstall()
	}
	r.meta = &runMeta{
		ID:       uuid.NewString(),
		Started:  time.Now(),
		Hostname: hostname(),
	}
	if r.recorder != nil {
		r.recorder.Install()
	}
}

// RunFinished disarms capture, renders the handed-over tree and writes
// the document. Capture is released before any rendering so a render
// failure cannot leak redirected streams. Write failures are returned,
// not swallowed: a missing report must be detectable.
func (r *Reporter) RunFinished(root *result.Suite) (*Summary, error) {
	if r.recorder != nil {
		r.recorder.Uninstall()
	}
	meta := r.meta
	if meta == nil {
		// RunFinished without RunStarted: synthesize metadata now.
		meta = &runMeta{ID: uuid.NewString(), Started: time.Now(), Hostname: hostname()}
	}
	r.meta = nil

	groups, err := flatten.Run(root)
	if err != nil {
		return nil, err
	}

	pairs := props.Collect(meta.ID, meta.Hostname)
	if len(r.propertyFiles) > 0 {
		extra, err := props.LoadJSONFiles(r.propertyFiles)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, extra...)
	}
	properties := make([]junit.Property, 0, len(pairs))
	for _, p := range pairs {
		properties = append(properties, junit.Property{Name: p.Name, Value: p.Value})
	}

	doc, err := junit.Build(groups, junit.RunMeta{
		Label:      root.Label,
		Timestamp:  meta.Started,
		Hostname:   meta.Hostname,
		Duration:   root.Duration,
		Properties: properties,
	}, r.classifier)
	if err != nil {
		return nil, err
	}

	path := ResolvePath(r.explicit)
	if err := writeDoc(path, doc); err != nil {
		return nil, err
	}
	fmt.Fprintf(r.notices, "junit report written to %s\n", path)

	return summarize(doc, meta, path), nil
}

func writeDoc(path string, doc *junit.Testsuites) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := junit.Write(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// hostname resolves best-effort at run start; anything going wrong means
// the schema-required attribute falls back to "localhost".
func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	return h
}
