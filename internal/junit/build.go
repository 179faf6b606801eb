package junit

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/acarl005/stripansi"

	"surf-report/internal/classify"
	"surf-report/internal/flatten"
	"surf-report/internal/result"
)

// Defaults used when a record is missing an expected field.
const (
	defaultClassname   = "unknown"
	defaultTestName    = "unknown"
	defaultFailureMsg  = "Assertion failed"
	defaultFailureType = "ExpectationFailed"
	defaultErrorMsg    = "Unexpected error"
	defaultErrorType   = "Exception"
	defaultSkipMsg     = "Skipped"
)

// RunMeta is the run-scoped data shared by every suite in the document.
type RunMeta struct {
	Label      string
	Timestamp  time.Time
	Hostname   string
	Duration   time.Duration
	Properties []Property
}

// Build renders flattened groups into a complete document. Structural
// problems (an unclassifiable leaf) abort; missing cosmetic fields fall
// back to defaults instead.
func Build(groups []flatten.Group, meta RunMeta, cl *classify.Classifier) (*Testsuites, error) {
	if cl == nil {
		cl = classify.Default()
	}

	doc := &Testsuites{Name: meta.Label}
	var total time.Duration

	for i, g := range groups {
		suite, err := buildSuite(i, g, meta, cl)
		if err != nil {
			return nil, err
		}
		doc.Tests += suite.Tests
		doc.Failures += suite.Failures
		doc.Errors += suite.Errors
		doc.Skipped += suite.Skipped
		total += suiteDuration(g)
		doc.Suites = append(doc.Suites, *suite)
	}

	if meta.Duration > 0 {
		total = meta.Duration
	}
	doc.Time = seconds(total)
	return doc, nil
}

func buildSuite(id int, g flatten.Group, meta RunMeta, cl *classify.Classifier) (*Testsuite, error) {
	name := g.Namespace
	if name == "" {
		name = defaultClassname
	}

	suite := &Testsuite{
		Name:       name,
		Time:       seconds(suiteDuration(g)),
		Timestamp:  meta.Timestamp.Format("2006-01-02T15:04:05"),
		Hostname:   meta.Hostname,
		ID:         id,
		Package:    packageOf(g.Namespace),
		Properties: meta.Properties,
	}

	var outBlocks, errBlocks []string

	for i := range g.Cases {
		tc := &g.Cases[i]
		outcome, err := cl.Classify(tc)
		if err != nil {
			return nil, fmt.Errorf("suite %q: %w", name, err)
		}

		suite.Tests++
		switch outcome {
		case classify.AssertionFailure:
			suite.Failures++
		case classify.UnexpectedError:
			suite.Errors++
		case classify.Skipped:
			suite.Skipped++
		}

		rendered := buildCase(name, tc, outcome)
		suite.Cases = append(suite.Cases, rendered)

		if tc.Stdout != "" {
			outBlocks = append(outBlocks, outputBlock(rendered.Name, tc.Stdout))
		}
		if tc.Stderr != "" {
			errBlocks = append(errBlocks, outputBlock(rendered.Name, tc.Stderr))
		}
	}

	if len(outBlocks) > 0 {
		suite.SystemOut = &Output{Text: strings.Join(outBlocks, "\n")}
	}
	if len(errBlocks) > 0 {
		suite.SystemErr = &Output{Text: strings.Join(errBlocks, "\n")}
	}
	return suite, nil
}

func buildCase(classname string, tc *result.TestCase, outcome classify.Outcome) Testcase {
	out := Testcase{
		Classname: classname,
		Name:      displayName(tc),
		Time:      seconds(tc.Duration),
		File:      tc.SourceFile,
	}

	switch outcome {
	case classify.AssertionFailure:
		out.Failure = &Failure{
			Message: firstNonEmpty(tc.Message, defaultFailureMsg),
			Type:    failureType(tc.Fault),
			Body:    Sanitize(failureBody(tc)),
		}
	case classify.UnexpectedError:
		f := &Failure{Message: defaultErrorMsg, Type: defaultErrorType}
		if tc.Fault != nil {
			f.Message = firstNonEmpty(tc.Fault.Message, tc.Message, defaultErrorMsg)
			f.Type = firstNonEmpty(tc.Fault.Type, defaultErrorType)
			f.Body = Sanitize(tc.Fault.Stack)
		}
		out.Error = f
	case classify.Skipped:
		out.SkipNote = &Skipped{Message: firstNonEmpty(tc.Message, defaultSkipMsg)}
	}

	if tc.Stdout != "" {
		out.SystemOut = &Output{Text: Sanitize(tc.Stdout)}
	}
	if tc.Stderr != "" {
		out.SystemErr = &Output{Text: Sanitize(tc.Stderr)}
	}
	return out
}

// displayName joins the naming path and the identifier: "outer > inner > works".
func displayName(tc *result.TestCase) string {
	name := firstNonEmpty(tc.Name, defaultTestName)
	if len(tc.Path) == 0 {
		return name
	}
	return strings.Join(tc.Path, " > ") + " > " + name
}

func failureType(f *result.Fault) string {
	if f != nil && f.Type != "" {
		return f.Type
	}
	return defaultFailureType
}

func failureBody(tc *result.TestCase) string {
	var parts []string
	if tc.Expected != "" || tc.Actual != "" {
		parts = append(parts, fmt.Sprintf("Expected: %s\nActual: %s", tc.Expected, tc.Actual))
	}
	if tc.Fault != nil && tc.Fault.Stack != "" {
		parts = append(parts, tc.Fault.Stack)
	}
	return strings.Join(parts, "\n")
}

func outputBlock(name, text string) string {
	return "--- " + name + " ---\n" + Sanitize(text)
}

func suiteDuration(g flatten.Group) time.Duration {
	if g.Duration > 0 {
		return g.Duration
	}
	var sum time.Duration
	for i := range g.Cases {
		sum += g.Cases[i].Duration
	}
	return sum
}

// seconds renders a duration as seconds with exactly three fractional
// digits. fmt never consults the locale, so the separator is always '.'.
func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// packageOf drops the final dot-separated segment: "pkg.mod" -> "pkg".
func packageOf(label string) string {
	if i := strings.LastIndexByte(label, '.'); i >= 0 {
		return label[:i]
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Sanitize strips ANSI escapes and characters XML 1.0 cannot carry from
// text destined for the document. Tabs and newlines survive.
func Sanitize(s string) string {
	s = stripansi.Strip(s)
	clean := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return clean
}

// Write emits the UTF-8 document with the XML declaration, indented the
// way the rest of our artifacts are.
func Write(w io.Writer, doc *Testsuites) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
