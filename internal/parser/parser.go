package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"surf-report/internal/result"
)

var ErrValidation = errors.New("validation error")

// Parser decodes a runner-emitted result tree (YAML or JSON) into the
// in-memory model. Decoding is strict: unknown fields are rejected so a
// runner schema drift surfaces here, not as a silently wrong report.
type Parser struct{}

func New() *Parser { return &Parser{} }

// Wire shape. A node is a suite when it declares a kind or children,
// otherwise a leaf test case.
type nodeDoc struct {
	// suite fields
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Kind     string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Children []nodeDoc `json:"children,omitempty" yaml:"children,omitempty"`

	// leaf fields
	Name       string    `json:"name,omitempty" yaml:"name,omitempty"`
	Status     string    `json:"status,omitempty" yaml:"status,omitempty"`
	Message    string    `json:"message,omitempty" yaml:"message,omitempty"`
	Expected   string    `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual     string    `json:"actual,omitempty" yaml:"actual,omitempty"`
	Fault      *faultDoc `json:"fault,omitempty" yaml:"fault,omitempty"`
	SourceFile string    `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	Stdout     string    `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr     string    `json:"stderr,omitempty" yaml:"stderr,omitempty"`

	// shared
	DurationNs int64 `json:"duration_ns,omitempty" yaml:"duration_ns,omitempty"`
}

type faultDoc struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Stack   string `json:"stack,omitempty" yaml:"stack,omitempty"`
}

// ParseBytes parses YAML (or JSON) into a result tree and validates it.
func (p *Parser) ParseBytes(b []byte) (*result.Suite, error) {
	var root nodeDoc

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true) // fail on unknown fields

	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	// The document root is the run node even when the runner omits the kind.
	if root.Kind == "" {
		root.Kind = result.KindRun
	}
	if root.Kind != result.KindRun {
		return nil, wrapValidation(fmt.Sprintf("root kind must be %q, got %q", result.KindRun, root.Kind))
	}

	if err := validateNode(&root, "$", 0); err != nil {
		return nil, err
	}
	return convertSuite(&root, 0), nil
}

// --- validation helpers ---

func (d *nodeDoc) isSuite() bool {
	return d.Kind != "" || d.Children != nil
}

func validateNode(d *nodeDoc, at string, depth int) error {
	if d.DurationNs < 0 {
		return wrapValidation(fmt.Sprintf("%s.duration_ns must not be negative", at))
	}
	if !d.isSuite() {
		status := strings.ToLower(d.Status)
		if status == "" {
			return wrapValidation(fmt.Sprintf("%s is neither a suite (kind/children) nor a test case (status)", at))
		}
		if !result.KnownStatus(status) {
			return wrapValidation(fmt.Sprintf("%s.status %q is not one of passed/failed/skipped", at, d.Status))
		}
		return nil
	}

	if !result.KnownKind(effectiveKind(d, depth)) {
		return wrapValidation(fmt.Sprintf("%s.kind %q is not one of run/namespace/group", at, d.Kind))
	}
	if d.Status != "" {
		return wrapValidation(fmt.Sprintf("%s declares both a kind and a status", at))
	}
	for i := range d.Children {
		if err := validateNode(&d.Children[i], fmt.Sprintf("%s.children[%d]", at, i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// effectiveKind fills a missing suite kind from its depth: the root is
// the run, its suite children are namespaces, anything deeper a group.
func effectiveKind(d *nodeDoc, depth int) string {
	if d.Kind != "" {
		return d.Kind
	}
	switch depth {
	case 0:
		return result.KindRun
	case 1:
		return result.KindNamespace
	}
	return result.KindGroup
}

func wrapValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// --- conversion ---

func convertSuite(d *nodeDoc, depth int) *result.Suite {
	s := &result.Suite{
		Label:    d.Label,
		Kind:     effectiveKind(d, depth),
		Duration: time.Duration(d.DurationNs),
	}
	for i := range d.Children {
		child := &d.Children[i]
		if child.isSuite() {
			s.Children = append(s.Children, convertSuite(child, depth+1))
			continue
		}
		s.Children = append(s.Children, convertCase(child))
	}
	return s
}

func convertCase(d *nodeDoc) *result.TestCase {
	tc := &result.TestCase{
		Name:       d.Name,
		Status:     strings.ToLower(d.Status), // normalize runner casing
		Duration:   time.Duration(d.DurationNs),
		Message:    d.Message,
		Expected:   d.Expected,
		Actual:     d.Actual,
		SourceFile: d.SourceFile,
		Stdout:     d.Stdout,
		Stderr:     d.Stderr,
	}
	if d.Fault != nil {
		tc.Fault = &result.Fault{
			Type:    d.Fault.Type,
			Message: d.Fault.Message,
			Stack:   d.Fault.Stack,
		}
	}
	return tc
}
