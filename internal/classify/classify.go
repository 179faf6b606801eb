package classify

import (
	"fmt"

	"surf-report/internal/result"
)

// Outcome is the reporting category of one executed leaf.
type Outcome int

const (
	Passed Outcome = iota
	AssertionFailure
	UnexpectedError
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case AssertionFailure:
		return "assertion-failure"
	case UnexpectedError:
		return "unexpected-error"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Fault types that count as "the assertion machinery itself raised". The
// exact set is runner policy, so it is configurable via Config.
var defaultExpectationTypes = []string{"ExpectationFailed", "AssertionError"}

// Config tunes how a failed leaf is routed between assertion-failure and
// unexpected-error.
type Config struct {
	// ExpectationFaultTypes lists fault type names treated as assertion
	// failures. Empty means the default set.
	ExpectationFaultTypes []string

	// IsExpectationFault, when set, replaces the type-name check entirely.
	IsExpectationFault func(*result.Fault) bool
}

type Classifier struct {
	isExpectation func(*result.Fault) bool
}

func New(cfg Config) *Classifier {
	if cfg.IsExpectationFault != nil {
		return &Classifier{isExpectation: cfg.IsExpectationFault}
	}
	types := cfg.ExpectationFaultTypes
	if len(types) == 0 {
		types = defaultExpectationTypes
	}
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return &Classifier{isExpectation: func(f *result.Fault) bool {
		return set[f.Type]
	}}
}

// Default returns a classifier with the stock expectation-fault types.
func Default() *Classifier { return New(Config{}) }

// Classify maps one leaf to exactly one Outcome. It is pure: same record,
// same answer. An unrecognized status is an upstream contract violation
// and is returned as an error rather than coerced.
func (c *Classifier) Classify(tc *result.TestCase) (Outcome, error) {
	switch tc.Status {
	case result.StatusSkipped:
		return Skipped, nil
	case result.StatusFailed:
		// No fault object means the runner recorded a plain expectation
		// miss; a fault of a recognized assertion type means the same.
		if tc.Fault == nil || c.isExpectation(tc.Fault) {
			return AssertionFailure, nil
		}
		return UnexpectedError, nil
	case result.StatusPassed:
		return Passed, nil
	}
	return 0, fmt.Errorf("unrecognized test status %q (test %q)", tc.Status, tc.Name)
}
