package result

import "time"

// Suite kinds (string constants for portability across runner wire formats)
const (
	KindRun       = "run"
	KindNamespace = "namespace"
	KindGroup     = "group"
)

// Leaf statuses as reported by the external runner.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Node is either a *Suite or a *TestCase. The private marker keeps the
// union closed so traversal can switch exhaustively.
type Node interface {
	node()
}

// Suite is an interior node of a finished run: the run root, a namespace
// (one per eventual <testsuite>), or a nested descriptive group.
type Suite struct {
	Label    string
	Kind     string
	Duration time.Duration
	Children []Node
}

// TestCase is a single executed leaf test.
type TestCase struct {
	Name     string
	Status   string
	Duration time.Duration

	// Assertion details, present on expectation misses.
	Message  string
	Expected string
	Actual   string

	// Fault is set when execution raised something other than a plain
	// expectation miss (and sometimes when the assertion machinery did).
	Fault *Fault

	SourceFile string

	// Output captured while the case ran. Empty when nothing was written
	// or capture was unavailable.
	Stdout string
	Stderr string

	// Path is the chain of group labels between the owning namespace and
	// this leaf. It is filled in during flattening, never by the runner.
	Path []string
}

// Fault is a structured runtime error attached to a failed leaf.
type Fault struct {
	Type    string
	Message string
	Stack   string
}

func (*Suite) node()    {}
func (*TestCase) node() {}

// KnownKind reports whether k is one of the three suite kinds.
func KnownKind(k string) bool {
	switch k {
	case KindRun, KindNamespace, KindGroup:
		return true
	}
	return false
}

// KnownStatus reports whether s is a status this engine understands.
func KnownStatus(s string) bool {
	switch s {
	case StatusPassed, StatusFailed, StatusSkipped:
		return true
	}
	return false
}
