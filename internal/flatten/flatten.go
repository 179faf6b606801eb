package flatten

import (
	"fmt"
	"time"

	"surf-report/internal/result"
)

// Group is the flat view of one eventual <testsuite>: the owning
// namespace and its leaf cases in visit order, each with Path set.
type Group struct {
	// Namespace is the owning namespace label; empty renders as "unknown".
	Namespace string

	// Duration is the namespace node's own aggregate duration, zero when
	// the runner did not record one.
	Duration time.Duration

	Cases []result.TestCase
}

// Run flattens a finished run tree into one Group per namespace child of
// the root, in child order. Leaves or groups hanging directly off the
// root (a runner contract violation, but not a structural one) are
// gathered into a trailing unnamed group rather than dropped.
func Run(root *result.Suite) ([]Group, error) {
	if root == nil {
		return nil, fmt.Errorf("nil run tree")
	}
	if root.Kind != result.KindRun {
		return nil, fmt.Errorf("root node kind %q, want %q", root.Kind, result.KindRun)
	}

	var groups []Group
	var strays []result.TestCase

	for _, child := range root.Children {
		switch n := child.(type) {
		case *result.Suite:
			if n.Kind == result.KindNamespace {
				cases, err := Walk(n, nil)
				if err != nil {
					return nil, err
				}
				groups = append(groups, Group{
					Namespace: n.Label,
					Duration:  n.Duration,
					Cases:     cases,
				})
				continue
			}
			cases, err := Walk(n, nil)
			if err != nil {
				return nil, err
			}
			strays = append(strays, cases...)
		case *result.TestCase:
			cases, err := Walk(n, nil)
			if err != nil {
				return nil, err
			}
			strays = append(strays, cases...)
		default:
			return nil, fmt.Errorf("unrecognized node type %T", child)
		}
	}

	if len(strays) > 0 {
		groups = append(groups, Group{Cases: strays})
	}
	return groups, nil
}

// Walk performs the depth-first, order-preserving descent. Group labels
// extend the naming path; run and namespace labels never do (a namespace
// label becomes the classname one level up).
func Walk(node result.Node, path []string) ([]result.TestCase, error) {
	switch n := node.(type) {
	case *result.TestCase:
		leaf := *n
		leaf.Path = clonePath(path)
		return []result.TestCase{leaf}, nil
	case *result.Suite:
		if !result.KnownKind(n.Kind) {
			return nil, fmt.Errorf("unrecognized suite kind %q (label %q)", n.Kind, n.Label)
		}
		newPath := path
		if n.Kind == result.KindGroup && n.Label != "" {
			newPath = append(clonePath(path), n.Label)
		}
		var out []result.TestCase
		for _, child := range n.Children {
			cases, err := Walk(child, newPath)
			if err != nil {
				return nil, err
			}
			out = append(out, cases...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unrecognized node type %T", node)
	}
}

func clonePath(p []string) []string {
	if len(p) == 0 {
		return nil
	}
	out := make([]string, len(p))
	copy(out, p)
	return out
}
