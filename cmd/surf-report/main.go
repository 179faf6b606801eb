package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"surf-report/internal/classify"
	"surf-report/internal/flatten"
	"surf-report/internal/parser"
	"surf-report/internal/reporter"
	"surf-report/internal/result"
)

func main() {
	var (
		treePath  = flag.String("tree", "", "Path to YAML/JSON result tree emitted by the runner")
		report    = flag.String("report", "", "Report path override (else $"+reporter.EnvReportPath+", else "+reporter.DefaultReportPath+")")
		summary   = flag.String("summary", "", "Optional path for a JSON run summary")
		name      = flag.String("name", "", "Optional run name override")
		propFiles = flag.String("props", "", "Comma-separated JSON property files merged into <properties>")
		expTypes  = flag.String("expectation-types", "", "Comma-separated fault types routed to <failure> instead of <error>")
		verbose   = flag.Bool("v", false, "Verbose: print failure details")
	)
	flag.Parse()

	if *treePath == "" {
		fail("missing --tree")
	}

	data, err := os.ReadFile(*treePath)
	if err != nil {
		fail("read tree: %v", err)
	}

	p := parser.New()
	tree, err := p.ParseBytes(data)
	if err != nil {
		fail("parse: %v", err)
	}
	if *name != "" {
		tree.Label = *name
	}

	cl := classify.New(classify.Config{ExpectationFaultTypes: splitCSV(*expTypes)})

	rep := reporter.New(reporter.Options{
		Path:          *report,
		Classifier:    cl,
		PropertyFiles: splitCSV(*propFiles),
	})

	rep.RunStarted()
	sum, err := rep.RunFinished(tree)
	if err != nil {
		fail("report: %v", err)
	}

	if *summary != "" {
		writeOrDie(*summary, func(f *os.File) error {
			return reporter.WriteJSON(f, sum)
		})
	}

	// Failure summary (or verbose print)
	if !sum.Passed || *verbose {
		printFailures(tree, cl)
	}

	if sum.Passed {
		fmt.Println("PASS")
		os.Exit(0)
	}
	fmt.Println("FAIL")
	os.Exit(1)
}

func printFailures(tree *result.Suite, cl *classify.Classifier) {
	groups, err := flatten.Run(tree)
	if err != nil {
		return
	}
	for _, g := range groups {
		for i := range g.Cases {
			tc := &g.Cases[i]
			outcome, err := cl.Classify(tc)
			if err != nil || (outcome != classify.AssertionFailure && outcome != classify.UnexpectedError) {
				continue
			}
			qualified := tc.Name
			if len(tc.Path) > 0 {
				qualified = strings.Join(tc.Path, " > ") + " > " + tc.Name
			}
			fmt.Fprintf(os.Stderr, "\nFAILED (%s): %s / %s\n", outcome, g.Namespace, qualified)
			if tc.Message != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", tc.Message)
			}
			if tc.Expected != "" || tc.Actual != "" {
				fmt.Fprintf(os.Stderr, "  expected: %s\n  actual:   %s\n", tc.Expected, tc.Actual)
			}
			if tc.Fault != nil {
				fmt.Fprintf(os.Stderr, "  fault: %s: %s\n", tc.Fault.Type, tc.Fault.Message)
			}
		}
	}
}

// ---- helpers ----

func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", a...)
	os.Exit(2)
}

func writeOrDie(path string, fn func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		fail("create %s: %v", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		fail("write %s: %v", path, err)
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
