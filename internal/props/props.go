package props

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
)

// Pair is one <property> entry. Collected pairs are ordered so the
// rendered block is stable between runs.
type Pair struct {
	Name  string
	Value string
}

// Collect returns the fixed environment-metadata set attached to every
// suite: stable keys, values resolved once per run.
func Collect(runID, hostname string) []Pair {
	return []Pair{
		{Name: "run.id", Value: runID},
		{Name: "hostname", Value: hostname},
		{Name: "go.version", Value: runtime.Version()},
		{Name: "os.name", Value: runtime.GOOS},
		{Name: "os.arch", Value: runtime.GOARCH},
		{Name: "cpu.count", Value: strconv.Itoa(runtime.NumCPU())},
	}
}

// LoadJSONFiles merges extra property files (flat JSON objects) into
// pairs, later files winning, keys sorted for determinism. Non-string
// values are coerced the way env files are.
func LoadJSONFiles(paths []string) ([]Pair, error) {
	merged := map[string]string{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		for k, v := range m {
			switch x := v.(type) {
			case string:
				merged[k] = x
			default:
				merged[k] = fmt.Sprint(x) // coerce numbers/bools to string
			}
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Pair, 0, len(keys))
	for _, k := range keys {
		out = append(out, Pair{Name: k, Value: merged[k]})
	}
	return out, nil
}
