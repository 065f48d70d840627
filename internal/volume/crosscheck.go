package volume

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// DefaultTolerance absorbs the single-precision bounds printed by the
// stencil program.
const DefaultTolerance = 1e-3

var pairPattern = regexp.MustCompile(`\(\s*([^,()\s]+)\s*,\s*([^,()\s]+)\s*\)`)

// ParseProgramReport reads the per-timestep results written by the stencil
// program: line 0 holds "(minima, maxima)" pairs and line 1 holds
// "(min, max)" global bounds, one pair per volume.
func ParseProgramReport(lines []string) ([]Report, error) {
	if len(lines) < 2 {
		return nil, fmt.Errorf("program report has %d lines, need at least 2", len(lines))
	}
	counts := pairPattern.FindAllStringSubmatch(lines[0], -1)
	bounds := pairPattern.FindAllStringSubmatch(lines[1], -1)
	if len(counts) != len(bounds) {
		return nil, fmt.Errorf("program report has %d count pairs but %d bound pairs", len(counts), len(bounds))
	}
	out := make([]Report, len(counts))
	for i := range counts {
		var err error
		r := &out[i]
		if r.Minima, err = strconv.Atoi(counts[i][1]); err != nil {
			return nil, fmt.Errorf("volume %d minima: %w", i, err)
		}
		if r.Maxima, err = strconv.Atoi(counts[i][2]); err != nil {
			return nil, fmt.Errorf("volume %d maxima: %w", i, err)
		}
		if r.Min, err = strconv.ParseFloat(bounds[i][1], 64); err != nil {
			return nil, fmt.Errorf("volume %d min: %w", i, err)
		}
		if r.Max, err = strconv.ParseFloat(bounds[i][2], 64); err != nil {
			return nil, fmt.Errorf("volume %d max: %w", i, err)
		}
	}
	return out, nil
}

// Mismatch describes one disagreement between two sets of reports. Volume
// is -1 when the report counts differ.
type Mismatch struct {
	Volume   int
	Field    string
	Expected float64
	Actual   float64
}

func (m Mismatch) String() string {
	if m.Volume < 0 {
		return fmt.Sprintf("%s: expected %g, got %g", m.Field, m.Expected, m.Actual)
	}
	return fmt.Sprintf("volume %d %s: expected %g, got %g", m.Volume, m.Field, m.Expected, m.Actual)
}

// Compare lists the differences between expected and actual. Counts must
// match exactly; bounds may differ by at most tol.
func Compare(expected, actual []Report, tol float64) []Mismatch {
	var out []Mismatch
	if len(expected) != len(actual) {
		out = append(out, Mismatch{Volume: -1, Field: "volumes", Expected: float64(len(expected)), Actual: float64(len(actual))})
	}
	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		e, a := expected[i], actual[i]
		if e.Minima != a.Minima {
			out = append(out, Mismatch{i, "minima", float64(e.Minima), float64(a.Minima)})
		}
		if e.Maxima != a.Maxima {
			out = append(out, Mismatch{i, "maxima", float64(e.Maxima), float64(a.Maxima)})
		}
		if !(math.Abs(e.Min-a.Min) <= tol) {
			out = append(out, Mismatch{i, "min", e.Min, a.Min})
		}
		if !(math.Abs(e.Max-a.Max) <= tol) {
			out = append(out, Mismatch{i, "max", e.Max, a.Max})
		}
	}
	return out
}
