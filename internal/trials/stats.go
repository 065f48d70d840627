package trials

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrShapeMismatch reports trial rows that cannot be merged: rows of
// unequal length, no rows at all, or a trial file that is missing or
// unreadable.
var ErrShapeMismatch = errors.New("trial shape mismatch")

// Stats is the per-column result of merging trial rows.
type Stats struct {
	Mean []float64
	// RelStdPct is the population standard deviation divided by |mean|,
	// in percent. It is 0 when the mean is 0.
	RelStdPct []float64
	// Trials is the number of rows that were merged.
	Trials int
}

// Aggregate computes the column-wise mean and relative standard deviation
// of rows. Every row must have the same, non-zero length.
func Aggregate(rows [][]float64) (Stats, error) {
	if len(rows) == 0 {
		return Stats{}, fmt.Errorf("%w: no trial rows", ErrShapeMismatch)
	}
	k := len(rows[0])
	if k == 0 {
		return Stats{}, fmt.Errorf("%w: trial 0 has no values", ErrShapeMismatch)
	}
	for i, row := range rows[1:] {
		if len(row) != k {
			return Stats{}, fmt.Errorf("%w: trial %d has %d values, trial 0 has %d",
				ErrShapeMismatch, i+1, len(row), k)
		}
	}

	st := Stats{
		Mean:      make([]float64, k),
		RelStdPct: make([]float64, k),
		Trials:    len(rows),
	}
	col := make([]float64, len(rows))
	for c := 0; c < k; c++ {
		for r, row := range rows {
			col[r] = row[c]
		}
		lo, hi := floats.Min(col), floats.Max(col)
		if lo == hi {
			st.Mean[c] = lo
			continue
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		// Summation error can push the mean a ulp outside the data range.
		mean = math.Min(math.Max(mean, lo), hi)
		st.Mean[c] = mean
		if mean != 0 {
			st.RelStdPct[c] = std / math.Abs(mean) * 100
		}
	}
	return st, nil
}

// ParseMetricLine splits a whitespace-separated row of numbers.
func ParseMetricLine(line string) ([]float64, error) {
	fields := strings.Fields(line)
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// FormatRow renders values as space-joined fixed-point numbers with six
// decimals.
func FormatRow(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	return strings.Join(parts, " ")
}
