// Package testutil provides shared test fixtures for trial result files and
// flat volume files.
package testutil

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/banshee-data/stencilbench/internal/fsutil"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TrialFile renders a result file in the stencil program's layout: the
// extrema counts line, the global bounds line, then the timing row.
func TrialFile(timings ...float64) string {
	var b strings.Builder
	b.WriteString("(1, 2) (0, 1) \n")
	b.WriteString("(-49.990000, 49.980000) (-49.970000, 49.990000) \n")
	b.WriteString(Row(timings...))
	b.WriteByte('\n')
	return b.String()
}

// Row joins values with single spaces using the shortest representation.
func Row(vals ...float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// WriteTrials writes one result file per source directory at rel, taking
// the timing rows in order.
func WriteTrials(t testing.TB, fsys fsutil.FileSystem, dirs []string, rel string, rows ...[]float64) {
	t.Helper()
	if len(dirs) != len(rows) {
		t.Fatalf("WriteTrials: %d dirs but %d rows", len(dirs), len(rows))
	}
	for i, dir := range dirs {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		AssertNoError(t, fsys.MkdirAll(filepath.Dir(p), 0o755))
		AssertNoError(t, fsys.WriteFile(p, []byte(TrialFile(rows[i]...)), 0o644))
	}
}

// Grid fills an nx*ny*nz field in file order (x fastest, z slowest).
func Grid(nx, ny, nz int, f func(x, y, z int) float64) []float64 {
	out := make([]float64, 0, nx*ny*nz)
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				out = append(out, f(x, y, z))
			}
		}
	}
	return out
}

// FlatFile renders columns side by side, one row per voxel. All columns
// must have the same length.
func FlatFile(cols ...[]float64) string {
	if len(cols) == 0 {
		return ""
	}
	var b strings.Builder
	row := make([]float64, len(cols))
	for i := range cols[0] {
		for c := range cols {
			row[c] = cols[c][i]
		}
		b.WriteString(Row(row...))
		b.WriteByte('\n')
	}
	return b.String()
}
