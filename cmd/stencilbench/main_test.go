package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stencilbench/internal/fsutil"
	"github.com/banshee-data/stencilbench/internal/monitoring"
	"github.com/banshee-data/stencilbench/internal/resultsdb"
	"github.com/banshee-data/stencilbench/internal/testutil"
	"github.com/banshee-data/stencilbench/internal/volume"
)

// runCLI executes a fresh command tree and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseDims(t *testing.T) {
	tests := []struct {
		in         string
		nx, ny, nz int
		wantErr    bool
	}{
		{in: "4,5,6", nx: 4, ny: 5, nz: 6},
		{in: "3x3x2", nx: 3, ny: 3, nz: 2},
		{in: "8X1X1", nx: 8, ny: 1, nz: 1},
		{in: "2, 2, 2", nx: 2, ny: 2, nz: 2},
		{in: "4,4", wantErr: true},
		{in: "4,4,4,4", wantErr: true},
		{in: "4,a,4", wantErr: true},
		{in: "4,0,4", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			nx, ny, nz, err := parseDims(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, [3]int{tc.nx, tc.ny, tc.nz}, [3]int{nx, ny, nz})
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "stencilbench "), out)
}

func TestAggregateCommand(t *testing.T) {
	tmp := t.TempDir()
	dirs := []string{filepath.Join(tmp, "run1"), filepath.Join(tmp, "run2"), filepath.Join(tmp, "run3")}
	dest := filepath.Join(tmp, "avg")
	dbPath := filepath.Join(tmp, "bench.db")
	rel := "v1/output_2_2_2_3_8__v1.txt"
	testutil.WriteTrials(t, fsutil.OSFileSystem{}, dirs, rel,
		[]float64{1, 2, 3}, []float64{2, 4, 5}, []float64{3, 6, 7})

	out, err := runCLI(t, "aggregate",
		"--source", strings.Join(dirs, ","),
		"--dest", dest,
		"--plots=false", "--html",
		"--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Merged 1 files")

	merged, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(merged), "2.000000 4.000000 5.000000\n40.824829 40.824829 32.659863\n"))

	summary, err := os.ReadFile(filepath.Join(dest, "summary.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "2_2_2_3")
	assert.Contains(t, string(summary), "2.0000 (41%)")

	_, err = os.Stat(filepath.Join(dest, "plots", "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dest, "plots", "2_2_2_3_line_plot.png"))
	assert.True(t, os.IsNotExist(err), "plots were disabled")

	db, err := resultsdb.Open(dbPath)
	require.NoError(t, err)
	batches, err := db.Batches(0)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Len(t, batches, 1)
	assert.Equal(t, 1, batches[0].FilesOK)
	assert.Equal(t, dirs, batches[0].SourceDirs)

	listing, err := runCLI(t, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, listing, batches[0].ID)

	table, err := runCLI(t, "history", "--db", dbPath, batches[0].ID)
	require.NoError(t, err)
	assert.Equal(t, string(summary), table)
}

func TestAggregateCommand_ConfigFile(t *testing.T) {
	tmp := t.TempDir()
	dirs := []string{filepath.Join(tmp, "a"), filepath.Join(tmp, "b")}
	dest := filepath.Join(tmp, "merged")
	testutil.WriteTrials(t, fsutil.OSFileSystem{}, dirs, "v2/output_1_1_1_1_4__v2.txt",
		[]float64{1, 1, 2}, []float64{3, 1, 4})

	cfgPath := filepath.Join(tmp, "run.yaml")
	cfg := "source_dirs: [" + dirs[0] + ", " + dirs[1] + "]\n" +
		"dest_dir: " + dest + "\n" +
		"summary_file: table.txt\n" +
		"plots: false\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err := runCLI(t, "aggregate", "--config", cfgPath)
	require.NoError(t, err)
	summary, err := os.ReadFile(filepath.Join(dest, "table.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "2.0000 (50%)")
	assert.Contains(t, string(summary), "1.0000 (0%)")
}

func TestAggregateCommand_RejectsDestOutsideAllowedDirs(t *testing.T) {
	_, err := runCLI(t, "aggregate", "--source", t.TempDir(), "--dest", "/proc/stencilbench")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid destination")
}

func TestVerifyCommand(t *testing.T) {
	tmp := t.TempDir()
	bowl := testutil.Grid(3, 3, 3, func(x, y, z int) float64 {
		return float64((x-1)*(x-1) + (y-1)*(y-1) + (z-1)*(z-1))
	})
	dome := make([]float64, len(bowl))
	for i, v := range bowl {
		dome[i] = 10 - v
	}
	data := filepath.Join(tmp, "data.txt")
	require.NoError(t, os.WriteFile(data, []byte(testutil.FlatFile(bowl, dome)), 0o644))

	t.Run("reports", func(t *testing.T) {
		out, err := runCLI(t, "verify", "--dims", "3,3,3", data)
		require.NoError(t, err)
		assert.Contains(t, out, "volume 0: minima=1 maxima=0 min=0.000000 max=3.000000")
		assert.Contains(t, out, "volume 1: minima=0 maxima=1 min=7.000000 max=10.000000")
	})

	t.Run("agrees with program output", func(t *testing.T) {
		program := filepath.Join(tmp, "output.txt")
		require.NoError(t, os.WriteFile(program,
			[]byte("(1, 0) (0, 1) \n(0.000000, 3.000000) (7.000000, 10.000000) \n0.1 0.2 0.3\n"), 0o644))
		out, err := runCLI(t, "verify", "--dims", "3x3x3", "--against", program, data)
		require.NoError(t, err)
		assert.Contains(t, out, "agrees with")
	})

	t.Run("disagrees with program output", func(t *testing.T) {
		program := filepath.Join(tmp, "bad.txt")
		require.NoError(t, os.WriteFile(program,
			[]byte("(2, 0) (0, 1) \n(0.000000, 3.000000) (7.000000, 10.500000) \n0.1 0.2 0.3\n"), 0o644))
		out, err := runCLI(t, "verify", "--dims", "3,3,3", "--against", program, data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 places")
		assert.Contains(t, out, "volume 0 minima: expected 1, got 2")
		assert.Contains(t, out, "volume 1 max: expected 10, got 10.5")
	})

	t.Run("wrong dimensions", func(t *testing.T) {
		_, err := runCLI(t, "verify", "--dims", "4,3,3", data)
		require.Error(t, err)
		assert.ErrorIs(t, err, volume.ErrDimensionMismatch)
	})

	t.Run("records verification", func(t *testing.T) {
		dbPath := filepath.Join(tmp, "verify.db")
		_, err := runCLI(t, "verify", "--dims", "3,3,3", "--include-boundary", "--db", dbPath, data)
		require.NoError(t, err)

		db, err := resultsdb.Open(dbPath)
		require.NoError(t, err)
		defer db.Close()
		abs, err := filepath.Abs(data)
		require.NoError(t, err)
		got, err := db.Verifications(abs)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].IncludeBoundary)
		assert.Len(t, got[0].Reports, 2)
	})
}

func TestGenVolumeCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "gen-volume", "--dims", "2,3,4", "-m", "3", "--seed", "7", "-o", dir)
	require.NoError(t, err)

	p := filepath.Join(dir, "data_2_3_4_3.txt")
	assert.Equal(t, p+"\n", out)

	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	cols, err := volume.ReadColumns(f)
	require.NoError(t, err)
	assert.Equal(t, 3, cols.NumColumns())
	assert.Equal(t, 24, cols.Rows())
	for c := 0; c < cols.NumColumns(); c++ {
		for _, v := range cols.Column(c) {
			assert.GreaterOrEqual(t, v, -50.0)
			assert.LessOrEqual(t, v, 50.0)
		}
	}

	// The same seed reproduces the same file.
	first, err := os.ReadFile(p)
	require.NoError(t, err)
	_, err = runCLI(t, "gen-volume", "--dims", "2,3,4", "-m", "3", "--seed", "7", "-o", dir)
	require.NoError(t, err)
	second, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMigrateCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schema.db")

	out, err := runCLI(t, "migrate", "status", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "schema version 0 (clean)\n", out)

	out, err = runCLI(t, "migrate", "up", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "schema version 2 (clean)\n", out)

	out, err = runCLI(t, "migrate", "down", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "schema version 1 (clean)\n", out)

	out, err = runCLI(t, "migrate", "force", "2", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "schema version 2 (clean)\n", out)
}

func TestCommandsRequireDatabase(t *testing.T) {
	for _, args := range [][]string{{"history"}, {"migrate", "status"}} {
		_, err := runCLI(t, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "no results database configured")
	}
}
