package trials

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/stencilbench/internal/fsutil"
	"github.com/banshee-data/stencilbench/internal/monitoring"
	"github.com/banshee-data/stencilbench/internal/security"
)

// ErrUnrecognizedName is returned in strict mode for result files whose
// name does not carry a core configuration and process count.
var ErrUnrecognizedName = errors.New("unrecognized result file name")

// Options configures an Aggregator.
type Options struct {
	// SourceDirs are the trial directories. The first one provides the file
	// list and the lines copied into the rewritten output.
	SourceDirs []string
	// DestDir receives the rewritten files under the same relative paths.
	DestDir string
	// MetricLine is the 0-based line holding the measured row.
	MetricLine int
	// StrictNames rejects files whose names do not parse instead of
	// summarising them under the "unknown" identity.
	StrictNames bool
	// Workers bounds concurrent file merges. Zero means runtime.NumCPU().
	Workers int
}

// DefaultOptions returns Options with the standard metric line and no
// directories set.
func DefaultOptions() Options {
	return Options{MetricLine: DefaultMetricLine}
}

// Failure records a file that could not be merged.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// BatchResult collects the outcome of Run.
type BatchResult struct {
	// Records are sorted with SortRecords.
	Records  []SummaryRecord
	Failures []Failure
}

// Aggregator merges result files across trial directories.
type Aggregator struct {
	fs   fsutil.FileSystem
	opts Options
}

// NewAggregator validates opts and returns an Aggregator reading and
// writing through fsys.
func NewAggregator(fsys fsutil.FileSystem, opts Options) (*Aggregator, error) {
	if fsys == nil {
		return nil, errors.New("nil filesystem")
	}
	if len(opts.SourceDirs) == 0 {
		return nil, errors.New("at least one source directory is required")
	}
	if opts.DestDir == "" {
		return nil, errors.New("destination directory is required")
	}
	if opts.MetricLine < 0 {
		return nil, fmt.Errorf("metric line must be >= 0, got %d", opts.MetricLine)
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("workers must be >= 0, got %d", opts.Workers)
	}
	dest := filepath.Clean(opts.DestDir)
	for _, src := range opts.SourceDirs {
		if src == "" {
			return nil, errors.New("empty source directory")
		}
		if filepath.Clean(src) == dest {
			return nil, fmt.Errorf("destination %q is also a source directory", opts.DestDir)
		}
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	opts.SourceDirs = append([]string(nil), opts.SourceDirs...)
	return &Aggregator{fs: fsys, opts: opts}, nil
}

// ProcessFile merges the file at rel (relative to every source directory)
// and writes the rewritten copy under the destination directory. Nothing
// is written when any trial cannot be read or the rows do not line up.
func (a *Aggregator) ProcessFile(rel string) (SummaryRecord, error) {
	id := IdentityFromPath(rel)
	if a.opts.StrictNames && !id.Recognized {
		return SummaryRecord{}, fmt.Errorf("%w: %s", ErrUnrecognizedName, rel)
	}

	var first []string
	rows := make([][]float64, 0, len(a.opts.SourceDirs))
	for i, src := range a.opts.SourceDirs {
		lines, row, err := a.readTrial(src, rel)
		if err != nil {
			return SummaryRecord{}, err
		}
		if i == 0 {
			first = lines
		}
		rows = append(rows, row)
	}

	st, err := Aggregate(rows)
	if err != nil {
		return SummaryRecord{}, fmt.Errorf("merging %s: %w", rel, err)
	}
	out, err := Rewrite(first, a.opts.MetricLine, FormatRow(st.Mean), FormatRow(st.RelStdPct))
	if err != nil {
		return SummaryRecord{}, fmt.Errorf("rewriting %s: %w", rel, err)
	}

	dest, err := security.JoinWithin(a.opts.DestDir, rel)
	if err != nil {
		return SummaryRecord{}, err
	}
	if err := a.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return SummaryRecord{}, fmt.Errorf("creating output directory for %s: %w", rel, err)
	}
	if err := fsutil.WriteFileAtomic(a.fs, dest, JoinLines(out), 0o644); err != nil {
		return SummaryRecord{}, fmt.Errorf("writing %s: %w", dest, err)
	}
	return NewSummaryRecord(id, st), nil
}

func (a *Aggregator) readTrial(src, rel string) ([]string, []float64, error) {
	p, err := security.JoinWithin(src, rel)
	if err != nil {
		return nil, nil, err
	}
	data, err := a.fs.ReadFile(p)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading %s: %w", ErrShapeMismatch, p, err)
	}
	lines := SplitLines(data)
	if a.opts.MetricLine >= len(lines) {
		return nil, nil, fmt.Errorf("%w: %s has %d lines, metric line is %d",
			ErrShapeMismatch, p, len(lines), a.opts.MetricLine)
	}
	row, err := ParseMetricLine(lines[a.opts.MetricLine])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s line %d: %w", ErrShapeMismatch, p, a.opts.MetricLine, err)
	}
	return lines, row, nil
}

// Files lists the relative paths Run would process: every regular file
// under the first source directory, minus anything inside the destination
// directory when that is nested in the source.
func (a *Aggregator) Files() ([]string, error) {
	root := a.opts.SourceDirs[0]
	files, err := a.fs.WalkFiles(root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	skip := ""
	if rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(a.opts.DestDir)); err == nil &&
		rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		skip = filepath.ToSlash(rel) + "/"
	}
	out := files[:0]
	for _, f := range files {
		if skip != "" && strings.HasPrefix(f, skip) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Run processes every file under the first source directory. Per-file
// failures are logged and returned in BatchResult.Failures; only a listing
// error or context cancellation aborts the batch.
func (a *Aggregator) Run(ctx context.Context) (*BatchResult, error) {
	files, err := a.Files()
	if err != nil {
		return nil, err
	}

	type slot struct {
		rec SummaryRecord
		err error
	}
	slots := make([]slot, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, rel := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := a.ProcessFile(rel)
			if err != nil {
				monitoring.Logf("Error processing file %s: %v", rel, err)
			}
			slots[i] = slot{rec: rec, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &BatchResult{}
	for i, s := range slots {
		if s.err != nil {
			res.Failures = append(res.Failures, Failure{Path: files[i], Err: s.err})
			continue
		}
		res.Records = append(res.Records, s.rec)
	}
	SortRecords(res.Records)
	monitoring.Logf("Aggregated %d files from %d trial directories (%d failed)",
		len(res.Records), len(a.opts.SourceDirs), len(res.Failures))
	return res, nil
}
