package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/stencilbench/internal/fsutil"
	"github.com/banshee-data/stencilbench/internal/monitoring"
	"github.com/banshee-data/stencilbench/internal/resultsdb"
	"github.com/banshee-data/stencilbench/internal/trials"
	"github.com/banshee-data/stencilbench/internal/volume"
)

type verifyFlags struct {
	dims            string
	includeBoundary bool
	against         string
	tolerance       float64
}

func newVerifyCmd(g *globalOptions) *cobra.Command {
	f := &verifyFlags{}
	cmd := &cobra.Command{
		Use:   "verify <volume-file>",
		Short: "Count local extrema and global bounds of every volume in a flat file",
		Long: `Read a whitespace separated flat file where each column is one volume of
nx*ny*nz values (x fastest, then y, then z) and report, per volume, the strict
local minima and maxima and the global bounds. With --against the reports are
compared with the result file written by the stencil program.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, g, f, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.dims, "dims", "", "Volume dimensions as nx,ny,nz")
	flags.BoolVar(&f.includeBoundary, "include-boundary", false, "Also test boundary voxels against their in-bounds neighbours")
	flags.StringVar(&f.against, "against", "", "Stencil program result file to cross-check")
	flags.Float64Var(&f.tolerance, "tolerance", volume.DefaultTolerance, "Allowed difference between global bounds")
	_ = cmd.MarkFlagRequired("dims")
	return cmd
}

func runVerify(cmd *cobra.Command, g *globalOptions, f *verifyFlags, path string) error {
	nx, ny, nz, err := parseDims(f.dims)
	if err != nil {
		return err
	}
	opts := volume.ScanOptions{IncludeBoundary: g.cfg.GetIncludeBoundary()}
	if cmd.Flags().Changed("include-boundary") {
		opts.IncludeBoundary = f.includeBoundary
	}
	tol := g.cfg.GetTolerance()
	if cmd.Flags().Changed("tolerance") {
		tol = f.tolerance
	}

	reports, err := volume.VerifyFile(path, nx, ny, nz, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d volumes of %dx%dx%d\n", path, len(reports), nx, ny, nz)
	for i, r := range reports {
		fmt.Fprintf(out, "  volume %d: minima=%d maxima=%d min=%f max=%f\n", i, r.Minima, r.Maxima, r.Min, r.Max)
	}

	if err := recordVerification(g, path, nx, ny, nz, opts, reports); err != nil {
		return err
	}

	if f.against == "" {
		return nil
	}
	data, err := fsutil.OSFileSystem{}.ReadFile(f.against)
	if err != nil {
		return fmt.Errorf("failed to read program output: %w", err)
	}
	program, err := volume.ParseProgramReport(trials.SplitLines(data))
	if err != nil {
		return fmt.Errorf("%s: %w", f.against, err)
	}
	mismatches := volume.Compare(reports, program, tol)
	if len(mismatches) == 0 {
		fmt.Fprintf(out, "%s agrees with %s\n", f.against, path)
		return nil
	}
	for _, m := range mismatches {
		fmt.Fprintf(out, "  mismatch: %s\n", m)
	}
	return fmt.Errorf("%s disagrees with %s in %d places", f.against, path, len(mismatches))
}

func recordVerification(g *globalOptions, path string, nx, ny, nz int, opts volume.ScanOptions, reports []volume.Report) error {
	db, err := g.openDB()
	if err != nil || db == nil {
		return err
	}
	defer db.Close()

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	id, err := db.RecordVerification(resultsdb.Verification{
		Path:            path,
		NX:              nx,
		NY:              ny,
		NZ:              nz,
		IncludeBoundary: opts.IncludeBoundary,
		Reports:         reports,
	})
	if err != nil {
		return fmt.Errorf("failed to record verification: %w", err)
	}
	monitoring.Logf("Recorded verification %d for %s", id, path)
	return nil
}
