package main

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/stencilbench/internal/fsutil"
	"github.com/banshee-data/stencilbench/internal/monitoring"
	"github.com/banshee-data/stencilbench/internal/security"
	"github.com/banshee-data/stencilbench/internal/volume"
)

type genVolumeFlags struct {
	dims    string
	columns int
	seed    uint64
	outDir  string
}

func newGenVolumeCmd(g *globalOptions) *cobra.Command {
	f := &genVolumeFlags{}
	cmd := &cobra.Command{
		Use:   "gen-volume",
		Short: "Write a random flat volume file for testing the stencil program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenVolume(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.dims, "dims", "", "Volume dimensions as nx,ny,nz")
	flags.IntVarP(&f.columns, "columns", "m", 1, "Number of volumes (columns) to generate")
	flags.Uint64Var(&f.seed, "seed", 0, "Random seed (0 picks one from the clock)")
	flags.StringVarP(&f.outDir, "out", "o", ".", "Output directory")
	_ = cmd.MarkFlagRequired("dims")
	return cmd
}

func runGenVolume(cmd *cobra.Command, f *genVolumeFlags) error {
	nx, ny, nz, err := parseDims(f.dims)
	if err != nil {
		return err
	}
	allowed, err := security.DefaultOutputDirs()
	if err != nil {
		return err
	}
	if err := security.ValidateOutputPath(f.outDir, allowed...); err != nil {
		return fmt.Errorf("invalid output directory: %w", err)
	}

	seed := f.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var buf bytes.Buffer
	if err := volume.Generate(&buf, nx, ny, nz, f.columns, rng); err != nil {
		return err
	}

	fsys := fsutil.OSFileSystem{}
	if err := fsys.MkdirAll(f.outDir, 0o755); err != nil {
		return err
	}
	p := filepath.Join(f.outDir, volume.GeneratedName(nx, ny, nz, f.columns))
	if err := fsutil.WriteFileAtomic(fsys, p, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	monitoring.Logf("Generated %s with seed %d", p, seed)
	fmt.Fprintln(cmd.OutOrStdout(), p)
	return nil
}
