// Command stencilbench merges repeated benchmark trials, renders scaling
// reports and verifies the extrema computed by the stencil program.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/banshee-data/stencilbench/internal/config"
	"github.com/banshee-data/stencilbench/internal/monitoring"
	"github.com/banshee-data/stencilbench/internal/resultsdb"
	"github.com/banshee-data/stencilbench/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags and the state they load.
type globalOptions struct {
	verbose    bool
	configPath string
	dbPath     string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:           "stencilbench",
		Short:         "Aggregate stencil benchmark trials and verify extrema reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVarP(&g.configPath, "config", "c", "", "Path to a YAML or JSON configuration file")
	flags.StringVar(&g.dbPath, "db", "", "SQLite results database (overrides the database key)")

	root.AddCommand(
		newAggregateCmd(g),
		newVerifyCmd(g),
		newGenVolumeCmd(g),
		newHistoryCmd(g),
		newMigrateCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
			},
		},
	)
	return root
}

func (g *globalOptions) setup() error {
	logger, err := monitoring.NewLogger(g.verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	g.logger = logger
	monitoring.UseZap(logger)

	g.cfg = &config.Config{}
	if g.configPath != "" {
		if g.cfg, err = config.Load(g.configPath); err != nil {
			return err
		}
		monitoring.Logf("Loaded configuration from %s", g.configPath)
	}
	return nil
}

func (g *globalOptions) database() string {
	if g.dbPath != "" {
		return g.dbPath
	}
	return g.cfg.GetDatabase()
}

// openDB opens the results database, or returns nil when none is configured.
func (g *globalOptions) openDB() (*resultsdb.DB, error) {
	path := g.database()
	if path == "" {
		return nil, nil
	}
	db, err := resultsdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database %s: %w", path, err)
	}
	return db, nil
}

func (g *globalOptions) requireDB() (*resultsdb.DB, error) {
	db, err := g.openDB()
	if err == nil && db == nil {
		err = fmt.Errorf("no results database configured; pass --db or set database in the config file")
	}
	return db, err
}

// parseDims reads "nx,ny,nz" (or "nxXnyXnz") into three positive sizes.
func parseDims(s string) (nx, ny, nz int, err error) {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ',' || r == 'x' || r == ' '
	})
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("dimensions %q: want nx,ny,nz", s)
	}
	var dims [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("dimensions %q: %w", s, err)
		}
		if n <= 0 {
			return 0, 0, 0, fmt.Errorf("dimensions %q: sizes must be positive", s)
		}
		dims[i] = n
	}
	return dims[0], dims[1], dims[2], nil
}
