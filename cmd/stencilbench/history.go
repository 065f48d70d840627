package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/banshee-data/stencilbench/internal/report"
)

func newHistoryCmd(g *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [batch-id]",
		Short: "List recorded aggregation batches or print one batch's summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := g.requireDB()
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				recs, err := db.BatchSummaries(args[0])
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					return fmt.Errorf("batch %s has no summary records", args[0])
				}
				return report.WriteSummaryTable(out, recs)
			}

			batches, err := db.Batches(limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BATCH\tCREATED\tOK\tFAILED\tSOURCES\tDEST")
			for _, b := range batches {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
					b.ID, b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					b.FilesOK, b.Failed, strings.Join(b.SourceDirs, ","), b.DestDir)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum batches to list (0 = all)")
	return cmd
}
