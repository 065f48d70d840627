package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/stencilbench/internal/trials"
)

// WriteSummaryTable writes the fixed-width summary of recs in the order
// given. The number of value columns is the widest record, at least three.
func WriteSummaryTable(w io.Writer, recs []trials.SummaryRecord) error {
	cols := 3
	for _, r := range recs {
		cols = max(cols, len(r.Display))
	}

	bw := bufio.NewWriter(w)
	header := fmt.Sprintf("%-8s  %-10s  %-15s", "Version", "Processes", "CoreConfig")
	for i := 0; i < cols; i++ {
		header += fmt.Sprintf("  %-16s", "Value"+strconv.Itoa(i+1))
	}
	fmt.Fprintln(bw, header)
	fmt.Fprintln(bw, strings.Repeat("-", len(header)))

	for _, r := range recs {
		vals := make([]string, len(r.Display))
		for i, d := range r.Display {
			vals[i] = fmt.Sprintf("%-16s", d)
		}
		fmt.Fprintf(bw, "%-8s  %-10d  %-15s  %s\n",
			r.Identity.Version, r.Identity.ProcessesOrSentinel(), r.Identity.CoreConfigLabel(),
			strings.Join(vals, "  "))
	}
	return bw.Flush()
}
