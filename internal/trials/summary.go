package trials

import (
	"math"
	"sort"
	"strconv"
)

// SummaryRecord is the merged result of one experiment.
type SummaryRecord struct {
	Identity  Identity
	Mean      []float64
	RelStdPct []float64
	// Display holds "<mean> (<std>%)" per column, ready for the table.
	Display []string
	Trials  int
}

// NewSummaryRecord builds the record for id from merged statistics.
func NewSummaryRecord(id Identity, st Stats) SummaryRecord {
	rec := SummaryRecord{
		Identity:  id,
		Mean:      st.Mean,
		RelStdPct: st.RelStdPct,
		Display:   make([]string, len(st.Mean)),
		Trials:    st.Trials,
	}
	for i := range st.Mean {
		rec.Display[i] = FormatDisplay(st.Mean[i], st.RelStdPct[i])
	}
	return rec
}

// FormatDisplay renders mean with four decimals followed by the relative
// std rounded half-to-even to a whole percent, e.g. "1.2346 (4%)".
func FormatDisplay(mean, relStdPct float64) string {
	return strconv.FormatFloat(mean, 'f', 4, 64) +
		" (" + strconv.FormatFloat(math.RoundToEven(relStdPct), 'f', 0, 64) + "%)"
}

// AbsoluteErrors converts the relative std back to the units of the mean.
func (r SummaryRecord) AbsoluteErrors() []float64 {
	out := make([]float64, len(r.Mean))
	for i, m := range r.Mean {
		if i < len(r.RelStdPct) {
			out[i] = math.Abs(r.RelStdPct[i] / 100 * m)
		}
	}
	return out
}

// SortRecords orders records by core configuration, then process count,
// then version rank. Unrecognised identities sort after all recognised
// ones; remaining ties break on the version string and then the path.
func SortRecords(recs []SummaryRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return lessIdentity(recs[i].Identity, recs[j].Identity)
	})
}

func lessIdentity(a, b Identity) bool {
	if a.Recognized != b.Recognized {
		return a.Recognized
	}
	if a.Recognized {
		if a.File.CoreConfig != b.File.CoreConfig {
			return a.File.CoreConfig < b.File.CoreConfig
		}
		if a.File.Processes != b.File.Processes {
			return a.File.Processes < b.File.Processes
		}
	}
	ra, oka := VersionRank(a.Version)
	rb, okb := VersionRank(b.Version)
	if oka != okb {
		return oka
	}
	if oka && ra != rb {
		return ra < rb
	}
	if a.Version != b.Version {
		return a.Version < b.Version
	}
	return a.Path < b.Path
}
