// Package trials merges repeated benchmark trials of the stencil program.
//
// Each trial source directory holds the same tree of result files, one per
// experiment (version directory / output_<px>_<py>_<pz>_<nc>_<np>_..._v<n>).
// Line 2 of every result file carries the measured timings (I/O, compute,
// total). The Aggregator reads that row from every trial source, computes
// the per-column mean and relative standard deviation, writes a rewritten
// copy of the first trial's file to the destination tree and returns a
// SummaryRecord keyed by the experiment Identity.
//
// The statistics (Aggregate), the line transform (Rewrite) and the identity
// parser (ParseFileName) are pure functions; only Aggregator touches the
// filesystem, through fsutil.FileSystem.
package trials
