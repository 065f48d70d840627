package trials

import (
	"fmt"
	"strings"
)

// DefaultMetricLine is the 0-based line holding the timing row.
const DefaultMetricLine = 2

// Rewrite returns a copy of lines with lines[metricLine] replaced by
// meanLine and stdLine appended. lines itself is not modified.
func Rewrite(lines []string, metricLine int, meanLine, stdLine string) ([]string, error) {
	if metricLine < 0 || metricLine >= len(lines) {
		return nil, fmt.Errorf("%w: metric line %d out of range (%d lines)",
			ErrShapeMismatch, metricLine, len(lines))
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines...)
	out[metricLine] = meanLine
	return append(out, stdLine), nil
}

// SplitLines splits file content into lines without their terminators. A
// trailing newline does not produce an empty final line. Any "\r" is kept
// so untouched lines round-trip byte for byte.
func SplitLines(data []byte) []string {
	s := string(data)
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// JoinLines joins lines with "\n" and terminates the last one.
func JoinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
