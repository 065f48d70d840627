package trials

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewrite(t *testing.T) {
	orig := []string{"(1, 2) ", "(-1.0, 1.0) ", "1 2 3", "trailer"}
	got, err := Rewrite(orig, 2, "2.000000 4.000000 5.000000", "40.824829 40.824829 32.659863")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	want := []string{
		"(1, 2) ",
		"(-1.0, 1.0) ",
		"2.000000 4.000000 5.000000",
		"trailer",
		"40.824829 40.824829 32.659863",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rewrite() mismatch (-want +got):\n%s", diff)
	}
	if orig[2] != "1 2 3" {
		t.Errorf("input slice was modified: %q", orig[2])
	}
}

func TestRewrite_OutOfRange(t *testing.T) {
	for _, line := range []int{-1, 2, 5} {
		if _, err := Rewrite([]string{"a", "b"}, line, "m", "s"); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("Rewrite(line=%d) error = %v, want ErrShapeMismatch", line, err)
		}
	}
}

func TestSplitJoinLines(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		lines []string
		out   string
	}{
		{"empty", "", nil, ""},
		{"terminated", "a\nb\n", []string{"a", "b"}, "a\nb\n"},
		{"unterminated", "a\nb", []string{"a", "b"}, "a\nb\n"},
		{"blank lines kept", "a\n\nc\n", []string{"a", "", "c"}, "a\n\nc\n"},
		{"crlf kept", "a\r\nb\r\n", []string{"a\r", "b\r"}, "a\r\nb\r\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lines := SplitLines([]byte(tc.in))
			if diff := cmp.Diff(tc.lines, lines); diff != "" {
				t.Errorf("SplitLines() mismatch (-want +got):\n%s", diff)
			}
			if got := string(JoinLines(lines)); got != tc.out {
				t.Errorf("JoinLines() = %q, want %q", got, tc.out)
			}
		})
	}
}
