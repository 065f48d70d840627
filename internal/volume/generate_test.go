package volume

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"
)

func TestGeneratedName(t *testing.T) {
	if got, want := GeneratedName(64, 64, 32, 3), "data_64_64_32_3.txt"; got != want {
		t.Errorf("GeneratedName() = %q, want %q", got, want)
	}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, 4, 3, 2, 3, rand.New(rand.NewPCG(1, 2))); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	cols, err := ReadColumns(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadColumns: %v", err)
	}
	if cols.Rows() != 24 || cols.NumColumns() != 3 {
		t.Fatalf("generated %d x %d, want 24 x 3", cols.Rows(), cols.NumColumns())
	}
	for c := 0; c < cols.NumColumns(); c++ {
		for _, v := range cols.Column(c) {
			if v < -50 || v > 50 {
				t.Errorf("value %v outside [-50, 50]", v)
			}
		}
	}
	for _, field := range strings.Fields(buf.String()) {
		if dot := strings.IndexByte(field, '.'); dot < 0 || len(field)-dot-1 != 2 {
			t.Errorf("value %q does not have two decimals", field)
		}
	}
	if _, err := ScanColumns(cols, 4, 3, 2); err != nil {
		t.Errorf("generated file does not scan: %v", err)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	_ = Generate(&a, 2, 2, 2, 1, rand.New(rand.NewPCG(9, 9)))
	_ = Generate(&b, 2, 2, 2, 1, rand.New(rand.NewPCG(9, 9)))
	if a.String() != b.String() {
		t.Error("same seed produced different output")
	}
}

func TestGenerate_InvalidShape(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, 2, 0, 2, 1, rand.New(rand.NewPCG(1, 1))); err == nil {
		t.Error("expected error for zero dimension")
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written on error")
	}
}
