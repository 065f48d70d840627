package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJoinWithin(t *testing.T) {
	base := filepath.Join("results_avg")
	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr bool
	}{
		{"simple", "v1/output.txt", filepath.Join(base, "v1", "output.txt"), false},
		{"dot segments collapse", "v1/./x/../output.txt", filepath.Join(base, "v1", "output.txt"), false},
		{"escape", "../secret.txt", "", true},
		{"escape after clean", "v1/../../secret.txt", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"empty", "", "", true},
		{"bare parent", "..", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinWithin(base, tt.rel)
			if (err != nil) != tt.wantErr {
				t.Fatalf("JoinWithin(%q) error = %v, wantErr %v", tt.rel, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("JoinWithin(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tmpDir := t.TempDir()

	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	for _, d := range []string{safeDir, unsafeDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}
	symlinkPath := filepath.Join(safeDir, "evil-symlink")
	if err := os.Symlink(unsafeDir, symlinkPath); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		allowed   []string
		wantError bool
	}{
		{"file in safe dir", filepath.Join(safeDir, "report.pdf"), []string{safeDir}, false},
		{"nested new dir", filepath.Join(safeDir, "plots", "x", "index.html"), []string{safeDir}, false},
		{"traversal", filepath.Join(safeDir, "..", "unsafe", "x.pdf"), []string{safeDir}, true},
		{"symlink escape", filepath.Join(symlinkPath, "x.pdf"), []string{safeDir}, true},
		{"second allowed dir", filepath.Join(unsafeDir, "x.pdf"), []string{safeDir, unsafeDir}, false},
		{"no allowed dirs", filepath.Join(safeDir, "x.pdf"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.filePath, tt.allowed...)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateOutputPath() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestDefaultOutputDirs(t *testing.T) {
	dirs, err := DefaultOutputDirs("results_avg", "")
	if err != nil {
		t.Fatalf("DefaultOutputDirs failed: %v", err)
	}
	if len(dirs) != 3 {
		t.Fatalf("expected cwd, temp and one extra dir, got %v", dirs)
	}
	if dirs[1] != os.TempDir() || dirs[2] != "results_avg" {
		t.Errorf("unexpected dirs %v", dirs)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1_2_3_4", "1_2_3_4"},
		{"unknown", "unknown"},
		{"", "unknown"},
		{"a/b c", "a_b_c"},
		{"..hidden..", "hidden"},
		{"x$$$y", "x_y"},
		{"___", "unknown"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
