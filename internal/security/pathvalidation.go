// Package security keeps generated artefacts (rewritten trial files, plots,
// reports) inside the directories the operator asked for.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JoinWithin joins a slash-separated relative path onto base and rejects
// results that would land outside base. It is purely lexical so it also works
// against in-memory filesystems.
func JoinWithin(base, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty relative path")
	}
	local := filepath.FromSlash(rel)
	if filepath.IsAbs(local) || filepath.VolumeName(local) != "" {
		return "", fmt.Errorf("path %q must be relative to %s", rel, base)
	}
	cleaned := filepath.Clean(local)
	if escapes(cleaned) {
		return "", fmt.Errorf("path traversal detected: %s attempts to escape %s", rel, base)
	}
	return filepath.Join(base, cleaned), nil
}

// ValidateOutputPath checks that filePath resolves inside one of allowedDirs.
// Symlinks in the existing part of the path are resolved first, so a link
// inside an allowed directory cannot redirect output elsewhere.
func ValidateOutputPath(filePath string, allowedDirs ...string) error {
	if len(allowedDirs) == 0 {
		return fmt.Errorf("no allowed directories specified")
	}
	target, err := canonical(filePath)
	if err != nil {
		return err
	}
	for _, dir := range allowedDirs {
		root, err := canonical(dir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, target)
		if err != nil || escapes(rel) || filepath.IsAbs(rel) {
			continue
		}
		return nil
	}
	return fmt.Errorf("path %s must be within one of %v", filePath, allowedDirs)
}

// DefaultOutputDirs is the working directory plus the system temp directory,
// with any extra directories appended.
func DefaultOutputDirs(extra ...string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	dirs := []string{cwd, os.TempDir()}
	for _, d := range extra {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs, nil
}

// canonical returns the absolute path with symlinks resolved for the longest
// existing prefix.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	var suffix []string
	for cur := abs; ; {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(append([]string{resolved}, suffix...)...), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		suffix = append([]string{filepath.Base(cur)}, suffix...)
		cur = parent
	}
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SanitizeFilename makes a safe filename component from an arbitrary label
// such as a core configuration. Characters outside [A-Za-z0-9._-] become a
// single underscore, leading/trailing dots and underscores are trimmed and
// the result is capped at 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '_':
			// Keep literal underscores; core configurations are 1_2_3_4.
			b.WriteRune(r)
			lastUnderscore = true
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
