// Package security guards user-supplied paths and file names.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePathWithinDirectory returns an error unless path resolves inside
// root. Symlinks are followed for the longest existing prefix of path, so a
// directory that does not exist yet is still checked through its parents.
func ValidatePathWithinDirectory(path, root string) error {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root directory: %w", err)
	}
	canonicalRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root directory symlinks: %w", err)
	}

	rel, err := filepath.Rel(canonicalRoot, canonicalize(absPath))
	if err != nil {
		return fmt.Errorf("path is outside %s: %w", root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path traversal detected: %s escapes %s", path, root)
	}
	return nil
}

// canonicalize resolves symlinks in the deepest existing ancestor of p and
// re-attaches the missing tail.
func canonicalize(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			tail, _ := filepath.Rel(dir, p)
			return filepath.Join(resolved, tail)
		}
		if filepath.Dir(dir) == dir {
			return p
		}
	}
}

const maxFilenameLen = 128

// SanitizeFilename keeps ASCII letters, digits, dot, underscore and dash and
// collapses every other run of characters into one underscore. Leading and
// trailing dots or underscores are trimmed; an empty result becomes
// "unknown".
func SanitizeFilename(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if b.Len() >= maxFilenameLen {
			break
		}
		if isFilenameRune(r) {
			b.WriteRune(r)
			pending = false
			continue
		}
		if !pending {
			b.WriteByte('_')
			pending = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

func isFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}
