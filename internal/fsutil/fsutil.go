package fsutil

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// ErrEscape is returned when a relative path would leave its root.
var ErrEscape = errors.New("path escape")

// HasTraversal reports whether p contains a parent-directory token.
// Any occurrence of ".." counts, including inside a file name.
func HasTraversal(p string) bool {
	return strings.Contains(p, "..")
}

// CleanRelPath takes a user path like "", "/a/b", "a\\b" and returns a
// slash-based relative path with no leading slash ("" means root).
func CleanRelPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(p, "/")
	if p == "" || p == "." {
		return ""
	}
	return p
}

// Resolve returns an absolute filesystem path under rootAbs for a relative
// path. rootAbs must already be absolute and clean. Traversal tokens are
// rejected before any joining happens.
func Resolve(rootAbs string, rel string) (string, error) {
	if HasTraversal(rel) || strings.Contains(rel, "\x00") {
		return "", ErrEscape
	}
	rel = CleanRelPath(rel)
	if rel == "" {
		return rootAbs, nil
	}
	abs := filepath.Clean(filepath.Join(rootAbs, filepath.FromSlash(rel)))
	if !Within(rootAbs, abs) {
		return "", ErrEscape
	}
	return abs, nil
}

// Within reports whether abs is rootAbs itself or a descendant of it.
func Within(rootAbs, abs string) bool {
	rootClean := filepath.Clean(rootAbs)
	if abs == rootClean {
		return true
	}
	prefix := rootClean
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(abs, prefix)
}

// HasExt reports whether the last element of p carries a file extension.
// Leading dots do not start an extension, so ".well-known" has none while
// "profile." has one.
func HasExt(p string) bool {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.Contains(strings.TrimLeft(base, "."), ".")
}
