package utils

import (
	"path/filepath"
	"strings"
)

// DefaultExcludedDirs are the directory names skipped by every traversal
// unless the configuration overrides them.
var DefaultExcludedDirs = []string{
	".git",
	"node_modules",
	"__pycache__",
	".venv",
	"venv",
	"transfonter",
}

// ExcludeSet is the set of path components that disqualify a path.
type ExcludeSet map[string]struct{}

// NewExcludeSet builds an ExcludeSet from directory names. Blank names are ignored.
func NewExcludeSet(names []string) ExcludeSet {
	set := make(ExcludeSet, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// Contains reports whether a single path component is excluded.
func (s ExcludeSet) Contains(component string) bool {
	_, ok := s[component]
	return ok
}

// IsExcluded reports whether any component of relativePath is in the set.
// Both slash and native separators are accepted.
func (s ExcludeSet) IsExcluded(relativePath string) bool {
	if len(s) == 0 {
		return false
	}
	normalized := filepath.ToSlash(relativePath)
	for _, part := range strings.Split(normalized, "/") {
		if s.Contains(part) {
			return true
		}
	}
	return false
}
