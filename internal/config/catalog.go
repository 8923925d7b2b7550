// Package config implements the workspace config file (spec §6.2):
// `tombi.toml`'s strict, unknown-key-rejecting decode, the `[[schemas]]`
// catalog, and file-pattern matching for catalog/association lookups.
package config

import "strings"

// CatalogMatcher matches a file path against a glob pattern extended with
// `**` (matches any number of path segments), grounded on
// tombi-file-search/src/lib.rs and tombi-glob/src/file_search.rs
// (SPEC_FULL.md §D.5) rather than Go's stdlib `path.Match`, which has no
// `**` support and rejects patterns containing `/` inside a single
// segment class.
type CatalogMatcher struct {
	segments []string
}

// NewCatalogMatcher compiles pattern (e.g. "**/pyproject.toml",
// "tombi.toml", "config/*.toml") into a CatalogMatcher.
func NewCatalogMatcher(pattern string) CatalogMatcher {
	return CatalogMatcher{segments: strings.Split(pattern, "/")}
}

// Match reports whether path (forward-slash separated, relative to the
// workspace root) satisfies the pattern.
func (m CatalogMatcher) Match(path string) bool {
	return matchSegments(m.segments, strings.Split(path, "/"))
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	head := pattern[0]
	if head == "**" {
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(path); i++ {
			if matchSegments(pattern[1:], path[i:]) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 {
		return false
	}
	if !matchSegment(head, path[0]) {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}

// matchSegment matches one path segment against a pattern segment
// supporting `*` (any run of characters) and `?` (any single character).
func matchSegment(pattern, name string) bool {
	return matchGlob([]rune(pattern), []rune(name))
}

func matchGlob(pattern, name []rune) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	switch pattern[0] {
	case '*':
		if matchGlob(pattern[1:], name) {
			return true
		}
		for i := 0; i < len(name); i++ {
			if matchGlob(pattern[1:], name[i+1:]) {
				return true
			}
		}
		return false
	case '?':
		if len(name) == 0 {
			return false
		}
		return matchGlob(pattern[1:], name[1:])
	default:
		if len(name) == 0 || name[0] != pattern[0] {
			return false
		}
		return matchGlob(pattern[1:], name[1:])
	}
}
