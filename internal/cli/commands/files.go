package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// discoverTOMLFiles resolves patterns (file paths, directories, or glob
// patterns) to a deduplicated list of .toml files rooted at the current
// working directory. An empty patterns list walks the whole cwd. Every
// resolved path must stay within the cwd.
func discoverTOMLFiles(patterns []string) ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	var files []string
	for _, pattern := range patterns {
		absPattern, err := filepath.Abs(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", pattern, err)
		}

		relPath, err := filepath.Rel(cwd, absPattern)
		if err != nil || strings.HasPrefix(relPath, "..") {
			return nil, fmt.Errorf("path %s is outside working directory", pattern)
		}

		info, statErr := os.Stat(absPattern)
		if statErr == nil && info.IsDir() {
			err := filepath.Walk(absPattern, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && (strings.HasPrefix(info.Name(), ".") || info.Name() == "node_modules") {
					return filepath.SkipDir
				}
				if !info.IsDir() && strings.HasSuffix(path, ".toml") {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		matches, err := filepath.Glob(absPattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 && statErr == nil {
			matches = []string{absPattern}
		}
		for _, match := range matches {
			absMatch, err := filepath.Abs(match)
			if err != nil {
				continue
			}
			relMatch, err := filepath.Rel(cwd, absMatch)
			if err != nil || strings.HasPrefix(relMatch, "..") {
				continue
			}
			if strings.HasSuffix(match, ".toml") {
				files = append(files, match)
			}
		}
	}

	seen := make(map[string]bool)
	unique := make([]string, 0, len(files))
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}
	return unique, nil
}
