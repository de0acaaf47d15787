// Package discovery finds the source files a marker scan should visit.
package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// reservedDir is always skipped; it holds rescribe's own config and database.
const reservedDir = ".rescribe"

// compiledPattern holds both the pattern string and compiled glob. root is
// set for "**/" patterns so they also match files at the top level.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	root    glob.Glob
}

// FileDiscovery walks a directory tree applying include and ignore globs.
// Patterns are matched against slash-separated paths relative to the root.
type FileDiscovery struct {
	rootDir        string
	includePattern []compiledPattern
	ignorePattern  []compiledPattern
}

// New compiles the patterns. An invalid pattern is an error.
func New(rootDir string, include, ignore []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{rootDir: rootDir}

	var err error
	if fd.includePattern, err = compile(include); err != nil {
		return nil, err
	}
	if fd.ignorePattern, err = compile(ignore); err != nil {
		return nil, err
	}
	return fd, nil
}

func compile(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.root = rg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// Discover returns the matching files in lexical order, as paths joined
// onto the root.
func (fd *FileDiscovery) Discover() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if fd.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.shouldIgnore(relPath) {
			return nil
		}
		if matchesAny(relPath, fd.includePattern) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", fd.rootDir, err)
	}

	sort.Strings(files)
	return files, nil
}

// shouldIgnore checks a file or directory path against the ignore patterns.
// "vendor" is ignored by "vendor/**" so the walk never descends into it.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if relPath == reservedDir || strings.HasPrefix(relPath, reservedDir+"/") {
		return true
	}
	if matchesAny(relPath, fd.ignorePattern) {
		return true
	}
	return matchesAny(relPath+"/**", fd.ignorePattern)
}

func matchesAny(path string, patterns []compiledPattern) bool {
	topLevel := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if topLevel && cp.root != nil && cp.root.Match(path) {
			return true
		}
	}
	return false
}
