// Package walk collects the regular files under a directory tree, the way
// rzip decides what belongs in an archive: it descends recursively,
// skips symlinks outright rather than following or archiving them, and
// resolves every kept file to its absolute path.
package walk

import (
	"os"
	"path/filepath"
)

// AbsolutePaths returns the absolute path of every regular file found by
// recursively walking dir. Symlinks — whether to files or directories —
// are skipped entirely; they are neither followed nor recorded.
func AbsolutePaths(dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		path := filepath.Join(absDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}

		if entry.IsDir() {
			sub, err := AbsolutePaths(path)
			if err != nil {
				return nil, err
			}
			paths = append(paths, sub...)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// RelativePaths returns the same files as AbsolutePaths, expressed
// relative to baseDir. A file whose absolute path cannot be made
// relative to baseDir is silently dropped, matching the lenient
// strip-prefix behavior this is grounded on.
func RelativePaths(dir, baseDir string) ([]string, error) {
	absPaths, err := AbsolutePaths(dir)
	if err != nil {
		return nil, err
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	var relPaths []string
	for _, p := range absPaths {
		rel, err := filepath.Rel(absBase, p)
		if err != nil {
			continue
		}
		relPaths = append(relPaths, rel)
	}

	return relPaths, nil
}
