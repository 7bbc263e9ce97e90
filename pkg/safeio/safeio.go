/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package safeio holds file helpers that keep reads and writes inside a base
// directory and never leave a half-written file behind.
package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a path resolves outside its base directory.
var ErrOutsideBase = errors.New("path is outside base directory")

// ContainedPath joins rel onto baseDir and rejects results that escape it.
func ContainedPath(baseDir, rel string) (string, error) {
	if rel == "" {
		return "", errors.New("empty path")
	}
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	p := rel
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseAbs, p)
	}
	p = filepath.Clean(p)
	if err := checkContained(baseAbs, p); err != nil {
		return "", err
	}
	return p, nil
}

func checkContained(baseAbs, pathAbs string) error {
	r, err := filepath.Rel(baseAbs, pathAbs)
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrOutsideBase, pathAbs)
	}
	return nil
}

// ReadFileContained reads a file only if it is contained within baseDir.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	baseDirAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.New("failed to resolve base directory")
	}
	filePathAbs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, errors.New("failed to resolve file path")
	}
	if err := checkContained(baseDirAbs, filePathAbs); err != nil {
		return nil, err
	}
	// #nosec G304 -- filePathAbs has been verified to be contained within baseDirAbs
	return os.ReadFile(filePathAbs)
}

// ReadFileIfExists is ReadFileContained that reports a missing file as
// (nil, false, nil).
func ReadFileIfExists(baseDir, filePath string) ([]byte, bool, error) {
	data, err := ReadFileContained(baseDir, filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// WriteFileAtomic replaces path with data via a temp file in the same
// directory and a rename. An existing file's mode is kept; new files get 0644.
func WriteFileAtomic(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		if !st.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", path)
		}
		if m := st.Mode() & 0o777; m != 0 {
			mode = m
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
