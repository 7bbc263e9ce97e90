/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/fulmenhq/gig/pkg/logger"
	"github.com/spf13/viper"
)

// Source is one layer of file configuration
type Source interface {
	// Read returns the raw document; ok is false when the source is absent.
	Read() (data []byte, ok bool, err error)
	// Priority orders layers; higher wins.
	Priority() int
	Name() string
}

// FileSource reads an optional config file from disk
type FileSource struct {
	path     string
	priority int
}

func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority}
}

func (s *FileSource) Read() ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *FileSource) Priority() int { return s.priority }

func (s *FileSource) Name() string { return "file:" + s.path }

// mergeSources validates each present source against the schema and merges
// them into v in ascending priority.
func mergeSources(v *viper.Viper, sources []Source) ([]string, error) {
	sorted := append([]Source(nil), sources...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})

	var used []string
	for _, src := range sorted {
		data, ok, err := src.Read()
		if err != nil {
			return used, fmt.Errorf("failed to read config from %s: %w", src.Name(), err)
		}
		if !ok {
			continue
		}
		if err := ValidateConfigBytes(data); err != nil {
			return used, fmt.Errorf("%s: %w", src.Name(), err)
		}
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			return used, fmt.Errorf("failed to merge config from %s: %w", src.Name(), err)
		}
		logger.Debug("Loaded config layer", logger.String("source", src.Name()))
		used = append(used, src.Name())
	}
	return used, nil
}
