// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manuscripts reads manuscript records from JSON and YAML files.
package manuscripts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/referee-engine/pkg/types"
)

// IsRecordFile reports whether name has a manuscript record extension.
func IsRecordFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads one manuscript record. The format follows the file
// extension. A record without an ID takes the file's base name.
func Load(path string) (types.ManuscriptRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ManuscriptRecord{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var m types.ManuscriptRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return types.ManuscriptRecord{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.ID == "" {
		m.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// FileError pairs a file with the error that prevented loading it.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Err.Error() }

// LoadDir reads every record file directly inside dir, sorted by file
// name. A missing directory is an empty corpus. Files that fail to parse
// are returned in the second result and do not stop the scan.
func LoadDir(dir string) ([]types.ManuscriptRecord, []FileError, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		records []types.ManuscriptRecord
		failed  []FileError
	)
	for _, entry := range entries {
		if entry.IsDir() || !IsRecordFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		m, err := Load(path)
		if err != nil {
			failed = append(failed, FileError{Path: path, Err: err})
			continue
		}
		records = append(records, m)
	}
	return records, failed, nil
}

// Save writes m as indented JSON, creating parent directories.
func Save(path string, m types.ManuscriptRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manuscript: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
