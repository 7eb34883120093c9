// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pdiddy/referee-engine/pkg/types"
)

// ReportPath returns <reports_dir>/<JOURNAL>/<manuscript>.json.
func (p *Pipeline) ReportPath(journal, manuscriptID string) string {
	journal = strings.ToUpper(strings.TrimSpace(journal))
	if journal == "" {
		journal = "UNKNOWN"
	}
	return filepath.Join(p.cfg.Pipeline.ReportsDir, safeName(journal), safeName(manuscriptID)+".json")
}

// Save writes the report atomically and appends StateSaved to its state
// trail.
func (p *Pipeline) Save(report types.DecisionReport) (string, error) {
	report.Metadata.States = append(append([]string(nil), report.Metadata.States...), StateSaved)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report %s: %w", report.Manuscript.ID, err)
	}

	path := p.ReportPath(report.Journal.Code, report.Manuscript.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return path, nil
}

// LoadReport reads a saved report.
func LoadReport(path string) (types.DecisionReport, error) {
	var r types.DecisionReport
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("parsing %s: %w", path, err)
	}
	return r, nil
}

// safeName keeps manuscript identifiers such as "SICON-2026/0042" inside
// one path element.
func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}
