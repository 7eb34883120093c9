// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feedback keeps the append-only JSONL log of human editorial
// decisions. The log feeds predictor training.
package feedback

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goccy/go-json"

	"github.com/pdiddy/referee-engine/pkg/types"
)

// maxLine bounds a single JSONL record.
const maxLine = 1 << 20

// Log is a JSONL file of FeedbackRecords. Appends from one process are
// serialized; each record is written with a single O_APPEND write.
type Log struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

// Open returns a Log at path. The file is created on first append.
func Open(path string, log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{path: path, log: log}
}

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Append validates r and writes it as one line. A zero RecordedAt is set to
// the current time.
func (l *Log) Append(r types.FeedbackRecord) error {
	r.Journal = strings.TrimSpace(r.Journal)
	r.ManuscriptID = strings.TrimSpace(r.ManuscriptID)
	r.Decision = strings.TrimSpace(r.Decision)
	if r.Journal == "" || r.ManuscriptID == "" || r.Decision == "" {
		return errors.New("feedback record needs journal, manuscript_id and decision")
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding feedback: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating feedback directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", l.path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", l.path, err)
	}
	return f.Close()
}

// Record appends r and logs, rather than returns, any failure.
func (l *Log) Record(r types.FeedbackRecord) {
	if err := l.Append(r); err != nil {
		l.log.Warn("could not record feedback",
			zap.String("manuscript", r.ManuscriptID),
			zap.Error(err))
	}
}

// ReadAll returns every well-formed record in file order. Malformed lines
// are skipped. A missing file yields no records.
func (l *Log) ReadAll() ([]types.FeedbackRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", l.path, err)
	}
	defer f.Close()

	var out []types.FeedbackRecord
	skipped := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var r types.FeedbackRecord
		if err := json.Unmarshal(line, &r); err != nil || r.ManuscriptID == "" {
			skipped++
			continue
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("reading %s: %w", l.path, err)
	}
	if skipped > 0 {
		l.log.Warn("skipped malformed feedback lines", zap.String("path", l.path), zap.Int("lines", skipped))
	}
	return out, nil
}
