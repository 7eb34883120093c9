// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/referee-engine/internal/manuscripts"
	"github.com/pdiddy/referee-engine/internal/platform"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	RunID        string
	Journals     int
	Scanned      int
	Selected     int
	Processed    int
	DeskRejected int
	Failed       int
}

// HasFailures reports whether any manuscript or record file failed.
func (s BatchSummary) HasFailures() bool { return s.Failed > 0 }

// Batch scans <manuscripts_dir>/<JOURNAL>/ for every configured journal,
// selects the manuscripts awaiting referees under the journal's platform
// rules, and runs each through the pipeline. A failing manuscript is
// counted and does not stop the batch. Progress lines go to w.
func (p *Pipeline) Batch(ctx context.Context, w io.Writer) (BatchSummary, error) {
	summary := BatchSummary{RunID: NewRunID()}

	var selected []types.ManuscriptRecord
	for _, j := range p.cfg.Journals {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		code := strings.ToUpper(strings.TrimSpace(j.Code))
		if code == "" {
			continue
		}
		rules, err := platform.RulesFor(j)
		if err != nil {
			fmt.Fprintf(w, "skip    %s: %v\n", code, err)
			p.log.Warn("journal skipped", zap.String("journal", code), zap.Error(err))
			continue
		}
		records, failed, err := manuscripts.LoadDir(filepath.Join(p.cfg.Pipeline.ManuscriptsDir, code))
		if err != nil {
			return summary, err
		}
		for _, f := range failed {
			fmt.Fprintf(w, "failed  %s: %v\n", f.Path, f.Err)
		}
		summary.Journals++
		summary.Scanned += len(records)
		summary.Failed += len(failed)

		n := 0
		for _, m := range records {
			if m.JournalCode == "" {
				m.JournalCode = code
			}
			if rules.AwaitingReferees(m) {
				selected = append(selected, m)
				n++
			}
		}
		fmt.Fprintf(w, "scan    %s (%s): %d manuscripts, %d awaiting referees\n", code, rules.Kind, len(records), n)
	}
	summary.Selected = len(selected)

	workers := p.cfg.Pipeline.Workers
	if workers <= 0 {
		workers = 1
	}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(workers)
	for _, m := range selected {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			report, path, err := p.Run(ctx, m, summary.RunID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				fmt.Fprintf(w, "failed  %s/%s: %v\n", m.JournalCode, m.ID, err)
				p.log.Error("manuscript failed", zap.String("manuscript", m.ID), zap.Error(err))
				return nil
			}
			summary.Processed++
			verdict := "proceed"
			if report.DeskRejection.ShouldDeskReject {
				summary.DeskRejected++
				verdict = "desk-reject"
			}
			fmt.Fprintf(w, "done    %s/%s: %s, %d candidates -> %s\n",
				m.JournalCode, m.ID, verdict, len(report.RefereeCandidates), path)
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(w, "\njournals: %d, scanned: %d, selected: %d, processed: %d, desk-rejected: %d, failed: %d\n",
		summary.Journals, summary.Scanned, summary.Selected, summary.Processed, summary.DeskRejected, summary.Failed)
	return summary, ctx.Err()
}
