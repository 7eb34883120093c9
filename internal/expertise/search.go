// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expertise

import (
	"context"
	"fmt"
	"strings"
)

// Len returns the number of entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Entries returns a copy of all entries in index order.
func (x *Index) Entries() []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]Entry(nil), x.entries...)
}

// Indexed reports whether searches use the vector index.
func (x *Index) Indexed() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.corpus != nil && x.corpus.Indexed()
}

// Lookup returns the entry with the given identity key.
func (x *Index) Lookup(key string) (Entry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, e := range x.entries {
		if e.Key() == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Search returns up to k entries most similar to summary, best first. An
// empty index returns an empty slice.
func (x *Index) Search(ctx context.Context, summary string, k int) []Hit {
	x.mu.RLock()
	entries, corpus := x.entries, x.corpus
	x.mu.RUnlock()

	if len(entries) == 0 || corpus == nil || k <= 0 || ctx.Err() != nil {
		return []Hit{}
	}
	found := corpus.Search(summary, k)
	hits := make([]Hit, 0, len(found))
	for _, h := range found {
		if h.Position < 0 || h.Position >= len(entries) {
			continue
		}
		hits = append(hits, Hit{Entry: entries[h.Position], Score: h.Score})
	}
	return hits
}

// SearchTopics runs an FTS5 phrase query over entry topics, best match
// first.
func (x *Index) SearchTopics(ctx context.Context, term string, limit int) ([]Entry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := x.db.QueryContext(ctx,
		`SELECT r.name, r.email, r.orcid, r.institution, r.h_index, r.topics, r.venues,
			r.review_count, r.invitations, r.acceptances
		 FROM referees_fts
		 JOIN referees r ON r.rowid = referees_fts.rowid
		 WHERE referees_fts MATCH ?
		 ORDER BY referees_fts.rank
		 LIMIT ?`,
		ftsPhrase(term), limit)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ftsPhrase quotes term as an FTS5 phrase so user input is never parsed as
// query syntax.
func ftsPhrase(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}
