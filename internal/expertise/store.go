// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package expertise maintains the searchable index of referees drawn from a
// journal's historical manuscripts. Entries live in SQLite with an FTS5
// table over their topics; a vector index over the same entries serves
// semantic search.
package expertise

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/embed"
	"github.com/pdiddy/referee-engine/internal/manuscripts"
	"github.com/pdiddy/referee-engine/pkg/types"
)

const (
	dbFile     = "expertise.db"
	vectorFile = "expertise.hnsw"
)

// Hit is one semantic search result.
type Hit struct {
	Entry Entry
	Score float64
}

// Index is the expertise index. Search is safe for concurrent use; Build
// replaces the contents under a write lock.
type Index struct {
	db         *sql.DB
	historyDir string
	indexDir   string
	engine     *embed.Engine
	log        *zap.Logger

	mu      sync.RWMutex
	entries []Entry
	corpus  *embed.Corpus
}

// Open opens or creates the index database under cfg.IndexDir and loads
// its entries. A missing or unreadable vector file is rebuilt in memory.
func Open(cfg types.ExpertiseConfig, engine *embed.Engine, log *zap.Logger) (*Index, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	idx := &Index{
		db:         db,
		historyDir: cfg.HistoryDir,
		indexDir:   cfg.IndexDir,
		engine:     engine,
		log:        log,
	}
	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := idx.reload(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Close releases the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

func (x *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS referees (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			position INTEGER NOT NULL,
			identity_key TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT,
			orcid TEXT,
			institution TEXT,
			h_index INTEGER,
			topics TEXT,
			topics_text TEXT NOT NULL,
			venues TEXT,
			review_count INTEGER,
			invitations TEXT,
			acceptances TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_referees_position ON referees(position)`,
		`CREATE TABLE IF NOT EXISTS build_info (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := x.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := x.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='referees_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE referees_fts USING fts5(topics_text, content=referees, content_rowid=rowid)`,
		`CREATE TRIGGER referees_ai AFTER INSERT ON referees BEGIN
			INSERT INTO referees_fts(rowid, topics_text) VALUES (new.rowid, new.topics_text);
		END`,
		`CREATE TRIGGER referees_ad AFTER DELETE ON referees BEGIN
			INSERT INTO referees_fts(referees_fts, rowid, topics_text) VALUES('delete', old.rowid, old.topics_text);
		END`,
		`CREATE TRIGGER referees_au AFTER UPDATE ON referees BEGIN
			INSERT INTO referees_fts(referees_fts, rowid, topics_text) VALUES('delete', old.rowid, old.topics_text);
			INSERT INTO referees_fts(rowid, topics_text) VALUES (new.rowid, new.topics_text);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := x.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// BuildSummary holds counts from an index build.
type BuildSummary struct {
	Journals    int
	Manuscripts int
	RawEntries  int
	Entries     int
	Failed      int
}

// Build reads the historical corpus of each journal, deduplicates the
// referees, and replaces the index contents in one transaction. Running it
// twice over the same corpus yields the same index. Progress lines go to w.
func (x *Index) Build(ctx context.Context, journals []string, w io.Writer) (BuildSummary, error) {
	var (
		summary BuildSummary
		raw     []Entry
	)
	for _, journal := range journals {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		code := strings.ToUpper(strings.TrimSpace(journal))
		if code == "" {
			continue
		}
		records, failed, err := manuscripts.LoadDir(filepath.Join(x.historyDir, code))
		if err != nil {
			return summary, err
		}
		for _, f := range failed {
			fmt.Fprintf(w, "failed  %s: %v\n", f.Path, f.Err)
		}
		summary.Journals++
		summary.Failed += len(failed)
		summary.Manuscripts += len(records)
		before := len(raw)
		for _, m := range records {
			raw = append(raw, entriesFromManuscript(m, code)...)
		}
		fmt.Fprintf(w, "read    %s (%d manuscripts, %d referee records)\n", code, len(records), len(raw)-before)
	}

	entries := Deduplicate(raw)
	summary.RawEntries = len(raw)
	summary.Entries = len(entries)

	if err := x.replace(ctx, entries); err != nil {
		return summary, err
	}
	corpus := x.engine.NewCorpus(entryTexts(entries))
	if err := x.saveVectors(corpus); err != nil {
		fmt.Fprintf(w, "warning: vector index write failed: %v\n", err)
		x.log.Warn("vector index write failed", zap.Error(err))
	}

	x.mu.Lock()
	x.entries = entries
	x.corpus = corpus
	x.mu.Unlock()

	fmt.Fprintf(w, "\nmanuscripts: %d, referee records: %d, entries: %d, failed: %d\n",
		summary.Manuscripts, summary.RawEntries, summary.Entries, summary.Failed)
	return summary, nil
}

func (x *Index) replace(ctx context.Context, entries []Entry) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM referees`); err != nil {
		return fmt.Errorf("clearing referees: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO referees (position, identity_key, name, email, orcid, institution, h_index,
			topics, topics_text, venues, review_count, invitations, acceptances)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		topicsJSON, _ := json.Marshal(e.Topics)
		venuesJSON, _ := json.Marshal(e.Venues)
		invJSON, _ := json.Marshal(e.Invitations)
		accJSON, _ := json.Marshal(e.Acceptances)
		if _, err := stmt.ExecContext(ctx,
			i, e.Key(), e.Name, e.Email, e.ORCID, e.Institution, e.HIndex,
			string(topicsJSON), strings.Join(e.Topics, " "), string(venuesJSON),
			e.ReviewCount, string(invJSON), string(accJSON),
		); err != nil {
			return fmt.Errorf("inserting %s: %w", e.Key(), err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO build_info (key, value) VALUES ('entries', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		fmt.Sprintf("%d", len(entries)),
	); err != nil {
		return fmt.Errorf("updating build info: %w", err)
	}
	return tx.Commit()
}

// reload reads entries from the database and restores the vector index.
func (x *Index) reload(ctx context.Context) error {
	entries, err := x.loadEntries(ctx)
	if err != nil {
		return err
	}

	var corpus *embed.Corpus
	if loaded, err := x.loadVectors(); err == nil && loaded.Len() == len(entries) {
		corpus = x.engine.CorpusFromIndex(loaded)
	} else {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			x.log.Warn("vector index unusable, rebuilding in memory", zap.Error(err))
		}
		corpus = x.engine.NewCorpus(entryTexts(entries))
	}

	x.mu.Lock()
	x.entries = entries
	x.corpus = corpus
	x.mu.Unlock()
	return nil
}

func (x *Index) loadEntries(ctx context.Context) ([]Entry, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT name, email, orcid, institution, h_index, topics, venues, review_count, invitations, acceptances
		 FROM referees ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying referees: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e                                  Entry
			email, orcid, institution          sql.NullString
			topics, venues, invitations, accep sql.NullString
			hIndex, reviews                    sql.NullInt64
		)
		if err := rows.Scan(&e.Name, &email, &orcid, &institution, &hIndex,
			&topics, &venues, &reviews, &invitations, &accep); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Email, e.ORCID, e.Institution = email.String, orcid.String, institution.String
		e.HIndex, e.ReviewCount = int(hIndex.Int64), int(reviews.Int64)
		if topics.Valid {
			json.Unmarshal([]byte(topics.String), &e.Topics)
		}
		if venues.Valid {
			json.Unmarshal([]byte(venues.String), &e.Venues)
		}
		if invitations.Valid {
			json.Unmarshal([]byte(invitations.String), &e.Invitations)
		}
		if accep.Valid {
			json.Unmarshal([]byte(accep.String), &e.Acceptances)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (x *Index) saveVectors(corpus *embed.Corpus) error {
	path := filepath.Join(x.indexDir, vectorFile)
	if corpus.Index() == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	if err := embed.SaveIndex(corpus.Index(), f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func (x *Index) loadVectors() (*embed.Index, error) {
	if !x.engine.IndexAvailable() {
		return nil, fs.ErrNotExist
	}
	f, err := os.Open(filepath.Join(x.indexDir, vectorFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return x.engine.LoadIndex(f)
}

func entryTexts(entries []Entry) []string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text()
	}
	return texts
}
