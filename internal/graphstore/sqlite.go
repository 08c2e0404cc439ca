package graphstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the store at dbPath, creating the schema when needed.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		// the preview server reads while a rebuild writes
		dsn += "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStore, "open sqlite database").
			WithContext("path", dbPath).Build()
	}
	// each pooled connection to ":memory:" would see its own database
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryStore, "initialize schema").
			WithContext("path", dbPath).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		links INTEGER NOT NULL,
		broken INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS nodes (
		build_id TEXT NOT NULL,
		url TEXT NOT NULL,
		idx INTEGER NOT NULL,
		path TEXT NOT NULL,
		names TEXT NOT NULL,
		PRIMARY KEY (build_id, url)
	);
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		source_url TEXT NOT NULL,
		source_name TEXT NOT NULL,
		source_file TEXT NOT NULL,
		source_index INTEGER NOT NULL,
		target_url TEXT NOT NULL,
		target_name TEXT NOT NULL,
		target_path TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_links_target ON links(build_id, target_url);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveBuild stores b in a single transaction.
func (s *SQLiteStore) SaveBuild(ctx context.Context, b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError(err, "begin transaction", b.ID)
	}
	defer func() { _ = tx.Rollback() }()

	links := 0
	for _, e := range b.Entries {
		links += len(e.Matches)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO builds (id, started, pages, links, broken) VALUES (?, ?, ?, ?, ?)",
		b.ID, b.Started.UnixNano(), b.Pages, links, b.Broken,
	); err != nil {
		return storeError(err, "insert build", b.ID)
	}

	for url, n := range b.Nodes {
		names, err := json.Marshal(n.Page.Names)
		if err != nil {
			return storeError(err, "marshal node names", b.ID)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO nodes (build_id, url, idx, path, names) VALUES (?, ?, ?, ?, ?)",
			b.ID, url, n.Index, n.Page.Path, string(names),
		); err != nil {
			return storeError(err, "insert node", b.ID)
		}
	}

	for _, e := range b.Entries {
		for _, m := range e.Matches {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO links (build_id, source_url, source_name, source_file, source_index, target_url, target_name, target_path)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				b.ID, e.URL, e.Name, e.File, e.Index, m.URL, m.Name, m.Path,
			); err != nil {
				return storeError(err, "insert link", b.ID)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storeError(err, "commit build", b.ID)
	}
	return nil
}

// Builds lists stored builds, newest first.
func (s *SQLiteStore) Builds(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started, pages, links, broken FROM builds ORDER BY started DESC, id DESC")
	if err != nil {
		return nil, storeError(err, "query builds", "")
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var started int64
		if err := rows.Scan(&sum.ID, &started, &sum.Pages, &sum.Links, &sum.Broken); err != nil {
			return nil, storeError(err, "scan build", "")
		}
		sum.Started = time.Unix(0, started)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "iterate builds", "")
	}
	return out, nil
}

// Backlinks returns the pages of the newest build that link to url.
func (s *SQLiteStore) Backlinks(ctx context.Context, url string) ([]Backlink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_url, source_name, source_file, target_name FROM links
		WHERE target_url = ? AND build_id = (SELECT id FROM builds ORDER BY started DESC, id DESC LIMIT 1)
		ORDER BY id`, url)
	if err != nil {
		return nil, storeError(err, "query backlinks", "")
	}
	defer func() { _ = rows.Close() }()

	var out []Backlink
	for rows.Next() {
		var b Backlink
		if err := rows.Scan(&b.SourceURL, &b.SourceName, &b.SourceFile, &b.TargetName); err != nil {
			return nil, storeError(err, "scan backlink", "")
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "iterate backlinks", "")
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func storeError(err error, op, buildID string) error {
	b := ferrors.WrapError(err, ferrors.CategoryStore, op)
	if buildID != "" {
		b = b.WithContext("build_id", buildID)
	}
	return b.Build()
}
