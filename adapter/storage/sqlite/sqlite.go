// Package sqlite contains a [domain.Storage] backed by SQLite, using the pure
// Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"

	// SQLite driver using pure Go implementation
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS collections (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		body TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS documents_seq ON documents (collection, seq);

	CREATE TABLE IF NOT EXISTS removed (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);
`

// Storage implements [domain.Storage].
type Storage struct {
	db *sql.DB
}

// NewStorage opens the SQLite database at path. An empty path opens a
// private in-memory database.
func NewStorage(ctx context.Context, path string) (*Storage, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// a single connection keeps in-memory databases alive and serializes
	// writers without busy errors
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Storage) initSchema(ctx context.Context) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// CreateCollection implements [domain.Storage].
func (s *Storage) CreateCollection(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO collections (name) VALUES (?)`, name)
	return err
}

// ListCollections implements [domain.Storage].
func (s *Storage) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM collections ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		res = append(res, name)
	}
	return res, rows.Err()
}

// LoadAll implements [domain.Storage].
func (s *Storage) LoadAll(ctx context.Context, collection string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seq, body FROM documents WHERE collection = ? ORDER BY seq`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Record
	for rows.Next() {
		var (
			r    domain.Record
			body string
		)
		if err := rows.Scan(&r.ID, &r.Seq, &body); err != nil {
			return nil, err
		}
		v, err := data.ParseJSON([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", r.ID, err)
		}
		doc, ok := v.Mapping()
		if !ok {
			return nil, fmt.Errorf("document %q: %w", r.ID, data.ErrDocumentType{Type: v.Kind().String()})
		}
		r.Doc = doc
		res = append(res, r)
	}
	return res, rows.Err()
}

// LoadRemoved implements [domain.Storage].
func (s *Storage) LoadRemoved(ctx context.Context, collection string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM removed WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

// Upsert implements [domain.Storage].
func (s *Storage) Upsert(ctx context.Context, collection string, records ...domain.Record) error {
	changes := make([]domain.Change, len(records))
	for n, r := range records {
		changes[n] = domain.Change{Op: domain.ChangeUpsert, Record: r}
	}
	return s.Apply(ctx, collection, changes...)
}

// Delete implements [domain.Storage].
func (s *Storage) Delete(ctx context.Context, collection string, ids ...string) error {
	changes := make([]domain.Change, len(ids))
	for n, id := range ids {
		changes[n] = domain.Change{Op: domain.ChangeDelete, Record: domain.Record{ID: id}}
	}
	return s.Apply(ctx, collection, changes...)
}

// Apply implements [domain.Storage]. Every change runs in one transaction.
func (s *Storage) Apply(ctx context.Context, collection string, changes ...domain.Change) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO collections (name) VALUES (?)`, collection); err != nil {
		return err
	}
	for _, c := range changes {
		if c.Op == domain.ChangeDelete {
			if _, err = tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, c.Record.ID); err != nil {
				return err
			}
			if _, err = tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO removed (collection, id) VALUES (?, ?)`, collection, c.Record.ID); err != nil {
				return err
			}
			continue
		}
		var body []byte
		if body, err = json.Marshal(c.Record.Doc); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO documents (collection, id, seq, body) VALUES (?, ?, ?, ?)
			ON CONFLICT (collection, id) DO UPDATE SET seq = excluded.seq, body = excluded.body`,
			collection, c.Record.ID, int64(c.Record.Seq), string(body)); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM removed WHERE collection = ? AND id = ?`, collection, c.Record.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close implements [domain.Storage].
func (s *Storage) Close() error {
	return s.db.Close()
}
