package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite, one JSON document per row.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialize writers; the document table has no cross-row constraints
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			doc TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Insert persists doc under a freshly generated uuid and returns it.
func (s *SQLiteStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	m, err := toDocument(doc)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	m["id"] = id

	body, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)`,
		collection, id, string(body))
	if err != nil {
		return "", err
	}
	return id, nil
}

// FindOne loads the document with the given id into dest.
func (s *SQLiteStore) FindOne(ctx context.Context, collection, id string, dest any) (bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&body)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(body), dest); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}
	return true, nil
}

// FindMany loads every matching document into dest in insertion order.
func (s *SQLiteStore) FindMany(ctx context.Context, collection string, filter Filter, dest any) error {
	query := `SELECT doc FROM documents WHERE collection = ?`
	args := []any{collection}

	// Deterministic clause order keeps the query plan stable across calls
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		query += fmt.Sprintf(` AND json_extract(doc, '$.%s') = ?`, k)
		args = append(args, filterArg(filter[k]))
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return err
		}
		docs = append(docs, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	list, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode result set: %w", err)
	}
	if err := json.Unmarshal(list, dest); err != nil {
		return fmt.Errorf("decode result set: %w", err)
	}
	return nil
}

// UpdateFields merges the named fields into the stored document as a single
// read-modify-write inside a transaction.
func (s *SQLiteStore) UpdateFields(ctx context.Context, collection, id string, fields Fields) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var body string
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&body)
	if err == sql.ErrNoRows {
		return ErrNoDocument
	}
	if err != nil {
		return err
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	for k, v := range fields {
		jv, err := toJSONValue(v)
		if err != nil {
			return err
		}
		m[k] = jv
	}

	updated, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET doc = ? WHERE collection = ? AND id = ?`,
		string(updated), collection, id); err != nil {
		return err
	}
	return tx.Commit()
}

// toDocument round-trips v through JSON so struct fields land as a flat map.
func toDocument(v any) (map[string]any, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	return m, nil
}

func toJSONValue(v any) (any, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode field: %w", err)
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode field: %w", err)
	}
	return out, nil
}

// filterArg converts a filter value into something comparable against
// json_extract output (bools surface as 0/1 in SQLite's JSON functions).
func filterArg(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}
