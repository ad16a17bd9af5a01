package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	// Register the pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

const (
	// createTableQuery creates the preferences table on first use.
	createTableQuery = `CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	// selectAllQuery reads every preference.
	selectAllQuery = `SELECT key, value FROM preferences`
	// upsertQuery writes one preference.
	upsertQuery = `INSERT INTO preferences (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`
)

// SQLiteStore keeps preferences in an SQLite table. Values are stored as
// protojson-encoded structpb.Value so types survive the round trip.
type SQLiteStore struct {
	// db is the open database handle.
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens the database at path. A missing database file yields
// ErrNotFound so that a host that never ran is treated like an empty snapshot.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	path = filepath.Clean(path)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("stat preferences database: %w", err)
	}

	return openSQLite(ctx, path)
}

// CreateSQLiteStore opens or creates the database at path.
func CreateSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	return openSQLite(ctx, filepath.Clean(path))
}

// openSQLite opens the database and ensures the table exists.
func openSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open preferences database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY between our own queries.
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, createTableQuery); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create preferences table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns every preference in the table.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]*structpb.Value, error) {
	rows, err := s.db.QueryContext(ctx, selectAllQuery)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	values := make(map[string]*structpb.Value)

	for rows.Next() {
		var key, raw string
		if err = rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}

		value := new(structpb.Value)
		if err = protojson.Unmarshal([]byte(raw), value); err != nil {
			return nil, fmt.Errorf("decode preference %q: %w", key, err)
		}

		values[key] = value
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preferences: %w", err)
	}

	return values, nil
}

// Put upserts a single preference.
func (s *SQLiteStore) Put(ctx context.Context, key string, value *structpb.Value) error {
	raw, err := protojson.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode preference %q: %w", key, err)
	}

	if _, err = s.db.ExecContext(ctx, upsertQuery, key, string(raw)); err != nil {
		return fmt.Errorf("write preference %q: %w", key, err)
	}

	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
