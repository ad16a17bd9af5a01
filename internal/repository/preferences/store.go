package preferences

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Store is a key/value preferences store.
type Store interface {
	// Load returns every stored value. A missing store yields ErrNotFound.
	Load(ctx context.Context) (map[string]*structpb.Value, error)
	// Put writes a single value.
	Put(ctx context.Context, key string, value *structpb.Value) error
	// Close releases the store.
	Close() error
}

const (
	// DriverJSON selects FileStore.
	DriverJSON = "json"
	// DriverSQLite selects SQLiteStore.
	DriverSQLite = "sqlite"
)

var (
	// ErrNotFound is returned when the preferences store does not exist yet.
	ErrNotFound = errors.New("preferences not found")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("unknown preferences driver")
)

// Open returns the store for driver at path.
//
//nolint:ireturn // Callers only need the Store behaviour.
func Open(ctx context.Context, driver, path string) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewFileStore(path), nil
	case DriverSQLite:
		store, err := OpenSQLiteStore(ctx, path)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, fmt.Errorf("%q: %w", driver, ErrUnknownDriver)
	}
}
