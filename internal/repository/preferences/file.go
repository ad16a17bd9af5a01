package preferences

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// filePermissions restricts the preferences file to its owner.
const filePermissions = 0o600

// FileStore keeps preferences as a single JSON object on disk, the layout
// used by shared_preferences on desktop hosts.
type FileStore struct {
	// path is the JSON file location.
	path string
	// mu serializes file access within this process.
	mu sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: filepath.Clean(path),
	}
}

// Load reads and decodes the preferences file.
func (s *FileStore) Load(_ context.Context) (map[string]*structpb.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	return doc.GetFields(), nil
}

// Put updates a single key, keeping the other keys intact.
func (s *FileStore) Put(_ context.Context, key string, value *structpb.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readLocked()

	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		doc = &structpb.Struct{Fields: make(map[string]*structpb.Value)}
	default:
		return err
	}

	if doc.Fields == nil {
		doc.Fields = make(map[string]*structpb.Value)
	}

	doc.Fields[key] = value

	data, err := protojson.MarshalOptions{Indent: "  "}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if err = os.WriteFile(s.path, data, filePermissions); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}

	return nil
}

// Close is a no-op for files.
func (s *FileStore) Close() error {
	return nil
}

// readLocked decodes the file. s.mu must be held.
func (s *FileStore) readLocked() (*structpb.Struct, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read preferences file: %w", err)
	}

	var doc structpb.Struct
	if err = protojson.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode preferences file: %w", err)
	}

	return &doc, nil
}
