package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// KV defines the key-value persistence the game writes through. Values are
// serialized as JSON. This allows for mocking the storage layer during tests.
type KV interface {
	// Get decodes the value stored under key into v. It reports false when
	// the key is absent.
	Get(key string, v any) (bool, error)
	// Set stores v under key.
	Set(key string, v any) error
}

// PersistenceError wraps any failure to read or write the store.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// errCorrupt marks a store file that exists but is not a JSON object.
var errCorrupt = errors.New("store file is corrupt")

// File is a KV backed by a single JSON object on disk. Every write replaces
// the file atomically. A corrupt file is reported by Get and moved aside to
// <path>.corrupt by the next write, which then starts from an empty store.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a store at path. The file and its directory are created on
// first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the location of the backing file.
func (f *File) Path() string {
	return f.path
}

// Get implements KV.
func (f *File) Get(key string, v any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return false, &PersistenceError{Op: "read", Key: key, Err: err}
	}
	raw, ok := all[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, &PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return true, nil
}

// Set implements KV.
func (f *File) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: key, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.loadForWrite()
	if err != nil {
		return &PersistenceError{Op: "read", Key: key, Err: err}
	}
	all[key] = raw
	if err := f.save(all); err != nil {
		return &PersistenceError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.loadForWrite()
	if err != nil {
		return &PersistenceError{Op: "read", Key: key, Err: err}
	}
	if _, ok := all[key]; !ok {
		return nil
	}
	delete(all, key)
	if err := f.save(all); err != nil {
		return &PersistenceError{Op: "write", Key: key, Err: err}
	}
	return nil
}

func (f *File) load() (map[string]json.RawMessage, error) {
	all := make(map[string]json.RawMessage)

	data, err := os.ReadFile(f.path)
	// If the file doesn't exist, it's not an error; start empty.
	if os.IsNotExist(err) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening store file for reading: %w", err)
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("error decoding store file: %w: %w", errCorrupt, err)
	}
	return all, nil
}

// loadForWrite is load for callers about to replace the file: a corrupt file
// is kept as <path>.corrupt and the store starts empty.
func (f *File) loadForWrite() (map[string]json.RawMessage, error) {
	all, err := f.load()
	if !errors.Is(err, errCorrupt) {
		return all, err
	}

	aside := f.path + ".corrupt"
	if rerr := os.Rename(f.path, aside); rerr != nil {
		return nil, fmt.Errorf("error moving corrupt store file aside: %w", rerr)
	}
	slog.Warn("store file was corrupt, starting empty",
		"path", f.path,
		"moved_to", aside,
		"error", err)
	return make(map[string]json.RawMessage), nil
}

func (f *File) save(all map[string]json.RawMessage) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating store directory: %w", err)
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temp file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}
