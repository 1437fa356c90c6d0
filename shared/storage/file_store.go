package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every key in a single JSON document on disk.
type FileStore struct {
	filePath string
	values   map[string]json.RawMessage
	mu       sync.RWMutex
}

// NewFileStore creates a file-backed store in dataDir, loading any existing state
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fs := &FileStore{
		filePath: filepath.Join(dataDir, "framecheck.json"),
		values:   make(map[string]json.RawMessage),
	}

	if err := fs.load(); err != nil {
		return nil, fmt.Errorf("failed to load store data: %w", err)
	}

	return fs, nil
}

func (fs *FileStore) Get(key string, v any) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	raw, exists := fs.values[key]
	if !exists {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (fs *FileStore) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, existed := fs.values[key]
	fs.values[key] = raw
	if err := fs.save(); err != nil {
		fs.restore(key, prev, existed)
		return err
	}
	return nil
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, exists := fs.values[key]
	if !exists {
		return nil
	}
	delete(fs.values, key)
	if err := fs.save(); err != nil {
		fs.restore(key, prev, true)
		return err
	}
	return nil
}

// restore puts back the value key had before a write that failed to reach disk
func (fs *FileStore) restore(key string, prev json.RawMessage, existed bool) {
	if existed {
		fs.values[key] = prev
	} else {
		delete(fs.values, key)
	}
}

func (fs *FileStore) Close() error {
	return nil
}

// load reads the stored values from the JSON file
func (fs *FileStore) load() error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run, start empty
			return nil
		}
		return fmt.Errorf("failed to open store file: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&fs.values); err != nil {
		return fmt.Errorf("failed to decode store file: %w", err)
	}
	return nil
}

// save writes all values to a temp file and renames it over the store file
func (fs *FileStore) save() error {
	tmp := fs.filePath + ".tmp"
	file, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fs.values); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode store file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close store file: %w", err)
	}
	return os.Rename(tmp, fs.filePath)
}
