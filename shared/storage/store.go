package storage

import (
	"errors"
	"fmt"
)

// Store is the process-wide key-value store behind the key, cache, history and
// settings records. Each key is read and written independently; there are no
// transactions across keys.
type Store interface {
	// Get decodes the value stored under key into v and reports whether the key exists.
	Get(key string, v any) (bool, error)
	Set(key string, v any) error
	Delete(key string) error
	Close() error
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// Open returns the store for driver rooted at dataDir.
func Open(driver, dataDir string) (Store, error) {
	switch driver {
	case "", DriverFile:
		return NewFileStore(dataDir)
	case DriverSQLite:
		return NewSQLiteStore(dataDir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
