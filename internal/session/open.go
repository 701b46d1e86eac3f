package session

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName   = "fintrack"
	storageFileName = "storage.db"
)

// DefaultPath returns ~/.config/fintrack/storage.db
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, storageFileName), nil
}

// Open returns the store for backend ("keyring", "sqlite" or "memory").
// path is only used by the sqlite backend; empty means DefaultPath.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "keyring":
		return NewKeyringStore(), nil
	case "memory":
		return NewMemoryStore(Session{}), nil
	case "sqlite":
		if path == "" {
			var err error
			if path, err = DefaultPath(); err != nil {
				return nil, err
			}
		}
		return OpenSQLStore(path)
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}
