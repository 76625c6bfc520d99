package backend

import (
	"context"

	"pocketbook/internal/kv"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// ReadyFunc reports whether the backend can serve requests.
type ReadyFunc func(ctx context.Context) error

// BackendResult is an opened key-value backend.
type BackendResult struct {
	Store   kv.Store
	Cleanup CleanupFunc
	Ready   ReadyFunc
}

// Close runs Cleanup if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory opens backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects and parameterizes a backend.
type Config struct {
	Type         BackendType
	SQLiteDBPath string
	DataDir      string
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Shared reports whether several processes can open the same data.
func (bt BackendType) Shared() bool {
	return bt == FileBackend || bt == SQLiteBackend
}
