// Package storage opens the [domain.Storage] backend selected for a database.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/storage/badger"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/storage/memory"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/storage/sqlite"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
	"go.uber.org/zap"
)

// DefaultDirMode is used when creating directories for a database path.
const DefaultDirMode os.FileMode = 0o755

// Opener opens storage backends.
type Opener struct {
	os      osOps
	dirMode os.FileMode
	logger  *zap.Logger
}

// NewOpener returns an Opener logging backend diagnostics to logger.
func NewOpener(logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{os: &osImpl{}, dirMode: DefaultDirMode, logger: logger}
}

// Backend returns the backend used for path when none is named: memory for
// an empty path and badger otherwise.
func Backend(path, backend string) string {
	if backend != "" {
		return backend
	}
	if path == "" {
		return domain.BackendMemory
	}
	return domain.BackendBadger
}

// Open opens the backend at path. Every failure is wrapped in
// [domain.ErrStorageUnavailable].
func (o *Opener) Open(ctx context.Context, path, backend string) (domain.Storage, error) {
	backend = Backend(path, backend)
	s, err := o.open(ctx, path, backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %s backend at %q: %w", domain.ErrStorageUnavailable, backend, path, err)
	}
	o.logger.Debug("storage opened", zap.String("backend", backend), zap.String("path", path))
	return s, nil
}

func (o *Opener) open(ctx context.Context, path, backend string) (domain.Storage, error) {
	switch backend {
	case domain.BackendMemory:
		return memory.NewStorage(), nil
	case domain.BackendBadger:
		if path != "" {
			if err := o.ensureDir(path); err != nil {
				return nil, err
			}
		}
		return badger.NewStorage(path, o.logger)
	case domain.BackendSQLite:
		if path != "" {
			if err := o.ensureDir(filepath.Dir(path)); err != nil {
				return nil, err
			}
		}
		return sqlite.NewStorage(ctx, path)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// ensureDir creates dir unless it exists. An existing non-directory is an
// error.
func (o *Opener) ensureDir(dir string) error {
	info, err := o.os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%q is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return o.os.MkdirAll(dir, o.dirMode)
}
