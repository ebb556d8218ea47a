// Package datastore contains the default database implementation: a registry
// of named collections held in memory and persisted through a
// [domain.Storage] backend.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/idgenerator"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/index"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/logger"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/projector"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/storage"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
	"github.com/vinicius-lino-figueiredo/jsondb/pkg/ctxsync"
	"go.uber.org/zap"
)

// Database is a registry of named collections.
type Database struct {
	path           string
	storage        domain.Storage
	logger         *zap.Logger
	idKey          string
	idGenerator    domain.IDGenerator
	comparer       domain.Comparer
	fieldNavigator domain.FieldNavigator
	matcher        domain.Matcher
	projector      domain.Projector
	decoder        domain.Decoder
	indexFactory   domain.IndexFactory
	executor       *ctxsync.Mutex
	collections    map[string]*Collection
	names          []string
	inflight       *ctxsync.WaitGroup
	closed         atomic.Bool
}

// Open opens the database at path, loading every persisted collection. An
// empty path opens an in-memory database.
func Open(ctx context.Context, path string, options ...domain.DatabaseOption) (*Database, error) {
	comp := comparer.NewComparer()
	fn := fieldnavigator.NewFieldNavigator()
	opts := domain.DatabaseOptions{
		IdentifierKey:  data.DefaultIDKey,
		IDGenerator:    idgenerator.NewIDGenerator(),
		Comparer:       comp,
		FieldNavigator: fn,
		Decoder:        decoder.NewDecoder(),
	}
	for _, option := range options {
		option(&opts)
	}

	if opts.Matcher == nil {
		opts.Matcher = matcher.NewMatcher(
			matcher.WithComparer(opts.Comparer),
			matcher.WithFieldNavigator(opts.FieldNavigator),
		)
	}
	if opts.Projector == nil {
		opts.Projector = projector.NewProjector(
			projector.WithFieldNavigator(opts.FieldNavigator),
		)
	}
	if opts.IndexFactory == nil {
		opts.IndexFactory = func(path string, addr []string) (domain.Index, error) {
			return index.NewIndex(path, addr,
				index.WithComparer(opts.Comparer),
				index.WithFieldNavigator(opts.FieldNavigator),
				index.WithIdentifierKey(opts.IdentifierKey),
			)
		}
	}
	if opts.Logger == nil {
		l, err := logger.NewLogger(opts.Verbose, map[string]any{"path": path})
		if err != nil {
			return nil, err
		}
		opts.Logger = l
	}
	if opts.Storage == nil {
		s, err := storage.NewOpener(opts.Logger).Open(ctx, path, opts.Backend)
		if err != nil {
			return nil, err
		}
		opts.Storage = s
	}

	db := &Database{
		path:           path,
		storage:        opts.Storage,
		logger:         opts.Logger,
		idKey:          opts.IdentifierKey,
		idGenerator:    opts.IDGenerator,
		comparer:       opts.Comparer,
		fieldNavigator: opts.FieldNavigator,
		matcher:        opts.Matcher,
		projector:      opts.Projector,
		decoder:        opts.Decoder,
		indexFactory:   opts.IndexFactory,
		executor:       ctxsync.NewMutex(),
		collections:    make(map[string]*Collection),
		inflight:       ctxsync.NewWaitGroup(),
	}

	if err := db.load(ctx); err != nil {
		if closeErr := db.storage.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	db.logger.Info("database opened",
		zap.Int("collections", len(db.names)),
	)
	return db, nil
}

// OpenWithOptions opens the database at path using an options bag. See
// [Config] for the recognized keys. Options given after the bag override it.
func OpenWithOptions(ctx context.Context, path string, bag map[string]any, options ...domain.DatabaseOption) (*Database, error) {
	cfg, err := DecodeConfig(bag)
	if err != nil {
		return nil, err
	}
	return Open(ctx, path, append(cfg.Options(), options...)...)
}

func (d *Database) load(ctx context.Context) error {
	names, err := d.storage.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		records, err := d.storage.LoadAll(ctx, name)
		if err != nil {
			return fmt.Errorf("loading collection %q: %w", name, err)
		}
		removed, err := d.storage.LoadRemoved(ctx, name)
		if err != nil {
			return fmt.Errorf("loading collection %q: %w", name, err)
		}
		c := newCollection(d, name)
		for _, id := range removed {
			c.seen[id] = struct{}{}
		}
		for _, r := range records {
			c.insertEntry(r.ID, &entry{seq: r.Seq, doc: r.Doc})
			c.seen[r.ID] = struct{}{}
			if r.Seq >= c.nextSeq {
				c.nextSeq = r.Seq + 1
			}
		}
		d.collections[name] = c
		d.names = append(d.names, name)
		d.logger.Debug("collection loaded",
			zap.String("collection", name),
			zap.Int("documents", len(records)),
		)
	}
	return nil
}

// begin registers an in-flight operation. Every successful call must be
// followed by a call to end.
func (d *Database) begin() error {
	d.inflight.Add(1)
	if d.closed.Load() {
		d.inflight.Done()
		return domain.ErrClosed
	}
	return nil
}

func (d *Database) end() {
	d.inflight.Done()
}

// Path returns the path the database was opened with.
func (d *Database) Path() string {
	return d.path
}

// Collection returns the collection called name, creating and persisting it
// if it does not exist yet.
func (d *Database) Collection(ctx context.Context, name string) (*Collection, error) {
	if name == "" {
		return nil, domain.ErrCollectionName
	}
	if err := d.begin(); err != nil {
		return nil, err
	}
	defer d.end()

	if err := d.executor.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer d.executor.Unlock()

	if c, ok := d.collections[name]; ok {
		return c, nil
	}
	if err := d.storage.CreateCollection(ctx, name); err != nil {
		return nil, fmt.Errorf("creating collection %q: %w", name, err)
	}
	c := newCollection(d, name)
	d.collections[name] = c
	d.names = append(d.names, name)
	d.logger.Info("collection created", zap.String("collection", name))
	return c, nil
}

// CollectionNames returns the collection names in creation order.
func (d *Database) CollectionNames() []string {
	d.executor.Lock()
	defer d.executor.Unlock()
	res := make([]string, len(d.names))
	copy(res, d.names)
	return res
}

// Close waits for in-flight operations and releases the storage backend.
// Every operation started afterwards returns [domain.ErrClosed].
func (d *Database) Close(ctx context.Context) error {
	if d.closed.Swap(true) {
		return domain.ErrClosed
	}
	if err := d.inflight.WaitWithContext(ctx); err != nil {
		d.closed.Store(false)
		return err
	}
	err := d.storage.Close()
	_ = d.logger.Sync()
	return err
}
