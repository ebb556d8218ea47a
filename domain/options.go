package domain

import (
	"go.uber.org/zap"
)

// Backend names accepted by [WithDatabaseBackend].
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// WithSort specifies the sort order for query results.
func WithSort(s Sort) FindOption {
	return func(fo *FindOptions) {
		fo.Sort = s
	}
}

// WithUpsert lets FirstAndModify and AllAndModify insert a document when
// nothing matches. See [Upsert].
func WithUpsert() FindOption {
	return func(fo *FindOptions) {
		fo.Upsert = true
	}
}

// FindOption configures query behavior through the functional options pattern.
type FindOption func(*FindOptions)

// FindOptions contains parameters for customizing query execution.
type FindOptions struct {
	// Sort specifies the sort order for results. Without it, results
	// follow insertion order.
	Sort Sort
	// Upsert makes modify calls that match nothing offer a seed document
	// to their callback.
	Upsert bool
}

// IndexFactory creates the index of one view path.
type IndexFactory = func(path string, addr []string) (Index, error)

// WithDatabaseVerbose sets the diagnostic verbosity level. Zero logs warnings
// only, one adds info messages and two or more add debug messages.
func WithDatabaseVerbose(v int) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.Verbose = v
	}
}

// WithDatabaseBackend selects the storage backend by name. See
// [BackendMemory], [BackendBadger] and [BackendSQLite].
func WithDatabaseBackend(b string) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.Backend = b
	}
}

// WithDatabaseStorage sets the storage implementation, bypassing backend
// selection.
func WithDatabaseStorage(s Storage) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.Storage = s
	}
}

// WithDatabaseLogger sets the logger. It takes precedence over the verbosity
// level.
func WithDatabaseLogger(l *zap.Logger) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.Logger = l
	}
}

// WithDatabaseIdentifierKey sets the field holding document identifiers.
func WithDatabaseIdentifierKey(k string) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.IdentifierKey = k
	}
}

// WithDatabaseIDGenerator sets the identifier generator.
func WithDatabaseIDGenerator(g IDGenerator) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.IDGenerator = g
	}
}

// WithDatabaseComparer sets the comparer for value comparison operations.
func WithDatabaseComparer(c Comparer) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.Comparer = c
	}
}

// WithDatabaseFieldNavigator sets the field getter for accessing document
// fields.
func WithDatabaseFieldNavigator(f FieldNavigator) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.FieldNavigator = f
	}
}

// WithDatabaseMatcher sets the matcher implementation for query evaluation.
func WithDatabaseMatcher(m Matcher) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.Matcher = m
	}
}

// WithDatabaseProjector sets the projector used by key path projections.
func WithDatabaseProjector(p Projector) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.Projector = p
	}
}

// WithDatabaseDecoder sets the decoder used to copy documents into Go values.
func WithDatabaseDecoder(d Decoder) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.Decoder = d
	}
}

// WithDatabaseIndexFactory sets the factory function for creating view
// indexes.
func WithDatabaseIndexFactory(i IndexFactory) DatabaseOption {
	return func(dbo *DatabaseOptions) {
		dbo.IndexFactory = i
	}
}

// DatabaseOption configures database behavior through the functional options
// pattern.
type DatabaseOption func(*DatabaseOptions)

// DatabaseOptions contains parameters for customizing database behavior.
type DatabaseOptions struct {
	// Verbose sets the diagnostic verbosity level.
	Verbose int
	// Backend selects the storage backend when Storage is nil.
	Backend string
	// Storage is the durable document store.
	Storage Storage
	// Logger receives diagnostic output.
	Logger *zap.Logger
	// IdentifierKey is the field holding document identifiers.
	IdentifierKey string
	// IDGenerator creates document identifiers.
	IDGenerator IDGenerator
	// Comparer provides value comparison operations.
	Comparer Comparer
	// FieldNavigator provides field access operations.
	FieldNavigator FieldNavigator
	// Matcher evaluates whether documents match query criteria.
	Matcher Matcher
	// Projector builds key path projections.
	Projector Projector
	// Decoder copies documents into Go values.
	Decoder Decoder
	// IndexFactory creates view indexes.
	IndexFactory IndexFactory
}
