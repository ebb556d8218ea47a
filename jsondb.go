// Package jsondb provides an embedded JSON document database for golang.
//
// A [Database] holds named collections of JSON documents. Documents are
// queried with MongoDB-like criteria, optionally through a [View] that
// indexes some of their paths, and modified atomically with a callback that
// decides what happens to each matching document.
//
// The basic usage starts with opening a database with [Open]. An empty path
// opens an in-memory database.
package jsondb

import (
	"context"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/datastore"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
	"go.uber.org/zap"
)

var (
	// ErrStorageUnavailable is returned by [Open] when the backing store
	// cannot be opened or loaded.
	ErrStorageUnavailable = domain.ErrStorageUnavailable
	// ErrInvalidCriteria is returned when criteria, key paths or sort keys
	// are malformed.
	ErrInvalidCriteria = domain.ErrInvalidCriteria
	// ErrTypeMismatch is returned by [Comparer.Compare] when two values
	// cannot be compared.
	ErrTypeMismatch = domain.ErrTypeMismatch
	// ErrNotFound is returned by [Collection.Get] for unknown identifiers.
	ErrNotFound = domain.ErrNotFound
	// ErrInvalidModifyOperation is returned when a [ModifyFunc] returns
	// both [Remove] and [Update].
	ErrInvalidModifyOperation = domain.ErrInvalidModifyOperation
	// ErrCannotModifyID is returned when a [ModifyFunc] changes the
	// identifier of the document it updates.
	ErrCannotModifyID = domain.ErrCannotModifyID
	// ErrClosed is returned by every operation on a closed [Database].
	ErrClosed = domain.ErrClosed
	// ErrCollectionName is returned when a collection is requested with an
	// empty name.
	ErrCollectionName = domain.ErrCollectionName
	// ErrViewPaths is returned when a view is requested with no paths, an
	// invalid path or a repeated path.
	ErrViewPaths = domain.ErrViewPaths
	// ErrTargetNil is returned when a nil target is given to decode a
	// document, for example by [Query.DecodeFirst].
	ErrTargetNil = domain.ErrTargetNil
	// ErrNonPointer is returned when the decoding target is not a pointer.
	ErrNonPointer = domain.ErrNonPointer
)

// ErrFieldName represents an invalid field name, for when a document holds a
// field starting with '$' or containing a '.'.
type ErrFieldName = domain.ErrFieldName

// ErrDocumentType is returned when an user passes a value that cannot be
// used as a document.
type ErrDocumentType = domain.ErrDocumentType

// ErrDecode is returned when a document cannot be decoded into the given
// target.
type ErrDecode = domain.ErrDecode

// Database is a registry of named collections.
type Database = datastore.Database

// Collection is a named set of documents kept in insertion order.
type Collection = datastore.Collection

// View indexes some paths of a collection to speed up queries over them.
type View = datastore.View

// Query is a compiled criteria bound to a collection. Every call evaluates
// the current state of the collection.
type Query = datastore.Query

// Config holds the values accepted by [OpenWithOptions].
type Config = datastore.Config

// M is an ordered JSON document.
type M = data.M

// Value is a JSON value.
type Value = data.Value

// Open opens the database at path with the provided options:
//
// - [WithVerbose]: sets the diagnostic verbosity level.
//
// - [WithBackend]: selects the storage backend. An empty path defaults to
// [BackendMemory] and any other path to [BackendBadger].
//
// - [WithLogger]: sets the zap logger, ignoring the verbosity level.
//
// - [WithIdentifierKey]: sets the field holding document identifiers.
//
// - [WithStorage]: sets the storage implementation.
//
// - [WithIDGenerator]: sets the generator of new identifiers.
//
// - [WithComparer], [WithFieldNavigator], [WithMatcher], [WithProjector],
// [WithDecoder] and [WithIndexFactory]: replace the default implementations.
func Open(ctx context.Context, path string, options ...Option) (*Database, error) {
	return datastore.Open(ctx, path, options...)
}

// OpenWithOptions opens the database at path configured by an options bag
// with the keys "verbose", "backend" and "identifierKey". Options given after
// the bag override it.
func OpenWithOptions(ctx context.Context, path string, bag map[string]any, options ...Option) (*Database, error) {
	return datastore.OpenWithOptions(ctx, path, bag, options...)
}

// Backend names.
const (
	BackendMemory = domain.BackendMemory
	BackendBadger = domain.BackendBadger
	BackendSQLite = domain.BackendSQLite
)

// ModifyOperation is the set of flags returned by a [ModifyFunc].
type ModifyOperation = domain.ModifyOperation

// ModifyFunc receives a copy of a matching document and decides what
// happens to it.
type ModifyFunc = domain.ModifyFunc

// Modify flags.
const (
	Noop      = domain.Noop
	Stop      = domain.Stop
	Rollback  = domain.Rollback
	ReturnOld = domain.ReturnOld
	ReturnNew = domain.ReturnNew
	Update    = domain.Update
	Remove    = domain.Remove
	Upsert    = domain.Upsert
)

// Storage is the durable document store behind a database.
type Storage = domain.Storage

// Comparer provides ordering and comparison over JSON values.
type Comparer = domain.Comparer

// FieldNavigator resolves dotted paths inside documents.
type FieldNavigator = domain.FieldNavigator

// Matcher compiles and evaluates criteria.
type Matcher = domain.Matcher

// Projector reduces documents to some of their paths.
type Projector = domain.Projector

// Index is the index of one view path.
type Index = domain.Index

// IndexFactory creates view indexes.
type IndexFactory = domain.IndexFactory

// IDGenerator creates document identifiers.
type IDGenerator = domain.IDGenerator

// Decoder copies documents into Go values.
type Decoder = domain.Decoder

// Sort represents an ordered list of fields which should be used to sort
// query results.
type Sort = domain.Sort

// SortName is a single sort field. A positive Order sorts ascending and a
// negative one sorts descending.
type SortName = domain.SortName

// FindOption configures query behavior through the functional options
// pattern.
type FindOption = domain.FindOption

// WithSort specifies the sort order for query results.
func WithSort(s Sort) FindOption {
	return domain.WithSort(s)
}

// WithUpsert lets modify calls insert a document when nothing matches.
func WithUpsert() FindOption {
	return domain.WithUpsert()
}

// Option configures database behavior through the functional options
// pattern.
type Option = domain.DatabaseOption

// WithVerbose sets the diagnostic verbosity level.
func WithVerbose(v int) Option {
	return domain.WithDatabaseVerbose(v)
}

// WithBackend selects the storage backend by name.
func WithBackend(b string) Option {
	return domain.WithDatabaseBackend(b)
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return domain.WithDatabaseLogger(l)
}

// WithIdentifierKey sets the field holding document identifiers.
func WithIdentifierKey(k string) Option {
	return domain.WithDatabaseIdentifierKey(k)
}

// WithStorage sets the storage implementation.
func WithStorage(s Storage) Option {
	return domain.WithDatabaseStorage(s)
}

// WithIDGenerator sets the identifier generator.
func WithIDGenerator(g IDGenerator) Option {
	return domain.WithDatabaseIDGenerator(g)
}

// WithComparer sets the comparer.
func WithComparer(c Comparer) Option {
	return domain.WithDatabaseComparer(c)
}

// WithFieldNavigator sets the field navigator.
func WithFieldNavigator(f FieldNavigator) Option {
	return domain.WithDatabaseFieldNavigator(f)
}

// WithMatcher sets the criteria matcher.
func WithMatcher(m Matcher) Option {
	return domain.WithDatabaseMatcher(m)
}

// WithProjector sets the projector.
func WithProjector(p Projector) Option {
	return domain.WithDatabaseProjector(p)
}

// WithIndexFactory sets the factory of view indexes.
func WithIndexFactory(i IndexFactory) Option {
	return domain.WithDatabaseIndexFactory(i)
}

// WithDecoder sets the decoder used by [Query.Decode] and
// [Query.DecodeFirst].
func WithDecoder(d Decoder) Option {
	return domain.WithDatabaseDecoder(d)
}
