// Package domain contains domain-specific interfaces and option types for
// jsondb.
//
// This package defines the core interfaces that must be implemented by
// adapters, as well as functional options for configuring the database and
// its queries.
package domain

import (
	"context"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
)

// Storage is the durable document store behind a database. Implementations
// must be safe for concurrent use by multiple collections.
type Storage interface {
	// CreateCollection registers a collection name. Creating an existing
	// collection is not an error.
	CreateCollection(ctx context.Context, name string) error
	// ListCollections returns every registered collection name, in
	// creation order.
	ListCollections(ctx context.Context) ([]string, error)
	// LoadAll returns every record of a collection, sorted by Seq.
	LoadAll(ctx context.Context, collection string) ([]Record, error)
	// Upsert writes records, replacing the ones with the same ID.
	Upsert(ctx context.Context, collection string, records ...Record) error
	// LoadRemoved returns the IDs of deleted records that were not written
	// again since.
	LoadRemoved(ctx context.Context, collection string) ([]string, error)
	// Delete removes records by ID, remembering each ID as removed. Missing
	// IDs are ignored.
	Delete(ctx context.Context, collection string, ids ...string) error
	// Apply writes a batch of changes atomically: either every change is
	// persisted or none is. Delete changes remember the ID as removed and
	// upsert changes forget it.
	Apply(ctx context.Context, collection string, changes ...Change) error
	// Close releases the backend.
	Close() error
}

// Comparer provides ordering and comparison operations over JSON values.
type Comparer interface {
	// Order returns -1, 0 or 1 following a total order over every value
	// kind. It is used by index trees and sorting.
	Order(a, b data.Value) int
	// Compare compares two values of the same comparable kind, returning
	// [ErrTypeMismatch] for anything else.
	Compare(a, b data.Value) (int, error)
	// Comparable reports whether Compare accepts a and b.
	Comparable(a, b data.Value) bool
}

// FieldNavigator provides field access operations with dot notation support.
type FieldNavigator interface {
	// GetField resolves an address by descending mappings only. It
	// reports false if any step is missing or is not a mapping.
	GetField(doc *data.M, addr ...string) (data.Value, bool)
	// EnsureField sets v at addr, creating or replacing intermediate
	// values with mappings as needed.
	EnsureField(doc *data.M, v data.Value, addr ...string)
	// SplitFields parses a dotted path into its address.
	SplitFields(path string) ([]string, error)
}

// IDGenerator creates document identifiers.
type IDGenerator interface {
	// GenerateID returns a new identifier.
	GenerateID() (string, error)
}

// Matcher compiles criteria and evaluates documents against them.
type Matcher interface {
	// Compile validates criteria and turns it into a list of terms. Nil
	// criteria compile to an empty list that matches everything.
	Compile(criteria any) (*Criteria, error)
	// Match reports whether doc satisfies every term of c.
	Match(c *Criteria, doc *data.M) bool
}

// Index maps the value found at one path of each document to the identifiers
// of the documents holding it.
type Index interface {
	// Path returns the indexed dotted path.
	Path() string
	// Insert indexes doc. A sequence value is indexed per element.
	Insert(doc *data.M) error
	// Remove drops doc from the index.
	Remove(doc *data.M) error
	// Candidates returns the identifiers that may satisfy term. The
	// result is a superset of the matching documents' identifiers.
	Candidates(term Criterion) (map[string]struct{}, error)
	// Len returns the number of distinct keys in the index.
	Len() int
}

// Projector builds documents holding only some paths of another document.
type Projector interface {
	// Project returns a new document holding the values at the given
	// addresses. Absent addresses are omitted.
	Project(doc *data.M, addrs ...[]string) *data.M
}

// Decoder converts documents into Go values.
type Decoder interface {
	// Decode copies source into the value pointed by target.
	Decode(source any, target any) error
}
