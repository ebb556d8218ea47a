package domain

import (
	"errors"
	"fmt"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
)

var (
	// ErrStorageUnavailable is returned when the backing store cannot be
	// opened or created.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidCriteria is returned for malformed criteria.
	ErrInvalidCriteria = errors.New("invalid criteria")
	// ErrTypeMismatch is returned when two values cannot be compared.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNotFound is returned when a document identifier no longer exists.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidModifyOperation is returned when a modify callback
	// returns both Remove and Update.
	ErrInvalidModifyOperation = errors.New("cannot both remove and update a document")
	// ErrCannotModifyID is returned when an update changes the document
	// identifier.
	ErrCannotModifyID = errors.New("cannot modify document identifier")
	// ErrClosed is returned by operations on a closed database.
	ErrClosed = errors.New("database is closed")
	// ErrCollectionName is returned for an empty collection name.
	ErrCollectionName = errors.New("invalid collection name")
	// ErrViewPaths is returned when a view is requested with no paths, an
	// empty path or a repeated path.
	ErrViewPaths = errors.New("invalid view paths")
)

// ErrFieldName is returned when a document holds a field name that cannot be
// stored.
type ErrFieldName struct {
	Field  string
	Reason string
}

func (e ErrFieldName) Error() string {
	return fmt.Sprintf("invalid field name %q: %s", e.Field, e.Reason)
}

// ErrDocumentType is returned when a value cannot be used as a document.
type ErrDocumentType = data.ErrDocumentType

var (
	// ErrTargetNil is returned when a nil target is given to
	// [Decoder.Decode].
	ErrTargetNil = errors.New("target is nil")
	// ErrNonPointer is returned when a non-pointer target is given to
	// [Decoder.Decode].
	ErrNonPointer = errors.New("target must be a non-nil pointer")
)

// ErrDecode wraps the errors of decoding a document into a Go value.
type ErrDecode struct {
	Source any
	Target any
}

func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}
