package domain

import (
	"strings"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
)

// ModifyOperation is the set of flags returned by a [ModifyFunc]. Flags
// combine with bitwise OR.
type ModifyOperation uint16

// Modify flags. Noop is the empty set.
const (
	// Noop leaves the document untouched.
	Noop ModifyOperation = 0
	// Stop ends a multi-document modify after the current document.
	Stop ModifyOperation = 1 << iota
	// Rollback discards every change staged by the call.
	Rollback
	// ReturnOld returns the document as it was before the change.
	ReturnOld
	// ReturnNew returns the document as it is after the change.
	ReturnNew
	// Update replaces the stored document with the one given to the
	// callback.
	Update
	// Remove deletes the document.
	Remove
	// Upsert inserts the document given to the callback when nothing
	// matched. It must be combined with Update.
	Upsert
)

// Has reports whether every flag of f is set in o.
func (o ModifyOperation) Has(f ModifyOperation) bool {
	return o&f == f
}

// String implements [fmt.Stringer].
func (o ModifyOperation) String() string {
	if o == Noop {
		return "Noop"
	}
	names := []struct {
		flag ModifyOperation
		name string
	}{
		{Stop, "Stop"},
		{Rollback, "Rollback"},
		{ReturnOld, "ReturnOld"},
		{ReturnNew, "ReturnNew"},
		{Update, "Update"},
		{Remove, "Remove"},
		{Upsert, "Upsert"},
	}
	var parts []string
	for _, n := range names {
		if o.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ModifyFunc is called with a mutable copy of each candidate document and
// decides what happens to it.
type ModifyFunc = func(doc *data.M) ModifyOperation
