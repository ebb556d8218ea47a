package domain

import (
	"github.com/samber/lo"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
)

// Record is a document as stored by a [Storage] backend. Seq is the insertion
// sequence number used to keep scan order across reopen.
type Record struct {
	ID  string
	Seq uint64
	Doc *data.M
}

// ChangeOp identifies the kind of a [Change].
type ChangeOp uint8

// Change kinds.
const (
	ChangeUpsert ChangeOp = iota
	ChangeDelete
)

// Change is one staged write of an atomic batch. Delete changes only use the
// record ID.
type Change struct {
	Op     ChangeOp
	Record Record
}

// Sort represents an ordered list of fields which should be used to sort query
// results, applied in sequence.
type Sort = []SortName

// SortName represents a single field and the order which should be used to sort
// it. A positive Order value means ascending order and a negative value means
// descending order.
type SortName struct {
	Key   string
	Order int64
}

// OpKind is the closed set of criteria operators.
type OpKind uint8

// Criteria operators.
const (
	OpEq OpKind = iota
	OpGt
	OpGe
	OpLt
	OpLe
	OpLike
	OpIn
)

// String implements [fmt.Stringer].
func (o OpKind) String() string {
	switch o {
	case OpEq:
		return "$eq"
	case OpGt:
		return "$gt"
	case OpGe:
		return "$ge"
	case OpLt:
		return "$lt"
	case OpLe:
		return "$le"
	case OpLike:
		return "$like"
	case OpIn:
		return "$in"
	default:
		return "unknown"
	}
}

// Criterion is a single compiled term: the value at Path must satisfy Op
// against Arg.
type Criterion struct {
	Path string
	Addr []string
	Op   OpKind
	Arg  data.Value
}

// Criteria is a conjunction of terms.
type Criteria struct {
	Terms []Criterion
}

// Paths returns the distinct paths used by the terms, in order of appearance.
func (c *Criteria) Paths() []string {
	if c == nil {
		return nil
	}
	return lo.Uniq(lo.Map(c.Terms, func(t Criterion, _ int) string {
		return t.Path
	}))
}
