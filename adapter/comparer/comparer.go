// Package comparer contains the default [domain.Comparer] implementation.
package comparer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

// Comparer implements domain.Comparer.
type Comparer struct{}

// NewComparer returns a new implementation of domain.Comparer.
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Comparable implements domain.Comparer. Only number/number and
// string/string pairs are comparable.
func (c *Comparer) Comparable(a, b data.Value) bool {
	switch a.Kind() {
	case data.KindNumber, data.KindString:
		return a.Kind() == b.Kind()
	default:
		return false
	}
}

// Compare implements domain.Comparer.
func (c *Comparer) Compare(a, b data.Value) (int, error) {
	if !c.Comparable(a, b) {
		return 0, fmt.Errorf("%w: cannot compare %s and %s", domain.ErrTypeMismatch, a.Kind(), b.Kind())
	}
	return c.Order(a, b), nil
}

// Order implements domain.Comparer. Kinds are ordered as null, numbers,
// strings, booleans, sequences and mappings. Values of the same kind are
// compared by content.
func (c *Comparer) Order(a, b data.Value) int {
	if comp := cmp.Compare(c.rank(a.Kind()), c.rank(b.Kind())); comp != 0 {
		return comp
	}
	switch a.Kind() {
	case data.KindNumber:
		an, _ := a.Number()
		bn, _ := b.Number()
		return cmp.Compare(an, bn)
	case data.KindString:
		as, _ := a.Str()
		bs, _ := b.Str()
		return cmp.Compare(as, bs)
	case data.KindBool:
		ab, _ := a.Bool()
		bb, _ := b.Bool()
		return c.compareBool(ab, bb)
	case data.KindSequence:
		as, _ := a.Sequence()
		bs, _ := b.Sequence()
		return c.compareSequence(as, bs)
	case data.KindMapping:
		am, _ := a.Mapping()
		bm, _ := b.Mapping()
		return c.compareDoc(am, bm)
	default:
		return 0
	}
}

func (c *Comparer) rank(k data.Kind) int {
	switch k {
	case data.KindNull:
		return 0
	case data.KindNumber:
		return 1
	case data.KindString:
		return 2
	case data.KindBool:
		return 3
	case data.KindSequence:
		return 4
	default:
		return 5
	}
}

func (c *Comparer) compareSequence(a, b []data.Value) int {
	for i := range min(len(a), len(b)) {
		if comp := c.Order(a[i], b[i]); comp != 0 {
			return comp
		}
	}

	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b))
}

func (c *Comparer) compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

func (c *Comparer) compareDoc(a, b *data.M) int {
	aKeys := slices.Sorted(a.Keys())
	bKeys := slices.Sorted(b.Keys())

	for i := range min(len(aKeys), len(bKeys)) {
		if comp := cmp.Compare(aKeys[i], bKeys[i]); comp != 0 {
			return comp
		}
		av, _ := a.Get(aKeys[i])
		bv, _ := b.Get(bKeys[i])
		if comp := c.Order(av, bv); comp != 0 {
			return comp
		}
	}

	return cmp.Compare(len(aKeys), len(bKeys))
}
