// Package index contains the default [domain.Index] implementation, an AVL
// tree mapping indexed values to document identifiers.
package index

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

// Index implements [domain.Index].
type Index struct {
	path string
	addr []string
	// Exported to allow testing. Should not be a problem because Index is
	// used as interface.
	Tree           bst.BST[data.Value, string]
	comparer       domain.Comparer
	fieldNavigator domain.FieldNavigator
	idKey          string
}

// NewIndex returns a new implementation of domain.Index over path. A nil addr
// is computed from path.
func NewIndex(path string, addr []string, options ...Option) (domain.Index, error) {
	i := &Index{
		path:           path,
		addr:           addr,
		comparer:       comparer.NewComparer(),
		fieldNavigator: fieldnavigator.NewFieldNavigator(),
		idKey:          data.DefaultIDKey,
	}
	for _, option := range options {
		option(i)
	}

	if i.addr == nil {
		var err error
		if i.addr, err = i.fieldNavigator.SplitFields(path); err != nil {
			return nil, err
		}
	}

	i.Tree = avl.NewBST(false, 8, NewBSTComparer(i.comparer))
	return i, nil
}

// Path implements [domain.Index].
func (i *Index) Path() string {
	return i.path
}

// getKeys returns the distinct keys doc is indexed under: the value itself
// and, for sequences, each of its elements.
func (i *Index) getKeys(doc *data.M) []data.Value {
	v, ok := i.fieldNavigator.GetField(doc, i.addr...)
	if !ok {
		return nil
	}
	keys := []data.Value{v}
	items, _ := v.Sequence()
	for _, item := range items {
		if !slices.ContainsFunc(keys, item.Equal) {
			keys = append(keys, item)
		}
	}
	return keys
}

// Insert implements [domain.Index]. If any key fails, the keys already
// inserted for doc are removed.
func (i *Index) Insert(doc *data.M) error {
	id := doc.IDAt(i.idKey)
	keys := i.getKeys(doc)
	for n, k := range keys {
		if err := i.Tree.Insert(k, id); err != nil {
			for _, inserted := range keys[:n] {
				_ = i.Tree.Delete(inserted, &id)
			}
			return fmt.Errorf("index %q: %w", i.path, err)
		}
	}
	return nil
}

// Remove implements [domain.Index].
func (i *Index) Remove(doc *data.M) error {
	id := doc.IDAt(i.idKey)
	var errs []error
	for _, k := range i.getKeys(doc) {
		if err := i.Tree.Delete(k, &id); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("index %q: %w", i.path, errors.Join(errs...))
	}
	return nil
}

// Candidates implements [domain.Index].
func (i *Index) Candidates(term domain.Criterion) (map[string]struct{}, error) {
	res := make(map[string]struct{})
	switch term.Op {
	case domain.OpEq:
		return res, i.getMatching(res, term.Arg)
	case domain.OpIn:
		set, _ := term.Arg.Sequence()
		return res, i.getMatching(res, set...)
	case domain.OpLike:
		return res, i.getBetweenBounds(res, bst.Query[data.Value]{
			GreaterThan: &bst.Bound[data.Value]{Value: data.String(""), IncludeEqual: true},
			LowerThan:   &bst.Bound[data.Value]{Value: data.Bool(false), IncludeEqual: false},
		})
	case domain.OpGt, domain.OpGe, domain.OpLt, domain.OpLe:
		qry, ok := i.rangeQuery(term.Op, term.Arg)
		if !ok {
			return res, nil
		}
		return res, i.getBetweenBounds(res, qry)
	default:
		return nil, fmt.Errorf("%w: unsupported operator %s", domain.ErrInvalidCriteria, term.Op)
	}
}

// rangeQuery bounds a range operator to the keys of the argument's kind. Only
// numbers and strings can be compared.
func (i *Index) rangeQuery(op domain.OpKind, arg data.Value) (bst.Query[data.Value], bool) {
	var lowest, above data.Value
	switch arg.Kind() {
	case data.KindNumber:
		lowest, above = data.Null(), data.String("")
	case data.KindString:
		lowest, above = data.String(""), data.Bool(false)
	default:
		return bst.Query[data.Value]{}, false
	}

	qry := bst.Query[data.Value]{
		GreaterThan: &bst.Bound[data.Value]{Value: lowest, IncludeEqual: arg.Kind() == data.KindString},
		LowerThan:   &bst.Bound[data.Value]{Value: above, IncludeEqual: false},
	}
	switch op {
	case domain.OpGt, domain.OpGe:
		qry.GreaterThan = &bst.Bound[data.Value]{Value: arg, IncludeEqual: op == domain.OpGe}
	case domain.OpLt, domain.OpLe:
		qry.LowerThan = &bst.Bound[data.Value]{Value: arg, IncludeEqual: op == domain.OpLe}
	}
	return qry, true
}

func (i *Index) getMatching(res map[string]struct{}, values ...data.Value) error {
	for _, v := range values {
		found, err := i.Tree.Search(v)
		if err != nil {
			return err
		}
		if found == nil {
			continue
		}
		for _, id := range found.Values() {
			res[id] = struct{}{}
		}
	}
	return nil
}

func (i *Index) getBetweenBounds(res map[string]struct{}, qry bst.Query[data.Value]) error {
	for id, err := range i.Tree.Query(qry) {
		if err != nil {
			return err
		}
		res[id] = struct{}{}
	}
	return nil
}

// Len implements [domain.Index].
func (i *Index) Len() int {
	return i.Tree.GetNumberOfKeys()
}
