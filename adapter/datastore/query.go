package datastore

import (
	"context"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

type sortKey struct {
	addr  []string
	order int64
}

// Query is a compiled criteria bound to a collection. It holds no results:
// every call evaluates the current state of the collection.
type Query struct {
	c           *Collection
	view        *View
	criteria    *domain.Criteria
	sort        []sortKey
	allowUpsert bool
}

func newQuery(c *Collection, v *View, criteria any, options ...domain.FindOption) (*Query, error) {
	var opts domain.FindOptions
	for _, option := range options {
		option(&opts)
	}
	crit, err := c.db.matcher.Compile(criteria)
	if err != nil {
		return nil, err
	}
	q := &Query{c: c, view: v, criteria: crit, allowUpsert: opts.Upsert}
	for _, s := range opts.Sort {
		addr, err := c.db.fieldNavigator.SplitFields(s.Key)
		if err != nil {
			return nil, fmt.Errorf("sort key: %w", err)
		}
		q.sort = append(q.sort, sortKey{addr: addr, order: s.Order})
	}
	return q, nil
}

// Criteria returns the compiled criteria.
func (q *Query) Criteria() *domain.Criteria {
	return q.criteria
}

// matching returns the matching entries, sorted. It must be called with the
// collection lock held.
func (q *Query) matching() ([]*entry, error) {
	var candidates []*entry
	if q.view != nil && q.view.covers(q.criteria) {
		var err error
		if candidates, err = q.view.candidates(q.criteria); err != nil {
			return nil, err
		}
	} else {
		candidates = q.c.scan()
	}

	res := make([]*entry, 0, len(candidates))
	for _, e := range candidates {
		if q.c.db.matcher.Match(q.criteria, e.doc) {
			res = append(res, e)
		}
	}
	if len(q.sort) > 0 {
		slices.SortStableFunc(res, q.compare)
	}
	return res, nil
}

func (q *Query) compare(a, b *entry) int {
	fn := q.c.db.fieldNavigator
	for _, s := range q.sort {
		va, okA := fn.GetField(a.doc, s.addr...)
		vb, okB := fn.GetField(b.doc, s.addr...)
		var cmp int
		switch {
		case !okA && !okB:
			cmp = 0
		case !okA:
			cmp = -1
		case !okB:
			cmp = 1
		default:
			cmp = q.c.db.comparer.Order(va, vb)
		}
		if cmp != 0 {
			if s.order < 0 {
				return -cmp
			}
			return cmp
		}
	}
	return 0
}

func (q *Query) read(ctx context.Context, fn func([]*entry)) error {
	if err := q.c.rlock(ctx); err != nil {
		return err
	}
	defer q.c.runlock()
	entries, err := q.matching()
	if err != nil {
		return err
	}
	fn(entries)
	return nil
}

// Count returns the number of matching documents.
func (q *Query) Count(ctx context.Context) (int, error) {
	var res int
	err := q.read(ctx, func(entries []*entry) {
		res = len(entries)
	})
	return res, err
}

// First returns a copy of the first matching document, or nil.
func (q *Query) First(ctx context.Context) (*data.M, error) {
	var res *data.M
	err := q.read(ctx, func(entries []*entry) {
		if len(entries) > 0 {
			res = entries[0].doc.Clone()
		}
	})
	return res, err
}

// All returns copies of every matching document.
func (q *Query) All(ctx context.Context) ([]*data.M, error) {
	return q.AllInRange(ctx, 0, 0)
}

// AllInRange returns copies of at most limit matching documents, skipping
// the first offset ones. A limit lower than one means no limit.
func (q *Query) AllInRange(ctx context.Context, offset, limit int) ([]*data.M, error) {
	var res []*data.M
	err := q.read(ctx, func(entries []*entry) {
		entries = window(entries, offset, limit)
		res = make([]*data.M, len(entries))
		for n, e := range entries {
			res[n] = e.doc.Clone()
		}
	})
	return res, err
}

func window(entries []*entry, offset, limit int) []*entry {
	offset = max(offset, 0)
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

// AllAndProjectKeyPaths returns every matching document reduced to the
// given dotted paths.
func (q *Query) AllAndProjectKeyPaths(ctx context.Context, paths ...string) ([]*data.M, error) {
	return q.AllInRangeAndProjectKeyPaths(ctx, 0, 0, paths...)
}

// AllInRangeAndProjectKeyPaths is like [Query.AllInRange], reducing each
// document to the given dotted paths.
func (q *Query) AllInRangeAndProjectKeyPaths(ctx context.Context, offset, limit int, paths ...string) ([]*data.M, error) {
	addrs, err := q.keyPaths(paths)
	if err != nil {
		return nil, err
	}
	var res []*data.M
	err = q.read(ctx, func(entries []*entry) {
		entries = window(entries, offset, limit)
		res = make([]*data.M, len(entries))
		for n, e := range entries {
			res[n] = q.c.db.projector.Project(e.doc, addrs...)
		}
	})
	return res, err
}

// FirstAndProjectKeyPaths returns the first matching document reduced to
// the given dotted paths, or nil.
func (q *Query) FirstAndProjectKeyPaths(ctx context.Context, paths ...string) (*data.M, error) {
	res, err := q.AllInRangeAndProjectKeyPaths(ctx, 0, 1, paths...)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0], nil
}

func (q *Query) keyPaths(paths []string) ([][]string, error) {
	addrs := make([][]string, len(paths))
	for n, p := range paths {
		addr, err := q.c.db.fieldNavigator.SplitFields(p)
		if err != nil {
			return nil, err
		}
		addrs[n] = addr
	}
	return addrs, nil
}

// AllAndProject calls fn with a copy of every matching document and returns
// what it returns.
func (q *Query) AllAndProject(ctx context.Context, fn func(doc *data.M) any) ([]any, error) {
	return q.AllInRangeAndProject(ctx, 0, 0, fn)
}

// AllInRangeAndProject is like [Query.AllAndProject] over the documents
// [Query.AllInRange] would return. fn runs after the collection lock is
// released, so it may use the collection.
func (q *Query) AllInRangeAndProject(ctx context.Context, offset, limit int, fn func(doc *data.M) any) ([]any, error) {
	docs, err := q.AllInRange(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	res := make([]any, len(docs))
	for n, doc := range docs {
		res[n] = fn(doc)
	}
	return res, nil
}

// FirstAndProject calls fn with a copy of the first matching document and
// returns what it returns. fn is not called when nothing matches.
func (q *Query) FirstAndProject(ctx context.Context, fn func(doc *data.M) any) (any, error) {
	res, err := q.AllInRangeAndProject(ctx, 0, 1, fn)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0], nil
}

// Decode copies every matching document into target, which must point to a
// slice.
func (q *Query) Decode(ctx context.Context, target any) error {
	docs, err := q.All(ctx)
	if err != nil {
		return err
	}
	src := make([]any, len(docs))
	for n, doc := range docs {
		src[n] = doc.Map()
	}
	return q.c.db.decoder.Decode(src, target)
}

// DecodeFirst copies the first matching document into target. It returns
// [domain.ErrNotFound] if nothing matches.
func (q *Query) DecodeFirst(ctx context.Context, target any) error {
	doc, err := q.First(ctx)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}
	return q.c.db.decoder.Decode(doc, target)
}
