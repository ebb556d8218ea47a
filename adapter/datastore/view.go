package datastore

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
	"go.uber.org/zap"
)

// View is a set of indexes over some paths of a collection. Queries created
// from a view use the indexes when every criteria path is indexed.
type View struct {
	c       *Collection
	paths   []string
	indexes []domain.Index
	byPath  map[string]domain.Index
}

// newView builds the view indexes from the current documents. It must be
// called with the collection write lock held.
func newView(c *Collection, paths []string, addrs [][]string) (*View, error) {
	v := &View{
		c:       c,
		paths:   slices.Clone(paths),
		indexes: make([]domain.Index, len(paths)),
		byPath:  make(map[string]domain.Index, len(paths)),
	}
	for n, p := range paths {
		idx, err := c.db.indexFactory(p, addrs[n])
		if err != nil {
			return nil, fmt.Errorf("creating index %q: %w", p, err)
		}
		v.indexes[n] = idx
		v.byPath[p] = idx
	}
	for _, e := range c.scan() {
		for _, idx := range v.indexes {
			if err := idx.Insert(e.doc); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

// Paths returns the indexed paths.
func (v *View) Paths() []string {
	return slices.Clone(v.paths)
}

// Find returns a query over the documents matching criteria.
func (v *View) Find(criteria any, options ...domain.FindOption) (*Query, error) {
	return newQuery(v.c, v, criteria, options...)
}

// covers reports whether every path used by crit is indexed.
func (v *View) covers(crit *domain.Criteria) bool {
	return len(crit.Terms) > 0 && lo.Every(v.paths, crit.Paths())
}

// candidates returns the entries that may match crit, in insertion order.
func (v *View) candidates(crit *domain.Criteria) ([]*entry, error) {
	var ids map[string]struct{}
	for _, term := range crit.Terms {
		found, err := v.byPath[term.Path].Candidates(term)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = found
		} else {
			for id := range ids {
				if _, ok := found[id]; !ok {
					delete(ids, id)
				}
			}
		}
		if len(ids) == 0 {
			return nil, nil
		}
	}

	res := make([]*entry, 0, len(ids))
	for id := range ids {
		if e, ok := v.c.entries[id]; ok {
			res = append(res, e)
		}
	}
	slices.SortFunc(res, func(a, b *entry) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return res, nil
}

// update moves a document from prev to next in every index. Either may be
// nil. It runs after storage accepted the change, so errors are logged
// instead of returned. The default index is non-unique and every pair of
// values is ordered, so it never fails here; an index that can reject a
// document must do so before it reaches storage.
func (v *View) update(prev, next *entry) {
	for _, idx := range v.indexes {
		if prev != nil {
			if err := idx.Remove(prev.doc); err != nil {
				v.logIndexError("view index removal failed", idx, prev.doc, err)
			}
		}
		if next != nil {
			if err := idx.Insert(next.doc); err != nil {
				v.logIndexError("view index insertion failed", idx, next.doc, err)
			}
		}
	}
}

func (v *View) logIndexError(msg string, idx domain.Index, doc *data.M, err error) {
	v.c.db.logger.Error(msg,
		zap.String("collection", v.c.name),
		zap.String("path", idx.Path()),
		zap.String("id", doc.IDAt(v.c.db.idKey)),
		zap.Error(err),
	)
}
