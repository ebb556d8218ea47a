package datastore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
	"github.com/vinicius-lino-figueiredo/jsondb/pkg/ctxsync"
	"go.uber.org/zap"
)

type entry struct {
	seq uint64
	doc *data.M
}

// Collection is a named set of documents in insertion order.
type Collection struct {
	db      *Database
	name    string
	mu      *ctxsync.RWMutex
	entries map[string]*entry
	order   []string
	seen    map[string]struct{}
	nextSeq uint64
	views   map[string]*View
	vorder  []*View
}

func newCollection(db *Database, name string) *Collection {
	return &Collection{
		db:      db,
		name:    name,
		mu:      ctxsync.NewRWMutex(),
		entries: make(map[string]*entry),
		seen:    make(map[string]struct{}),
		views:   make(map[string]*View),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Len returns the number of documents in the collection.
func (c *Collection) Len(ctx context.Context) (int, error) {
	if err := c.rlock(ctx); err != nil {
		return 0, err
	}
	defer c.runlock()
	return len(c.entries), nil
}

// Get returns a copy of the document with the given identifier, or
// [domain.ErrNotFound].
func (c *Collection) Get(ctx context.Context, id string) (*data.M, error) {
	if err := c.rlock(ctx); err != nil {
		return nil, err
	}
	defer c.runlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	return e.doc.Clone(), nil
}

// Save inserts doc, or replaces the stored document with the same
// identifier. A document without identifier gets a new one. The identifier
// of a removed document cannot be saved again: it gives [domain.ErrNotFound].
// The returned document is a copy of the stored one.
func (c *Collection) Save(ctx context.Context, doc any) (*data.M, error) {
	res, err := c.SaveAll(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

// SaveAll saves every document in a single atomic batch.
func (c *Collection) SaveAll(ctx context.Context, docs ...any) ([]*data.M, error) {
	prepared := make([]*data.M, len(docs))
	for n, doc := range docs {
		m, err := data.NewDocument(doc)
		if err != nil {
			return nil, err
		}
		m = m.Clone()
		if err := checkDocument(m); err != nil {
			return nil, err
		}
		if v, ok := m.Get(c.db.idKey); ok {
			if id, ok := v.Str(); !ok || id == "" {
				return nil, domain.ErrFieldName{Field: c.db.idKey, Reason: "identifier must be a non-empty string"}
			}
		}
		prepared[n] = m
	}

	if err := c.lock(ctx); err != nil {
		return nil, err
	}
	defer c.unlock()

	b := c.newBatch()
	res := make([]*data.M, len(prepared))
	for n, m := range prepared {
		id := m.IDAt(c.db.idKey)
		if id == "" {
			var err error
			if id, err = b.newID(); err != nil {
				return nil, err
			}
			m = withID(m, c.db.idKey, id)
		} else if err := b.checkReuse(id); err != nil {
			return nil, err
		}
		b.put(id, m)
		res[n] = m.Clone()
	}
	if err := c.commit(ctx, b); err != nil {
		return nil, err
	}
	c.db.logger.Debug("documents saved",
		zap.String("collection", c.name),
		zap.Int("count", len(res)),
	)
	return res, nil
}

// Find returns a query over the documents matching criteria. Nil criteria
// match every document.
func (c *Collection) Find(criteria any, options ...domain.FindOption) (*Query, error) {
	return newQuery(c, nil, criteria, options...)
}

// View returns the view indexing the given paths, building it if needed.
func (c *Collection) View(ctx context.Context, paths ...string) (*View, error) {
	addrs, err := c.viewAddrs(paths)
	if err != nil {
		return nil, err
	}
	if err := c.lock(ctx); err != nil {
		return nil, err
	}
	defer c.unlock()

	key := strings.Join(paths, "\x00")
	if v, ok := c.views[key]; ok {
		return v, nil
	}
	v, err := newView(c, paths, addrs)
	if err != nil {
		return nil, err
	}
	c.views[key] = v
	c.vorder = append(c.vorder, v)
	c.db.logger.Info("view built",
		zap.String("collection", c.name),
		zap.Strings("paths", paths),
		zap.Int("documents", len(c.order)),
	)
	return v, nil
}

func (c *Collection) viewAddrs(paths []string) ([][]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths given", domain.ErrViewPaths)
	}
	addrs := make([][]string, len(paths))
	for n, p := range paths {
		if slices.Contains(paths[:n], p) {
			return nil, fmt.Errorf("%w: repeated path %q", domain.ErrViewPaths, p)
		}
		addr, err := c.db.fieldNavigator.SplitFields(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrViewPaths, err)
		}
		addrs[n] = addr
	}
	return addrs, nil
}

// ViewPaths returns the path lists of the views defined on the collection,
// in creation order.
func (c *Collection) ViewPaths(ctx context.Context) ([][]string, error) {
	if err := c.rlock(ctx); err != nil {
		return nil, err
	}
	defer c.runlock()
	res := make([][]string, len(c.vorder))
	for n, v := range c.vorder {
		res[n] = v.Paths()
	}
	return res, nil
}

func (c *Collection) rlock(ctx context.Context) error {
	if err := c.db.begin(); err != nil {
		return err
	}
	if err := c.mu.RLockWithContext(ctx); err != nil {
		c.db.end()
		return err
	}
	return nil
}

func (c *Collection) runlock() {
	c.mu.RUnlock()
	c.db.end()
}

func (c *Collection) lock(ctx context.Context) error {
	if err := c.db.begin(); err != nil {
		return err
	}
	if err := c.mu.LockWithContext(ctx); err != nil {
		c.db.end()
		return err
	}
	return nil
}

func (c *Collection) unlock() {
	c.mu.Unlock()
	c.db.end()
}

// scan returns the entries in insertion order.
func (c *Collection) scan() []*entry {
	res := make([]*entry, len(c.order))
	for n, id := range c.order {
		res[n] = c.entries[id]
	}
	return res
}

func (c *Collection) insertEntry(id string, e *entry) {
	old, ok := c.entries[id]
	c.entries[id] = e
	if ok && old.seq == e.seq {
		return
	}
	if ok {
		c.removeOrder(id)
	}
	pos, _ := slices.BinarySearchFunc(c.order, e.seq, func(id string, seq uint64) int {
		s := c.entries[id].seq
		switch {
		case s < seq:
			return -1
		case s > seq:
			return 1
		}
		return 0
	})
	c.order = slices.Insert(c.order, pos, id)
}

func (c *Collection) removeEntry(id string) {
	if _, ok := c.entries[id]; !ok {
		return
	}
	c.removeOrder(id)
	delete(c.entries, id)
}

func (c *Collection) removeOrder(id string) {
	c.order = slices.DeleteFunc(c.order, func(o string) bool { return o == id })
}

// withID returns a copy of m with id set as its first field.
func withID(m *data.M, key, id string) *data.M {
	res := data.NewM()
	res.Set(key, data.String(id))
	for k, v := range m.Iter() {
		if k != key {
			res.Set(k, v)
		}
	}
	return res
}
