package datastore

import (
	"context"
	"fmt"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

// staged is one pending change. prev is nil for insertions and next is nil
// for removals.
type staged struct {
	id   string
	prev *entry
	next *entry
}

// batch collects the changes of one write operation. Nothing is visible to
// the collection until the batch is committed.
type batch struct {
	c       *Collection
	pending map[string]*entry
	changes []staged
	nextSeq uint64
}

func (c *Collection) newBatch() *batch {
	return &batch{
		c:       c,
		pending: make(map[string]*entry),
		nextSeq: c.nextSeq,
	}
}

// get returns the entry stored under id as seen by the batch.
func (b *batch) get(id string) (*entry, bool) {
	if e, ok := b.pending[id]; ok {
		return e, e != nil
	}
	e, ok := b.c.entries[id]
	return e, ok
}

// put stages doc under id. A replaced document keeps its sequence number.
func (b *batch) put(id string, doc *data.M) {
	prev, ok := b.get(id)
	var seq uint64
	if ok {
		seq = prev.seq
	} else {
		seq = b.nextSeq
		b.nextSeq++
		prev = nil
	}
	e := &entry{seq: seq, doc: doc}
	b.pending[id] = e
	b.changes = append(b.changes, staged{id: id, prev: prev, next: e})
}

// remove stages the removal of id. It reports whether the document existed.
func (b *batch) remove(id string) bool {
	prev, ok := b.get(id)
	if !ok {
		return false
	}
	b.pending[id] = nil
	b.changes = append(b.changes, staged{id: id, prev: prev})
	return true
}

// checkReuse returns [domain.ErrNotFound] if id belonged to a document that
// was removed. Identifiers are never given to a second document.
func (b *batch) checkReuse(id string) error {
	if _, ok := b.get(id); ok {
		return nil
	}
	if _, ok := b.c.seen[id]; ok {
		return fmt.Errorf("%w: %q was removed", domain.ErrNotFound, id)
	}
	return nil
}

// newID returns an identifier never used by the collection.
func (b *batch) newID() (string, error) {
	for {
		id, err := b.c.db.idGenerator.GenerateID()
		if err != nil {
			return "", err
		}
		if _, ok := b.c.seen[id]; ok {
			continue
		}
		if _, ok := b.pending[id]; ok {
			continue
		}
		return id, nil
	}
}

// commit persists every staged change in one atomic write and only then
// applies them to memory and views.
func (c *Collection) commit(ctx context.Context, b *batch) error {
	if len(b.changes) == 0 {
		return nil
	}
	changes := make([]domain.Change, len(b.changes))
	for n, s := range b.changes {
		if s.next == nil {
			changes[n] = domain.Change{Op: domain.ChangeDelete, Record: domain.Record{ID: s.id}}
			continue
		}
		changes[n] = domain.Change{
			Op:     domain.ChangeUpsert,
			Record: domain.Record{ID: s.id, Seq: s.next.seq, Doc: s.next.doc},
		}
	}
	if err := c.db.storage.Apply(ctx, c.name, changes...); err != nil {
		return err
	}

	for _, s := range b.changes {
		for _, v := range c.vorder {
			v.update(s.prev, s.next)
		}
		if s.next == nil {
			c.removeEntry(s.id)
			continue
		}
		c.insertEntry(s.id, s.next)
		c.seen[s.id] = struct{}{}
	}
	c.nextSeq = b.nextSeq
	return nil
}
