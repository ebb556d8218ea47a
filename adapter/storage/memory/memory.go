// Package memory contains a [domain.Storage] that keeps records in process
// memory. Nothing survives Close.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

// Storage implements [domain.Storage].
type Storage struct {
	mu          sync.RWMutex
	collections []string
	records     map[string]map[string]domain.Record
	removed     map[string]map[string]struct{}
	closed      bool
}

// NewStorage returns an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{
		records: make(map[string]map[string]domain.Record),
		removed: make(map[string]map[string]struct{}),
	}
}

// CreateCollection implements [domain.Storage].
func (s *Storage) CreateCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, ok := s.records[name]; !ok {
		s.collections = append(s.collections, name)
		s.records[name] = make(map[string]domain.Record)
	}
	return nil
}

// ListCollections implements [domain.Storage].
func (s *Storage) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(s.collections), nil
}

// LoadAll implements [domain.Storage].
func (s *Storage) LoadAll(ctx context.Context, collection string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	res := make([]domain.Record, 0, len(s.records[collection]))
	for _, r := range s.records[collection] {
		res = append(res, domain.Record{ID: r.ID, Seq: r.Seq, Doc: r.Doc.Clone()})
	}
	slices.SortFunc(res, func(a, b domain.Record) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return res, nil
}

// LoadRemoved implements [domain.Storage].
func (s *Storage) LoadRemoved(ctx context.Context, collection string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	res := slices.Collect(maps.Keys(s.removed[collection]))
	slices.Sort(res)
	return res, nil
}

// Upsert implements [domain.Storage].
func (s *Storage) Upsert(ctx context.Context, collection string, records ...domain.Record) error {
	changes := make([]domain.Change, len(records))
	for n, r := range records {
		changes[n] = domain.Change{Op: domain.ChangeUpsert, Record: r}
	}
	return s.Apply(ctx, collection, changes...)
}

// Delete implements [domain.Storage].
func (s *Storage) Delete(ctx context.Context, collection string, ids ...string) error {
	changes := make([]domain.Change, len(ids))
	for n, id := range ids {
		changes[n] = domain.Change{Op: domain.ChangeDelete, Record: domain.Record{ID: id}}
	}
	return s.Apply(ctx, collection, changes...)
}

// Apply implements [domain.Storage].
func (s *Storage) Apply(ctx context.Context, collection string, changes ...domain.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	records, ok := s.records[collection]
	if !ok {
		s.collections = append(s.collections, collection)
		records = make(map[string]domain.Record)
		s.records[collection] = records
	}
	removed, ok := s.removed[collection]
	if !ok {
		removed = make(map[string]struct{})
		s.removed[collection] = removed
	}
	for _, c := range changes {
		switch c.Op {
		case domain.ChangeDelete:
			delete(records, c.Record.ID)
			removed[c.Record.ID] = struct{}{}
		default:
			records[c.Record.ID] = domain.Record{ID: c.Record.ID, Seq: c.Record.Seq, Doc: c.Record.Doc.Clone()}
			delete(removed, c.Record.ID)
		}
	}
	return nil
}

// Close implements [domain.Storage].
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	s.removed = nil
	s.collections = nil
	return nil
}

func (s *Storage) check(ctx context.Context) error {
	if s.closed {
		return domain.ErrClosed
	}
	return ctx.Err()
}
