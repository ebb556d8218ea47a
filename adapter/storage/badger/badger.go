// Package badger contains a [domain.Storage] backed by a Badger key-value
// store.
//
// Collections are kept under "c/<name>", records under "d/<name>/<id>" and
// removed identifiers under "r/<name>/<id>" with an empty value. The other
// values are small JSON envelopes: collections hold
// their creation order as {"seq":n} and records hold {"seq":n,"doc":{...}}.
package badger

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
	"go.uber.org/zap"
)

const (
	collectionPrefix = "c/"
	documentPrefix   = "d/"
	removedPrefix    = "r/"
)

// ErrCorruptRecord is returned when a stored value is not a valid envelope.
var ErrCorruptRecord = errors.New("corrupt record")

// Storage implements [domain.Storage].
type Storage struct {
	db *badger.DB
	// guards nextCollection
	mu             sync.Mutex
	nextCollection uint64
}

// NewStorage opens a Badger store in dir. An empty dir opens an in-memory
// store.
func NewStorage(dir string, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(dir).WithLogger(newZapLogger(logger))
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.NumVersionsToKeep = 1

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	s := &Storage{db: db}

	names, err := s.loadCollections()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, n := range names {
		s.nextCollection = max(s.nextCollection, n.seq+1)
	}
	return s, nil
}

// Collection names are escaped so that a "/" in a name cannot make one
// collection's prefix cover another's records.
func collectionKey(name string) []byte {
	return []byte(collectionPrefix + url.PathEscape(name))
}

func documentPrefixFor(collection string) []byte {
	return []byte(documentPrefix + url.PathEscape(collection) + "/")
}

func documentKey(collection, id string) []byte {
	return append(documentPrefixFor(collection), id...)
}

func removedPrefixFor(collection string) []byte {
	return []byte(removedPrefix + url.PathEscape(collection) + "/")
}

func removedKey(collection, id string) []byte {
	return append(removedPrefixFor(collection), id...)
}

type collectionEntry struct {
	name string
	seq  uint64
}

// CreateCollection implements [domain.Storage].
func (s *Storage) CreateCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return s.ensureCollection(txn, name)
	})
}

// ensureCollection registers name inside txn unless it already exists.
func (s *Storage) ensureCollection(txn *badger.Txn, name string) error {
	_, err := txn.Get(collectionKey(name))
	if err == nil {
		return nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	s.mu.Lock()
	seq := s.nextCollection
	s.nextCollection++
	s.mu.Unlock()

	value, err := sjson.SetBytes([]byte(`{}`), "seq", seq)
	if err != nil {
		return err
	}
	return txn.Set(collectionKey(name), value)
}

// ListCollections implements [domain.Storage].
func (s *Storage) ListCollections(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := s.loadCollections()
	if err != nil {
		return nil, err
	}
	res := make([]string, len(entries))
	for n, e := range entries {
		res[n] = e.name
	}
	return res, nil
}

func (s *Storage) loadCollections() ([]collectionEntry, error) {
	var res []collectionEntry
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(collectionPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			seq := gjson.GetBytes(value, "seq")
			if !seq.Exists() {
				return fmt.Errorf("%w: %s", ErrCorruptRecord, item.Key())
			}
			name, err := url.PathUnescape(string(item.Key()[len(prefix):]))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCorruptRecord, err)
			}
			res = append(res, collectionEntry{name: name, seq: seq.Uint()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(res, func(a, b collectionEntry) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return res, nil
}

// LoadAll implements [domain.Storage].
func (s *Storage) LoadAll(ctx context.Context, collection string) ([]domain.Record, error) {
	var res []domain.Record
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := documentPrefixFor(collection)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			r, err := decodeRecord(string(item.Key()[len(prefix):]), value)
			if err != nil {
				return err
			}
			res = append(res, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(res, func(a, b domain.Record) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return res, nil
}

// LoadRemoved implements [domain.Storage].
func (s *Storage) LoadRemoved(ctx context.Context, collection string) ([]string, error) {
	var res []string
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := removedPrefixFor(collection)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			res = append(res, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
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

// Apply implements [domain.Storage]. Every change is written in a single
// transaction.
func (s *Storage) Apply(ctx context.Context, collection string, changes ...domain.Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := s.ensureCollection(txn, collection); err != nil {
			return err
		}
		for _, c := range changes {
			key := documentKey(collection, c.Record.ID)
			if c.Op == domain.ChangeDelete {
				if err := txn.Delete(key); err != nil {
					return err
				}
				if err := txn.Set(removedKey(collection, c.Record.ID), nil); err != nil {
					return err
				}
				continue
			}
			value, err := encodeRecord(c.Record)
			if err != nil {
				return err
			}
			if err := txn.Set(key, value); err != nil {
				return err
			}
			if err := txn.Delete(removedKey(collection, c.Record.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close implements [domain.Storage].
func (s *Storage) Close() error {
	return s.db.Close()
}

func encodeRecord(r domain.Record) ([]byte, error) {
	doc, err := json.Marshal(r.Doc)
	if err != nil {
		return nil, err
	}
	value, err := sjson.SetBytes([]byte(`{}`), "seq", r.Seq)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(value, "doc", doc)
}

func decodeRecord(id string, value []byte) (domain.Record, error) {
	if !gjson.ValidBytes(value) {
		return domain.Record{}, fmt.Errorf("%w: %s", ErrCorruptRecord, id)
	}
	res := gjson.ParseBytes(value)
	doc, ok := data.FromGJSON(res.Get("doc")).Mapping()
	if !ok {
		return domain.Record{}, fmt.Errorf("%w: %s", ErrCorruptRecord, id)
	}
	return domain.Record{ID: id, Seq: res.Get("seq").Uint(), Doc: doc}, nil
}
