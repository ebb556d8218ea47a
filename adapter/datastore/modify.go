package datastore

import (
	"context"
	"fmt"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
	"go.uber.org/zap"
)

// FirstAndModify calls fn with a copy of the first matching document and
// applies the returned operation. It returns the document selected by the
// ReturnOld and ReturnNew flags, or nil.
//
// When nothing matches and the query was created with [domain.WithUpsert],
// fn is called once with a document holding the equality terms of the
// criteria, and an Upsert|Update result inserts it. Otherwise fn is not
// called.
func (q *Query) FirstAndModify(ctx context.Context, fn domain.ModifyFunc) (*data.M, error) {
	res, err := q.modify(ctx, fn, 0, 1)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0], nil
}

// AllAndModify is like [Query.FirstAndModify], but visits every matching
// document until fn returns Stop. Every change is committed at once.
func (q *Query) AllAndModify(ctx context.Context, fn domain.ModifyFunc) ([]*data.M, error) {
	return q.modify(ctx, fn, 0, 0)
}

// AllInRangeAndModify is like [Query.AllAndModify], visiting only the
// documents [Query.AllInRange] would return.
func (q *Query) AllInRangeAndModify(ctx context.Context, offset, limit int, fn domain.ModifyFunc) ([]*data.M, error) {
	return q.modify(ctx, fn, offset, limit)
}

// RemoveFirst removes the first matching document and returns the number
// of removed documents.
func (q *Query) RemoveFirst(ctx context.Context) (int, error) {
	res, err := q.modify(ctx, removeFunc, 0, 1)
	return len(res), err
}

// RemoveAll removes every matching document and returns how many were
// removed.
func (q *Query) RemoveAll(ctx context.Context) (int, error) {
	return q.RemoveAllInRange(ctx, 0, 0)
}

// RemoveAllInRange removes the documents [Query.AllInRange] would return and
// returns how many were removed.
func (q *Query) RemoveAllInRange(ctx context.Context, offset, limit int) (int, error) {
	res, err := q.modify(ctx, removeFunc, offset, limit)
	return len(res), err
}

func removeFunc(*data.M) domain.ModifyOperation {
	return domain.Remove | domain.ReturnOld
}

// modify applies fn to the matching documents selected by offset and limit,
// as [window] does.
func (q *Query) modify(ctx context.Context, fn domain.ModifyFunc, offset, limit int) ([]*data.M, error) {
	if err := q.c.lock(ctx); err != nil {
		return nil, err
	}
	defer q.c.unlock()

	entries, err := q.matching()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		if !q.allowUpsert {
			return nil, nil
		}
		return q.upsert(ctx, fn)
	}
	entries = window(entries, offset, limit)

	b := q.c.newBatch()
	var res []*data.M
	for _, e := range entries {
		id := e.doc.IDAt(q.c.db.idKey)
		doc := e.doc.Clone()
		op := fn(doc)
		if op.Has(domain.Rollback) {
			q.logModify(0, true)
			return nil, nil
		}
		if op.Has(domain.Remove | domain.Update) {
			return nil, domain.ErrInvalidModifyOperation
		}

		var next *data.M
		switch {
		case op.Has(domain.Remove):
			b.remove(id)
		case op.Has(domain.Update):
			if err := q.checkUpdate(id, doc); err != nil {
				return nil, err
			}
			b.put(id, doc.Clone())
			next = doc
		default:
			next = e.doc
		}

		switch {
		case op.Has(domain.ReturnNew):
			if next != nil {
				res = append(res, next.Clone())
			}
		case op.Has(domain.ReturnOld):
			res = append(res, e.doc.Clone())
		}

		if op.Has(domain.Stop) {
			break
		}
	}

	if err := q.c.commit(ctx, b); err != nil {
		return nil, err
	}
	q.logModify(len(b.changes), false)
	return res, nil
}

// upsert seeds a document from the equality terms of the criteria and
// inserts it if fn asks for it.
func (q *Query) upsert(ctx context.Context, fn domain.ModifyFunc) ([]*data.M, error) {
	seed := data.NewM()
	for _, term := range q.criteria.Terms {
		if term.Op == domain.OpEq {
			q.c.db.fieldNavigator.EnsureField(seed, term.Arg.Clone(), term.Addr...)
		}
	}
	op := fn(seed)
	if !op.Has(domain.Upsert|domain.Update) || op.Has(domain.Rollback) {
		return nil, nil
	}
	if op.Has(domain.Remove) {
		return nil, domain.ErrInvalidModifyOperation
	}
	if err := checkDocument(seed); err != nil {
		return nil, err
	}

	b := q.c.newBatch()
	var id string
	if v, ok := seed.Get(q.c.db.idKey); ok {
		if s, ok := v.Str(); ok && s != "" {
			id = s
			if err := b.checkReuse(id); err != nil {
				return nil, err
			}
		} else {
			return nil, domain.ErrFieldName{Field: q.c.db.idKey, Reason: "identifier must be a non-empty string"}
		}
	} else {
		var err error
		if id, err = b.newID(); err != nil {
			return nil, err
		}
		seed = withID(seed, q.c.db.idKey, id)
	}
	b.put(id, seed.Clone())
	if err := q.c.commit(ctx, b); err != nil {
		return nil, err
	}
	q.logModify(len(b.changes), false)
	if op.Has(domain.ReturnNew) {
		return []*data.M{seed.Clone()}, nil
	}
	return nil, nil
}

// checkUpdate validates a document replacing the one stored under id.
func (q *Query) checkUpdate(id string, doc *data.M) error {
	v, ok := doc.Get(q.c.db.idKey)
	if s, isStr := v.Str(); !ok || !isStr || s != id {
		return fmt.Errorf("%w: %q", domain.ErrCannotModifyID, id)
	}
	return checkDocument(doc)
}

func (q *Query) logModify(changes int, rolledBack bool) {
	q.c.db.logger.Debug("modify finished",
		zap.String("collection", q.c.name),
		zap.Int("changes", changes),
		zap.Bool("rolledBack", rolledBack),
	)
}
