// Package projector contains the default [domain.Projector] implementation.
package projector

import (
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

// Projector implements [domain.Projector].
type Projector struct {
	fn domain.FieldNavigator
}

// NewProjector returns a new implementation of [domain.Projector].
func NewProjector(opts ...Option) domain.Projector {
	var p Projector
	for _, opt := range opts {
		opt(&p)
	}
	if p.fn == nil {
		p.fn = fieldnavigator.NewFieldNavigator()
	}
	return &p
}

// Project implements [domain.Projector]. Values are deep copies, and nested
// addresses rebuild the mappings leading to them, so the result never shares
// state with doc.
func (q *Projector) Project(doc *data.M, addrs ...[]string) *data.M {
	res := data.NewM()
	for _, addr := range addrs {
		v, ok := q.fn.GetField(doc, addr...)
		if !ok {
			continue
		}
		q.fn.EnsureField(res, v.Clone(), addr...)
	}
	return res
}
