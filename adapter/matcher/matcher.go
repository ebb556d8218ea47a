// Package matcher compiles criteria into closed operator terms and evaluates
// documents against them.
package matcher

import (
	"sync"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

// Matcher implements [domain.Matcher].
type Matcher struct {
	comparer       domain.Comparer
	fieldNavigator domain.FieldNavigator
	likes          sync.Map
}

// NewMatcher returns a new implementation of domain.Matcher.
func NewMatcher(options ...Option) domain.Matcher {
	m := &Matcher{
		comparer:       comparer.NewComparer(),
		fieldNavigator: fieldnavigator.NewFieldNavigator(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Match implements [domain.Matcher].
func (m *Matcher) Match(c *domain.Criteria, doc *data.M) bool {
	if c == nil {
		return true
	}
	for _, term := range c.Terms {
		v, ok := m.fieldNavigator.GetField(doc, term.Addr...)
		if !ok {
			return false
		}
		if !m.matchTerm(term, v) {
			return false
		}
	}
	return true
}

// matchTerm matches a sequence as a whole or by any of its elements.
func (m *Matcher) matchTerm(term domain.Criterion, v data.Value) bool {
	if m.matchValue(term, v) {
		return true
	}
	items, ok := v.Sequence()
	if !ok {
		return false
	}
	for _, item := range items {
		if m.matchValue(term, item) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchValue(term domain.Criterion, v data.Value) bool {
	switch term.Op {
	case domain.OpEq:
		return v.Equal(term.Arg)
	case domain.OpGt, domain.OpGe, domain.OpLt, domain.OpLe:
		return m.matchRange(term.Op, v, term.Arg)
	case domain.OpLike:
		return m.matchLike(v, term.Arg)
	case domain.OpIn:
		set, _ := term.Arg.Sequence()
		for _, item := range set {
			if v.Equal(item) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// matchRange treats a type mismatch as "does not match".
func (m *Matcher) matchRange(op domain.OpKind, v, arg data.Value) bool {
	comp, err := m.comparer.Compare(v, arg)
	if err != nil {
		return false
	}
	switch op {
	case domain.OpGt:
		return comp > 0
	case domain.OpGe:
		return comp >= 0
	case domain.OpLt:
		return comp < 0
	default:
		return comp <= 0
	}
}

func (m *Matcher) matchLike(v, arg data.Value) bool {
	s, ok := v.Str()
	if !ok {
		return false
	}
	pattern, _ := arg.Str()
	re, err := m.like(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
