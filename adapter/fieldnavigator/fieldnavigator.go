// Package fieldnavigator resolves dotted field paths over documents.
package fieldnavigator

import (
	"fmt"
	"strings"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

// FieldNavigator implements [domain.FieldNavigator].
type FieldNavigator struct{}

// NewFieldNavigator returns a new instance of [domain.FieldNavigator].
func NewFieldNavigator() domain.FieldNavigator {
	return &FieldNavigator{}
}

// SplitFields implements [domain.FieldNavigator]. Empty paths and paths with
// empty segments are rejected.
func (fn *FieldNavigator) SplitFields(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidCriteria)
	}
	parts := strings.Split(path, ".")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment in path %q", domain.ErrInvalidCriteria, path)
		}
	}
	return parts, nil
}

// GetField implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetField(doc *data.M, addr ...string) (data.Value, bool) {
	if doc == nil || len(addr) == 0 {
		return data.Value{}, false
	}
	curr := doc
	for idx, part := range addr {
		v, ok := curr.Get(part)
		if !ok {
			return data.Value{}, false
		}
		if idx == len(addr)-1 {
			return v, true
		}
		if curr, ok = v.Mapping(); !ok {
			return data.Value{}, false
		}
	}
	return data.Value{}, false
}

// EnsureField implements [domain.FieldNavigator].
func (fn *FieldNavigator) EnsureField(doc *data.M, v data.Value, addr ...string) {
	if doc == nil || len(addr) == 0 {
		return
	}
	curr := doc
	for _, part := range addr[:len(addr)-1] {
		next, ok := curr.Get(part)
		m, isMapping := next.Mapping()
		if !ok || !isMapping {
			m = data.NewM()
			curr.Set(part, data.Mapping(m))
		}
		curr = m
	}
	curr.Set(addr[len(addr)-1], v)
}
