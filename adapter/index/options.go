package index

import "github.com/vinicius-lino-figueiredo/jsondb/domain"

// WithComparer sets the comparer used to order index keys.
func WithComparer(c domain.Comparer) Option {
	return func(i *Index) {
		i.comparer = c
	}
}

// WithFieldNavigator sets the field getter used to read indexed values.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(i *Index) {
		i.fieldNavigator = f
	}
}

// WithIdentifierKey sets the field holding document identifiers.
func WithIdentifierKey(k string) Option {
	return func(i *Index) {
		i.idKey = k
	}
}

// Option configures index behavior through the functional options pattern.
type Option func(*Index)
