package index

import (
	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

type bstComparer struct {
	comparer domain.Comparer
}

// NewBSTComparer adapts a [domain.Comparer] to the tree keyed by indexed
// values and holding document identifiers.
func NewBSTComparer(comparer domain.Comparer) bst.Comparer[data.Value, string] {
	return &bstComparer{
		comparer: comparer,
	}
}

// CompareKeys implements bst.Comparer.
func (bc *bstComparer) CompareKeys(a data.Value, b data.Value) (int, error) {
	return bc.comparer.Order(a, b), nil
}

// CompareValues implements bst.Comparer.
func (bc *bstComparer) CompareValues(a string, b string) (bool, error) {
	return a == b, nil
}
