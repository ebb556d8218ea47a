package datastore

import (
	"strings"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

// checkDocument rejects field names that would be ambiguous in criteria and
// key paths, at any depth.
func checkDocument(doc *data.M) error {
	for k, v := range doc.Iter() {
		if strings.HasPrefix(k, "$") {
			return domain.ErrFieldName{Field: k, Reason: "field names cannot begin with the $ character"}
		}
		if strings.ContainsRune(k, '.') {
			return domain.ErrFieldName{Field: k, Reason: "field names cannot contain a '.'"}
		}
		if err := checkValue(v); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(v data.Value) error {
	switch v.Kind() {
	case data.KindMapping:
		m, _ := v.Mapping()
		return checkDocument(m)
	case data.KindSequence:
		items, _ := v.Sequence()
		for _, item := range items {
			if err := checkValue(item); err != nil {
				return err
			}
		}
	}
	return nil
}
