package matcher

import (
	"fmt"
	"strings"

	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

var operators = map[string]domain.OpKind{
	"$eq":   domain.OpEq,
	"$gt":   domain.OpGt,
	"$ge":   domain.OpGe,
	"$gte":  domain.OpGe,
	"$lt":   domain.OpLt,
	"$le":   domain.OpLe,
	"$lte":  domain.OpLe,
	"$like": domain.OpLike,
	"$in":   domain.OpIn,
}

// Compile implements [domain.Matcher].
func (m *Matcher) Compile(criteria any) (*domain.Criteria, error) {
	res := &domain.Criteria{}
	if criteria == nil {
		return res, nil
	}
	v, err := data.FromAny(criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
	}
	if v.IsNull() {
		return res, nil
	}
	qry, ok := v.Mapping()
	if !ok {
		return nil, fmt.Errorf("%w: criteria must be a mapping, got %s", domain.ErrInvalidCriteria, v.Kind())
	}

	for path, arg := range qry.Iter() {
		if strings.HasPrefix(path, "$") {
			return nil, fmt.Errorf("%w: unknown top level operator %q", domain.ErrInvalidCriteria, path)
		}
		addr, err := m.fieldNavigator.SplitFields(path)
		if err != nil {
			return nil, err
		}
		terms, err := m.compileField(path, addr, arg)
		if err != nil {
			return nil, err
		}
		res.Terms = append(res.Terms, terms...)
	}
	return res, nil
}

func (m *Matcher) compileField(path string, addr []string, arg data.Value) ([]domain.Criterion, error) {
	ops, hasOps, err := m.mapQuery(path, arg)
	if err != nil {
		return nil, err
	}
	if !hasOps {
		return []domain.Criterion{{Path: path, Addr: addr, Op: domain.OpEq, Arg: arg}}, nil
	}

	terms := make([]domain.Criterion, 0, ops.Len())
	for key, opArg := range ops.Iter() {
		op, ok := operators[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown operator %q on %q", domain.ErrInvalidCriteria, key, path)
		}
		switch op {
		case domain.OpIn:
			if _, ok := opArg.Sequence(); !ok {
				return nil, fmt.Errorf("%w: %s on %q needs a sequence", domain.ErrInvalidCriteria, key, path)
			}
		case domain.OpLike:
			pattern, ok := opArg.Str()
			if !ok {
				return nil, fmt.Errorf("%w: %s on %q needs a string", domain.ErrInvalidCriteria, key, path)
			}
			if _, err := m.like(pattern); err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
			}
		}
		terms = append(terms, domain.Criterion{Path: path, Addr: addr, Op: op, Arg: opArg})
	}
	return terms, nil
}

// mapQuery reports whether arg is an operator object. Operator keys cannot be
// mixed with plain keys.
func (m *Matcher) mapQuery(path string, arg data.Value) (*data.M, bool, error) {
	qry, ok := arg.Mapping()
	if !ok {
		return nil, false, nil
	}
	if qry.Len() == 0 {
		return nil, false, fmt.Errorf("%w: empty operator object on %q", domain.ErrInvalidCriteria, path)
	}

	dollar, plain := 0, 0
	for k := range qry.Keys() {
		if strings.HasPrefix(k, "$") {
			dollar++
		} else {
			plain++
		}
	}
	if dollar > 0 && plain > 0 {
		return nil, false, fmt.Errorf("%w: cannot mix operators and normal fields on %q", domain.ErrInvalidCriteria, path)
	}
	return qry, dollar > 0, nil
}
