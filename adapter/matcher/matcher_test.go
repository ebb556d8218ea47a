package matcher

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

type M = map[string]any

type A = []any

type comparerMock struct{ mock.Mock }

// Order implements [domain.Comparer].
func (c *comparerMock) Order(a, b data.Value) int {
	return c.Called(a, b).Int(0)
}

// Compare implements [domain.Comparer].
func (c *comparerMock) Compare(a, b data.Value) (int, error) {
	call := c.Called(a, b)
	return call.Int(0), call.Error(1)
}

// Comparable implements [domain.Comparer].
func (c *comparerMock) Comparable(a, b data.Value) bool {
	return c.Called(a, b).Bool(0)
}

type MatcherTestSuite struct {
	suite.Suite
	m *Matcher
}

func (s *MatcherTestSuite) SetupTest() {
	s.m = NewMatcher().(*Matcher)
}

func (s *MatcherTestSuite) doc(in string) *data.M {
	v, err := data.ParseJSON([]byte(in))
	s.Require().NoError(err)
	m, ok := v.Mapping()
	s.Require().True(ok)
	return m
}

func (s *MatcherTestSuite) match(criteria any, doc string) bool {
	c, err := s.m.Compile(criteria)
	s.Require().NoError(err)
	return s.m.Match(c, s.doc(doc))
}

func (s *MatcherTestSuite) TestCompile() {
	c, err := s.m.Compile(M{
		"age":  M{"$ge": 40, "$lt": 50},
		"name": "Maricela",
		"tags": M{"$in": A{"a", "b"}},
	})
	s.NoError(err)
	s.Equal([]domain.Criterion{
		{Path: "age", Addr: []string{"age"}, Op: domain.OpGe, Arg: data.Number(40)},
		{Path: "age", Addr: []string{"age"}, Op: domain.OpLt, Arg: data.Number(50)},
		{Path: "name", Addr: []string{"name"}, Op: domain.OpEq, Arg: data.String("Maricela")},
		{Path: "tags", Addr: []string{"tags"}, Op: domain.OpIn, Arg: data.Sequence(data.String("a"), data.String("b"))},
	}, c.Terms)
}

func (s *MatcherTestSuite) TestCompileAliases() {
	c, err := s.m.Compile(M{"a": M{"$gte": 1, "$lte": 2}})
	s.NoError(err)
	s.Len(c.Terms, 2)
	s.Equal(domain.OpGe, c.Terms[0].Op)
	s.Equal(domain.OpLe, c.Terms[1].Op)
}

func (s *MatcherTestSuite) TestCompileNil() {
	c, err := s.m.Compile(nil)
	s.NoError(err)
	s.Empty(c.Terms)
	s.True(s.m.Match(c, s.doc(`{"a":1}`)))
	s.True(s.m.Match(nil, s.doc(`{}`)))
}

func (s *MatcherTestSuite) TestCompileErrors() {
	invalid := []any{
		M{"a": M{"$regex": "x"}},
		M{"a": M{"$gt": 1, "b": 2}},
		M{"a": M{}},
		M{"a": M{"$in": "x"}},
		M{"a": M{"$like": 1}},
		M{"$or": A{}},
		M{"": 1},
		M{"a..b": 1},
		A{1, 2},
		"text",
		42,
	}
	for _, criteria := range invalid {
		_, err := s.m.Compile(criteria)
		s.ErrorIs(err, domain.ErrInvalidCriteria, "%v", criteria)
	}

	_, err := s.m.Compile(M{"a": make(chan int)})
	s.ErrorIs(err, domain.ErrInvalidCriteria)
}

func (s *MatcherTestSuite) TestImplicitEquality() {
	s.True(s.match(M{"a": 1}, `{"a":1}`))
	s.False(s.match(M{"a": 1}, `{"a":"1"}`))
	s.False(s.match(M{"a": 1}, `{"b":1}`))
	s.True(s.match(M{"a": M{"b": true}}, `{"a":{"b":true}}`))
	s.False(s.match(M{"a": M{"b": true}}, `{"a":{"b":true,"c":1}}`))
	s.True(s.match(M{"a": nil}, `{"a":null}`))
	s.False(s.match(M{"a": nil}, `{}`))
}

func (s *MatcherTestSuite) TestNestedPath() {
	s.True(s.match(M{"a.b.c": "x"}, `{"a":{"b":{"c":"x"}}}`))
	s.False(s.match(M{"a.b.c": "x"}, `{"a":{"b":"c"}}`))
	s.False(s.match(M{"a.b": 1}, `{"a":[{"b":1}]}`))
}

func (s *MatcherTestSuite) TestTopLevelAnd() {
	s.True(s.match(M{"a": 1, "b": 2}, `{"a":1,"b":2}`))
	s.False(s.match(M{"a": 1, "b": 2}, `{"a":1,"b":3}`))
}

func (s *MatcherTestSuite) TestRanges() {
	s.True(s.match(M{"a": M{"$gt": 1}}, `{"a":2}`))
	s.False(s.match(M{"a": M{"$gt": 2}}, `{"a":2}`))
	s.True(s.match(M{"a": M{"$ge": 2}}, `{"a":2}`))
	s.True(s.match(M{"a": M{"$lt": 3}}, `{"a":2}`))
	s.True(s.match(M{"a": M{"$le": 2}}, `{"a":2}`))
	s.False(s.match(M{"a": M{"$le": 1}}, `{"a":2}`))
	s.True(s.match(M{"a": M{"$ge": 1, "$le": 3}}, `{"a":2}`))
	s.False(s.match(M{"a": M{"$ge": 1, "$le": 3}}, `{"a":4}`))
	s.True(s.match(M{"a": M{"$gt": "abc"}}, `{"a":"abd"}`))
}

// comparing different kinds is never an error, it just does not match.
func (s *MatcherTestSuite) TestRangeTypeMismatch() {
	s.False(s.match(M{"a": M{"$gt": 1}}, `{"a":"2"}`))
	s.False(s.match(M{"a": M{"$lt": "z"}}, `{"a":1}`))
	s.False(s.match(M{"a": M{"$ge": true}}, `{"a":true}`))
	s.False(s.match(M{"a": M{"$ge": nil}}, `{"a":null}`))
}

func (s *MatcherTestSuite) TestLike() {
	s.True(s.match(M{"a": M{"$like": "Mari%"}}, `{"a":"Maricela"}`))
	s.True(s.match(M{"a": M{"$like": "Mari%"}}, `{"a":"Mari"}`))
	s.False(s.match(M{"a": M{"$like": "Mari%"}}, `{"a":"mari"}`))
	s.False(s.match(M{"a": M{"$like": "Mari%"}}, `{"a":"AMari"}`))
	s.True(s.match(M{"a": M{"$like": "M_ri"}}, `{"a":"Mari"}`))
	s.False(s.match(M{"a": M{"$like": "M_ri"}}, `{"a":"Maari"}`))
	s.True(s.match(M{"a": M{"$like": "%.*%"}}, `{"a":"x.*y"}`))
	s.False(s.match(M{"a": M{"$like": "a.c"}}, `{"a":"abc"}`))
	s.True(s.match(M{"a": M{"$like": "%"}}, `{"a":"line\nbreak"}`))
	s.False(s.match(M{"a": M{"$like": "%"}}, `{"a":1}`))
}

func (s *MatcherTestSuite) TestIn() {
	s.True(s.match(M{"a": M{"$in": A{1, 2}}}, `{"a":2}`))
	s.False(s.match(M{"a": M{"$in": A{1, 2}}}, `{"a":3}`))
	s.False(s.match(M{"a": M{"$in": A{}}}, `{"a":3}`))
	s.True(s.match(M{"tags": M{"$in": A{"consequat"}}}, `{"tags":["x","consequat"]}`))
	s.False(s.match(M{"tags": M{"$in": A{"consequat"}}}, `{"tags":["x"]}`))
	s.True(s.match(M{"a": M{"$in": A{A{1, 2}}}}, `{"a":[1,2]}`))
}

func (s *MatcherTestSuite) TestSequenceField() {
	s.True(s.match(M{"a": 2}, `{"a":[1,2,3]}`))
	s.True(s.match(M{"a": A{1, 2}}, `{"a":[1,2]}`))
	s.False(s.match(M{"a": A{2, 1}}, `{"a":[1,2]}`))
	s.True(s.match(M{"a": M{"$gt": 2}}, `{"a":[1,3]}`))
	s.False(s.match(M{"a": M{"$gt": 3}}, `{"a":[1,3]}`))
	s.True(s.match(M{"a": M{"$like": "b%"}}, `{"a":["abc","bcd"]}`))
}

func (s *MatcherTestSuite) TestUsesComparer() {
	cm := new(comparerMock)
	cm.On("Compare", data.Number(5), data.Number(1)).Return(0, domain.ErrTypeMismatch).Once()
	s.m = NewMatcher(WithComparer(cm)).(*Matcher)
	s.False(s.match(M{"a": M{"$gt": 1}}, `{"a":5}`))
	cm.AssertExpectations(s.T())
}

func (s *MatcherTestSuite) TestDeterministic() {
	c, err := s.m.Compile(M{"a": M{"$like": "x%"}, "b": M{"$in": A{1}}})
	s.Require().NoError(err)
	doc := s.doc(`{"a":"xy","b":[0,1]}`)
	for range 10 {
		s.True(s.m.Match(c, doc))
	}
}

func TestMatcherTestSuite(t *testing.T) {
	suite.Run(t, new(MatcherTestSuite))
}
