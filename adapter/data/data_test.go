package data

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DataTestSuite struct {
	suite.Suite
}

type user struct {
	Name    string   `jsondb:"name"`
	Age     int      `jsondb:"age"`
	Tags    []string `jsondb:"tags,omitempty"`
	Skipped string   `jsondb:"-"`
	Company string
	secret  string
}

func (s *DataTestSuite) TestKinds() {
	s.True(Null().IsNull())
	s.Equal(KindBool, Bool(true).Kind())
	s.Equal(KindNumber, Number(1).Kind())
	s.Equal(KindString, String("a").Kind())
	s.Equal(KindSequence, Sequence().Kind())
	s.Equal(KindMapping, Mapping(nil).Kind())
	s.Equal("mapping", KindMapping.String())

	n, ok := String("1").Number()
	s.False(ok)
	s.Zero(n)

	items, ok := Sequence().Sequence()
	s.True(ok)
	s.NotNil(items)
	s.Empty(items)
}

func (s *DataTestSuite) TestEqualIsTypeSensitive() {
	s.False(Number(1).Equal(String("1")))
	s.False(Bool(false).Equal(Null()))
	s.True(Null().Equal(Null()))
	s.True(Sequence(Number(1), String("a")).Equal(Sequence(Number(1), String("a"))))
	s.False(Sequence(Number(1), String("a")).Equal(Sequence(String("a"), Number(1))))
}

func (s *DataTestSuite) TestMappingEqualIgnoresOrder() {
	a := NewM()
	a.Set("x", Number(1))
	a.Set("y", Number(2))
	b := NewM()
	b.Set("y", Number(2))
	b.Set("x", Number(1))
	s.True(a.Equal(b))
	s.True(Mapping(a).Equal(Mapping(b)))

	b.Set("z", Null())
	s.False(a.Equal(b))
}

func (s *DataTestSuite) TestSetKeepsPosition() {
	m := NewM()
	m.Set("a", Number(1))
	m.Set("b", Number(2))
	m.Set("a", Number(3))
	s.Equal([]string{"a", "b"}, slices.Collect(m.Keys()))
	v, ok := m.Get("a")
	s.True(ok)
	s.True(v.Equal(Number(3)))

	m.Unset("a")
	s.Equal([]string{"b"}, slices.Collect(m.Keys()))
	s.False(m.Has("a"))
	m.Unset("missing")
	s.Equal(1, m.Len())
}

func (s *DataTestSuite) TestNilMapping() {
	var m *M
	s.Zero(m.Len())
	s.False(m.Has("a"))
	s.Empty(m.ID())
	s.Empty(slices.Collect(m.Keys()))
}

func (s *DataTestSuite) TestCloneIsDeep() {
	inner := NewM()
	inner.Set("k", String("v"))
	m := NewM()
	m.Set("inner", Mapping(inner))
	m.Set("list", Sequence(Number(1)))

	c := m.Clone()
	s.True(c.Equal(m))

	v, _ := c.Get("inner")
	cm, _ := v.Mapping()
	cm.Set("k", String("changed"))

	v, _ = inner.Get("k")
	str, _ := v.Str()
	s.Equal("v", str)
}

func (s *DataTestSuite) TestFromAny() {
	v, err := FromAny(map[string]any{
		"b":    int8(3),
		"a":    []any{true, nil, "x", uint64(7)},
		"when": time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		"num":  json.Number("1.5"),
	})
	s.NoError(err)
	m, ok := v.Mapping()
	s.True(ok)
	s.Equal([]string{"a", "b", "num", "when"}, slices.Collect(m.Keys()))
	s.Equal(map[string]any{
		"a":    []any{true, nil, "x", int64(7)},
		"b":    int64(3),
		"num":  1.5,
		"when": "2020-01-02T03:04:05Z",
	}, m.Map())
}

func (s *DataTestSuite) TestFromAnyStruct() {
	doc, err := NewDocument(&user{
		Name: "Maricela", Age: 45, Skipped: "no", Company: "VERTIDE", secret: "no",
	})
	s.NoError(err)
	s.Equal([]string{"name", "age", "Company"}, slices.Collect(doc.Keys()))
	s.Equal(map[string]any{
		"name": "Maricela", "age": int64(45), "Company": "VERTIDE",
	}, doc.Map())

	doc, err = NewDocument(user{Tags: []string{"a"}})
	s.NoError(err)
	s.True(doc.Has("tags"))
}

func (s *DataTestSuite) TestFromAnyTypedMap() {
	v, err := FromAny(map[string][]int{"b": {1}, "a": nil})
	s.NoError(err)
	m, _ := v.Mapping()
	s.Equal([]string{"a", "b"}, slices.Collect(m.Keys()))
	a, _ := m.Get("a")
	s.True(a.IsNull())
}

func (s *DataTestSuite) TestFromAnyInvalid() {
	_, err := FromAny(map[int]string{1: "a"})
	s.ErrorAs(err, &ErrDocumentType{})

	_, err = FromAny(make(chan int))
	s.ErrorAs(err, &ErrDocumentType{})

	_, err = NewDocument([]any{1})
	s.ErrorIs(err, ErrDocumentType{Type: "sequence"})

	doc, err := NewDocument(nil)
	s.NoError(err)
	s.Zero(doc.Len())
}

func (s *DataTestSuite) TestParseJSONKeepsOrder() {
	v, err := ParseJSON([]byte(`{"z":1,"a":[true,null,"s",{"k":2.5}],"m":{}}`))
	s.NoError(err)
	m, ok := v.Mapping()
	s.True(ok)
	s.Equal([]string{"z", "a", "m"}, slices.Collect(m.Keys()))
	s.Equal(map[string]any{
		"z": int64(1),
		"a": []any{true, nil, "s", map[string]any{"k": 2.5}},
		"m": map[string]any{},
	}, m.Map())

	_, err = ParseJSON([]byte(`{"a":`))
	s.ErrorIs(err, ErrInvalidJSON)
}

func (s *DataTestSuite) TestMarshalJSON() {
	m := NewM()
	m.Set("z", Number(1))
	m.Set("a", Sequence(Bool(true), Null(), String(`q"`), Number(2.5)))
	m.Set("e", Mapping(nil))

	b, err := json.Marshal(m)
	s.NoError(err)
	s.Equal(`{"z":1,"a":[true,null,"q\"",2.5],"e":{}}`, string(b))

	var back M
	s.NoError(json.Unmarshal(b, &back))
	s.True(back.Equal(m))

	var v Value
	s.NoError(json.Unmarshal([]byte(`[1,"a"]`), &v))
	s.True(v.Equal(Sequence(Number(1), String("a"))))

	s.Error(json.Unmarshal([]byte(`[1]`), &back))
}

func TestDataTestSuite(t *testing.T) {
	suite.Run(t, new(DataTestSuite))
}
