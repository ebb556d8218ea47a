package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/jsondb"
	"github.com/vinicius-lino-figueiredo/jsondb/adapter/data"
)

type CLITestSuite struct {
	suite.Suite
	path    string
	backend string
}

func (s *CLITestSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "db")
}

func (s *CLITestSuite) run(stdin string, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--path", s.path, "--backend", s.backend}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (s *CLITestSuite) mustRun(stdin string, args ...string) string {
	out, err := s.run(stdin, args...)
	s.Require().NoError(err)
	return out
}

func (s *CLITestSuite) seed() {
	out := s.mustRun(`[
		{"name": "ana", "age": 30, "tags": ["a"]},
		{"name": "bia", "age": 25, "tags": ["a", "b"]},
		{"name": "caio", "age": 41}
	]`, "import", "people")
	s.Equal("3\n", out)
}

func (s *CLITestSuite) TestImportJSONLines() {
	out := s.mustRun("{\"n\": 1}\n\n{\"n\": 2}\n", "import", "nums")
	s.Equal("2\n", out)

	out = s.mustRun("", "count", "nums")
	s.Equal("2\n", out)

	_, err := s.run("{\"n\": 1}\n{bad\n", "import", "nums")
	s.ErrorIs(err, data.ErrInvalidJSON)
	s.ErrorContains(err, "line 2")
}

func (s *CLITestSuite) TestImportFile() {
	file := filepath.Join(s.T().TempDir(), "in.json")
	s.Require().NoError(os.WriteFile(file, []byte(`[{"a": 1}]`), 0o600))
	s.Equal("1\n", s.mustRun("", "import", "c", file))

	_, err := s.run("", "import", "c", filepath.Join(s.T().TempDir(), "missing.json"))
	s.Error(err)

	_, err = s.run("[1, 2]", "import", "c")
	var typeErr jsondb.ErrDocumentType
	s.ErrorAs(err, &typeErr)
}

func (s *CLITestSuite) TestCollections() {
	s.seed()
	s.mustRun(`{"x": 1}`, "import", "other")
	s.Equal("people\nother\n", s.mustRun("", "collections"))
}

func (s *CLITestSuite) TestFind() {
	s.seed()

	out := s.mustRun("", "find", "people", `{"age": {"$ge": 30}}`, "--project", "name")
	s.Equal("{\"name\":\"ana\"}\n{\"name\":\"caio\"}\n", out)

	out = s.mustRun("", "find", "people", "--sort", "-age", "--project", "name,age", "--limit", "2")
	s.Equal("{\"name\":\"caio\",\"age\":41}\n{\"name\":\"ana\",\"age\":30}\n", out)

	out = s.mustRun("", "find", "people", `{"tags": "b"}`, "--view", "tags", "--project", "name")
	s.Equal("{\"name\":\"bia\"}\n", out)

	out = s.mustRun("", "find", "people", "--offset", "2")
	s.Contains(out, `"name":"caio"`)
	s.Contains(out, `"_id":`)
	s.Equal(1, strings.Count(out, "\n"))

	_, err := s.run("", "find", "people", `{"age": {"$nope": 1}}`)
	s.ErrorIs(err, jsondb.ErrInvalidCriteria)

	_, err = s.run("", "find", "people", `{"age":`)
	s.ErrorIs(err, data.ErrInvalidJSON)

	_, err = s.run("", "find", "nobody")
	s.ErrorContains(err, "unknown collection")
}

func (s *CLITestSuite) TestRemove() {
	s.seed()
	s.Equal("1\n", s.mustRun("", "remove", "people", "--all", "--sort", "-age", "--offset", "1", "--limit", "1"))
	s.Equal("{\"name\":\"bia\"}\n{\"name\":\"caio\"}\n", s.mustRun("", "find", "people", "--project", "name"))

	s.Equal("1\n", s.mustRun("", "remove", "people", `{"tags": "a"}`))
	s.Equal("0\n", s.mustRun("", "count", "people", `{"tags": "a"}`))
	s.Equal("1\n", s.mustRun("", "remove", "people", "--all"))
	s.Equal("0\n", s.mustRun("", "count", "people"))
}

func TestCLIBadger(t *testing.T) {
	suite.Run(t, &CLITestSuite{backend: jsondb.BackendBadger})
}

func TestCLISQLite(t *testing.T) {
	suite.Run(t, &CLITestSuite{backend: jsondb.BackendSQLite})
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, jsondb.Sort{
		{Key: "name", Order: 1},
		{Key: "age", Order: -1},
		{Key: "score", Order: 1},
	}, parseSort("name, -age,+score,,"))
	assert.Empty(t, parseSort(""))
}
