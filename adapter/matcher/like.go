package matcher

import (
	"regexp"
	"strings"
)

// likeToRegexp translates a LIKE pattern into an anchored regular expression.
// '%' matches any run of characters and '_' matches exactly one.
func likeToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?s)\A`)
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`\z`)
	return regexp.Compile(b.String())
}

func (m *Matcher) like(pattern string) (*regexp.Regexp, error) {
	if re, ok := m.likes.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := likeToRegexp(pattern)
	if err != nil {
		return nil, err
	}
	m.likes.Store(pattern, re)
	return re, nil
}
