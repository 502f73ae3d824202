// Package textmatch provides case-insensitive whole-word term matching over
// free text. Terms may span several words ("pci dss"); matches never start or
// end inside a word, so "epic" does not match "epicenter".
package textmatch

import (
	"regexp"
	"strings"
)

// #region matcher

// Matcher matches a single term.
type Matcher struct {
	term string
	re   *regexp.Regexp
}

// Compile builds a matcher for term. Internal whitespace matches any run of
// whitespace or hyphens. An empty term yields a matcher that never matches.
func Compile(term string) Matcher {
	norm := strings.ToLower(strings.TrimSpace(term))
	if norm == "" {
		return Matcher{}
	}
	words := strings.Fields(norm)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	pattern := `(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(quoted, `[\s\-]+`) + `)(?:$|[^\p{L}\p{N}])`
	return Matcher{term: norm, re: regexp.MustCompile(pattern)}
}

// Term returns the normalized term.
func (m Matcher) Term() string { return m.term }

// In reports whether the term occurs in text.
func (m Matcher) In(text string) bool {
	if m.re == nil {
		return false
	}
	return m.re.MatchString(text)
}

// #endregion matcher

// #region set

// Set is an ordered collection of matchers.
type Set []Matcher

// NewSet compiles every term, skipping blanks and duplicates.
func NewSet(terms ...string) Set {
	seen := make(map[string]bool, len(terms))
	set := make(Set, 0, len(terms))
	for _, t := range terms {
		m := Compile(t)
		if m.re == nil || seen[m.term] {
			continue
		}
		seen[m.term] = true
		set = append(set, m)
	}
	return set
}

// Matches returns the terms found in text, in set order.
func (s Set) Matches(text string) []string {
	var out []string
	for _, m := range s {
		if m.In(text) {
			out = append(out, m.term)
		}
	}
	return out
}

// Any reports whether any term occurs in text.
func (s Set) Any(text string) bool {
	for _, m := range s {
		if m.In(text) {
			return true
		}
	}
	return false
}

// #endregion set
