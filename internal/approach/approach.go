package approach

import (
	"strings"
	"unicode"
)

// #region config
// MatcherConfig holds thresholds for approach matching.
type MatcherConfig struct {
	MinShared int // min shared keywords for two approaches to match
}

// DefaultMatcherConfig returns sensible defaults.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{MinShared: 2}
}

// #endregion config

// #region learning
// Learning is one recorded spike outcome.
type Learning struct {
	Approach string
	Learning string
}

// #endregion learning

// #region matcher
// Matcher decides whether a proposed approach's feasibility is already
// established by a spike recorded earlier in the session.
type Matcher struct {
	config    MatcherConfig
	learnings []Learning
}

// NewMatcher creates a matcher with the given configuration.
func NewMatcher(config MatcherConfig) *Matcher {
	return &Matcher{config: config}
}

// Record stores a spike outcome for later matching.
func (m *Matcher) Record(approach, learning string) {
	if approach == "" && learning == "" {
		return
	}
	m.learnings = append(m.learnings, Learning{Approach: approach, Learning: learning})
}

// Known reports whether the proposed approach overlaps a recorded spike by
// at least MinShared keywords, returning the matched learning text.
func (m *Matcher) Known(proposed string) (bool, string) {
	tokens := tokenize(proposed)
	if len(tokens) == 0 {
		return false, ""
	}
	for _, l := range m.learnings {
		recorded := tokenize(l.Approach + " " + l.Learning)
		if sharedKeywords(tokens, recorded) >= m.config.MinShared {
			return true, l.Learning
		}
	}
	return false, ""
}

// Count returns the number of recorded learnings.
func (m *Matcher) Count() int {
	return len(m.learnings)
}

// #endregion matcher

// #region stopwords
// stopwords contains common English words excluded from approach matching.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "be": true, "been": true,
	"being": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "can": true, "shall": true, "not": true,
	"no": true, "and": true, "or": true, "but": true, "if": true,
	"then": true, "than": true, "so": true, "as": true, "at": true,
	"by": true, "for": true, "from": true, "in": true, "into": true,
	"of": true, "on": true, "to": true, "with": true, "about": true,
	"up": true, "out": true, "it": true, "its": true, "this": true,
	"that": true, "using": true, "use": true, "via": true, "instead": true,
	"works": true, "work": true, "approach": true,
}

// tokenize splits text into unique lowercase non-stopword tokens.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range words {
		if len(w) < 2 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// sharedKeywords returns the count of tokens present in both slices.
func sharedKeywords(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	count := 0
	for _, t := range b {
		if set[t] {
			count++
		}
	}
	return count
}

// #endregion stopwords
