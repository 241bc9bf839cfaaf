// Package keyword turns free text into a bounded, ordered tag set suitable
// for index entries. Extraction is deterministic and has no failure mode: it
// always returns, possibly with an empty slice.
package keyword

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/memorymesh/core"
)

// minTokenLen is the shortest alphabetic run considered a token.
const minTokenLen = 3

// stopWords holds common function words dropped before ranking. Words shorter
// than minTokenLen never reach the filter.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "has": {}, "had": {}, "have": {}, "this": {},
	"that": {}, "with": {}, "from": {}, "they": {}, "will": {}, "would": {},
	"there": {}, "their": {}, "been": {}, "when": {}, "where": {},
	"which": {}, "your": {}, "what": {}, "how": {}, "who": {}, "whom": {},
	"its": {}, "his": {}, "she": {}, "him": {}, "them": {}, "than": {},
	"then": {}, "these": {}, "those": {}, "some": {}, "such": {},
	"only": {}, "also": {}, "into": {}, "over": {}, "about": {},
	"just": {}, "like": {}, "does": {}, "did": {}, "should": {},
	"could": {}, "each": {}, "other": {}, "very": {}, "more": {},
	"most": {}, "any": {}, "get": {}, "got": {}, "were": {}, "being": {},
	"because": {}, "while": {}, "between": {}, "through": {}, "during": {},
	"again": {}, "here": {}, "why": {}, "much": {}, "many": {}, "both": {},
}

// Extract returns up to maxTags tags for the given text, most frequent first.
//
// Tokens are lower-cased alphabetic runs of at least three characters; common
// function words are dropped; the survivors are ranked by frequency with ties
// broken by first-encountered order. When fewer than three distinct tokens
// survive the stop-word filter, ranking is redone over the maxTags*2 most
// frequent unfiltered tokens instead. There is no hard minimum on the result
// size.
func Extract(text string, maxTags int) []string {
	if maxTags <= 0 {
		return []string{}
	}
	tokens := tokenize(text)

	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopWords[tok]; !stop {
			filtered = append(filtered, tok)
		}
	}

	ranked := rankByFrequency(filtered)
	if len(ranked) < 3 {
		// Relaxed fallback: widen the candidate pool to the most frequent
		// tokens before stop-word filtering.
		pool := rankByFrequency(tokens)
		if len(pool) > maxTags*2 {
			pool = pool[:maxTags*2]
		}
		ranked = pool
	}

	if len(ranked) > maxTags {
		ranked = ranked[:maxTags]
	}
	out := make([]string, 0, len(ranked))
	for _, tag := range ranked {
		out = append(out, clipTag(tag))
	}
	return out
}

// clipTag caps a tag at core.MaxTagLen bytes, backing up to a rune boundary
// so the cut never leaves invalid UTF-8.
func clipTag(tag string) string {
	if len(tag) <= core.MaxTagLen {
		return tag
	}
	cut := core.MaxTagLen
	for cut > 0 && !utf8.RuneStart(tag[cut]) {
		cut--
	}
	return tag[:cut]
}

// tokenize splits text into lower-cased alphabetic runs of minTokenLen or more.
func tokenize(text string) []string {
	var tokens []string
	var run strings.Builder
	flush := func() {
		if run.Len() >= minTokenLen {
			tokens = append(tokens, run.String())
		}
		run.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) {
			run.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// rankByFrequency returns distinct tokens ordered by descending count, ties
// broken by first-encountered position (stable ranking).
func rankByFrequency(tokens []string) []string {
	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	// Insertion sort keeps the first-encountered order stable for equal
	// counts; candidate lists are small.
	ranked := make([]string, 0, len(order))
	for _, tok := range order {
		i := len(ranked)
		for i > 0 && counts[ranked[i-1]] < counts[tok] {
			i--
		}
		ranked = append(ranked, "")
		copy(ranked[i+1:], ranked[i:])
		ranked[i] = tok
	}
	return ranked
}
