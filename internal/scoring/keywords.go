package scoring

import (
	"regexp"
	"strings"
)

// MaxKeywords bounds every keyword set.
const MaxKeywords = 10

const minKeywordLength = 4

var wordExpr = regexp.MustCompile(`\b\w+\b`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"this": {}, "that": {}, "there": {}, "their": {}, "they": {}, "them": {},
	"then": {}, "than": {}, "these": {}, "those": {}, "from": {}, "have": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "your": {}, "were": {},
	"been": {}, "into": {}, "about": {}, "would": {}, "could": {}, "should": {},
	"just": {}, "some": {}, "very": {}, "much": {}, "does": {}, "dont": {},
}

// IsStopWord reports whether word is filtered from keyword sets.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// ExtractKeywords returns up to MaxKeywords salient lowercase tokens of text.
// The result has set semantics; its order is first occurrence.
func ExtractKeywords(text string) []string {
	return NormalizeKeywords(wordExpr.FindAllString(strings.ToLower(text), -1))
}

// Tokens returns every salient lowercase token of text in order, repeats included.
func Tokens(text string) []string {
	var out []string
	for _, word := range wordExpr.FindAllString(strings.ToLower(text), -1) {
		if len(word) >= minKeywordLength && !IsStopWord(word) {
			out = append(out, word)
		}
	}
	return out
}

// NormalizeKeywords lowercases, trims and dedupes candidates and drops
// stop-words and short tokens, keeping at most MaxKeywords.
func NormalizeKeywords(candidates []string) []string {
	out := make([]string, 0, MaxKeywords)
	seen := make(map[string]struct{}, len(candidates))
	for _, raw := range candidates {
		kw := strings.ToLower(strings.TrimSpace(raw))
		if len(kw) < minKeywordLength || IsStopWord(kw) {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}
