package catalog

import "strings"

// Stop words ignored when matching titles
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "and": true, "in": true,
	"to": true, "on": true, "for": true, "at": true, "by": true, "from": true,
	"with": true,
}

// tokenize splits text into lowercased words with surrounding punctuation trimmed.
func tokenize(text string) []string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}&"))
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// queryWords returns the query's words minus stop words. If every word is a
// stop word the unfiltered words are returned so "the thing" still matches.
func queryWords(query string) []string {
	all := tokenize(query)
	filtered := make([]string, 0, len(all))
	for _, w := range all {
		if !stopWords[w] {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return all
	}
	return filtered
}

// matches reports whether every query word appears in title.
// The last query word may match a prefix, since queries arrive while being typed.
func matches(title string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	titleWords := tokenize(title)
	set := make(map[string]bool, len(titleWords))
	for _, w := range titleWords {
		set[w] = true
	}

	last := len(words) - 1
	for _, w := range words[:last] {
		if !set[w] {
			return false
		}
	}
	if set[words[last]] {
		return true
	}
	for _, tw := range titleWords {
		if strings.HasPrefix(tw, words[last]) {
			return true
		}
	}
	return false
}
