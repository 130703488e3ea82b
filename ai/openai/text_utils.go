package openai

import "strings"

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// scrubTitle collapses whitespace so prompts stay compact.
func scrubTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
