package openai

import (
	"fmt"
	"strings"
)

const tagResponseSchema = `{
  "type": "object",
  "properties": {
    "genres": {
      "type": "array",
      "items": { "type": "string" }
    }
  },
  "required": ["genres"],
  "additionalProperties": false
}`

func buildSystemPrompt(labels []string, maxGenres int) string {
	var sb strings.Builder
	sb.WriteString("You classify film and television titles by genre.\n")
	fmt.Fprintf(&sb, "Choose at most %d genres from this list, most relevant first:\n", maxGenres)
	for _, label := range labels {
		sb.WriteString("- ")
		sb.WriteString(label)
		sb.WriteString("\n")
	}
	sb.WriteString("Use the labels exactly as written. If you do not recognize the title, return an empty list.\n")
	sb.WriteString("Respond only with JSON matching this schema:\n")
	sb.WriteString(tagResponseSchema)
	return sb.String()
}
