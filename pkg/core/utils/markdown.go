package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips conversational filler and outer markdown code fences
// so the output is pure Markdown ready for rendering.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		// Drop a language tag on the opening fence ("markdown", "json").
		if i := strings.IndexByte(cleaned, '\n'); i >= 0 && !strings.ContainsAny(cleaned[:i], "{[#*") {
			cleaned = cleaned[i+1:]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown checks that the string parses as Markdown. Goldmark is
// very permissive, so this is a basic sanity gate.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	return parser.Parse(reader) != nil
}

// RenderMarkdownHTML converts Markdown to HTML for email bodies.
func RenderMarkdownHTML(input string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(input), &buf); err != nil {
		return "", fmt.Errorf("markdown render failed: %w", err)
	}
	return buf.String(), nil
}
