package parser

import (
	"path/filepath"
	"strings"
)

// TextParser handles markdown and plain text documents. YAML frontmatter
// is stripped: it carries upload metadata, not ESG content, and would
// pollute the embedding of the first chunk.
type TextParser struct{}

// NewTextParser creates a new text parser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Parse extracts the text body and, for markdown, the first H1 heading as
// the title.
func (p *TextParser) Parse(filename string, content []byte) (*Extracted, error) {
	body := stripFrontmatter(string(content))

	return &Extracted{
		Filename: filepath.Base(filename),
		Title:    firstHeading(body),
		Text:     body,
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *TextParser) CanParse(mimeType string) bool {
	switch mimeType {
	case "text/markdown", "text/x-markdown", "text/plain":
		return true
	default:
		return false
	}
}

// MimeType returns the primary MIME type for this parser.
func (p *TextParser) MimeType() string {
	return "text/markdown"
}

// stripFrontmatter removes a leading YAML frontmatter block if present.
// Content without a closing delimiter is returned unchanged.
func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return content
	}

	start := strings.Index(content, "\n") + 1
	closeIdx := strings.Index(content[start:], "\n---")
	if closeIdx == -1 {
		return content
	}

	body := content[start+closeIdx+len("\n---"):]
	return strings.TrimLeft(body, "\r\n")
}

// firstHeading returns the first H1 heading in markdown content.
func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
