package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Pre-compiled regexes to avoid ReDoS with runtime compilation.
var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// HTMLParser extracts the readable article from HTML reports and
// converts it to markdown for chunking.
type HTMLParser struct {
	converter *md.Converter
}

// NewHTMLParser creates a new HTML parser.
func NewHTMLParser() *HTMLParser {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &HTMLParser{
		converter: converter,
	}
}

// Parse runs readability extraction to isolate the main content, then
// converts it to markdown. When extraction fails the full page is
// converted after stripping scripts and styles.
func (p *HTMLParser) Parse(filename string, content []byte) (*Extracted, error) {
	title := extractHTMLTitle(content)

	// readability needs a page URL for link resolution; uploads have none.
	pageURL := &url.URL{Scheme: "file", Path: filename}

	main := string(content)
	article, err := readability.FromReader(bytes.NewReader(content), pageURL)
	if err == nil && article.Content != "" {
		main = article.Content
		if title == "" {
			title = article.Title
		}
	} else {
		main = basicHTMLCleanup(main)
	}

	markdown, err := p.converter.ConvertString(main)
	if err != nil {
		return nil, fmt.Errorf("convert HTML: %w", err)
	}
	markdown = cleanMarkdown(markdown)

	if title == "" {
		title = firstHeading(markdown)
	}

	return &Extracted{
		Filename: filepath.Base(filename),
		Title:    title,
		Text:     markdown,
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *HTMLParser) CanParse(mimeType string) bool {
	return mimeType == "text/html"
}

// MimeType returns the primary MIME type for this parser.
func (p *HTMLParser) MimeType() string {
	return "text/html"
}

// extractHTMLTitle extracts the title element from HTML.
func extractHTMLTitle(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			extract(c)
		}
	}
	extract(doc)

	return title
}

// basicHTMLCleanup strips script and style blocks when readability
// extraction fails.
func basicHTMLCleanup(content string) string {
	content = scriptRe.ReplaceAllString(content, "")
	content = styleRe.ReplaceAllString(content, "")
	return content
}

// cleanMarkdown cleans up converted markdown.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")

	return strings.TrimSpace(content)
}
