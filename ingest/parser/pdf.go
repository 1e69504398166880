package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParser parses PDF documents by extracting text content.
type PDFParser struct{}

// NewPDFParser creates a new PDF parser.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Parse extracts text from every page. Pages that fail to parse are
// skipped rather than failing the whole document.
func (p *PDFParser) Parse(filename string, content []byte) (*Extracted, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var textBuilder strings.Builder

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if text != "" {
			if textBuilder.Len() > 0 {
				textBuilder.WriteString("\n\n---\n\n") // Page separator
			}
			textBuilder.WriteString(text)
		}
	}

	extractedText := textBuilder.String()
	if extractedText == "" {
		// Likely an image-based scan with no embedded text layer.
		extractedText = fmt.Sprintf("[PDF document with %d pages - no text content extracted]", numPages)
	}

	return &Extracted{
		Filename: filepath.Base(filename),
		Text:     extractedText,
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *PDFParser) CanParse(mimeType string) bool {
	return mimeType == "application/pdf"
}

// MimeType returns the primary MIME type for this parser.
func (p *PDFParser) MimeType() string {
	return "application/pdf"
}
