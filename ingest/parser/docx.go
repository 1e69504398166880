package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const mimeTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DOCXParser extracts paragraph text from Word documents. A .docx file
// is a ZIP archive; the text lives in word/document.xml and the title,
// when set, in docProps/core.xml.
type DOCXParser struct{}

// NewDOCXParser creates a new DOCX parser.
func NewDOCXParser() *DOCXParser {
	return &DOCXParser{}
}

// Parse extracts the document body paragraph by paragraph. An archive
// without word/document.xml yields empty text rather than an error.
func (p *DOCXParser) Parse(filename string, content []byte) (*Extracted, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open DOCX archive: %w", err)
	}

	text, err := extractDocumentText(reader)
	if err != nil {
		return nil, err
	}

	return &Extracted{
		Filename: filepath.Base(filename),
		Title:    extractCoreTitle(reader),
		Text:     text,
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *DOCXParser) CanParse(mimeType string) bool {
	return mimeType == mimeTypeDOCX
}

// MimeType returns the primary MIME type for this parser.
func (p *DOCXParser) MimeType() string {
	return mimeTypeDOCX
}

// documentXML mirrors the paragraph/run/text nesting of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// coreXML carries the title property from docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

func extractDocumentText(reader *zip.Reader) (string, error) {
	content, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", nil
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parse document XML: %w", err)
	}

	var textBuilder strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			textBuilder.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				textBuilder.WriteString(text.Content)
			}
		}
	}
	return strings.TrimSpace(textBuilder.String()), nil
}

func extractCoreTitle(reader *zip.Reader) string {
	content, err := readArchiveFile(reader, "docProps/core.xml")
	if err != nil || content == nil {
		return ""
	}

	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}

// readArchiveFile returns the named archive member's bytes, or nil when
// the member is absent.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, nil
}
