package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
)

// CSVParser flattens tabular ESG data (emissions inventories, KPI
// exports) into labeled rows so column meaning survives chunking.
type CSVParser struct{}

// NewCSVParser creates a new CSV parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse renders each data row as "header: value" pairs, one row per line.
// A headerless or empty file yields empty text rather than an error.
func (p *CSVParser) Parse(filename string, content []byte) (*Extracted, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1 // ragged rows are common in exports

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	return &Extracted{
		Filename: filepath.Base(filename),
		Text:     strings.TrimSpace(flattenRows(records)),
	}, nil
}

// flattenRows renders data rows as "header: value" pairs, one row per
// line, treating the first row as the header. Fewer than two rows means
// no data, which flattens to the empty string.
func flattenRows(records [][]string) string {
	if len(records) < 2 {
		return ""
	}

	var textBuilder strings.Builder
	header := records[0]
	for _, row := range records[1:] {
		pairs := make([]string, 0, len(row))
		for i, field := range row {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				pairs = append(pairs, fmt.Sprintf("%s: %s", strings.TrimSpace(header[i]), field))
			} else {
				pairs = append(pairs, field)
			}
		}
		if len(pairs) > 0 {
			textBuilder.WriteString(strings.Join(pairs, ", "))
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String()
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *CSVParser) CanParse(mimeType string) bool {
	return mimeType == "text/csv"
}

// MimeType returns the primary MIME type for this parser.
func (p *CSVParser) MimeType() string {
	return "text/csv"
}
