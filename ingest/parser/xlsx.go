package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const mimeTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXParser flattens workbook sheets (emissions ledgers, KPI workbooks)
// the same way the CSV parser flattens rows, with a heading per sheet.
type XLSXParser struct{}

// NewXLSXParser creates a new XLSX parser.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse renders every sheet's data rows as "header: value" pairs under a
// sheet heading. Sheets without data rows are skipped; an all-empty
// workbook yields empty text rather than an error.
func (p *XLSXParser) Parse(filename string, content []byte) (*Extracted, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	var textBuilder strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			continue
		}

		flattened := flattenRows(rows)
		if flattened == "" {
			continue
		}

		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n")
		}
		textBuilder.WriteString("## " + sheet + "\n")
		textBuilder.WriteString(flattened)
	}

	return &Extracted{
		Filename: filepath.Base(filename),
		Text:     strings.TrimSpace(textBuilder.String()),
	}, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *XLSXParser) CanParse(mimeType string) bool {
	return mimeType == mimeTypeXLSX
}

// MimeType returns the primary MIME type for this parser.
func (p *XLSXParser) MimeType() string {
	return mimeTypeXLSX
}
