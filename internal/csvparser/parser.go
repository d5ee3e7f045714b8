// =============================================================================
// P&L Workbook Generator - CSV Parser Module
// =============================================================================
//
// This module reads the long-form fact extract and its remark file. It
// handles:
//   - Thai encodings with fallbacks (tis-620, cp874, utf-8-sig, utf-8)
//   - A configurable delimiter
//   - Header cleaning (surrounding spaces, stray byte-order marks)
//   - Short rows (missing trailing fields read as empty)
//
// Rows are returned as maps of header -> raw text; coercion into fact
// records is the normalizer's job.
//
// =============================================================================

package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/pnl-workbook/internal/config"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents a parsed extract.
type CSVData struct {
	// Headers contains the cleaned column headers.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// SourceFile is the path to the source CSV file.
	SourceFile string

	// Encoding is the encoding that decoded the file.
	Encoding string

	// RowCount is the number of data rows (excluding the header).
	RowCount int

	// ColumnCount is the number of columns.
	ColumnCount int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV extract.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Encoding preference and delimiter.
//
// RETURNS:
//   - The parsed data.
//   - An error wrapping types.ErrInputNotFound if the file does not exist,
//     types.ErrDecoding if no encoding fits, or a CSV syntax error.
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	raw, err := readFile(filePath)
	if err != nil {
		return nil, err
	}

	data, err := ParseBytes(raw, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseBytes parses an extract held in memory.
func ParseBytes(raw []byte, settings config.CSVSettings) (*CSVData, error) {
	text, enc, err := Decode(raw, settings.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	configureReader(reader, settings)

	headerRow, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("CSV file is empty: %w", types.ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	headers := cleanHeaders(headerRow)

	data := &CSVData{
		Headers:     headers,
		Encoding:    enc,
		ColumnCount: len(headers),
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if isRowEmpty(record) {
			continue
		}
		data.Rows = append(data.Rows, toMap(headers, record))
	}
	data.RowCount = len(data.Rows)

	return data, nil
}

// configureReader configures the CSV reader based on the settings. The
// delimiter is a single character; config validation rejects anything else.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = ','
	if r, _ := utf8.DecodeRuneInString(settings.Delimiter); r != utf8.RuneError {
		reader.Comma = r
	}

	// Extracts occasionally drop trailing empty fields.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// cleanHeaders trims headers and strips byte-order marks left by tools
// that prepend one to an already decoded file.
func cleanHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

func toMap(headers, record []string) map[string]string {
	row := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(record) {
			row[h] = record[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// REMARKS
// =============================================================================

// ReadRemarks reads a remark file: one remark per line, decoded with the
// same fallbacks as the extract. Leading and trailing blank lines are
// dropped; blank lines between remarks are kept as spacing.
func ReadRemarks(filePath, preferred string) ([]string, error) {
	raw, err := readFile(filePath)
	if err != nil {
		return nil, err
	}

	text, _, err := Decode(raw, preferred)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filePath, err)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}

	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return lines[start:end], nil
}

func readFile(filePath string) ([]byte, error) {
	raw, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", filePath, types.ErrInputNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return raw, nil
}
