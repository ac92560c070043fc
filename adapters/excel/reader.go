// Package excel extracts the data table from an uploaded spreadsheet.
// The table may sit anywhere on any sheet: the first non-empty cell
// anchors it, the header row runs right until an empty cell, and the
// data rows run down the anchor column until an empty cell.
package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"autoficate/internal/errors"
)

// TableData is the extracted table: ordered headings plus the column
// values under each heading.
type TableData struct {
	Headings []string
	Columns  map[string][]string
}

// Rows returns the number of data rows (the longest column).
func (t *TableData) Rows() int {
	max := 0
	for _, col := range t.Columns {
		if len(col) > max {
			max = len(col)
		}
	}
	return max
}

// Reader parses uploaded spreadsheet files. Uploads are fully buffered
// per request, so it works on the in-memory bytes.
type Reader struct {
	fileName string
	data     []byte
}

// NewReader creates a reader for an uploaded file. The extension picks
// the format: .csv is parsed as CSV, everything else as xlsx.
func NewReader(fileName string, data []byte) *Reader {
	return &Reader{fileName: fileName, data: data}
}

// ReadTable locates and extracts the data table.
func (r *Reader) ReadTable() (*TableData, error) {
	if strings.ToLower(filepath.Ext(r.fileName)) == ".csv" {
		return r.readCSV()
	}
	return r.readWorkbook()
}

func (r *Reader) readWorkbook() (*TableData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(r.data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		table, ok := findTable(rows)
		if ok {
			log.Printf("[Excel] table found on sheet %q (%d columns, %d rows)", sheet, len(table.Headings), table.Rows())
			return table, nil
		}
	}

	return nil, errors.TableNotFound("no table found in this workbook")
}

func (r *Reader) readCSV() (*TableData, error) {
	reader := csv.NewReader(bytes.NewReader(r.data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	table, ok := findTable(rows)
	if !ok {
		return nil, errors.TableNotFound("no table found in this file")
	}
	log.Printf("[Excel] CSV table (%d columns, %d rows)", len(table.Headings), table.Rows())
	return table, nil
}

// findTable anchors on the first non-empty cell in row-major order.
func findTable(rows [][]string) (*TableData, bool) {
	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			return extractTable(rows, rowIdx, colIdx), true
		}
	}
	return nil, false
}

// extractTable reads the header row rightward and each column downward
// from the anchor. Both stop at the first empty cell; the anchor
// column bounds the row count.
func extractTable(rows [][]string, startRow, startCol int) *TableData {
	headerRow := rows[startRow]

	var headings []string
	for col := startCol; col < len(headerRow); col++ {
		h := strings.TrimSpace(headerRow[col])
		if h == "" {
			break
		}
		headings = append(headings, h)
	}

	length := 0
	for row := startRow + 1; row < len(rows); row++ {
		if cellAt(rows, row, startCol) == "" {
			break
		}
		length++
	}

	table := &TableData{
		Headings: headings,
		Columns:  make(map[string][]string, len(headings)),
	}
	for i, h := range headings {
		col := make([]string, 0, length)
		for row := startRow + 1; row <= startRow+length; row++ {
			col = append(col, cellAt(rows, row, startCol+i))
		}
		table.Columns[h] = col
	}

	return table
}

func cellAt(rows [][]string, row, col int) string {
	if row >= len(rows) || col >= len(rows[row]) {
		return ""
	}
	return strings.TrimSpace(rows[row][col])
}

// NormalizeHeading maps a spreadsheet heading onto the inspector form:
// first letter capitalized, spaces become underscores.
func NormalizeHeading(heading string) string {
	h := strings.TrimSpace(heading)
	if h == "" {
		return h
	}
	first, size := utf8.DecodeRuneInString(h)
	h = strings.ToUpper(string(first)) + strings.ToLower(h[size:])
	return strings.ReplaceAll(h, " ", "_")
}
