// backend/src/parsers/csv_decoder.go
package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// GuideRowCount is the number of leading instructional rows embedded in the
// import template. They are never interpreted as header or data.
const GuideRowCount = 5

// MinTemplateRows is the smallest grid the mapper can work with: the guide
// rows plus the header row.
const MinTemplateRows = GuideRowCount + 1

var (
	ErrDecode   = errors.New("file is not parseable as delimited text")
	ErrTooShort = errors.New("file has too few rows")
)

// CSVDecoder reads an uploaded template payload into a raw grid of cells.
type CSVDecoder struct{}

func NewCSVDecoder() *CSVDecoder { return &CSVDecoder{} }

// Decode parses the payload as UTF-8 CSV. Fully blank rows are skipped
// rather than emitted, so downstream row offsets stay stable regardless of
// stray empty lines in the template.
func (d *CSVDecoder) Decode(file io.Reader) ([][]string, error) {
	// Tolerate a leading byte-order mark written by spreadsheet exports.
	utf8Reader := transform.NewReader(file, unicode.UTF8BOM.NewDecoder())

	reader := csv.NewReader(utf8Reader)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	grid := make([][]string, 0, len(records))
	for _, row := range records {
		if isBlankRow(row) {
			continue
		}
		grid = append(grid, row)
	}

	if len(grid) < MinTemplateRows {
		return nil, fmt.Errorf("%w: got %d rows, need at least %d", ErrTooShort, len(grid), MinTemplateRows)
	}
	return grid, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
