// backend/src/parsers/template_mapper.go
package parsers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tutum/covaex/backend/src/models"
	"github.com/tutum/covaex/backend/src/security/validation"
)

// Header labels the import template uses. Column resolution is an exact
// match on the trimmed cell text; anything else is an extra column and is
// ignored.
const (
	HeaderSymbol          = "종목명/종목 코드"
	HeaderQuantity        = "수량"
	HeaderAveragePrice    = "평단가"
	HeaderExchangeRate    = "환율"
	HeaderTransactionType = "거래 유형"
	HeaderTransactionDate = "거래일"
	HeaderAccountName     = "계좌명"
)

// MissingColumnsError reports which required template columns could not be
// located in the header row.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required headers not found: %s", strings.Join(e.Missing, ", "))
}

// columnIndexes holds the resolved zero-based position of each recognized
// column, or -1 when the column is absent.
type columnIndexes struct {
	symbol          int
	quantity        int
	averagePrice    int
	exchangeRate    int
	transactionType int
	transactionDate int
	accountName     int
}

// MapResult is the mapper's projection of a decoded grid. SkippedRows
// counts data rows dropped by the symbol/quantity/price gate so the caller
// can surface a diagnostic; the surviving records match the template
// contract exactly.
type MapResult struct {
	Records     []models.AssetRecord
	SkippedRows int
}

// TemplateMapper projects the asset-import template grid into typed records.
type TemplateMapper struct{}

func NewTemplateMapper() *TemplateMapper { return &TemplateMapper{} }

// Map slices off the guide rows, resolves the header at row index 5 and
// projects every remaining row into an AssetRecord. It is a pure function
// of the grid: mapping the same grid twice yields identical results.
func (m *TemplateMapper) Map(grid [][]string) (*MapResult, error) {
	if len(grid) < MinTemplateRows {
		return nil, fmt.Errorf("%w: got %d rows, need at least %d", ErrTooShort, len(grid), MinTemplateRows)
	}

	headerRow := grid[GuideRowCount]
	dataRows := grid[GuideRowCount+1:]

	cols, err := resolveColumns(headerRow)
	if err != nil {
		return nil, err
	}

	result := &MapResult{Records: []models.AssetRecord{}}
	for _, row := range dataRows {
		// Guard against stray short rows and rows with no symbol at all.
		if len(row) < 2 || strings.TrimSpace(cellAt(row, cols.symbol)) == "" {
			continue
		}

		rec := models.AssetRecord{
			Symbol:       cleanText(cellAt(row, cols.symbol)),
			Quantity:     ParseNumber(cellAt(row, cols.quantity)),
			AveragePrice: ParseNumber(cellAt(row, cols.averagePrice)),
		}

		if v := cleanText(cellAt(row, cols.exchangeRate)); v != "" {
			rate := ParseNumber(v)
			rec.ExchangeRate = &rate
		}
		rec.TransactionType = NormalizeTransactionType(cellAt(row, cols.transactionType))
		rec.TransactionDate = cleanText(cellAt(row, cols.transactionDate))
		rec.AccountName = cleanText(cellAt(row, cols.accountName))

		if rec.Symbol == "" || rec.Quantity <= 0 || rec.AveragePrice <= 0 {
			result.SkippedRows++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

func resolveColumns(headerRow []string) (*columnIndexes, error) {
	find := func(label string) int {
		for i, cell := range headerRow {
			if strings.TrimSpace(cell) == label {
				return i
			}
		}
		return -1
	}

	cols := &columnIndexes{
		symbol:          find(HeaderSymbol),
		quantity:        find(HeaderQuantity),
		averagePrice:    find(HeaderAveragePrice),
		exchangeRate:    find(HeaderExchangeRate),
		transactionType: find(HeaderTransactionType),
		transactionDate: find(HeaderTransactionDate),
		accountName:     find(HeaderAccountName),
	}

	var missing []string
	if cols.symbol < 0 {
		missing = append(missing, HeaderSymbol)
	}
	if cols.quantity < 0 {
		missing = append(missing, HeaderQuantity)
	}
	if cols.averagePrice < 0 {
		missing = append(missing, HeaderAveragePrice)
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}
	return cols, nil
}

// cellAt returns the cell at index i, or "" when the column is absent or
// the row is too short.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func cleanText(cell string) string {
	return strings.TrimSpace(validation.StripUnprintable(cell))
}

// ParseNumber parses a numeric cell tolerant of thousands separators
// ("1,234.50" -> 1234.5). Empty or non-numeric cells parse to 0.
func ParseNumber(value string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// NormalizeTransactionType maps the template's 거래 유형 vocabulary onto the
// buy/sell enum. Unrecognized values are treated as absent.
func NormalizeTransactionType(value string) models.TransactionType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "매수", "buy":
		return models.TransactionBuy
	case "매도", "sell":
		return models.TransactionSell
	default:
		return ""
	}
}
