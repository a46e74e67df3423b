package parsers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutum/covaex/backend/src/models"
)

// templateGrid builds a decoded grid in template shape: five guide rows,
// then the given header and data rows.
func templateGrid(header []string, data ...[]string) [][]string {
	grid := [][]string{
		{"안내 1"}, {"안내 2"}, {"안내 3"}, {"안내 4"}, {"안내 5"},
		header,
	}
	return append(grid, data...)
}

func TestMapProjectsRecords(t *testing.T) {
	grid := templateGrid(
		[]string{"종목명/종목 코드", "수량", "평단가", "환율"},
		[]string{"삼성전자", "2", "88,000", ""},
	)

	result, err := NewTemplateMapper().Map(grid)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, "삼성전자", rec.Symbol)
	assert.Equal(t, 2.0, rec.Quantity)
	assert.Equal(t, 88000.0, rec.AveragePrice)
	assert.Nil(t, rec.ExchangeRate)
	assert.Zero(t, result.SkippedRows)
}

func TestMapOptionalColumns(t *testing.T) {
	grid := templateGrid(
		[]string{"종목명/종목 코드", "수량", "평단가", "환율", "거래 유형", "거래일", "계좌명"},
		[]string{"TSLA", "10", "256.50", "1,250", "매수", "2023-04-07 15:40:30", "키움증권"},
		[]string{"005930", "1", "70000", "", "매도", "", ""},
		[]string{"BTC", "0.5", "30000", "", "기타", "", ""},
	)

	result, err := NewTemplateMapper().Map(grid)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	first := result.Records[0]
	require.NotNil(t, first.ExchangeRate)
	assert.Equal(t, 1250.0, *first.ExchangeRate)
	assert.Equal(t, models.TransactionBuy, first.TransactionType)
	assert.Equal(t, "2023-04-07 15:40:30", first.TransactionDate)
	assert.Equal(t, "키움증권", first.AccountName)

	second := result.Records[1]
	assert.Nil(t, second.ExchangeRate)
	assert.Equal(t, models.TransactionSell, second.TransactionType)
	assert.Empty(t, second.TransactionDate)

	// Values outside the buy/sell vocabulary are treated as absent.
	assert.Empty(t, result.Records[2].TransactionType)
}

func TestMapMissingRequiredColumns(t *testing.T) {
	grid := templateGrid(
		[]string{"종목명/종목 코드", "평단가"},
		[]string{"삼성전자", "88000"},
	)

	_, err := NewTemplateMapper().Map(grid)
	require.Error(t, err)

	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{HeaderQuantity}, missing.Missing)
}

func TestMapUnrecognizedHeaderIgnored(t *testing.T) {
	grid := templateGrid(
		[]string{"메모", "종목명/종목 코드", "수량", "평단가"},
		[]string{"note", "TSLA", "10", "256.50"},
	)

	result, err := NewTemplateMapper().Map(grid)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "TSLA", result.Records[0].Symbol)
}

func TestMapDropGate(t *testing.T) {
	grid := templateGrid(
		[]string{"종목명/종목 코드", "수량", "평단가"},
		[]string{"삼성전자", "2", "88000"}, // survives
		[]string{"TSLA", "0", "256.50"},  // quantity not positive
		[]string{"AAPL", "3", "0"},       // price not positive
		[]string{"  ", "5", "100"},       // blank symbol, skipped before the gate
		[]string{"단독셀"},                  // short row guard
	)

	result, err := NewTemplateMapper().Map(grid)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "삼성전자", result.Records[0].Symbol)
	assert.Equal(t, 2, result.SkippedRows)
}

func TestMapIsIdempotent(t *testing.T) {
	grid := templateGrid(
		[]string{"종목명/종목 코드", "수량", "평단가", "환율"},
		[]string{"삼성전자", "2", "88,000", ""},
		[]string{"TSLA", "10", "256.50", "1,250"},
	)

	mapper := NewTemplateMapper()
	first, err := mapper.Map(grid)
	require.NoError(t, err)
	second, err := mapper.Map(grid)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMapHeaderCellsTrimmed(t *testing.T) {
	grid := templateGrid(
		[]string{" 종목명/종목 코드 ", "수량 ", " 평단가"},
		[]string{"삼성전자", "2", "88000"},
	)

	result, err := NewTemplateMapper().Map(grid)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,234.50", 1234.5},
		{"88,000", 88000},
		{"256.50", 256.5},
		{" 2 ", 2},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"-5", -5},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseNumber(tc.in), "ParseNumber(%q)", tc.in)
	}
}

func TestNormalizeTransactionType(t *testing.T) {
	tests := []struct {
		in   string
		want models.TransactionType
	}{
		{"매수", models.TransactionBuy},
		{"매도", models.TransactionSell},
		{"BUY", models.TransactionBuy},
		{" sell ", models.TransactionSell},
		{"기타", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeTransactionType(tc.in), "NormalizeTransactionType(%q)", tc.in)
	}
}
