package parsers

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSkipsBlankRows(t *testing.T) {
	payload := strings.Join([]string{
		"안내 1",
		"",
		"안내 2",
		",,",
		"안내 3",
		"안내 4",
		"안내 5",
		"종목명/종목 코드,수량,평단가",
		"삼성전자,2,88000",
		"   ,  ,",
	}, "\n")

	grid, err := NewCSVDecoder().Decode(strings.NewReader(payload))
	require.NoError(t, err)

	// 5 guide rows + header + one data row; blank and whitespace-only
	// rows never make it into the grid.
	require.Len(t, grid, 7)
	assert.Equal(t, []string{"종목명/종목 코드", "수량", "평단가"}, grid[5])
	assert.Equal(t, []string{"삼성전자", "2", "88000"}, grid[6])
}

func TestDecodeTooShort(t *testing.T) {
	payload := "안내 1\n안내 2\n종목명/종목 코드,수량,평단가\n"

	_, err := NewCSVDecoder().Decode(strings.NewReader(payload))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooShort))
}

func TestDecodeMalformedQuoting(t *testing.T) {
	payload := "안내 1\n안내 2\n안내 3\n안내 4\n안내 5\nsymbol,\"unterminated\n"

	_, err := NewCSVDecoder().Decode(strings.NewReader(payload))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDecodeStripsByteOrderMark(t *testing.T) {
	payload := "\xEF\xBB\xBF안내 1\n안내 2\n안내 3\n안내 4\n안내 5\n종목명/종목 코드,수량,평단가\n"

	grid, err := NewCSVDecoder().Decode(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "안내 1", grid[0][0])
}

func TestDecodeEmptyPayload(t *testing.T) {
	_, err := NewCSVDecoder().Decode(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooShort))
}
