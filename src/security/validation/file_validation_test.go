package validation

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutum/covaex/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestValidateUploadSize(t *testing.T) {
	assert.NoError(t, ValidateUploadSize(1, 100))
	assert.NoError(t, ValidateUploadSize(100, 100))
	assert.True(t, errors.Is(ValidateUploadSize(0, 100), ErrEmptyFile))
	assert.True(t, errors.Is(ValidateUploadSize(101, 100), ErrFileTooLarge))
}

func TestValidateClientContentType(t *testing.T) {
	assert.NoError(t, ValidateClientContentType("text/csv"))
	assert.NoError(t, ValidateClientContentType("TEXT/CSV"))
	assert.NoError(t, ValidateClientContentType("application/octet-stream"))
	assert.Error(t, ValidateClientContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.Error(t, ValidateClientContentType("image/png"))
	assert.Error(t, ValidateClientContentType(""))
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	csv := bytes.NewReader([]byte("종목명/종목 코드,수량,평단가\n삼성전자,2,88000\n"))
	detected, err := ValidateFileContentByMagicBytes(csv)
	require.NoError(t, err)
	assert.Contains(t, []string{"text/plain", "text/csv"}, detected)

	// The read pointer is reset so the decoder sees the whole payload.
	pos, err := csv.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)

	png := bytes.NewReader([]byte("\x89PNG\r\n\x1a\nrest of a png"))
	_, err = ValidateFileContentByMagicBytes(png)
	assert.Error(t, err)

	_, err = ValidateFileContentByMagicBytes(nil)
	assert.Error(t, err)
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "삼성전자", StripUnprintable("삼성전자"))
	assert.Equal(t, "TSLA", StripUnprintable("TS\x00LA\x07"))
	assert.Equal(t, "a b", StripUnprintable("a b"))
}
