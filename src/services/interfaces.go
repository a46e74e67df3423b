// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tutum/covaex/backend/src/models"
)

var (
	ErrSessionNotFound    = errors.New("import session not found")
	ErrRowIndexOutOfRange = errors.New("row index out of range")
	ErrUnknownField       = errors.New("unknown record field")
	ErrInvalidFieldValue  = errors.New("invalid field value")
	ErrNoRows             = errors.New("no importable rows")
	ErrTooManyRows        = errors.New("row count exceeds the import limit")
	ErrSubmitInFlight     = errors.New("a submission is already in flight for this session")
)

// ValidationErrors maps a zero-based row index to that row's ordered
// violation messages. Rows without violations are absent from the map.
type ValidationErrors map[int][]string

// RowValidationError carries the per-row violations that blocked a
// submission. The message identifies rows by 1-based position.
type RowValidationError struct {
	Errors ValidationErrors
}

func (e *RowValidationError) Error() string {
	indexes := make([]int, 0, len(e.Errors))
	for i := range e.Errors {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	parts := make([]string, 0, len(indexes))
	for _, i := range indexes {
		parts = append(parts, fmt.Sprintf("행 %d: %s", i+1, strings.Join(e.Errors[i], ", ")))
	}
	return strings.Join(parts, "; ")
}

// GridSnapshot is the externally visible state of one import session.
type GridSnapshot struct {
	SessionID   string                         `json:"session_id"`
	Rows        []models.ClassifiedAssetRecord `json:"rows"`
	SkippedRows int                            `json:"skipped_rows,omitempty"`
	Errors      ValidationErrors               `json:"errors,omitempty"`
}

// ImportService drives one bulk-import wizard session: decode and map an
// uploaded template, hold the editable grid, validate on demand, and
// forward the confirmed records to the ingestion API.
type ImportService interface {
	CreateSessionFromUpload(file io.Reader) (*GridSnapshot, error)
	CreateEmptySession() (*GridSnapshot, error)
	GetSession(id string) (*GridSnapshot, error)
	SetCell(id string, row int, field, value string) (*models.ClassifiedAssetRecord, error)
	AddRow(id string) (*GridSnapshot, error)
	RemoveRow(id string, row int) (*GridSnapshot, error)
	ValidateAll(id string) (ValidationErrors, error)
	Submit(ctx context.Context, id string) (*models.BulkResponse, error)
	DiscardSession(id string) error
}

// IngestClient submits confirmed records to the external asset ingestion
// API. The API reports per-row outcomes; transport and non-OK statuses are
// returned as errors wrapping ErrIngestUnavailable.
type IngestClient interface {
	SubmitAssets(ctx context.Context, payload models.BulkPayload) (*models.BulkResponse, error)
}
