// backend/src/services/import_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/tutum/covaex/backend/src/classifier"
	"github.com/tutum/covaex/backend/src/logger"
	"github.com/tutum/covaex/backend/src/models"
	"github.com/tutum/covaex/backend/src/parsers"
)

// Row-violation messages shown to the user, in the template's language.
const (
	msgSymbolRequired   = "종목 코드는 필수입니다"
	msgQuantityPositive = "수량은 양수여야 합니다"
	msgPricePositive    = "평단가는 양수여야 합니다"
)

// importSession is the live state of one wizard run. It is owned by a
// single logical flow; the mutex only guards against a misbehaving client
// issuing overlapping requests for the same session.
type importSession struct {
	mu          sync.Mutex
	id          string
	rows        []models.ClassifiedAssetRecord
	lastErrors  ValidationErrors
	skippedRows int
	submitting  bool
}

type importServiceImpl struct {
	decoder  parsers.Decoder
	mapper   parsers.Mapper
	ingest   IngestClient
	sessions *cache.Cache
	maxRows  int
}

func NewImportService(
	decoder parsers.Decoder,
	mapper parsers.Mapper,
	ingest IngestClient,
	sessions *cache.Cache,
	maxRows int,
) ImportService {
	return &importServiceImpl{
		decoder:  decoder,
		mapper:   mapper,
		ingest:   ingest,
		sessions: sessions,
		maxRows:  maxRows,
	}
}

// CreateSessionFromUpload runs the decode -> map -> classify pipeline and
// stores the result as a new editable session. Size and content-type
// pre-checks happen before this is called; the row-count cap is enforced
// here because it needs the mapped record count.
func (s *importServiceImpl) CreateSessionFromUpload(file io.Reader) (*GridSnapshot, error) {
	grid, err := s.decoder.Decode(file)
	if err != nil {
		return nil, err
	}

	mapped, err := s.mapper.Map(grid)
	if err != nil {
		return nil, err
	}
	if len(mapped.Records) == 0 {
		return nil, ErrNoRows
	}
	if len(mapped.Records) > s.maxRows {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrTooManyRows, len(mapped.Records), s.maxRows)
	}

	rows := make([]models.ClassifiedAssetRecord, 0, len(mapped.Records))
	for _, rec := range mapped.Records {
		c := classifier.Classify(rec.Symbol)
		rows = append(rows, models.ClassifiedAssetRecord{
			AssetRecord: rec,
			AssetType:   c.AssetType,
			Currency:    c.Currency,
		})
	}

	sess := &importSession{
		id:          uuid.NewString(),
		rows:        rows,
		skippedRows: mapped.SkippedRows,
	}
	s.sessions.Set(sess.id, sess, cache.DefaultExpiration)

	logger.L.Info("Import session created from upload",
		"sessionID", sess.id, "rows", len(rows), "skippedRows", mapped.SkippedRows)
	return snapshot(sess), nil
}

// CreateEmptySession starts a session with no rows for the manual-entry
// path; the caller adds blank rows afterwards.
func (s *importServiceImpl) CreateEmptySession() (*GridSnapshot, error) {
	sess := &importSession{
		id:   uuid.NewString(),
		rows: []models.ClassifiedAssetRecord{},
	}
	s.sessions.Set(sess.id, sess, cache.DefaultExpiration)
	logger.L.Info("Empty import session created", "sessionID", sess.id)
	return snapshot(sess), nil
}

func (s *importServiceImpl) GetSession(id string) (*GridSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshotLocked(sess), nil
}

// SetCell mutates one field of one record. Editing the symbol re-runs the
// classifier for that row; direct edits to asset_type or currency persist
// until the symbol changes again. No validation runs here — validation is
// an explicit, separate step.
func (s *importServiceImpl) SetCell(id string, row int, field, value string) (*models.ClassifiedAssetRecord, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if row < 0 || row >= len(sess.rows) {
		return nil, fmt.Errorf("%w: %d", ErrRowIndexOutOfRange, row)
	}
	rec := &sess.rows[row]

	switch field {
	case "symbol":
		trimmed := strings.TrimSpace(value)
		rec.Symbol = trimmed
		if trimmed != "" {
			c := classifier.Classify(trimmed)
			rec.AssetType = c.AssetType
			rec.Currency = c.Currency
		}
	case "name":
		rec.Name = strings.TrimSpace(value)
	case "quantity":
		rec.Quantity = parsers.ParseNumber(value)
	case "average_price":
		rec.AveragePrice = parsers.ParseNumber(value)
	case "exchange_rate":
		if strings.TrimSpace(value) == "" {
			rec.ExchangeRate = nil
		} else {
			rate := parsers.ParseNumber(value)
			rec.ExchangeRate = &rate
		}
	case "transaction_type":
		rec.TransactionType = parsers.NormalizeTransactionType(value)
	case "transaction_date":
		rec.TransactionDate = strings.TrimSpace(value)
	case "account_name":
		rec.AccountName = strings.TrimSpace(value)
	case "asset_type":
		at := models.AssetType(value)
		if !at.Valid() {
			return nil, fmt.Errorf("%w: asset_type %q", ErrInvalidFieldValue, value)
		}
		rec.AssetType = at
	case "currency":
		c := models.Currency(value)
		if !c.Valid() {
			return nil, fmt.Errorf("%w: currency %q", ErrInvalidFieldValue, value)
		}
		rec.Currency = c
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	out := *rec
	return &out, nil
}

// AddRow appends a blank template record with the classifier defaults.
func (s *importServiceImpl) AddRow(id string) (*GridSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.rows = append(sess.rows, models.ClassifiedAssetRecord{
		AssetType: models.AssetTypeStock,
		Currency:  models.CurrencyKRW,
	})
	return snapshotLocked(sess), nil
}

// RemoveRow deletes the record at the given index. Validation errors are
// discarded wholesale: after the shift they would point at the wrong rows,
// and the next ValidateAll recomputes them against the new order.
func (s *importServiceImpl) RemoveRow(id string, row int) (*GridSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if row < 0 || row >= len(sess.rows) {
		return nil, fmt.Errorf("%w: %d", ErrRowIndexOutOfRange, row)
	}
	sess.rows = append(sess.rows[:row], sess.rows[row+1:]...)
	sess.lastErrors = nil
	return snapshotLocked(sess), nil
}

func (s *importServiceImpl) ValidateAll(id string) (ValidationErrors, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	errs := validateRows(sess.rows)
	sess.lastErrors = errs
	return errs, nil
}

// Submit validates every row and forwards the grid to the ingestion API.
// Row violations refuse the whole submission — no partial submit of valid
// rows. A second submit while one is in flight is refused. On a fully
// successful import the session is discarded; a partial failure keeps it
// alive so the user can fix and resubmit the failed rows.
func (s *importServiceImpl) Submit(ctx context.Context, id string) (*models.BulkResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.submitting {
		sess.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if len(sess.rows) == 0 {
		sess.mu.Unlock()
		return nil, ErrNoRows
	}
	errs := validateRows(sess.rows)
	sess.lastErrors = errs
	if len(errs) > 0 {
		sess.mu.Unlock()
		return nil, &RowValidationError{Errors: errs}
	}
	payload := buildPayload(sess.rows)
	sess.submitting = true
	sess.mu.Unlock()

	resp, err := s.ingest.SubmitAssets(ctx, payload)

	sess.mu.Lock()
	sess.submitting = false
	sess.mu.Unlock()

	if err != nil {
		return nil, err
	}

	logger.L.Info("Bulk submission completed",
		"sessionID", id, "succeeded", resp.SuccessCount, "failed", resp.FailureCount)
	if resp.FailureCount == 0 {
		s.sessions.Delete(id)
	}
	return resp, nil
}

func (s *importServiceImpl) DiscardSession(id string) error {
	if _, err := s.session(id); err != nil {
		return err
	}
	s.sessions.Delete(id)
	logger.L.Info("Import session discarded", "sessionID", id)
	return nil
}

func (s *importServiceImpl) session(id string) (*importSession, error) {
	if cached, found := s.sessions.Get(id); found {
		return cached.(*importSession), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// validateRows collects the structural violations of every record. A row
// appears in the result iff it violates at least one rule.
func validateRows(rows []models.ClassifiedAssetRecord) ValidationErrors {
	errs := make(ValidationErrors)
	for i, row := range rows {
		var rowErrs []string
		if strings.TrimSpace(row.Symbol) == "" {
			rowErrs = append(rowErrs, msgSymbolRequired)
		}
		if row.Quantity <= 0 {
			rowErrs = append(rowErrs, msgQuantityPositive)
		}
		if row.AveragePrice <= 0 {
			rowErrs = append(rowErrs, msgPricePositive)
		}
		if len(rowErrs) > 0 {
			errs[i] = rowErrs
		}
	}
	return errs
}

// buildPayload serializes the grid for the ingestion API, defaulting the
// display name to the symbol when absent.
func buildPayload(rows []models.ClassifiedAssetRecord) models.BulkPayload {
	assets := make([]models.BulkAsset, 0, len(rows))
	for _, row := range rows {
		name := row.Name
		if name == "" {
			name = row.Symbol
		}
		assets = append(assets, models.BulkAsset{
			Symbol:          row.Symbol,
			Name:            name,
			AssetType:       row.AssetType,
			Quantity:        row.Quantity,
			AveragePrice:    row.AveragePrice,
			Currency:        row.Currency,
			ExchangeRate:    row.ExchangeRate,
			TransactionType: row.TransactionType,
			TransactionDate: row.TransactionDate,
			AccountName:     row.AccountName,
		})
	}
	return models.BulkPayload{Assets: assets}
}

func snapshot(sess *importSession) *GridSnapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshotLocked(sess)
}

func snapshotLocked(sess *importSession) *GridSnapshot {
	rows := make([]models.ClassifiedAssetRecord, len(sess.rows))
	copy(rows, sess.rows)
	return &GridSnapshot{
		SessionID:   sess.id,
		Rows:        rows,
		SkippedRows: sess.skippedRows,
		Errors:      sess.lastErrors,
	}
}
