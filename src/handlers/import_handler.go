// backend/src/handlers/import_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tutum/covaex/backend/src/config"
	"github.com/tutum/covaex/backend/src/logger"
	"github.com/tutum/covaex/backend/src/parsers"
	"github.com/tutum/covaex/backend/src/security/validation"
	"github.com/tutum/covaex/backend/src/services"
	"github.com/tutum/covaex/backend/src/utils"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(service services.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: service,
	}
}

// HandleUpload receives the template file, runs the pre-decode checks and
// creates an editable import session from it. Every input error aborts the
// whole attempt with a single blocking message; there is no partial
// recovery at this stage.
func (h *ImportHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := validation.ValidateUploadSize(fileHeader.Size, config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Upload size check failed", "fileSize", fileHeader.Size, "error", err)
		if errors.Is(err, validation.ErrEmptyFile) {
			utils.SendJSONError(w, "파일이 비어 있습니다", http.StatusBadRequest)
		} else {
			utils.SendJSONError(w, fmt.Sprintf("파일 크기는 %dMB를 초과할 수 없습니다", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		}
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing import upload", "filename", fileHeader.Filename, "size", fileHeader.Size)
	snapshot, err := h.importService.CreateSessionFromUpload(file)
	if err != nil {
		h.sendUploadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// sendUploadError maps pipeline errors to the single blocking message the
// wizard shows for that input-error class.
func (h *ImportHandler) sendUploadError(w http.ResponseWriter, err error) {
	var missingCols *parsers.MissingColumnsError
	switch {
	case errors.Is(err, parsers.ErrTooShort):
		utils.SendJSONError(w, "CSV file is too short. Expected at least 6 rows.", http.StatusBadRequest)
	case errors.Is(err, parsers.ErrDecode):
		logger.L.Warn("Upload failed to decode", "error", err)
		utils.SendJSONError(w, "CSV 파일을 해석할 수 없습니다. 파일 형식을 확인해주세요", http.StatusBadRequest)
	case errors.As(err, &missingCols):
		utils.SendJSONError(w, "Required headers not found: "+strings.Join(missingCols.Missing, ", "), http.StatusBadRequest)
	case errors.Is(err, services.ErrNoRows):
		utils.SendJSONError(w, "데이터가 없습니다. CSV 파일 형식을 확인해주세요", http.StatusBadRequest)
	case errors.Is(err, services.ErrTooManyRows):
		utils.SendJSONError(w, fmt.Sprintf("최대 %d개 행까지 지원합니다", config.Cfg.MaxImportRows), http.StatusBadRequest)
	default:
		logger.L.Error("Internal error processing upload", "error", err)
		utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
	}
}

func (h *ImportHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.importService.CreateEmptySession()
	if err != nil {
		logger.L.Error("Failed to create import session", "error", err)
		utils.SendJSONError(w, "An internal error occurred. Please try again later.", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *ImportHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.importService.GetSession(r.PathValue("id"))
	if err != nil {
		h.sendSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *ImportHandler) HandleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := h.importService.DiscardSession(r.PathValue("id")); err != nil {
		h.sendSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "import session discarded"})
}

func (h *ImportHandler) HandleAddRow(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.importService.AddRow(r.PathValue("id"))
	if err != nil {
		h.sendSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *ImportHandler) HandleRemoveRow(w http.ResponseWriter, r *http.Request) {
	row, ok := rowIndex(w, r)
	if !ok {
		return
	}
	snapshot, err := h.importService.RemoveRow(r.PathValue("id"), row)
	if err != nil {
		h.sendSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type setCellRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *ImportHandler) HandleSetCell(w http.ResponseWriter, r *http.Request) {
	row, ok := rowIndex(w, r)
	if !ok {
		return
	}

	var req setCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	record, err := h.importService.SetCell(r.PathValue("id"), row, req.Field, req.Value)
	if err != nil {
		h.sendSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *ImportHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	validationErrors, err := h.importService.ValidateAll(r.PathValue("id"))
	if err != nil {
		h.sendSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  len(validationErrors) == 0,
		"errors": validationErrors,
	})
}

// HandleSubmit gates the submission on a full validation pass and forwards
// the grid to the ingestion API. A response with per-row failures is still
// a 200: the wizard shows the itemized outcome, it does not treat the
// operation as a hard failure.
func (h *ImportHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	result, err := h.importService.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		var rowErrs *services.RowValidationError
		switch {
		case errors.As(err, &rowErrs):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{
				"error": "다음 오류를 수정해주세요: " + rowErrs.Error(),
				"rows":  rowErrs.Errors,
			})
		case errors.Is(err, services.ErrNoRows):
			utils.SendJSONError(w, "등록할 데이터가 없습니다", http.StatusBadRequest)
		case errors.Is(err, services.ErrSubmitInFlight):
			utils.SendJSONError(w, "이미 등록이 진행 중입니다", http.StatusConflict)
		case errors.Is(err, services.ErrIngestUnavailable):
			logger.L.Error("Ingestion API unavailable", "error", err)
			utils.SendJSONError(w, "자산 등록 서비스에 연결할 수 없습니다", http.StatusBadGateway)
		default:
			h.sendSessionError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ImportHandler) sendSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		utils.SendJSONError(w, "import session not found or expired", http.StatusNotFound)
	case errors.Is(err, services.ErrRowIndexOutOfRange),
		errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrInvalidFieldValue):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.L.Error("Internal error handling import session request", "error", err)
		utils.SendJSONError(w, "An internal error occurred. Please try again later.", http.StatusInternalServerError)
	}
}

func rowIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	row, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		utils.SendJSONError(w, "invalid row index", http.StatusBadRequest)
		return 0, false
	}
	return row, true
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}
