package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"

	"docask/internal/domain"
	"docask/internal/ingest"
)

// UploadResponse is returned after uploading and processing a document.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

// UploadHandler accepts one file per request, saves it under the upload
// directory, extracts its text and feeds it through the ingestion pipeline.
type UploadHandler struct {
	pipeline  *ingest.Pipeline
	extractor domain.TextExtractor
	uploadDir string
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(pipeline *ingest.Pipeline, extractor domain.TextExtractor, uploadDir string, timeout time.Duration, logger arbor.ILogger) *UploadHandler {
	return &UploadHandler{
		pipeline:  pipeline,
		extractor: extractor,
		uploadDir: uploadDir,
		timeout:   timeout,
		logger:    logger,
	}
}

const maxUploadBytes = 32 << 20

// HandleUpload handles POST /upload requests.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		WriteError(w, http.StatusBadRequest, "missing filename")
		return
	}

	savedPath, err := h.saveUpload(file, filename)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", filename).Msg("Failed to save upload")
		WriteError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}

	text, err := h.extractor.Extract(savedPath)
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", filename).Msg("Extraction failed")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	docID, err := h.pipeline.Ingest(ctx, text, filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			WriteError(w, http.StatusGatewayTimeout, "ingestion timed out, please retry")
		default:
			h.logger.Error().Err(err).Str("filename", filename).Msg("Ingestion failed")
			WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	WriteJSON(w, http.StatusOK, UploadResponse{
		DocumentID: docID,
		Filename:   filename,
		Status:     "success",
		Message:    "document ingested",
	})
}

func (h *UploadHandler) saveUpload(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(h.uploadDir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return path, nil
}
