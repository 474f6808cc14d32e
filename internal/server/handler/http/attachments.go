package http

import (
	"context"
	"io"
	"net/http"

	"github.com/avolkov/taskboard/internal/middleware"
	"github.com/avolkov/taskboard/internal/models"
	"github.com/go-chi/chi/v5"
)

// maxUploadMemory bounds the in-memory part of multipart parsing.
const maxUploadMemory = 1 << 20

// AttachmentService defines the interface for attachment operations
// required by the HTTP handlers.
type AttachmentService interface {
	// Upload stores the file bytes and the metadata row.
	Upload(ctx context.Context, ownerID, todoID, fileName, contentType string, size int64, body io.Reader) (*models.Attachment, error)
	// Delete removes the metadata row and the stored bytes.
	Delete(ctx context.Context, ownerID, attachmentID string) error
}

// AttachmentHandler handles HTTP requests for todo attachments.
type AttachmentHandler struct {
	AttachmentService AttachmentService
}

// Upload handles POST /api/todos/{id}/attachments with a multipart body
// holding one "file" part.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ownerID := middleware.GetUserIDFromContext(r.Context())
	attachment, err := h.AttachmentService.Upload(
		r.Context(),
		ownerID,
		chi.URLParam(r, "id"),
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachment)
}

// Delete handles DELETE /api/attachments/{id}.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserIDFromContext(r.Context())
	if err := h.AttachmentService.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
