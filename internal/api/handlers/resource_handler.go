package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tochi-dev/medisync/internal/services"
)

const maxUploadBytes = 32 << 20 // 32 MB

type ResourceHandler struct {
	resources *services.ResourceService
}

func NewResourceHandler(resources *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// Upload handles the multipart upload and runs the processing pipeline
// synchronously; the response carries the terminal state of the record.
func (h *ResourceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	email, _ := r.Context().Value("email").(string)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	// Sanitize filename to prevent path traversal or invalid characters
	fileName := filepath.Base(header.Filename)

	rec, err := h.resources.Upload(r.Context(), userID, email, fileName, contentType, data)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"resourceId":       rec.ID,
		"fileName":         rec.FileName,
		"fileSize":         rec.FileSize,
		"pageCount":        rec.PageCount,
		"resourceData":     rec.Data,
		"processingStatus": rec.Status,
	})
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "user_id not found in context")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	records, total, err := h.resources.List(r.Context(), userID, page, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	// Listings never carry the raw extracted text.
	for i := range records {
		records[i].RawText = ""
	}

	pages := (total + limit - 1) / limit
	respondJSON(w, http.StatusOK, map[string]any{
		"resources": records,
		"pagination": map[string]int{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": pages,
		},
	})
}

func (h *ResourceHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	rec, err := h.resources.Latest(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *ResourceHandler) Aggregated(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	snap, err := h.resources.Aggregated(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	rec, err := h.resources.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	if err := h.resources.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "resource deleted"})
}
