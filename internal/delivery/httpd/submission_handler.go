package httpd

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListMySubmissions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	submissions, err := h.services.Submissions.ListMine(r.Context(), p)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if submissions == nil {
		submissions = []models.Submission{}
	}

	writeSuccess(w, submissions)
}

func (h *Handler) ListSupervisedSubmissions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	submissions, err := h.services.Submissions.ListForSupervisor(r.Context(), p)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if submissions == nil {
		submissions = []models.SubmissionWithStudent{}
	}

	writeSuccess(w, submissions)
}

// CreateSubmission accepts multipart/form-data with a content field and an
// optional file part, or a JSON body with content only.
func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))

	req, err := h.parseSubmission(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the size limit")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	submission, err := h.services.Submissions.Create(r.Context(), p, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccessStatus(w, http.StatusCreated, submission)
}

func (h *Handler) parseSubmission(r *http.Request) (*models.CreateSubmissionRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req models.CreateSubmissionRequest
		if err := decodeJSON(r, &req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &req, nil
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	req := &models.CreateSubmissionRequest{
		Content: r.FormValue("content"),
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid file part: %w", err)
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		return nil, &http.MaxBytesError{Limit: h.maxUploadSize}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	req.FileName = header.Filename
	req.FileType = header.Header.Get("Content-Type")
	req.FileData = data

	return req, nil
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	submission, err := h.services.Submissions.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req models.ReviewSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	submission, err := h.services.Reviews.Review(r.Context(), p, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.services.Submissions.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, models.MessageResponse{Message: "Submission deleted"})
}

func (h *Handler) DownloadSubmissionFile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	file, err := h.services.Submissions.Download(r.Context(), p, chi.URLParam(r, "id"), chi.URLParam(r, "filename"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	defer file.Content.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": strings.ReplaceAll(file.FileName, "\"", ""),
	}))
	if file.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file.Content); err != nil {
		h.logger.Warn().Err(err).Str("submission_id", chi.URLParam(r, "id")).Msg("Failed to stream file")
	}
}
