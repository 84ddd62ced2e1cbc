package httpd

import (
	"net/http"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListDissertations(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	dissertations, err := h.services.Dissertations.List(r.Context(), p)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if dissertations == nil {
		dissertations = []models.DissertationWithDetails{}
	}

	writeSuccess(w, dissertations)
}

// CreateDissertation also lays out the student's milestone sequence.
func (h *Handler) CreateDissertation(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req models.CreateDissertationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dissertation, err := h.services.Dissertations.Create(r.Context(), p, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccessStatus(w, http.StatusCreated, dissertation)
}

func (h *Handler) DeleteDissertation(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.services.Dissertations.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, models.MessageResponse{Message: "Dissertation deleted"})
}
