package httpd

import (
	"net/http"

	"github.com/RubachokBoss/thesisflow/internal/models"
)

func (h *Handler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	milestones, err := h.services.Milestones.List(r.Context(), p, r.URL.Query().Get("studentId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if milestones == nil {
		milestones = []models.Milestone{}
	}

	writeSuccess(w, milestones)
}

func (h *Handler) SetMilestoneDueDate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req models.SetDueDateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	milestone, err := h.services.Milestones.SetDueDate(r.Context(), p, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, milestone)
}
