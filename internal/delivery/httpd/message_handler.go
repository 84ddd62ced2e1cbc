package httpd

import (
	"net/http"

	"github.com/RubachokBoss/thesisflow/internal/models"
)

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	messages, err := h.services.Messages.List(r.Context(), p, r.URL.Query().Get("studentId"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	writeSuccess(w, messages)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message, err := h.services.Messages.Send(r.Context(), p, r.URL.Query().Get("studentId"), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccessStatus(w, http.StatusCreated, message)
}
