package httpd

import (
	"net/http"

	"github.com/RubachokBoss/thesisflow/internal/models"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.services.Auth.Register(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccessStatus(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.services.Auth.Login(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, resp)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	user, err := h.services.Users.Me(r.Context(), p)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, user)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.services.Users.UpdateProfile(r.Context(), p, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	users, err := h.services.Users.ListUsers(r.Context(), p)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	writeSuccess(w, users)
}

func (h *Handler) MyStudents(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	students, err := h.services.Users.MyStudents(r.Context(), p)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if students == nil {
		students = []models.UserSummary{}
	}

	writeSuccess(w, students)
}

func (h *Handler) MySupervisor(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	supervisor, err := h.services.Users.MySupervisor(r.Context(), p)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, supervisor)
}
