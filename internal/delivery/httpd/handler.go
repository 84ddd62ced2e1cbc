package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Dissertations service.DissertationService
	Milestones    service.MilestoneService
	Submissions   service.SubmissionService
	Reviews       service.ReviewService
	Messages      service.MessageService
	AI            service.AIService
}

type Handler struct {
	services      Services
	db            Pinger
	maxUploadSize int64
	logger        zerolog.Logger
}

func NewHandler(services Services, db Pinger, maxUploadSize int64, logger zerolog.Logger) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = 32 << 20
	}
	return &Handler{
		services:      services,
		db:            db,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/register", h.Register)
		api.Post("/auth/login", h.Login)

		api.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/me", h.GetMe)
			r.Patch("/me", h.UpdateMe)
			r.Get("/users", h.ListUsers)
			r.Get("/my-students", h.MyStudents)
			r.Get("/my-supervisor", h.MySupervisor)

			r.Route("/dissertations", func(r chi.Router) {
				r.Get("/", h.ListDissertations)
				r.Post("/", h.CreateDissertation)
				r.Delete("/{id}", h.DeleteDissertation)
			})

			r.Get("/milestones", h.ListMilestones)
			r.Patch("/milestones", h.SetMilestoneDueDate)

			r.Get("/my-submissions", h.ListMySubmissions)
			r.Route("/submissions", func(r chi.Router) {
				r.Get("/", h.ListSupervisedSubmissions)
				r.Post("/", h.CreateSubmission)
				r.Get("/{id}", h.GetSubmission)
				r.Patch("/{id}", h.ReviewSubmission)
				r.Delete("/{id}", h.DeleteSubmission)
				r.Get("/{id}/files/{filename}", h.DownloadSubmissionFile)
			})

			r.Get("/messages", h.ListMessages)
			r.Post("/messages", h.SendMessage)

			r.Post("/ai/summarize", h.Summarize)
			r.Post("/ai/plagiarism", h.CheckPlagiarism)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Health check: database unreachable")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"service":   "thesisflow",
		"timestamp": time.Now().UTC(),
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeSuccessStatus(w, http.StatusOK, data)
}

func writeSuccessStatus(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNoActiveMilestone):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrSequenceDiverged):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUpstreamFailure):
		writeError(w, http.StatusBadGateway, "AI service is unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
