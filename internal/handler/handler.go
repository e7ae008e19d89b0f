// Package handler exposes the HTTP API surface.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rsharma/prepdesk/internal/auth"
	"github.com/rsharma/prepdesk/internal/model"
	"github.com/rsharma/prepdesk/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store *store.Store
	auth  *auth.Service
}

// New creates a new Handler.
func New(s *store.Store, a *auth.Service) *Handler {
	return &Handler{store: s, auth: a}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/exams", h.handleListExams)
	r.Get("/exams/{examID}/mock_tests", h.handleListExamMockTests)
	r.Get("/mock_tests/{mockID}/questions", h.handleListMockTestQuestions)

	r.With(h.requireAuth, requireRole(model.RoleAdmin, model.RolePublisher)).
		Get("/mock_tests", h.handleListMockTestsByStatus)
	r.With(h.requireAuth, requireRole(model.RoleEditor, model.RoleAdmin)).
		Post("/mock_tests", h.handleCreateMockTest)
	r.With(h.requireAuth, requireRole(model.RoleAdmin, model.RolePublisher)).
		Patch("/mock_tests/{id}/status", h.handleMockTestStatus)

	r.With(h.requireAuth, requireRole(model.RoleAdmin, model.RolePublisher)).
		Get("/questions", h.handleListQuestionsByStatus)
	r.With(h.requireAuth, requireRole(model.RoleEditor, model.RoleAdmin)).
		Post("/questions", h.handleCreateQuestion)
	r.With(h.requireAuth, requireRole(model.RoleAdmin, model.RolePublisher)).
		Patch("/questions/{id}/status", h.handleQuestionStatus)
	r.With(h.requireAuth, requireRole(model.RoleAdmin)).
		Delete("/questions/{id}", h.handleDeleteQuestion)

	r.Post("/results", h.handleSubmitResult)
	r.Get("/results/{userID}", h.handleListResults)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.With(h.requireAuth).Get("/profile", h.handleProfile)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondInternal logs the underlying error and returns a safe message.
func respondInternal(w http.ResponseWriter, what string, err error) {
	slog.Error(what, "error", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}

func urlID(r *http.Request, name string) (int64, bool) {
	return parsePositiveInt(chi.URLParam(r, name))
}

func parsePositiveInt(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
