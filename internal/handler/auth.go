package handler

import (
	"net/http"

	"github.com/rsharma/prepdesk/internal/model"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	existing, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		respondInternal(w, "failed to look up user", err)
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		respondInternal(w, "failed to hash password", err)
		return
	}

	id, err := h.store.CreateUser(model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if err != nil {
		// The unique index on email is the backstop for the race
		// between the lookup above and this insert.
		respondError(w, http.StatusConflict, "email already registered")
		return
	}

	user, err := h.store.GetUserByID(id)
	if err != nil || user == nil {
		respondInternal(w, "failed to load created user", err)
		return
	}

	token, err := h.auth.IssueToken(id)
	if err != nil {
		respondInternal(w, "failed to issue token", err)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: *user})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		respondInternal(w, "failed to look up user", err)
		return
	}
	// Same message for unknown email and wrong password.
	if user == nil || !h.auth.CheckPassword(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		respondInternal(w, "failed to issue token", err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, User: *user})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
