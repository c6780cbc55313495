// Package handlers implements the HTTP endpoints of the BudgetX API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dvloznov/budgetx/internal/api/middleware"
	"github.com/dvloznov/budgetx/internal/auth"
	"github.com/dvloznov/budgetx/internal/store"
	"github.com/rs/zerolog"
)

// UserStore is the slice of the storage layer the auth endpoints need.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error)
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	users  UserStore
	tokens *auth.Manager
	log    zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users UserStore, tokens *auth.Manager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Username) < 3 {
		middleware.WriteError(w, http.StatusBadRequest, "Username must be at least 3 characters")
		return
	}
	if len(req.Password) < 4 {
		middleware.WriteError(w, http.StatusBadRequest, "Password must be at least 4 characters")
		return
	}

	hash, err := h.tokens.HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to hash password")
		middleware.WriteError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, hash)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			middleware.WriteError(w, http.StatusConflict, "Username already exists")
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("Failed to create user")
		middleware.WriteError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := h.tokens.IssueToken(user.ID, user.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to issue token")
		middleware.WriteError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	middleware.WriteJSON(w, http.StatusOK, authResponse{Token: token, Username: user.Username})
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.log.Error().Err(err).Msg("Failed to look up user")
		middleware.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if !h.tokens.CheckPassword(user.PasswordHash, req.Password) {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := h.tokens.IssueToken(user.ID, user.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to issue token")
		middleware.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("Login successful")
	middleware.WriteJSON(w, http.StatusOK, authResponse{Token: token, Username: user.Username})
}
