// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/companionhq/companion/internal/domain"
	"github.com/companionhq/companion/internal/services"
	"github.com/companionhq/companion/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	UserService *user_services.UserService
	Logger      services.Logger
}

func NewAuthHandler(service *user_services.UserService, logger services.Logger) *AuthHandler {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &AuthHandler{UserService: service, Logger: logger}
}

// Register handles new user registrations.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	newUser := &domain.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
	}
	created, err := h.UserService.RegisterUser(r.Context(), newUser, req.Password)
	if err != nil {
		if errors.Is(err, user_services.ErrUserExists) {
			writeError(w, "Username or email already exists", http.StatusBadRequest)
			return
		}
		h.Logger.Error("registration failed", "username", req.Username, "error", err.Error())
		writeError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User registered successfully",
		"userId":  created.ID,
	})
}

// Login validates user credentials and issues a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, account, err := h.UserService.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, user_services.ErrInvalidCredentials) {
			writeError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		h.Logger.Error("login failed", "username", req.Username, "error", err.Error())
		writeError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"userId":   account.ID,
		"username": account.Username,
	})
}
