// File: internal/handlers/personality_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/companionhq/companion/internal/repository/personality"
	"github.com/companionhq/companion/internal/services"
)

// PersonalityHandler serves personality profile CRUD.
type PersonalityHandler struct {
	PersonalityService *services.PersonalityService
}

func NewPersonalityHandler(ps *services.PersonalityService) *PersonalityHandler {
	return &PersonalityHandler{PersonalityService: ps}
}

// List returns a user's personality profiles, newest first.
func (h *PersonalityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	personalities, err := h.PersonalityService.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, "Failed to fetch personalities", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, personalities)
}

// Create stores a new personality profile.
func (h *PersonalityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string   `json:"userId"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Traits      []string `json:"traits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.PersonalityService.Create(r.Context(), req.UserID, req.Name, req.Description, req.Traits)
	if err != nil {
		writeError(w, "Failed to create personality", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// Update rewrites a personality's name, description and traits.
func (h *PersonalityHandler) Update(w http.ResponseWriter, r *http.Request) {
	personalityID := mux.Vars(r)["personalityId"]

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Traits      []string `json:"traits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.PersonalityService.Update(r.Context(), personalityID, req.Name, req.Description, req.Traits)
	if err != nil {
		if errors.Is(err, personality.ErrPersonalityNotFound) {
			writeError(w, "Personality not found", http.StatusNotFound)
			return
		}
		writeError(w, "Failed to update personality", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes one personality profile by id.
func (h *PersonalityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	personalityID := mux.Vars(r)["personalityId"]

	if err := h.PersonalityService.Delete(r.Context(), personalityID); err != nil {
		if errors.Is(err, personality.ErrPersonalityNotFound) {
			writeError(w, "Personality not found", http.StatusNotFound)
			return
		}
		writeError(w, "Failed to delete personality", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Personality deleted successfully"})
}
