// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/companionhq/companion/internal/services"
	"github.com/companionhq/companion/internal/services/chat"
)

// ChatHandler serves conversations, messages and the REST chat entry point.
type ChatHandler struct {
	ChatService *services.ChatService
	Logger      services.Logger
}

func NewChatHandler(cs *services.ChatService, logger services.Logger) *ChatHandler {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &ChatHandler{ChatService: cs, Logger: logger}
}

// GetUserConversations handles the request to list a user's conversations.
func (h *ChatHandler) GetUserConversations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	conversations, err := h.ChatService.GetUserConversations(r.Context(), userID)
	if err != nil {
		writeError(w, "Failed to fetch conversations", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// CreateConversation starts a new conversation for a user.
func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Title  string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.ChatService.CreateConversation(r.Context(), req.UserID, req.Title)
	if err != nil {
		writeError(w, "Failed to create conversation", statusForChatError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"conversationId": created.ID,
		"title":          created.Title,
	})
}

// GetConversationMessages lists a conversation's messages, oldest first.
func (h *ChatHandler) GetConversationMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]

	messages, err := h.ChatService.GetConversationMessages(r.Context(), conversationID)
	if err != nil {
		writeError(w, "Failed to fetch messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// SaveMessage persists a single message for non-realtime clients.
func (h *ChatHandler) SaveMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string `json:"conversationId"`
		Content        string `json:"content"`
		Sender         string `json:"sender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConversationID == "" {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := h.ChatService.SaveMessage(r.Context(), req.ConversationID, req.Content, req.Sender)
	if err != nil {
		writeError(w, "Failed to save message", statusForChatError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"messageId": saved.ID,
		"content":   saved.Content,
		"sender":    saved.Sender,
	})
}

// HandleChat runs one chat turn over HTTP. Same pipeline as the websocket
// gateway.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message        string `json:"message"`
		UserID         string `json:"userId"`
		ConversationID string `json:"conversationId"`
		PersonalityID  string `json:"personalityId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" || req.UserID == "" || req.ConversationID == "" {
		writeError(w, "Missing required fields: message, userId, conversationId", http.StatusBadRequest)
		return
	}

	userMessage, aiMessage, err := h.ChatService.HandleUserTurn(
		r.Context(), req.UserID, req.ConversationID, req.Message, req.PersonalityID)
	if err != nil {
		h.Logger.Error("chat turn failed", "conversationId", req.ConversationID, "error", err.Error())

		var chatErr *chat.ChatError
		if errors.As(err, &chatErr) && chatErr.Type == chat.ErrTypeUpstream && chatErr.Cause != nil {
			writeErrorDetails(w, "Failed to generate AI response", chatErr.Cause.Error(), http.StatusInternalServerError)
			return
		}
		writeError(w, err.Error(), statusForChatError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"response":    aiMessage.Content,
		"messageId":   userMessage.ID,
		"aiMessageId": aiMessage.ID,
	})
}
