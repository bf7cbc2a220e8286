package realtime

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/companionhq/companion/internal/services"
	"github.com/companionhq/companion/internal/services/chat"
)

// Event names on the socket channel.
const (
	EventJoinConversation = "join-conversation"
	EventSendMessage      = "send-message"
	EventNewMessage       = "new-message"
	EventError            = "error"
)

type clientEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	Message        string `json:"message,omitempty"`
	UserID         string `json:"userId,omitempty"`
	PersonalityID  string `json:"personalityId,omitempty"`
}

type messageEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Gateway upgrades HTTP requests to websockets and relays chat turns through
// the shared chat pipeline, fanning replies out to the conversation room.
type Gateway struct {
	hub      *Hub
	chats    *services.ChatService
	logger   services.Logger
	upgrader websocket.Upgrader
}

func NewGateway(hub *Hub, chats *services.ChatService, logger services.Logger) *Gateway {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Gateway{
		hub:    hub,
		chats:  chats,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection runs the read loop for one socket until it disconnects.
func (g *Gateway) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", "error", err.Error())
		return
	}
	client := newClient(conn)
	g.logger.Info("websocket client connected", "remote", conn.RemoteAddr().String())

	defer func() {
		g.hub.Remove(client)
		conn.Close()
		g.logger.Info("websocket client disconnected", "remote", conn.RemoteAddr().String())
	}()

	for {
		var event clientEvent
		if err := conn.ReadJSON(&event); err != nil {
			return
		}

		switch event.Type {
		case EventJoinConversation:
			if event.ConversationID == "" {
				_ = client.Send(errorEvent{Type: EventError, Error: "conversationId is required"})
				continue
			}
			g.hub.Join(event.ConversationID, client)
			g.logger.Info("client joined conversation room",
				"conversationId", event.ConversationID, "size", g.hub.RoomSize(event.ConversationID))

		case EventSendMessage:
			g.handleSendMessage(r, client, event)

		default:
			_ = client.Send(errorEvent{Type: EventError, Error: "unknown event type"})
		}
	}
}

// handleSendMessage runs one chat turn and broadcasts both sides of it, user
// message first. Failures go to the sender only.
func (g *Gateway) handleSendMessage(r *http.Request, client *Client, event clientEvent) {
	if event.Message == "" || event.UserID == "" || event.ConversationID == "" {
		_ = client.Send(errorEvent{
			Type:  EventError,
			Error: "Missing required fields: message, userId, conversationId",
		})
		return
	}

	userMessage, aiMessage, err := g.chats.HandleUserTurn(
		r.Context(), event.UserID, event.ConversationID, event.Message, event.PersonalityID)
	if err != nil {
		g.logger.Error("socket chat turn failed",
			"conversationId", event.ConversationID, "error", err.Error())

		out := errorEvent{Type: EventError, Error: err.Error()}
		var chatErr *chat.ChatError
		if errors.As(err, &chatErr) && chatErr.Type == chat.ErrTypeUpstream {
			out.Error = "Failed to generate AI response"
			if chatErr.Cause != nil {
				out.Details = chatErr.Cause.Error()
			}
		}
		_ = client.Send(out)
		return
	}

	g.hub.Broadcast(event.ConversationID, messageEvent{
		Type:      EventNewMessage,
		ID:        userMessage.ID,
		Content:   userMessage.Content,
		Sender:    userMessage.Sender,
		Timestamp: userMessage.CreatedAt,
	})
	g.hub.Broadcast(event.ConversationID, messageEvent{
		Type:      EventNewMessage,
		ID:        aiMessage.ID,
		Content:   aiMessage.Content,
		Sender:    aiMessage.Sender,
		Timestamp: aiMessage.CreatedAt,
	})
}
