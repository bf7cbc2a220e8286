package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/companionhq/companion/internal/domain"
	conversationrepo "github.com/companionhq/companion/internal/repository/conversation"
	knowledgerepo "github.com/companionhq/companion/internal/repository/knowledge"
	messagerepo "github.com/companionhq/companion/internal/repository/message"
	personalityrepo "github.com/companionhq/companion/internal/repository/personality"
	"github.com/companionhq/companion/internal/services"
)

type stubCompletion struct {
	reply string
	err   error
}

func (s *stubCompletion) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type gatewayFixture struct {
	server         *httptest.Server
	conversationID string
	ai             *stubCompletion
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Conversation{}, &domain.Message{},
		&domain.KnowledgeDocument{}, &domain.Personality{},
	))

	ai := &stubCompletion{reply: "glad you asked"}
	chats, err := services.NewChatService(
		conversationrepo.NewConversationRepository(db),
		messagerepo.NewMessageRepository(db),
		knowledgerepo.NewKnowledgeRepository(db),
		personalityrepo.NewPersonalityRepository(db),
		ai, nil, &services.NoOpLogger{},
	)
	require.NoError(t, err)

	conv, err := chats.CreateConversation(context.Background(), "u1", "Room")
	require.NoError(t, err)

	gateway := NewGateway(NewHub(), chats, &services.NoOpLogger{})
	server := httptest.NewServer(http.HandlerFunc(gateway.HandleConnection))
	t.Cleanup(server.Close)

	return &gatewayFixture{server: server, conversationID: conv.ID, ai: ai}
}

func (f *gatewayFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var event map[string]interface{}
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestRoomReceivesBothSidesOfTurn(t *testing.T) {
	f := newGatewayFixture(t)

	sender := f.dial(t)
	watcher := f.dial(t)

	join := map[string]string{"type": EventJoinConversation, "conversationId": f.conversationID}
	require.NoError(t, sender.WriteJSON(join))
	require.NoError(t, watcher.WriteJSON(join))

	// Rooms are joined in the read loop, so give both sockets a moment to be
	// registered before the turn is sent.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, sender.WriteJSON(map[string]string{
		"type":           EventSendMessage,
		"conversationId": f.conversationID,
		"userId":         "u1",
		"message":        "what a day",
	}))

	for _, conn := range []*websocket.Conn{sender, watcher} {
		first := readEvent(t, conn)
		assert.Equal(t, EventNewMessage, first["type"])
		assert.Equal(t, domain.SenderUser, first["sender"])
		assert.Equal(t, "what a day", first["content"])

		second := readEvent(t, conn)
		assert.Equal(t, EventNewMessage, second["type"])
		assert.Equal(t, domain.SenderAI, second["sender"])
		assert.Equal(t, "glad you asked", second["content"])
	}
}

func TestSendMessageMissingFields(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":    EventSendMessage,
		"message": "orphaned",
	}))

	event := readEvent(t, conn)
	assert.Equal(t, EventError, event["type"])
	assert.Contains(t, event["error"], "Missing required fields")
}

func TestSendMessageUnknownConversation(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":           EventSendMessage,
		"conversationId": "missing",
		"userId":         "u1",
		"message":        "hi",
	}))

	event := readEvent(t, conn)
	assert.Equal(t, EventError, event["type"])
}

func TestUpstreamFailureGoesToSenderOnly(t *testing.T) {
	f := newGatewayFixture(t)
	f.ai.err = assert.AnError

	sender := f.dial(t)
	watcher := f.dial(t)

	join := map[string]string{"type": EventJoinConversation, "conversationId": f.conversationID}
	require.NoError(t, sender.WriteJSON(join))
	require.NoError(t, watcher.WriteJSON(join))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, sender.WriteJSON(map[string]string{
		"type":           EventSendMessage,
		"conversationId": f.conversationID,
		"userId":         "u1",
		"message":        "hi",
	}))

	event := readEvent(t, sender)
	assert.Equal(t, EventError, event["type"])
	assert.Equal(t, "Failed to generate AI response", event["error"])

	require.NoError(t, watcher.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var stray map[string]interface{}
	assert.Error(t, watcher.ReadJSON(&stray))
}

func TestUnknownEventType(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "mystery"}))

	event := readEvent(t, conn)
	assert.Equal(t, EventError, event["type"])
	assert.Equal(t, "unknown event type", event["error"])
}
