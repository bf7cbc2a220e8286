package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/companionhq/companion/internal/domain"
	conversationrepo "github.com/companionhq/companion/internal/repository/conversation"
	knowledgerepo "github.com/companionhq/companion/internal/repository/knowledge"
	messagerepo "github.com/companionhq/companion/internal/repository/message"
	personalityrepo "github.com/companionhq/companion/internal/repository/personality"
	userrepo "github.com/companionhq/companion/internal/repository/user"
	"github.com/companionhq/companion/internal/services"
	"github.com/companionhq/companion/internal/services/user_services"
)

// stubCompletion fakes the completion API for handler tests.
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

func newTestRouter(t *testing.T) (*mux.Router, *stubCompletion) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Conversation{}, &domain.Message{},
		&domain.KnowledgeDocument{}, &domain.Personality{},
	))

	logger := &services.NoOpLogger{}
	userService := user_services.NewUserService(userrepo.NewUserRepository(db), "test-secret")
	knowledgeService := services.NewKnowledgeService(knowledgerepo.NewKnowledgeRepository(db), t.TempDir(), logger)
	personalityService := services.NewPersonalityService(personalityrepo.NewPersonalityRepository(db), logger)

	ai := &stubCompletion{reply: "a kind reply"}
	chatService, err := services.NewChatService(
		conversationrepo.NewConversationRepository(db),
		messagerepo.NewMessageRepository(db),
		knowledgerepo.NewKnowledgeRepository(db),
		personalityrepo.NewPersonalityRepository(db),
		ai, nil, logger,
	)
	require.NoError(t, err)

	authHandler := NewAuthHandler(userService, logger)
	chatHandler := NewChatHandler(chatService, logger)
	knowledgeHandler := NewKnowledgeHandler(knowledgeService, 10<<20, logger)
	personalityHandler := NewPersonalityHandler(personalityService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/conversations/{userId}", chatHandler.GetUserConversations).Methods("GET")
	api.HandleFunc("/conversations", chatHandler.CreateConversation).Methods("POST")
	api.HandleFunc("/messages/{conversationId}", chatHandler.GetConversationMessages).Methods("GET")
	api.HandleFunc("/messages", chatHandler.SaveMessage).Methods("POST")
	api.HandleFunc("/chat", chatHandler.HandleChat).Methods("POST")
	api.HandleFunc("/knowledge/upload", knowledgeHandler.Upload).Methods("POST")
	api.HandleFunc("/knowledge/{userId}", knowledgeHandler.List).Methods("GET")
	api.HandleFunc("/knowledge/{documentId}", knowledgeHandler.Delete).Methods("DELETE")
	api.HandleFunc("/personality/{userId}", personalityHandler.List).Methods("GET")
	api.HandleFunc("/personality", personalityHandler.Create).Methods("POST")
	api.HandleFunc("/personality/{personalityId}", personalityHandler.Update).Methods("PUT")
	api.HandleFunc("/personality/{personalityId}", personalityHandler.Delete).Methods("DELETE")

	return r, ai
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	fields := map[string]json.RawMessage{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	}
	return rec, fields
}

func jsonString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestRegisterLoginChatScenario(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, fields := doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	userID := jsonString(t, fields["userId"])
	require.NotEmpty(t, userID)

	rec, fields = doJSON(t, r, "POST", "/api/login", map[string]string{
		"username": "alice", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, jsonString(t, fields["token"]))
	assert.Equal(t, "alice", jsonString(t, fields["username"]))

	rec, fields = doJSON(t, r, "POST", "/api/conversations", map[string]string{
		"userId": userID, "title": "Test",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	conversationID := jsonString(t, fields["conversationId"])
	require.NotEmpty(t, conversationID)

	rec, fields = doJSON(t, r, "POST", "/api/chat", map[string]string{
		"message": "Hello there", "userId": userID, "conversationId": conversationID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, jsonString(t, fields["response"]))
	assert.NotEmpty(t, jsonString(t, fields["messageId"]))
	assert.NotEmpty(t, jsonString(t, fields["aiMessageId"]))

	req := httptest.NewRequest("GET", "/api/messages/"+conversationID, nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []domain.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, domain.SenderUser, messages[0].Sender)
	assert.Equal(t, "Hello there", messages[0].Content)
	assert.Equal(t, domain.SenderAI, messages[1].Sender)
	assert.NotEmpty(t, messages[1].Content)
}

func TestRegisterDuplicateConflict(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, fields := doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "alice", "email": "second@x.com", "password": "pw123456",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username or email already exists", jsonString(t, fields["error"]))
}

func TestLoginInvalidCredentials(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doJSON(t, r, "POST", "/api/login", map[string]string{
		"username": "ghost", "password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatMissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doJSON(t, r, "POST", "/api/chat", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatUnknownConversation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, "POST", "/api/chat", map[string]string{
		"message": "hi", "userId": "u1", "conversationId": "missing",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatQuotaFallback(t *testing.T) {
	r, ai := newTestRouter(t)
	ai.err = fmt.Errorf("quota exceeded for this key")

	_, fields := doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "pw123456",
	})
	userID := jsonString(t, fields["userId"])

	_, fields = doJSON(t, r, "POST", "/api/conversations", map[string]string{
		"userId": userID, "title": "Test",
	})
	conversationID := jsonString(t, fields["conversationId"])

	rec, fields := doJSON(t, r, "POST", "/api/chat", map[string]string{
		"message": "hello", "userId": userID, "conversationId": conversationID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, jsonString(t, fields["response"]), "I'm your AI companion")
}

func TestChatUpstreamErrorSurfacesDetails(t *testing.T) {
	r, ai := newTestRouter(t)
	ai.err = fmt.Errorf("connection refused")

	_, fields := doJSON(t, r, "POST", "/api/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "pw123456",
	})
	userID := jsonString(t, fields["userId"])

	_, fields = doJSON(t, r, "POST", "/api/conversations", map[string]string{
		"userId": userID, "title": "Test",
	})
	conversationID := jsonString(t, fields["conversationId"])

	rec, fields := doJSON(t, r, "POST", "/api/chat", map[string]string{
		"message": "hi", "userId": userID, "conversationId": conversationID,
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate AI response", jsonString(t, fields["error"]))
	assert.Contains(t, jsonString(t, fields["details"]), "connection refused")
}

func uploadFile(t *testing.T, r http.Handler, userID, filename, mimeType, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("userId", userID))
	require.NoError(t, w.WriteField("title", "My Doc"))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/knowledge/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestKnowledgeUploadTxtVerbatim(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := uploadFile(t, r, "u1", "notes.txt", "text/plain", "remember the milk")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req := httptest.NewRequest("GET", "/api/knowledge/u1", nil)
	listRec := httptest.NewRecorder()
	r.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var docs []domain.KnowledgeDocument
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "remember the milk", docs[0].Content)
	assert.Equal(t, "My Doc", docs[0].Title)
}

func TestKnowledgeUploadUnsupportedType(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := uploadFile(t, r, "u1", "photo.png", "image/png", "not really an image")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("GET", "/api/knowledge/u1", nil)
	listRec := httptest.NewRecorder()
	r.ServeHTTP(listRec, req)

	var docs []domain.KnowledgeDocument
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &docs))
	assert.Empty(t, docs)
}

func TestKnowledgeDeleteTwice(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := uploadFile(t, r, "u1", "notes.txt", "text/plain", "text")
	require.Equal(t, http.StatusOK, rec.Code)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	docID := jsonString(t, fields["knowledgeId"])

	req := httptest.NewRequest("DELETE", "/api/knowledge/"+docID, nil)
	delRec := httptest.NewRecorder()
	r.ServeHTTP(delRec, req)
	assert.Equal(t, http.StatusOK, delRec.Code)

	req = httptest.NewRequest("DELETE", "/api/knowledge/"+docID, nil)
	delRec = httptest.NewRecorder()
	r.ServeHTTP(delRec, req)
	assert.Equal(t, http.StatusNotFound, delRec.Code)
}

func TestPersonalityCRUD(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, fields := doJSON(t, r, "POST", "/api/personality", map[string]interface{}{
		"userId": "u1", "name": "Sage", "description": "calm", "traits": []string{"wise", "patient"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	personalityID := jsonString(t, fields["id"])
	require.NotEmpty(t, personalityID)

	req := httptest.NewRequest("GET", "/api/personality/u1", nil)
	listRec := httptest.NewRecorder()
	r.ServeHTTP(listRec, req)
	var personalities []domain.Personality
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &personalities))
	require.Len(t, personalities, 1)
	assert.Equal(t, domain.TraitList{"wise", "patient"}, personalities[0].Traits)

	rec, fields = doJSON(t, r, "PUT", "/api/personality/"+personalityID, map[string]interface{}{
		"name": "Mentor", "description": "calmer", "traits": []string{"wise"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mentor", jsonString(t, fields["name"]))

	req = httptest.NewRequest("DELETE", "/api/personality/"+personalityID, nil)
	delRec := httptest.NewRecorder()
	r.ServeHTTP(delRec, req)
	assert.Equal(t, http.StatusOK, delRec.Code)

	req = httptest.NewRequest("DELETE", "/api/personality/"+personalityID, nil)
	delRec = httptest.NewRecorder()
	r.ServeHTTP(delRec, req)
	assert.Equal(t, http.StatusNotFound, delRec.Code)
}

func TestPersonalityUpdateMissing(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doJSON(t, r, "PUT", "/api/personality/missing", map[string]interface{}{
		"name": "n", "description": "d", "traits": []string{},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
