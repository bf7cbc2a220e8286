package services

import (
	"context"
	"errors"
	"strings"

	"github.com/companionhq/companion/internal/domain"
	"github.com/companionhq/companion/internal/repository/conversation"
	"github.com/companionhq/companion/internal/repository/knowledge"
	"github.com/companionhq/companion/internal/repository/message"
	"github.com/companionhq/companion/internal/repository/personality"
	chatservice "github.com/companionhq/companion/internal/services/chat"
)

// ChatService is the single entry point for processing one user turn. The
// REST chat endpoint and the websocket gateway are both thin adapters over
// HandleUserTurn, so the two paths cannot drift apart.
type ChatService struct {
	config           *chatservice.Config
	conversationRepo conversation.ConversationRepository
	messageRepo      message.MessageRepository
	knowledgeRepo    knowledge.KnowledgeRepository
	personalityRepo  personality.PersonalityRepository
	ai               CompletionClient
	logger           Logger
}

func NewChatService(
	conversationRepo conversation.ConversationRepository,
	messageRepo message.MessageRepository,
	knowledgeRepo knowledge.KnowledgeRepository,
	personalityRepo personality.PersonalityRepository,
	ai CompletionClient,
	config *chatservice.Config,
	logger Logger,
) (*ChatService, error) {
	if conversationRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "conversation repository is required")
	}
	if messageRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "message repository is required")
	}
	if knowledgeRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "knowledge repository is required")
	}
	if personalityRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "personality repository is required")
	}
	if ai == nil {
		return nil, chatservice.NewValidationError("constructor", "completion client is required")
	}

	if config == nil {
		config = chatservice.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, chatservice.NewValidationError("config", err.Error())
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ChatService{
		config:           config,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		knowledgeRepo:    knowledgeRepo,
		personalityRepo:  personalityRepo,
		ai:               ai,
		logger:           logger,
	}, nil
}

// HandleUserTurn processes one user message for one conversation: it gathers
// the user's knowledge base and personality, assembles the system prompt,
// asks the completion API for a reply, persists both sides of the turn and
// returns them in write order.
func (s *ChatService) HandleUserTurn(ctx context.Context, userID, conversationID, messageText, personalityID string) (*domain.Message, *domain.Message, error) {
	if strings.TrimSpace(messageText) == "" {
		return nil, nil, chatservice.NewValidationError("handle_turn", "message cannot be empty")
	}
	if userID == "" {
		return nil, nil, chatservice.NewValidationError("handle_turn", "user ID is required")
	}
	if conversationID == "" {
		return nil, nil, chatservice.NewValidationError("handle_turn", "conversation ID is required")
	}

	// Explicit existence check so a bad conversation id fails loudly instead
	// of leaving an orphaned message row behind.
	if _, err := s.conversationRepo.FindByID(ctx, conversationID); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, nil, chatservice.NewNotFoundError("handle_turn", "conversation not found")
		}
		return nil, nil, chatservice.NewStorageError("handle_turn", "could not load conversation", err)
	}

	knowledgeTexts, err := s.knowledgeRepo.FindContentByUserID(ctx, userID)
	if err != nil {
		return nil, nil, chatservice.NewStorageError("handle_turn", "could not load knowledge base", err)
	}

	persona, err := s.resolvePersonality(ctx, userID, personalityID)
	if err != nil {
		return nil, nil, err
	}

	systemPrompt := chatservice.BuildSystemPrompt(persona, knowledgeTexts)

	reply, err := s.ai.Complete(ctx, systemPrompt, messageText)
	if err != nil {
		if !chatservice.IsQuotaError(err) {
			return nil, nil, chatservice.NewUpstreamError("handle_turn", "failed to generate AI response", err)
		}
		// Quota and rate-limit failures degrade to a canned reply rather
		// than surfacing an error to the end user.
		s.logger.Warn("completion API degraded, serving fallback reply", "error", err.Error())
		reply = chatservice.FallbackReply(messageText)
	}

	userMessage, err := s.messageRepo.Create(ctx, &domain.Message{
		ConversationID: conversationID,
		Content:        messageText,
		Sender:         domain.SenderUser,
	})
	if err != nil {
		return nil, nil, chatservice.NewStorageError("handle_turn", "could not save user message", err)
	}

	aiMessage, err := s.messageRepo.Create(ctx, &domain.Message{
		ConversationID: conversationID,
		Content:        reply,
		Sender:         domain.SenderAI,
	})
	if err != nil {
		// The user message is already durable; the turn is reported failed
		// but not compensated.
		s.logger.Error("AI message write failed after user message write",
			"conversationId", conversationID, "error", err.Error())
		return nil, nil, chatservice.NewStorageError("handle_turn", "could not save AI message", err)
	}

	return userMessage, aiMessage, nil
}

// resolvePersonality returns the user's personality by id, or nil when no id
// is given or no row matches. A nil persona selects the default companion
// voice during prompt assembly.
func (s *ChatService) resolvePersonality(ctx context.Context, userID, personalityID string) (*domain.Personality, error) {
	if personalityID == "" {
		return nil, nil
	}
	persona, err := s.personalityRepo.FindByIDAndUserID(ctx, personalityID, userID)
	if errors.Is(err, personality.ErrPersonalityNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, chatservice.NewStorageError("handle_turn", "could not load personality", err)
	}
	return persona, nil
}

// CreateConversation starts a new thread. Long titles are cut to the
// configured maximum, matching the auto-title behavior for first messages.
func (s *ChatService) CreateConversation(ctx context.Context, userID, title string) (*domain.Conversation, error) {
	if userID == "" {
		return nil, chatservice.NewValidationError("create_conversation", "user ID is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Conversation"
	}
	if runes := []rune(title); len(runes) > s.config.TitleMaxLength {
		title = string(runes[:s.config.TitleMaxLength])
	}

	created, err := s.conversationRepo.Create(ctx, &domain.Conversation{UserID: userID, Title: title})
	if err != nil {
		return nil, chatservice.NewStorageError("create_conversation", "could not create conversation", err)
	}
	return created, nil
}

func (s *ChatService) GetUserConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	conversations, err := s.conversationRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, chatservice.NewStorageError("list_conversations", "could not fetch conversations", err)
	}
	return conversations, nil
}

func (s *ChatService) GetConversationMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	messages, err := s.messageRepo.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, chatservice.NewStorageError("list_messages", "could not fetch messages", err)
	}
	return messages, nil
}

// SaveMessage persists a single message without invoking the AI pipeline.
// Used by non-realtime clients that manage their own turns.
func (s *ChatService) SaveMessage(ctx context.Context, conversationID, content, sender string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, chatservice.NewValidationError("save_message", "content cannot be empty")
	}
	saved, err := s.messageRepo.Create(ctx, &domain.Message{
		ConversationID: conversationID,
		Content:        content,
		Sender:         sender,
	})
	if err != nil {
		return nil, chatservice.NewStorageError("save_message", "could not save message", err)
	}
	return saved, nil
}
