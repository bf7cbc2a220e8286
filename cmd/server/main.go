// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/companionhq/companion/internal/config"
	"github.com/companionhq/companion/internal/domain"
	"github.com/companionhq/companion/internal/handlers"
	"github.com/companionhq/companion/internal/middleware"
	"github.com/companionhq/companion/internal/realtime"
	conversationrepo "github.com/companionhq/companion/internal/repository/conversation"
	knowledgerepo "github.com/companionhq/companion/internal/repository/knowledge"
	messagerepo "github.com/companionhq/companion/internal/repository/message"
	personalityrepo "github.com/companionhq/companion/internal/repository/personality"
	userrepo "github.com/companionhq/companion/internal/repository/user"
	"github.com/companionhq/companion/internal/services"
	"github.com/companionhq/companion/internal/services/chat"
	"github.com/companionhq/companion/internal/services/user_services"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.KnowledgeDocument{},
		&domain.Personality{},
	); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	logger := services.NewProductionLogger("companion")

	// --- Repositories ---
	userRepo := userrepo.NewUserRepository(db)
	conversationRepo := conversationrepo.NewConversationRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)
	knowledgeRepo := knowledgerepo.NewKnowledgeRepository(db)
	personalityRepo := personalityrepo.NewPersonalityRepository(db)

	// --- Services ---
	userService := user_services.NewUserService(userRepo, cfg.JWTSecretKey)
	knowledgeService := services.NewKnowledgeService(knowledgeRepo, cfg.UploadDir, logger)
	personalityService := services.NewPersonalityService(personalityRepo, logger)

	chatConfig := chat.DefaultConfig()
	chatConfig.Model = cfg.ChatModel

	aiService := services.NewAIService(
		cfg.OpenAIAPIKey,
		cfg.OpenAIBaseURL,
		chatConfig.Model,
		chatConfig.MaxTokens,
		chatConfig.Temperature,
		chatConfig.Timeout,
		logger,
	)

	chatService, err := services.NewChatService(
		conversationRepo, messageRepo, knowledgeRepo, personalityRepo,
		aiService, chatConfig, logger,
	)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService, logger)
	chatHandler := handlers.NewChatHandler(chatService, logger)
	knowledgeHandler := handlers.NewKnowledgeHandler(knowledgeService, cfg.MaxUploadBytes, logger)
	personalityHandler := handlers.NewPersonalityHandler(personalityService)

	// --- Realtime Gateway ---
	hub := realtime.NewHub()
	gateway := realtime.NewGateway(hub, chatService, logger)

	// --- Router Setup ---
	r := mux.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	r.HandleFunc("/ws", gateway.HandleConnection)

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

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Companion server starting on port %s", cfg.ServerPort)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}
