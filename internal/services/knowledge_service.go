package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/companionhq/companion/internal/domain"
	"github.com/companionhq/companion/internal/repository/knowledge"
	"github.com/companionhq/companion/internal/services/extract"
)

// KnowledgeService manages the per-user knowledge base: uploads, listing,
// deletion, and the retrieval used by the chat pipeline.
type KnowledgeService struct {
	repo      knowledge.KnowledgeRepository
	uploadDir string
	logger    Logger
}

func NewKnowledgeService(repo knowledge.KnowledgeRepository, uploadDir string, logger Logger) *KnowledgeService {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &KnowledgeService{repo: repo, uploadDir: uploadDir, logger: logger}
}

// Upload stores the raw file on disk, extracts its plain text and persists a
// knowledge document. Unsupported MIME types leave no trace: the stored file
// is removed and extract.ErrUnsupportedType is returned.
func (s *KnowledgeService) Upload(ctx context.Context, userID, title, filename, mimeType string, data []byte) (*domain.KnowledgeDocument, error) {
	if userID == "" {
		return nil, fmt.Errorf("upload: user ID is required")
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: could not create upload directory: %w", err)
	}

	// Timestamp prefix is the only collision handling, matching the shared
	// upload directory layout.
	storedName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(filename))
	storedPath := filepath.Join(s.uploadDir, storedName)
	if err := os.WriteFile(storedPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("upload: could not store file: %w", err)
	}

	content, err := extract.Text(mimeType, filename, data)
	if err != nil {
		if removeErr := os.Remove(storedPath); removeErr != nil {
			s.logger.Warn("could not remove rejected upload", "path", storedPath, "error", removeErr.Error())
		}
		return nil, err
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	doc, err := s.repo.Create(ctx, &domain.KnowledgeDocument{
		UserID:   userID,
		Title:    title,
		Content:  content,
		FileType: mimeType,
		FilePath: storedPath,
	})
	if err != nil {
		return nil, fmt.Errorf("upload: could not save knowledge document: %w", err)
	}

	s.logger.Info("knowledge document stored",
		"userId", userID, "documentId", doc.ID, "fileType", mimeType, "bytes", len(data))
	return doc, nil
}

func (s *KnowledgeService) ListByUser(ctx context.Context, userID string) ([]domain.KnowledgeDocument, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// Delete removes a document row. The stored file is kept; uploads are
// audit state and the directory is pruned out of band.
func (s *KnowledgeService) Delete(ctx context.Context, documentID string) error {
	return s.repo.Delete(ctx, documentID)
}

// ContentForUser returns every knowledge text the user owns, for prompt
// assembly. No ranking, no chunking: the whole base rides along each turn.
func (s *KnowledgeService) ContentForUser(ctx context.Context, userID string) ([]string, error) {
	return s.repo.FindContentByUserID(ctx, userID)
}

// Preview shortens extracted content for upload responses.
func Preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
