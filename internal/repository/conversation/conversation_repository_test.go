package conversation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/companionhq/companion/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Conversation{}))
	return db
}

func TestCreateAssignsID(t *testing.T) {
	repo := NewConversationRepository(testDB(t))

	created, err := repo.Create(context.Background(), &domain.Conversation{UserID: "u1", Title: "Test"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Test", created.Title)
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewConversationRepository(testDB(t))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestFindByUserIDListsOwnNewestFirst(t *testing.T) {
	repo := NewConversationRepository(testDB(t))
	ctx := context.Background()

	older := &domain.Conversation{UserID: "u1", Title: "Older"}
	older.CreatedAt = time.Now().Add(-time.Hour)
	_, err := repo.Create(ctx, older)
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Conversation{UserID: "u1", Title: "Newer"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Conversation{UserID: "u2", Title: "Other user"})
	require.NoError(t, err)

	conversations, err := repo.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "Newer", conversations[0].Title)
	assert.Equal(t, "Older", conversations[1].Title)
}

func TestCreateThenListIncludesConversationOnce(t *testing.T) {
	repo := NewConversationRepository(testDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Conversation{UserID: "u1", Title: "Only one"})
	require.NoError(t, err)

	conversations, err := repo.FindByUserID(ctx, "u1")
	require.NoError(t, err)

	count := 0
	for _, c := range conversations {
		if c.ID == created.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
