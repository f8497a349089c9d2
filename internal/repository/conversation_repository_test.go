package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/db"
	"github.com/kindred-app/kindred-backend/internal/repository"
)

// acceptedPair runs the full like -> match -> conversation transition between
// two seeded users and returns the conversation.
func acceptedPair(t *testing.T, gdb *gorm.DB, from, to string) *db.Conversation {
	t.Helper()
	like := pendingLike(t, gdb, from, to)
	_, _, conv, err := repository.NewLikeRepository(gdb).Accept(context.Background(), like.ID, to)
	require.NoError(t, err)
	return conv
}

func TestCreateMessageBumpsConversation(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, "alice", "bob")
	repo := repository.NewConversationRepository(gdb)

	conv := acceptedPair(t, gdb, "alice", "bob")

	var before db.Conversation
	require.NoError(t, gdb.First(&before, "id = ?", conv.ID).Error)

	time.Sleep(5 * time.Millisecond)
	msg := &db.Message{ConversationID: conv.ID, SenderID: "alice", Content: "hey"}
	require.NoError(t, repo.CreateMessage(ctx, msg))

	var after db.Conversation
	require.NoError(t, gdb.First(&after, "id = ?", conv.ID).Error)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestMessageWindow(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, "alice", "bob")
	repo := repository.NewConversationRepository(gdb)

	conv := acceptedPair(t, gdb, "alice", "bob")
	for i := 0; i < 5; i++ {
		msg := &db.Message{ConversationID: conv.ID, SenderID: "alice", Content: fmt.Sprintf("m%d", i)}
		require.NoError(t, repo.CreateMessage(ctx, msg))
		time.Sleep(2 * time.Millisecond)
	}

	// newest first, offset skips from the newest end
	window, err := repo.MessageWindow(ctx, conv.ID, 2, 1)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "m3", window[0].Content)
	assert.Equal(t, "m2", window[1].Content)

	all, err := repo.AllMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "m0", all[0].Content)

	last, err := repo.LastMessage(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "m4", last.Content)
}

func TestLastMessageEmptyConversation(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, "alice", "bob")
	repo := repository.NewConversationRepository(gdb)

	conv := acceptedPair(t, gdb, "alice", "bob")

	last, err := repo.LastMessage(ctx, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestGetForUserRequiresParticipant(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, "alice", "bob", "carol")
	repo := repository.NewConversationRepository(gdb)

	conv := acceptedPair(t, gdb, "alice", "bob")

	got, err := repo.GetForUser(ctx, conv.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.Conversation.ID)

	_, err = repo.GetForUser(ctx, conv.ID, "carol")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListForUserOrdersByActivity(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, "alice", "bob", "carol")
	repo := repository.NewConversationRepository(gdb)

	older := acceptedPair(t, gdb, "alice", "bob")
	time.Sleep(5 * time.Millisecond)
	newer := acceptedPair(t, gdb, "carol", "alice")
	time.Sleep(5 * time.Millisecond)

	list, err := repo.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].Conversation.ID)

	// a message in the older conversation moves it to the top
	msg := &db.Message{ConversationID: older.ID, SenderID: "bob", Content: "bump"}
	require.NoError(t, repo.CreateMessage(ctx, msg))

	list, err = repo.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].Conversation.ID)
}

func TestMatchDeleteCascade(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedUsers(t, gdb, "alice", "bob")
	convRepo := repository.NewConversationRepository(gdb)
	matchRepo := repository.NewMatchRepository(gdb)

	conv := acceptedPair(t, gdb, "alice", "bob")
	msg := &db.Message{ConversationID: conv.ID, SenderID: "alice", Content: "hello"}
	require.NoError(t, convRepo.CreateMessage(ctx, msg))

	require.NoError(t, matchRepo.DeleteCascade(ctx, conv.MatchID))

	for _, model := range []interface{}{&db.Match{}, &db.Conversation{}, &db.Message{}} {
		var count int64
		require.NoError(t, gdb.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}
