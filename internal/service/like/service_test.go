package like_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/app"
	"github.com/kindred-app/kindred-backend/internal/cache"
	"github.com/kindred-app/kindred-backend/internal/config"
	"github.com/kindred-app/kindred-backend/internal/db"
	apperr "github.com/kindred-app/kindred-backend/internal/errors"
	"github.com/kindred-app/kindred-backend/internal/service/like"
)

//
// Test helpers
//

// setupService spins up an in-memory SQLite DB, applies migrations, starts a
// miniredis, and wires everything into a like Service.
//
// Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) (*like.Service, *app.AppContext, *miniredis.Miniredis) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(cfg, dbase, redisCache, logger)
	return like.NewService(appCtx), appCtx, mr
}

func seedUsers(t *testing.T, appCtx *app.AppContext, ids ...string) {
	t.Helper()
	for _, id := range ids {
		user := db.User{ID: id, Email: id + "@test.com", Name: id, PasswordHash: "x"}
		require.NoError(t, appCtx.DB.Create(&user).Error)
	}
}

//
// Tests
//

func TestSendAndIncoming(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	sent, err := svc.Send(ctx, "alice", like.SendInput{
		ToUserID: "bob",
		Comment:  "love this one",
		Context:  like.PhotoContext{Index: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, db.LikeStatusPending, sent.Status)
	require.NotNil(t, sent.ToUser)
	assert.Equal(t, "bob", sent.ToUser.ID)

	incoming, err := svc.Incoming(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	require.NotNil(t, incoming[0].FromUser)
	assert.Equal(t, "alice", incoming[0].FromUser.ID)
	assert.Equal(t, "love this one", incoming[0].Comment)
	require.NotNil(t, incoming[0].Context)
	require.NotNil(t, incoming[0].Context.PhotoIndex)
	assert.Equal(t, 2, *incoming[0].Context.PhotoIndex)
}

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	_, err := svc.Send(ctx, "alice", like.SendInput{})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Send(ctx, "alice", like.SendInput{ToUserID: "alice"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Send(ctx, "alice", like.SendInput{ToUserID: "ghost"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob", Comment: string(long)})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSendDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	_, err := svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)

	// a retried send after success fails loudly
	_, err = svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRespondAccept(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	sent, err := svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)

	res, err := svc.Respond(ctx, "bob", sent.ID, true)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	require.NotNil(t, res.Match)
	require.NotNil(t, res.Conversation)
	assert.Equal(t, sent.ID, res.Match.SourceLikeID)
	assert.Equal(t, res.Match.ID, res.Conversation.MatchID)

	// resolved like leaves the incoming list
	incoming, err := svc.Incoming(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, incoming)

	// a second respond loses the compare-and-set
	_, err = svc.Respond(ctx, "bob", sent.ID, true)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRespondSkip(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	sent, err := svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)

	res, err := svc.Respond(ctx, "bob", sent.ID, false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Nil(t, res.Match)

	// the sender still sees the like with its terminal status
	sentViews, err := svc.Sent(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sentViews, 1)
	assert.Equal(t, db.LikeStatusSkipped, sentViews[0].Status)
}

func TestRespondResolvesReciprocalPending(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	forward, err := svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)
	reverse, err := svc.Send(ctx, "bob", like.SendInput{ToUserID: "alice"})
	require.NoError(t, err)

	_, err = svc.Respond(ctx, "bob", forward.ID, true)
	require.NoError(t, err)

	// the reciprocal like was resolved by the same accept
	incoming, err := svc.Incoming(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, incoming)

	_, err = svc.Respond(ctx, "alice", reverse.ID, true)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	var matches int64
	require.NoError(t, appCtx.DB.Model(&db.Match{}).Count(&matches).Error)
	assert.Equal(t, int64(1), matches)
}

func TestRespondAlreadyMatched(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	forward, err := svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)
	_, err = svc.Respond(ctx, "bob", forward.ID, true)
	require.NoError(t, err)

	// a like sent after the pair already matched cannot be accepted
	late, err := svc.Send(ctx, "bob", like.SendInput{ToUserID: "alice"})
	require.NoError(t, err)
	_, err = svc.Respond(ctx, "alice", late.ID, true)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestIncomingServedFromCache(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	_, err := svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)

	first, err := svc.Incoming(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// a row written behind the service's back stays invisible until the TTL
	// or an invalidating mutation
	row := db.Like{FromUserID: "bob2", ToUserID: "bob", Status: db.LikeStatusPending}
	seedUsers(t, appCtx, "bob2")
	require.NoError(t, appCtx.DB.Create(&row).Error)

	second, err := svc.Incoming(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestSendInvalidatesIncomingCache(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	// prime the cache with an empty list
	incoming, err := svc.Incoming(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, incoming)

	_, err = svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)

	incoming, err = svc.Incoming(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, incoming, 1)
}

func TestRespondInvalidatesBothUsersViews(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, mr := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	sent, err := svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)

	// prime caches on both sides
	_, err = svc.Incoming(ctx, "bob")
	require.NoError(t, err)
	_, err = svc.Sent(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.Respond(ctx, "bob", sent.ID, true)
	require.NoError(t, err)

	assert.False(t, mr.Exists(cache.IncomingLikesKey("bob")))
	assert.False(t, mr.Exists(cache.SentLikesKey("alice")))
	assert.False(t, mr.Exists(cache.MatchesKey("alice")))
	assert.False(t, mr.Exists(cache.MatchesKey("bob")))

	sentViews, err := svc.Sent(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sentViews, 1)
	assert.Equal(t, db.LikeStatusAccepted, sentViews[0].Status)
}

func TestLikesSurviveRedisOutage(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, mr := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	mr.Close()

	sent, err := svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)

	incoming, err := svc.Incoming(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	_, err = svc.Respond(ctx, "bob", sent.ID, true)
	require.NoError(t, err)
}

func TestRemoveIncoming(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, _ := setupService(t)
	seedUsers(t, appCtx, "alice", "bob")

	sent, err := svc.Send(ctx, "alice", like.SendInput{ToUserID: "bob"})
	require.NoError(t, err)

	// only the recipient can remove it
	err = svc.RemoveIncoming(ctx, "alice", sent.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, svc.RemoveIncoming(ctx, "bob", sent.ID))

	incoming, err := svc.Incoming(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, incoming)
}
