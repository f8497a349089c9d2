package auth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/app"
	"github.com/kindred-app/kindred-backend/internal/cache"
	"github.com/kindred-app/kindred-backend/internal/config"
	"github.com/kindred-app/kindred-backend/internal/db"
	apperr "github.com/kindred-app/kindred-backend/internal/errors"
	"github.com/kindred-app/kindred-backend/internal/service/auth"
)

func setupService(t *testing.T) (*auth.Service, *app.AppContext, *miniredis.Miniredis) {
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
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(cfg, dbase, redisCache, logger)
	return auth.NewService(appCtx), appCtx, mr
}

// tokenClaims parses a signed token back into its registered claims.
func tokenClaims(t *testing.T, appCtx *app.AppContext, token string) *jwt.RegisteredClaims {
	t.Helper()
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(appCtx.Cfg.Auth.JWTSecret), nil
	})
	require.NoError(t, err)
	return claims
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, mr := setupService(t)

	res, err := svc.Signup(ctx, auth.SignupInput{
		Email:    "Alice@Example.com",
		Password: "correct horse",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEmpty(t, res.Token)

	claims := tokenClaims(t, appCtx, res.Token)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.True(t, mr.Exists(cache.SessionKey(claims.ID)))

	login, err := svc.Login(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotEqual(t, res.Token, login.Token)
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.Signup(ctx, auth.SignupInput{Email: "not-an-email", Password: "long enough"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Signup(ctx, auth.SignupInput{Email: "a@b.com", Password: "short"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.Signup(ctx, auth.SignupInput{Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, auth.SignupInput{Email: "a@b.com", Password: "other password"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.Signup(ctx, auth.SignupInput{Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)

	// wrong password and unknown email look identical to the caller
	_, err = svc.Login(ctx, "a@b.com", "wrong password")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, err = svc.Login(ctx, "ghost@b.com", "long enough")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	res, err := svc.Signup(ctx, auth.SignupInput{Email: "a@b.com", Password: "long enough", Name: "A"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", me.Email)
	assert.Equal(t, "A", me.Name)

	_, err = svc.Me(ctx, "no-such-user")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, mr := setupService(t)

	res, err := svc.Signup(ctx, auth.SignupInput{Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)

	claims := tokenClaims(t, appCtx, res.Token)
	require.True(t, mr.Exists(cache.SessionKey(claims.ID)))

	svc.Logout(ctx, claims.ID)
	assert.False(t, mr.Exists(cache.SessionKey(claims.ID)))
}

func TestSignupSurvivesRedisOutage(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := setupService(t)

	mr.Close()

	// the session store is best-effort; signup still issues a token
	res, err := svc.Signup(ctx, auth.SignupInput{Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}
