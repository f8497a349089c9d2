package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/app"
	"github.com/kindred-app/kindred-backend/internal/cache"
	"github.com/kindred-app/kindred-backend/internal/db"
	apperr "github.com/kindred-app/kindred-backend/internal/errors"
	"github.com/kindred-app/kindred-backend/internal/repository"
)

// Service handles account creation and session issuance. Sessions are JWTs
// whose jti is mirrored in Redis so logout can revoke a token before it
// expires; the Redis write is best-effort.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
}

// NewService creates the auth service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// UserView is the account as returned to its owner.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result is a successful signup or login.
type Result struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

// SignupInput is the payload for account registration.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// Signup registers a new account and issues a session token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Result, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Map(err)
	}

	user := &db.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("user already exists")
		}
		return nil, apperr.Map(err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID)
	return &Result{User: userView(user), Token: token}, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Map(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Result{User: userView(user), Token: token}, nil
}

// Me returns the authenticated account.
func (s *Service) Me(ctx context.Context, userID string) (*UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, apperr.Map(err)
	}
	v := userView(user)
	return &v, nil
}

// Logout revokes the current session. Without a reachable Redis the token
// simply runs out its expiry.
func (s *Service) Logout(ctx context.Context, jti string) {
	if jti == "" {
		return
	}
	cache.Invalidate(ctx, s.appCtx.RedisCache, s.appCtx.Logger, cache.SessionKey(jti))
}

func (s *Service) issueToken(ctx context.Context, userID string) (string, error) {
	jti := uuid.NewString()
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.appCtx.Cfg.Auth.SessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.appCtx.Cfg.Auth.JWTSecret))
	if err != nil {
		return "", apperr.Map(err)
	}

	if err := s.appCtx.RedisCache.Set(ctx, cache.SessionKey(jti), userID, s.appCtx.Cfg.Auth.SessionTTL); err != nil {
		s.appCtx.Logger.Warn("session store failed, token valid until expiry", "err", err)
	}

	return token, nil
}

func userView(u *db.User) UserView {
	return UserView{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}
