package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/app"
	"github.com/kindred-app/kindred-backend/internal/cache"
	"github.com/kindred-app/kindred-backend/internal/db"
	apperr "github.com/kindred-app/kindred-backend/internal/errors"
	"github.com/kindred-app/kindred-backend/internal/repository"
	"github.com/kindred-app/kindred-backend/internal/utils/pagination"
)

// MaxMessageLength bounds a single chat message.
const MaxMessageLength = 1000

// Service is the Conversation engine: list and detail views, the message
// append protocol, and participant-only access control folded into NotFound.
type Service struct {
	appCtx *app.AppContext
	convs  *repository.ConversationRepository
	users  *repository.UserRepository
}

// NewService creates the Conversation engine with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		convs:  repository.NewConversationRepository(appCtx.DB),
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// UserRef is the public slice of a user carried in conversation views.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MessageView is one chat turn as exposed to clients.
type MessageView struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// Summary is the conversation-list entry: participants plus a preview of the
// most recent message.
type Summary struct {
	ID           string    `json:"id"`
	Participants []UserRef `json:"participants"`
	LastMessage  string    `json:"lastMessage,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Detail is the full conversation view with history oldest first.
type Detail struct {
	ID           string        `json:"id"`
	Participants []UserRef     `json:"participants"`
	Messages     []MessageView `json:"messages"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// List returns the user's conversations ordered by most recent activity, read
// through the conversations cache.
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	return cache.GetOrLoad(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.ConversationsKey(userID), cache.TTLConversations,
		func(ctx context.Context) ([]Summary, error) {
			rows, err := s.convs.ListForUser(ctx, userID)
			if err != nil {
				return nil, apperr.Map(err)
			}

			userIDs := make([]string, 0, len(rows)*2)
			for _, row := range rows {
				userIDs = append(userIDs, row.Match.UserAID, row.Match.UserBID)
			}
			usersByID, err := s.users.MapByIDs(ctx, userIDs)
			if err != nil {
				return nil, apperr.Map(err)
			}

			summaries := make([]Summary, 0, len(rows))
			for _, row := range rows {
				last, err := s.convs.LastMessage(ctx, row.Conversation.ID)
				if err != nil {
					return nil, apperr.Map(err)
				}

				sum := Summary{
					ID:           row.Conversation.ID,
					Participants: participants(row.Match, usersByID),
					UpdatedAt:    row.Conversation.UpdatedAt,
					CreatedAt:    row.Conversation.CreatedAt,
				}
				if last != nil {
					sum.LastMessage = last.Content
				}
				summaries = append(summaries, sum)
			}
			return summaries, nil
		})
}

// Get returns the full conversation with history oldest first. NotFound
// covers both a missing ID and a caller who is not a participant.
func (s *Service) Get(ctx context.Context, userID, conversationID string) (*Detail, error) {
	row, err := s.access(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	messages, err := s.convs.AllMessages(ctx, conversationID)
	if err != nil {
		return nil, apperr.Map(err)
	}

	usersByID, err := s.users.MapByIDs(ctx, []string{row.Match.UserAID, row.Match.UserBID})
	if err != nil {
		return nil, apperr.Map(err)
	}

	return &Detail{
		ID:           row.Conversation.ID,
		Participants: participants(row.Match, usersByID),
		Messages:     messageViews(messages),
		CreatedAt:    row.Conversation.CreatedAt,
	}, nil
}

// Messages returns one limit/offset page. The window slides over newest-first
// order and each page is reversed to read oldest to newest.
func (s *Service) Messages(ctx context.Context, userID, conversationID string, page pagination.Page) ([]MessageView, error) {
	if _, err := s.access(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	rows, err := s.convs.MessageWindow(ctx, conversationID, page.Limit, page.Offset)
	if err != nil {
		return nil, apperr.Map(err)
	}

	views := messageViews(rows)
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
	return views, nil
}

// SendMessage appends a message, bumps the conversation's activity timestamp,
// and invalidates the conversation list of BOTH participants so the new
// message surfaces in the recipient's view on their next read.
func (s *Service) SendMessage(ctx context.Context, userID, conversationID, content string) (*MessageView, error) {
	row, err := s.access(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("message content cannot be empty")
	}
	if len(content) > MaxMessageLength {
		return nil, apperr.Validation("message content too long (max 1000 characters)")
	}

	msg := &db.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
	}
	if err := s.convs.CreateMessage(ctx, msg); err != nil {
		return nil, apperr.Map(err)
	}

	a, b := row.Match.Participants()
	cache.Invalidate(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.ConversationsKey(a),
		cache.ConversationsKey(b),
	)

	view := messageViews([]db.Message{*msg})[0]
	return &view, nil
}

// DeleteMessage removes a message. Only the author may delete; anyone else,
// participant or not, sees NotFound.
func (s *Service) DeleteMessage(ctx context.Context, userID, messageID string) error {
	msg, err := s.convs.MessageBySender(ctx, messageID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("message not found")
		}
		return apperr.Map(err)
	}

	row, err := s.convs.GetForUser(ctx, msg.ConversationID, userID)
	if err != nil {
		return apperr.Map(err)
	}

	if err := s.convs.DeleteMessage(ctx, messageID); err != nil {
		return apperr.Map(err)
	}

	a, b := row.Match.Participants()
	cache.Invalidate(ctx, s.appCtx.RedisCache, s.appCtx.Logger,
		cache.ConversationsKey(a),
		cache.ConversationsKey(b),
	)
	return nil
}

// access resolves the conversation and enforces participant-only access,
// folding authorization into NotFound.
func (s *Service) access(ctx context.Context, userID, conversationID string) (*repository.ConversationWithMatch, error) {
	row, err := s.convs.GetForUser(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("conversation not found")
		}
		return nil, apperr.Map(err)
	}
	return row, nil
}

func participants(m db.Match, usersByID map[string]db.User) []UserRef {
	a := usersByID[m.UserAID]
	b := usersByID[m.UserBID]
	return []UserRef{
		{ID: m.UserAID, Name: a.Name},
		{ID: m.UserBID, Name: b.Name},
	}
}

func messageViews(rows []db.Message) []MessageView {
	views := make([]MessageView, 0, len(rows))
	for _, m := range rows {
		views = append(views, MessageView{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			Content:        m.Content,
			Timestamp:      m.CreatedAt,
		})
	}
	return views
}
