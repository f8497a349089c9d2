package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/db"
)

// ConversationRepository provides data access for conversations and messages.
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new repository bound to the given DB connection.
func NewConversationRepository(database *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: database}
}

// ConversationWithMatch pairs a conversation with its match so callers can
// resolve participants without a second round-trip.
type ConversationWithMatch struct {
	Conversation db.Conversation
	Match        db.Match
}

// ListForUser returns every conversation whose match includes the user,
// ordered by most recent activity.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]ConversationWithMatch, error) {
	var matches []db.Match
	if err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Find(&matches).Error; err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []ConversationWithMatch{}, nil
	}

	matchByID := make(map[string]db.Match, len(matches))
	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchByID[m.ID] = m
		matchIDs = append(matchIDs, m.ID)
	}

	var convs []db.Conversation
	if err := r.db.WithContext(ctx).
		Where("match_id IN ?", matchIDs).
		Order("updated_at DESC, id DESC").
		Find(&convs).Error; err != nil {
		return nil, err
	}

	result := make([]ConversationWithMatch, 0, len(convs))
	for _, c := range convs {
		result = append(result, ConversationWithMatch{Conversation: c, Match: matchByID[c.MatchID]})
	}
	return result, nil
}

// GetForUser returns the conversation and its match only when userID is a
// participant of the linked match; otherwise gorm.ErrRecordNotFound.
func (r *ConversationRepository) GetForUser(ctx context.Context, conversationID, userID string) (*ConversationWithMatch, error) {
	var conv db.Conversation
	if err := r.db.WithContext(ctx).First(&conv, "id = ?", conversationID).Error; err != nil {
		return nil, err
	}

	var match db.Match
	if err := r.db.WithContext(ctx).First(&match, "id = ?", conv.MatchID).Error; err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, gorm.ErrRecordNotFound
	}

	return &ConversationWithMatch{Conversation: conv, Match: match}, nil
}

// ByMatchID returns the conversation provisioned for a match.
func (r *ConversationRepository) ByMatchID(ctx context.Context, matchID string) (*db.Conversation, error) {
	var conv db.Conversation
	if err := r.db.WithContext(ctx).First(&conv, "match_id = ?", matchID).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// ConversationIDsByMatchIDs maps match IDs to their conversation IDs.
func (r *ConversationRepository) ConversationIDsByMatchIDs(ctx context.Context, matchIDs []string) (map[string]string, error) {
	byMatch := make(map[string]string, len(matchIDs))
	if len(matchIDs) == 0 {
		return byMatch, nil
	}

	var convs []db.Conversation
	if err := r.db.WithContext(ctx).Where("match_id IN ?", matchIDs).Find(&convs).Error; err != nil {
		return nil, err
	}
	for _, c := range convs {
		byMatch[c.MatchID] = c.ID
	}
	return byMatch, nil
}

// AllMessages returns a conversation's full history oldest first.
func (r *ConversationRepository) AllMessages(ctx context.Context, conversationID string) ([]db.Message, error) {
	var messages []db.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// MessageWindow returns a limit/offset page over messages ordered newest
// first. Callers reverse the page to chronological order before returning it.
func (r *ConversationRepository) MessageWindow(ctx context.Context, conversationID string, limit, offset int) ([]db.Message, error) {
	var messages []db.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

// LastMessage returns the most recent message of the conversation, or nil
// when the history is empty.
func (r *ConversationRepository) LastMessage(ctx context.Context, conversationID string) (*db.Message, error) {
	var msg db.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// CreateMessage appends a message and bumps the conversation's updated_at in
// the same transaction, keeping the list ordering consistent with history.
func (r *ConversationRepository) CreateMessage(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&db.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", time.Now().UTC()).Error
	})
}

// MessageBySender returns the message only when senderID authored it.
func (r *ConversationRepository) MessageBySender(ctx context.Context, messageID, senderID string) (*db.Message, error) {
	var msg db.Message
	err := r.db.WithContext(ctx).
		Where("id = ? AND sender_id = ?", messageID, senderID).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage removes a single message.
func (r *ConversationRepository) DeleteMessage(ctx context.Context, messageID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", messageID).Delete(&db.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
