package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/db"
)

// MatchRepository provides read access to matches and the unmatch cascade.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// ListForUser returns every match the user participates in, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID string) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}

// GetForUser returns the match only when userID is a participant. Existence
// and authorization are a single predicate so non-participants cannot probe
// for match IDs.
func (r *MatchRepository) GetForUser(ctx context.Context, matchID, userID string) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("id = ? AND (user_a_id = ? OR user_b_id = ?)", matchID, userID, userID).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// DeleteCascade hard-deletes the match together with its conversation and all
// messages, as one transaction. No tombstone remains; the pair can re-match
// through a fresh like cycle.
func (r *MatchRepository) DeleteCascade(ctx context.Context, matchID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv db.Conversation
		err := tx.Where("match_id = ?", matchID).First(&conv).Error
		if err == nil {
			if err := tx.Where("conversation_id = ?", conv.ID).Delete(&db.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&conv).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Where("id = ?", matchID).Delete(&db.Match{}).Error
	})
}
