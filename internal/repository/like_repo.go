package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/db"
)

// ErrAlreadyMatched is returned by Accept when a match already exists for the
// unordered user pair. Guards against two opposite-direction pending likes
// both being accepted into duplicate matches.
var ErrAlreadyMatched = errors.New("match already exists for this pair")

// LikeRepository provides data access for the Like lifecycle, including the
// accept transition that provisions the Match and its Conversation.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Create inserts a new pending like. The composite unique index on
// (from_user_id, to_user_id) makes concurrent duplicate sends surface as
// gorm.ErrDuplicatedKey instead of a second row.
func (r *LikeRepository) Create(ctx context.Context, like *db.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// Exists reports whether a like in this direction already exists, regardless
// of status. Used for the fast pre-check before insert; the unique index is
// the authoritative defense.
func (r *LikeRepository) Exists(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Count(&count).Error
	return count > 0, err
}

// ListIncoming returns still-pending likes addressed to the user, newest first.
func (r *LikeRepository) ListIncoming(ctx context.Context, toUserID string) ([]db.Like, error) {
	var likes []db.Like
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND status = ?", toUserID, db.LikeStatusPending).
		Order("created_at DESC, id DESC").
		Find(&likes).Error
	return likes, err
}

// ListSent returns every like the user has sent, all statuses, newest first.
func (r *LikeRepository) ListSent(ctx context.Context, fromUserID string) ([]db.Like, error) {
	var likes []db.Like
	err := r.db.WithContext(ctx).
		Where("from_user_id = ?", fromUserID).
		Order("created_at DESC, id DESC").
		Find(&likes).Error
	return likes, err
}

// Accept performs the like -> match -> conversation transition as one
// transaction:
//
//  1. Compare-and-set the like from PENDING to ACCEPTED. RowsAffected == 0
//     means the like does not exist, is not addressed to toUserID, or was
//     already responded to; exactly one of two concurrent responders wins.
//  2. Create the Match, unless one already exists for the unordered pair.
//  3. Create the Conversation bound 1:1 to the Match.
//  4. Mark a reciprocal still-pending like (to -> from) ACCEPTED so it does
//     not linger in the sender's incoming list after the match exists.
//
// Any step failing rolls back the whole unit: a reader can never observe an
// ACCEPTED like without its Match, or a Match without its Conversation.
func (r *LikeRepository) Accept(ctx context.Context, likeID, toUserID string) (*db.Like, *db.Match, *db.Conversation, error) {
	var (
		like  db.Like
		match db.Match
		conv  db.Conversation
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.Like{}).
			Where("id = ? AND to_user_id = ? AND status = ?", likeID, toUserID, db.LikeStatusPending).
			Update("status", db.LikeStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.First(&like, "id = ?", likeID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&db.Match{}).
			Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)",
				like.FromUserID, like.ToUserID, like.ToUserID, like.FromUserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMatched
		}

		match = db.Match{
			UserAID:      like.FromUserID,
			UserBID:      like.ToUserID,
			SourceLikeID: like.ID,
		}
		if err := tx.Create(&match).Error; err != nil {
			return err
		}

		conv = db.Conversation{MatchID: match.ID}
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}

		return tx.Model(&db.Like{}).
			Where("from_user_id = ? AND to_user_id = ? AND status = ?",
				like.ToUserID, like.FromUserID, db.LikeStatusPending).
			Update("status", db.LikeStatusAccepted).Error
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return &like, &match, &conv, nil
}

// Skip marks a pending like SKIPPED via the same compare-and-set predicate as
// Accept, and returns the updated like.
func (r *LikeRepository) Skip(ctx context.Context, likeID, toUserID string) (*db.Like, error) {
	res := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("id = ? AND to_user_id = ? AND status = ?", likeID, toUserID, db.LikeStatusPending).
		Update("status", db.LikeStatusSkipped)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var like db.Like
	if err := r.db.WithContext(ctx).First(&like, "id = ?", likeID).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

// DeletePending removes a still-pending like addressed to toUserID outright.
func (r *LikeRepository) DeletePending(ctx context.Context, likeID, toUserID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND to_user_id = ? AND status = ?", likeID, toUserID, db.LikeStatusPending).
		Delete(&db.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
