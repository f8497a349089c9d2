package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/db"
)

// ProfileRepository provides data access for profiles, photos and prompts.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetByUserID loads the profile with its photos (gallery order) and prompts.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Prompts", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create inserts a new profile. The unique index on user_id surfaces a second
// create as gorm.ErrDuplicatedKey.
func (r *ProfileRepository) Create(ctx context.Context, profile *db.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// Update applies the given column changes to the user's profile.
func (r *ProfileRepository) Update(ctx context.Context, userID string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&db.Profile{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProfileRepository) CountPhotos(ctx context.Context, profileID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Photo{}).
		Where("profile_id = ?", profileID).
		Count(&count).Error
	return count, err
}

func (r *ProfileRepository) AddPhoto(ctx context.Context, photo *db.Photo) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// DeletePhoto removes a photo, scoped to the owning profile.
func (r *ProfileRepository) DeletePhoto(ctx context.Context, photoID, profileID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", photoID, profileID).
		Delete(&db.Photo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProfileRepository) AddPrompt(ctx context.Context, prompt *db.Prompt) error {
	return r.db.WithContext(ctx).Create(prompt).Error
}

// DeletePrompt removes a prompt, scoped to the owning profile.
func (r *ProfileRepository) DeletePrompt(ctx context.Context, promptID, profileID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", promptID, profileID).
		Delete(&db.Prompt{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
