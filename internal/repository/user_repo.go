package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kindred-app/kindred-backend/internal/db"
)

// UserRepository provides data access for user accounts.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user. Duplicate emails surface as gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// MapByIDs loads the given users in one query, keyed by ID. Missing IDs are
// simply absent from the map.
func (r *UserRepository) MapByIDs(ctx context.Context, ids []string) (map[string]db.User, error) {
	byID := make(map[string]db.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}
