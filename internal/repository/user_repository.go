package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"commit-tracker/internal/apperror"
	"commit-tracker/internal/model"
)

// UserRepository resolves owners. Account management is out of scope;
// rows are seeded by the auth service sharing this database.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperror.ErrNotFound
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}
