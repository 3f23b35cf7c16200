package repository

import (
	"context"

	"github.com/polkiloo/autoparts/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// CustomerRepository stores customer profiles used to prefill checkout.
type CustomerRepository interface {
	Upsert(ctx context.Context, profile model.CustomerProfile) error
	Get(ctx context.Context, userID int64) (*model.CustomerProfile, error)
}
