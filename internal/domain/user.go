package domain

import (
	"context"

	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// ============ Repository interface ============

// UserRepository stores registered users
type UserRepository interface {
	// Create stores a new user; the email must be unused
	Create(ctx context.Context, user *entity.User) error

	// GetByEmail looks a user up by lower-cased email (用于登录)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetByID looks a user up by id
	GetByID(ctx context.Context, userID string) (*entity.User, error)

	// UpdateLastLogin records a successful login
	UpdateLastLogin(ctx context.Context, userID string) error
}

// ============ Usecase interface ============

// AuthUsecase registers and authenticates users
type AuthUsecase interface {
	// Register creates the user and bootstraps a default workspace with a
	// conversation holding a main and a quick thread
	Register(ctx context.Context, email, password string, displayName *string) (*entity.User, error)

	// Login verifies credentials
	Login(ctx context.Context, email, password string) (*entity.User, error)

	// GetUser returns the user behind a token subject
	GetUser(ctx context.Context, userID string) (*entity.User, error)
}
