package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// authUsecase implements domain.AuthUsecase
type authUsecase struct {
	users         domain.UserRepository
	workspaces    domain.WorkspaceUsecase
	conversations domain.ConversationUsecase
	logger        *slog.Logger
}

// NewAuthUsecase creates an AuthUsecase; registration bootstraps through
// the workspace and conversation usecases
func NewAuthUsecase(
	users domain.UserRepository,
	workspaces domain.WorkspaceUsecase,
	conversations domain.ConversationUsecase,
	logger *slog.Logger,
) domain.AuthUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &authUsecase{
		users:         users,
		workspaces:    workspaces,
		conversations: conversations,
		logger:        logger,
	}
}

// Register creates a user with a default workspace and conversation
func (u *authUsecase) Register(ctx context.Context, email, password string, displayName *string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateRegistration(email, password, displayName); err != nil {
		return nil, err
	}

	existing, err := u.users.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.NewConflictError("Email already registered")
	}
	if err != nil && !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Email: email, DisplayName: displayName, PasswordHash: passwordHash}
	if err := u.users.Create(ctx, user); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewConflictError("Email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	ws, err := u.workspaces.Create(ctx, user.ID, defaultWorkspaceName(user), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap workspace: %w", err)
	}
	title := "Getting started"
	if _, err := u.conversations.Create(ctx, user.ID, ws.ID, &title); err != nil {
		return nil, fmt.Errorf("failed to bootstrap conversation: %w", err)
	}

	u.logger.Info("user registered successfully", "user_id", user.ID, "workspace_id", ws.ID)
	return user, nil
}

// Login verifies credentials; unknown email and wrong password look the same
func (u *authUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("Invalid credentials")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := verifyPassword(user.PasswordHash, password); err != nil {
		return nil, domain.NewUnauthorizedError("Invalid credentials")
	}

	if err := u.users.UpdateLastLogin(ctx, user.ID); err != nil {
		u.logger.Error("failed to update last login", "error", err, "user_id", user.ID)
	}

	u.logger.Info("user logged in successfully", "user_id", user.ID)
	return user, nil
}

// GetUser returns the user behind a token subject
func (u *authUsecase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ============ 辅助函数 ============

func validateRegistration(email, password string, displayName *string) error {
	verr := &domain.ValidationError{}

	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		verr.Add("value is not a valid email address", "body", "email")
	}

	// bcrypt only looks at the first 72 bytes
	if len(password) < 8 {
		verr.Add("password must be at least 8 characters", "body", "password")
	} else if len(password) > 72 {
		verr.Add("password too long (max 72 bytes)", "body", "password")
	}

	if displayName != nil && len(*displayName) > 120 {
		verr.Add("display_name must be at most 120 characters", "body", "display_name")
	}

	return verr.OrNil()
}

func defaultWorkspaceName(user *entity.User) string {
	if user.DisplayName != nil && strings.TrimSpace(*user.DisplayName) != "" {
		return strings.TrimSpace(*user.DisplayName) + "'s Studio"
	}
	local, _, _ := strings.Cut(user.Email, "@")
	return local + "'s Studio"
}

// hashPassword 使用 bcrypt 哈希密码
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword 验证密码
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
