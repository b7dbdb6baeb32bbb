package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/domain"
)

func TestRegister(t *testing.T) {
	name := "Ada"
	tests := []struct {
		name        string
		email       string
		password    string
		displayName *string
		setup       func(*testing.T, *studio)
		wantErr     func(error) bool
		errContains string
	}{
		{
			name:        "registers and lower-cases the email",
			email:       "Ada@Example.com",
			password:    "password123",
			displayName: &name,
		},
		{
			name:     "email already registered",
			email:    "taken@example.com",
			password: "password123",
			setup: func(t *testing.T, s *studio) {
				_, err := s.auth.Register(context.Background(), "TAKEN@example.com", "password123", nil)
				require.NoError(t, err)
			},
			wantErr:     domain.IsConflict,
			errContains: "Email already registered",
		},
		{
			name:        "invalid email",
			email:       "not-an-email",
			password:    "password123",
			wantErr:     domain.IsInvalidInput,
			errContains: "body.email",
		},
		{
			name:        "password too short",
			email:       "short@example.com",
			password:    "1234567",
			wantErr:     domain.IsInvalidInput,
			errContains: "at least 8 characters",
		},
		{
			name:        "password too long",
			email:       "long@example.com",
			password:    strings.Repeat("a", 73),
			wantErr:     domain.IsInvalidInput,
			errContains: "too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStudio(t, 12)
			if tt.setup != nil {
				tt.setup(t, s)
			}

			user, err := s.auth.Register(context.Background(), tt.email, tt.password, tt.displayName)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error kind: %v", err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tt.email), user.Email)
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestRegisterBootstrapsStudio(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 12)
	f := s.register(t, "ada@example.com")

	assert.Equal(t, "ada's Studio", f.ws.Name)
	assert.Equal(t, "ada-s-studio", f.ws.Slug)
	assert.Equal(t, "main", string(f.main.Kind))
	assert.Equal(t, "quick", string(f.quick.Kind))

	agent, err := s.store.GetAgentBySlug(ctx, f.ws.ID, DirectorAgentSlug)
	require.NoError(t, err)
	assert.True(t, agent.IsSystem)

	templates, err := s.workflows.ListTemplates(ctx, f.user.ID, f.ws.ID, domain.Page{})
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Short Video Pipeline", templates[0].Name)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 12)
	_, err := s.auth.Register(ctx, "ada@example.com", "correctpassword", nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"success", "ada@example.com", "correctpassword", false},
		{"email is case-insensitive", "ADA@example.com", "correctpassword", false},
		{"unknown user", "nobody@example.com", "correctpassword", true},
		{"wrong password", "ada@example.com", "wrongpassword", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := s.auth.Login(ctx, tt.email, tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsUnauthenticated(err))
				// unknown user and wrong password are indistinguishable
				assert.Equal(t, "Invalid credentials", domain.UserMessage(err))
				return
			}
			require.NoError(t, err)
			got, err := s.store.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.NotNil(t, got.LastLoginAt)
		})
	}
}

func TestGetUserUnknownSubject(t *testing.T) {
	s := newStudio(t, 12)
	_, err := s.auth.GetUser(context.Background(), "missing")
	assert.True(t, domain.IsUnauthenticated(err))
}

func TestPasswordSecurity(t *testing.T) {
	t.Run("hash differs from password", func(t *testing.T) {
		hash, err := hashPassword("securePassword123")
		require.NoError(t, err)
		assert.NotEqual(t, "securePassword123", hash)
		assert.GreaterOrEqual(t, len(hash), 50)
	})

	t.Run("same password gives different hashes", func(t *testing.T) {
		hash1, _ := hashPassword("testPassword")
		hash2, _ := hashPassword("testPassword")
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("verification", func(t *testing.T) {
		hash, _ := hashPassword("correctPassword")
		assert.NoError(t, verifyPassword(hash, "correctPassword"))
		assert.Error(t, verifyPassword(hash, "wrongPassword"))
	})
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "my-studio", slugify("  My  Studio!! "))
	assert.Equal(t, "a-b", slugify("a---b"))
	assert.Equal(t, "", slugify("!!!"))
}
