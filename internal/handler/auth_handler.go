package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/jwt"

	"github.com/chazo1994/Creatory/internal/config"
	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
	"github.com/chazo1994/Creatory/internal/handler/dto"
)

const (
	// identityKey holds the authenticated user id in the RequestContext
	identityKey = "user_id"
	// userKey holds the authenticated *entity.User
	userKey = "user"
	// authErrorKey carries a login failure to the Unauthorized callback
	authErrorKey = "auth_error"
)

// AuthHandler issues bearer tokens and guards protected routes
type AuthHandler struct {
	usecase        domain.AuthUsecase
	authMiddleware *jwt.HertzJWTMiddleware
	tokenTTL       time.Duration
	logger         *slog.Logger
}

// NewAuthHandler creates the auth handler and its JWT middleware
func NewAuthHandler(usecase domain.AuthUsecase, cfg config.AuthConfig, logger *slog.Logger) (*AuthHandler, error) {
	h := &AuthHandler{
		usecase:  usecase,
		tokenTTL: cfg.TokenTTL,
		logger:   logger,
	}

	authMiddleware, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "studio-devserver",
		Key:         []byte(cfg.Secret),
		Timeout:     cfg.TokenTTL,
		IdentityKey: identityKey,

		// Login authentication logic
		Authenticator: func(ctx context.Context, c *app.RequestContext) (interface{}, error) {
			var req dto.LoginRequest
			if err := bindBody(c, &req); err != nil {
				c.Set(authErrorKey, err)
				return nil, err
			}
			verr := &domain.ValidationError{}
			if req.Email == "" {
				verr.Add("Field required", "body", "email")
			}
			if req.Password == "" {
				verr.Add("Field required", "body", "password")
			}
			if err := verr.OrNil(); err != nil {
				c.Set(authErrorKey, err)
				return nil, err
			}

			user, err := usecase.Login(ctx, req.Email, req.Password)
			if err != nil {
				logger.Warn("login failed", "email", req.Email, "error", err)
				c.Set(authErrorKey, err)
				return nil, jwt.ErrFailedAuthentication
			}

			// Store user info in context for LoginResponse
			c.Set(userKey, user)
			return user, nil
		},

		// Token Payload - write user info into JWT
		PayloadFunc: func(data interface{}) jwt.MapClaims {
			if user, ok := data.(*entity.User); ok {
				return jwt.MapClaims{
					"sub":   user.ID,
					"email": user.Email,
				}
			}
			return jwt.MapClaims{}
		},

		// Extract identity information from Token
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			if sub, ok := claims["sub"].(string); ok {
				return sub
			}
			return ""
		},

		HTTPStatusMessageFunc: func(e error, ctx context.Context, c *app.RequestContext) string {
			if errors.Is(e, jwt.ErrEmptyAuthHeader) || errors.Is(e, jwt.ErrEmptyQueryToken) {
				return "Not authenticated"
			}
			return "Invalid authentication credentials"
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			if v, ok := c.Get(authErrorKey); ok {
				if err, ok := v.(error); ok {
					ErrorResponse(c, err)
					return
				}
			}
			AbortWithDetail(c, code, message)
		},

		LoginResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			user, ok := c.Get(userKey)
			if !ok {
				ErrorResponse(c, fmt.Errorf("login response without user"))
				return
			}
			c.JSON(consts.StatusOK, h.authResponse(user.(*entity.User), token))
		},

		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
		TimeFunc:      time.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create jwt middleware: %w", err)
	}

	h.authMiddleware = authMiddleware
	return h, nil
}

// AuthMiddleware validates the bearer token and loads the user behind it.
// Tokens outlive the in-memory store, so a valid token for an unknown user
// is rejected with "User not found".
func (h *AuthHandler) AuthMiddleware() []app.HandlerFunc {
	return []app.HandlerFunc{h.authMiddleware.MiddlewareFunc(), h.currentUser}
}

func (h *AuthHandler) currentUser(ctx context.Context, c *app.RequestContext) {
	user, err := h.usecase.GetUser(ctx, userID(c))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	c.Set(userKey, user)
	c.Next(ctx)
}

// Register creates an account and returns a token for it
// POST /api/v1/auth/register
func (h *AuthHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		ErrorResponse(c, err)
		return
	}

	user, err := h.usecase.Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.logger.Warn("register failed", "email", req.Email, "error", err)
		ErrorResponse(c, err)
		return
	}

	token, _, err := h.authMiddleware.TokenGenerator(user)
	if err != nil {
		h.logger.Error("failed to issue token", "user_id", user.ID, "error", err)
		ErrorResponse(c, err)
		return
	}

	CreatedResponse(c, h.authResponse(user, token))
}

// Login handles user login (using Hertz JWT LoginHandler)
// POST /api/v1/auth/login
func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	h.authMiddleware.LoginHandler(ctx, c)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(ctx context.Context, c *app.RequestContext) {
	user, ok := c.Get(userKey)
	if !ok {
		ErrorResponse(c, domain.NewUnauthorizedError("Not authenticated"))
		return
	}
	OKResponse(c, dto.ToUserResponse(user.(*entity.User)))
}

func (h *AuthHandler) authResponse(user *entity.User, token string) *dto.AuthResponse {
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int64(h.tokenTTL.Seconds()),
		},
		User: dto.ToUserResponse(user),
	}
}
