// Package devserver assembles the in-memory studio backend: repositories,
// usecases, handlers and the hertz server that exposes them.
package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/cloudwego/hertz/pkg/network/standard"

	devconfig "github.com/chazo1994/Creatory/internal/config"
	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/handler"
	"github.com/chazo1994/Creatory/internal/infrastructure/memory"
	"github.com/chazo1994/Creatory/internal/router"
	"github.com/chazo1994/Creatory/internal/usecase"
)

// Server is a wired dev server
type Server struct {
	Hertz *server.Hertz

	cfg    *devconfig.Config
	auth   domain.AuthUsecase
	ready  atomic.Bool
	logger *slog.Logger
}

// Option customizes the hertz server, e.g. the transport in tests
type Option func(*[]config.Option)

// WithStandardTransport uses the net/http style transport instead of netpoll
func WithStandardTransport() Option {
	return func(opts *[]config.Option) {
		*opts = append(*opts, server.WithTransport(standard.NewTransporter))
	}
}

// New wires every layer over a fresh in-memory store
func New(cfg *devconfig.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store := memory.NewStore()

	workspaceUC := usecase.NewWorkspaceUsecase(store, store, store, logger)
	conversationUC := usecase.NewConversationUsecase(store, store, logger)
	authUC := usecase.NewAuthUsecase(store, workspaceUC, conversationUC, logger)
	orchestrationUC := usecase.NewOrchestrationUsecase(store, store, store, cfg.Workflow.MaxSteps, logger)
	workflowUC := usecase.NewWorkflowUsecase(store, store, store, cfg.Workflow.MaxSteps, logger)

	authHandler, err := handler.NewAuthHandler(authUC, cfg.Auth, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, auth: authUC, logger: logger}

	hertzOpts := []config.Option{
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.Server.ReadTimeout),
		server.WithWriteTimeout(cfg.Server.WriteTimeout),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize),
		server.WithTransport(netpoll.NewTransporter),
		server.WithExitWaitTime(0),
	}
	for _, opt := range opts {
		opt(&hertzOpts)
	}
	h := server.Default(hertzOpts...)

	router.Setup(h, router.Handlers{
		Auth:          authHandler,
		Workspace:     handler.NewWorkspaceHandler(workspaceUC, logger),
		Conversation:  handler.NewConversationHandler(conversationUC, logger),
		Orchestration: handler.NewOrchestrationHandler(orchestrationUC, cfg.Stream.EventDelay, logger),
		Workflow:      handler.NewWorkflowHandler(workflowUC, logger),
		Health:        handler.NewHealthHandler(s.ready.Load),
	}, logger)

	s.Hertz = h
	return s, nil
}

// Seed registers the configured seed user; an existing account is kept
func (s *Server) Seed(ctx context.Context) error {
	defer s.ready.Store(true)

	seed := s.cfg.Seed
	if !seed.Enabled() {
		return nil
	}

	var displayName *string
	if seed.DisplayName != "" {
		displayName = &seed.DisplayName
	}
	user, err := s.auth.Register(ctx, seed.Email, seed.Password, displayName)
	if err != nil {
		if domain.IsConflict(err) {
			s.logger.Debug("seed user already registered", "email", seed.Email)
			return nil
		}
		return fmt.Errorf("failed to seed user %s: %w", seed.Email, err)
	}

	s.logger.Info("seed user registered", "user_id", user.ID, "email", user.Email)
	return nil
}
