package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
	"github.com/chazo1994/Creatory/internal/infrastructure/memory"
)

// studio wires every usecase over one in-memory store
type studio struct {
	store         *memory.Store
	auth          domain.AuthUsecase
	workspaces    domain.WorkspaceUsecase
	conversations domain.ConversationUsecase
	orchestration domain.OrchestrationUsecase
	workflows     domain.WorkflowUsecase
}

func newStudio(t *testing.T, maxSteps int) *studio {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()

	workspaces := NewWorkspaceUsecase(store, store, store, logger)
	conversations := NewConversationUsecase(store, store, logger)
	return &studio{
		store:         store,
		auth:          NewAuthUsecase(store, workspaces, conversations, logger),
		workspaces:    workspaces,
		conversations: conversations,
		orchestration: NewOrchestrationUsecase(store, store, store, maxSteps, logger),
		workflows:     NewWorkflowUsecase(store, store, store, maxSteps, logger),
	}
}

// fixture is a registered user with the bootstrapped workspace and threads
type fixture struct {
	user  *entity.User
	ws    *entity.Workspace
	conv  *entity.Conversation
	main  *entity.Thread
	quick *entity.Thread
}

func (s *studio) register(t *testing.T, email string) fixture {
	t.Helper()
	ctx := context.Background()

	user, err := s.auth.Register(ctx, email, "password123", nil)
	require.NoError(t, err)

	wss, err := s.workspaces.List(ctx, user.ID, domain.Page{})
	require.NoError(t, err)
	require.Len(t, wss, 1)

	convs, err := s.conversations.List(ctx, user.ID, wss[0].ID, domain.Page{})
	require.NoError(t, err)
	require.Len(t, convs, 1)

	threads, err := s.conversations.ListThreads(ctx, user.ID, convs[0].ID)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	return fixture{user: user, ws: wss[0], conv: convs[0], main: threads[0], quick: threads[1]}
}
