package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

func TestCreateConversationStartsWithMainAndQuick(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 12)
	f := s.register(t, "ada@example.com")

	title := "Launch"
	conv, err := s.conversations.Create(ctx, f.user.ID, f.ws.ID, &title)
	require.NoError(t, err)

	threads, err := s.conversations.ListThreads(ctx, f.user.ID, conv.ID)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, entity.ThreadMain, threads[0].Kind)
	assert.Equal(t, entity.ThreadQuick, threads[1].Kind)

	convs, err := s.conversations.List(ctx, f.user.ID, f.ws.ID, domain.Page{})
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, conv.ID, convs[0].ID, "newest first")
}

func TestOtherUsersSeeNotFound(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 12)
	owner := s.register(t, "owner@example.com")
	other := s.register(t, "other@example.com")

	_, err := s.conversations.List(ctx, other.user.ID, owner.ws.ID, domain.Page{})
	require.Error(t, err)
	assert.Equal(t, "Workspace not found", domain.UserMessage(err))

	_, err = s.conversations.ListThreads(ctx, other.user.ID, owner.conv.ID)
	assert.Equal(t, "Workspace not found", domain.UserMessage(err))

	_, err = s.conversations.ListThreads(ctx, owner.user.ID, "missing")
	assert.Equal(t, "Conversation not found", domain.UserMessage(err))

	// a thread of another conversation is not part of this one
	_, err = s.conversations.ListMessages(ctx, owner.user.ID, owner.conv.ID, other.main.ID, domain.Page{})
	assert.Equal(t, "Thread not found", domain.UserMessage(err))
}

func TestInject(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 12)
	f := s.register(t, "ada@example.com")

	quickMsg, err := s.conversations.CreateMessage(ctx, f.user.ID, f.conv.ID, f.quick.ID, domain.MessageInput{
		Role:        entity.RoleAssistant,
		ContentJSON: map[string]any{"text": "Warm tone"},
	})
	require.NoError(t, err)
	mainMsg, err := s.conversations.CreateMessage(ctx, f.user.ID, f.conv.ID, f.main.ID, domain.MessageInput{
		ContentJSON: map[string]any{"text": "Draft"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, mainMsg.Role)

	base := domain.InjectInput{
		FromThreadID:  f.quick.ID,
		FromMessageID: quickMsg.ID,
		ToThreadID:    f.main.ID,
		ContextBlock:  entity.ContextBlock{ReferenceID: quickMsg.ID, Text: "Warm tone", Source: "quick-thread"},
	}

	tests := []struct {
		name    string
		mutate  func(*domain.InjectInput)
		wantMsg string
	}{
		{name: "injects", mutate: func(*domain.InjectInput) {}},
		{name: "anchored to a main message", mutate: func(in *domain.InjectInput) { in.ToMessageID = &mainMsg.ID }},
		{
			name:    "source message from another thread",
			mutate:  func(in *domain.InjectInput) { in.FromMessageID = mainMsg.ID },
			wantMsg: "Source message not found",
		},
		{
			name:    "unknown source message",
			mutate:  func(in *domain.InjectInput) { in.FromMessageID = "missing" },
			wantMsg: "Source message not found",
		},
		{
			name:    "anchor outside the target thread",
			mutate:  func(in *domain.InjectInput) { in.ToMessageID = &quickMsg.ID },
			wantMsg: "Target message not found",
		},
		{
			name:    "unknown target thread",
			mutate:  func(in *domain.InjectInput) { in.ToThreadID = "missing" },
			wantMsg: "Thread not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)

			injection, err := s.conversations.Inject(ctx, f.user.ID, f.conv.ID, in)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.True(t, domain.IsNotFound(err))
				assert.Equal(t, tt.wantMsg, domain.UserMessage(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, injection.ID)
			assert.Equal(t, f.user.ID, injection.InjectedBy)
			assert.Equal(t, "Warm tone", injection.ContextBlock.Text)
		})
	}
}

func TestInjectRequiresIDs(t *testing.T) {
	s := newStudio(t, 12)
	f := s.register(t, "ada@example.com")

	_, err := s.conversations.Inject(context.Background(), f.user.ID, f.conv.ID, domain.InjectInput{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestCreateThreadValidatesParent(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 12)
	f := s.register(t, "ada@example.com")

	thread, err := s.conversations.CreateThread(ctx, f.user.ID, f.conv.ID, entity.ThreadQuick, &f.main.ID)
	require.NoError(t, err)
	assert.Equal(t, f.main.ID, *thread.ParentThreadID)

	missing := "missing"
	_, err = s.conversations.CreateThread(ctx, f.user.ID, f.conv.ID, entity.ThreadQuick, &missing)
	assert.Equal(t, "Thread not found", domain.UserMessage(err))

	_, err = s.conversations.CreateThread(ctx, f.user.ID, f.conv.ID, entity.ThreadKind("side"), nil)
	assert.True(t, domain.IsInvalidInput(err))
}
