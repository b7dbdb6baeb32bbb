package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/cli/types"
)

func selected() Snapshot {
	return Snapshot{
		Token:          "tok",
		WorkspaceID:    "ws-1",
		ConversationID: "conv-1",
		MainThreadID:   "main-1",
		QuickThreadID:  "quick-1",
	}
}

func TestSetAuth(t *testing.T) {
	s := NewStore(Snapshot{})
	name := "Ada"

	snap := s.SetAuth(types.AuthResponse{
		Token: types.Token{AccessToken: "tok-1", TokenType: "bearer"},
		User:  types.User{ID: "u-1", Email: "ada@example.com", DisplayName: &name},
	})

	assert.True(t, snap.Authenticated())
	assert.Equal(t, "tok-1", snap.Token)
	require.NotNil(t, snap.User)
	assert.Equal(t, "u-1", snap.User.ID)

	name = "changed"
	assert.Equal(t, "Ada", *s.Snapshot().User.DisplayName)
}

func TestSetWorkspaces(t *testing.T) {
	tests := []struct {
		name       string
		initial    Snapshot
		workspaces []types.Workspace
		want       Snapshot
	}{
		{
			name:       "keeps a still listed selection",
			initial:    selected(),
			workspaces: []types.Workspace{{ID: "ws-0"}, {ID: "ws-1"}},
			want:       selected(),
		},
		{
			name:       "selects the first when nothing is selected",
			initial:    Snapshot{Token: "tok"},
			workspaces: []types.Workspace{{ID: "ws-7"}, {ID: "ws-8"}},
			want:       Snapshot{Token: "tok", WorkspaceID: "ws-7"},
		},
		{
			name:       "replaces a vanished selection and clears what hung off it",
			initial:    selected(),
			workspaces: []types.Workspace{{ID: "ws-2"}},
			want:       Snapshot{Token: "tok", WorkspaceID: "ws-2"},
		},
		{
			name:       "empty list selects nothing",
			initial:    selected(),
			workspaces: nil,
			want:       Snapshot{Token: "tok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.initial)
			got := s.SetWorkspaces(tt.workspaces)

			assert.Equal(t, tt.want.WorkspaceID, got.WorkspaceID)
			assert.Equal(t, tt.want.ConversationID, got.ConversationID)
			assert.Equal(t, tt.want.MainThreadID, got.MainThreadID)
			assert.Equal(t, tt.want.QuickThreadID, got.QuickThreadID)
			assert.Len(t, got.Workspaces, len(tt.workspaces))
		})
	}
}

func TestSelectionClearsDependents(t *testing.T) {
	s := NewStore(selected())

	snap := s.SelectConversation("conv-2")
	assert.Equal(t, "ws-1", snap.WorkspaceID)
	assert.Equal(t, "conv-2", snap.ConversationID)
	assert.Empty(t, snap.MainThreadID)
	assert.Empty(t, snap.QuickThreadID)

	snap = s.SetThreads("main-2", "quick-2")
	assert.Equal(t, "main-2", snap.ThreadID(types.ThreadMain))
	assert.Equal(t, "quick-2", snap.ThreadID(types.ThreadQuick))

	snap = s.SelectWorkspace("ws-9")
	assert.Equal(t, "ws-9", snap.WorkspaceID)
	assert.Empty(t, snap.ConversationID)
	assert.Empty(t, snap.MainThreadID)
	assert.Equal(t, "tok", snap.Token)
}

func TestApplyThreadsPicksFirstOfEachKind(t *testing.T) {
	s := NewStore(selected())
	snap := s.ApplyThreads([]types.Thread{
		{ID: "q-a", Kind: types.ThreadQuick},
		{ID: "m-a", Kind: types.ThreadMain},
		{ID: "q-b", Kind: types.ThreadQuick},
		{ID: "m-b", Kind: types.ThreadMain},
	})
	assert.Equal(t, "m-a", snap.MainThreadID)
	assert.Equal(t, "q-a", snap.QuickThreadID)

	snap = s.ApplyThreads([]types.Thread{{ID: "m-c", Kind: types.ThreadMain}})
	assert.Equal(t, "m-c", snap.MainThreadID)
	assert.Empty(t, snap.QuickThreadID)
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s := NewStore(Snapshot{})
	before := s.SetWorkspaces([]types.Workspace{{ID: "ws-1", Name: "one"}})

	after := s.SetWorkspaces([]types.Workspace{{ID: "ws-2", Name: "two"}})

	assert.Equal(t, "ws-1", before.WorkspaceID)
	assert.Equal(t, "one", before.Workspaces[0].Name)
	assert.Equal(t, "ws-2", after.WorkspaceID)
}

func TestLogoutResets(t *testing.T) {
	s := NewStore(selected())
	snap := s.Logout()
	assert.Equal(t, Snapshot{}, snap)
	assert.False(t, s.Snapshot().Authenticated())
}

func TestSubscribe(t *testing.T) {
	s := NewStore(Snapshot{})

	var seen []string
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		seen = append(seen, snap.WorkspaceID)
		// listeners run outside the lock, so reading back is safe
		assert.Equal(t, snap.WorkspaceID, s.Snapshot().WorkspaceID)
	})

	s.SelectWorkspace("ws-1")
	s.SelectWorkspace("ws-2")
	unsubscribe()
	s.SelectWorkspace("ws-3")

	assert.Equal(t, []string{"ws-1", "ws-2"}, seen)
}
