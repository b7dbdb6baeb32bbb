package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

func TestUserEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	u := &entity.User{Email: "Ada@Example.com", PasswordHash: "h"}
	require.NoError(t, s.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)

	got, err := s.GetByEmail(ctx, "ADA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = s.Create(ctx, &entity.User{Email: "ada@example.com"})
	assert.True(t, domain.IsAlreadyExists(err))

	_, err = s.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, domain.IsNotFound(err))
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	ws := &entity.Workspace{Name: "Studio", Slug: "studio", OwnerID: "u-1"}
	require.NoError(t, s.CreateWorkspace(ctx, ws))

	got, err := s.GetWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	got.Name = "changed"

	again, err := s.GetWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "Studio", again.Name)
}

func TestWorkspacesListedNewestFirstForMembersOnly(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateWorkspace(ctx, &entity.Workspace{
			Name: fmt.Sprintf("ws-%d", i), Slug: fmt.Sprintf("ws-%d", i), OwnerID: "u-1",
		}))
	}
	require.NoError(t, s.CreateWorkspace(ctx, &entity.Workspace{Name: "other", Slug: "other", OwnerID: "u-2"}))

	list, err := s.ListWorkspaces(ctx, "u-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "ws-2", list[0].Name)
	assert.Equal(t, "ws-0", list[2].Name)

	page, err := s.ListWorkspaces(ctx, "u-1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ws-1", page[0].Name)

	m, err := s.GetMembership(ctx, list[0].ID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOwner, m.Role)

	_, err = s.GetMembership(ctx, list[0].ID, "u-2")
	assert.True(t, domain.IsNotFound(err))

	err = s.CreateWorkspace(ctx, &entity.Workspace{Name: "dup", Slug: "ws-0", OwnerID: "u-1"})
	assert.True(t, domain.IsAlreadyExists(err))
}

func TestConversationThreadsAndMessages(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	ws := &entity.Workspace{Name: "Studio", Slug: "studio", OwnerID: "u-1"}
	require.NoError(t, s.CreateWorkspace(ctx, ws))

	conv := &entity.Conversation{WorkspaceID: ws.ID, CreatorID: "u-1"}
	main := &entity.Thread{Kind: entity.ThreadMain, CreatedBy: "u-1"}
	quick := &entity.Thread{Kind: entity.ThreadQuick, CreatedBy: "u-1"}
	require.NoError(t, s.CreateConversation(ctx, conv, main, quick))
	assert.Equal(t, conv.ID, main.ConversationID)

	threads, err := s.ListThreads(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, entity.ThreadMain, threads[0].Kind)
	assert.Equal(t, entity.ThreadQuick, threads[1].Kind)

	first := &entity.Message{ThreadID: main.ID, Role: entity.RoleUser, ContentJSON: map[string]any{"text": "hi"}}
	second := &entity.Message{ThreadID: main.ID, Role: entity.RoleAssistant, ContentJSON: map[string]any{"text": "hello"}}
	require.NoError(t, s.AppendMessages(ctx, first, second))

	msgs, err := s.ListMessages(ctx, main.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, second.ID, msgs[1].ID)

	err = s.AppendMessages(ctx, &entity.Message{ThreadID: "missing"})
	assert.True(t, domain.IsNotFound(err))

	err = s.CreateConversation(ctx, &entity.Conversation{WorkspaceID: "missing"})
	assert.True(t, domain.IsNotFound(err))
}

func TestTemplateNameVersionIsUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	graph := func() *entity.TemplateGraph {
		return &entity.TemplateGraph{
			Template: &entity.WorkflowTemplate{WorkspaceID: "ws-1", Name: "Pipeline", Version: 1},
			Nodes:    []*entity.WorkflowNode{{NodeKey: "a", Type: entity.NodeAgent}},
		}
	}

	g := graph()
	require.NoError(t, s.CreateTemplate(ctx, g))
	assert.Equal(t, g.Template.ID, g.Nodes[0].TemplateID)

	err := s.CreateTemplate(ctx, graph())
	assert.True(t, domain.IsConflict(err))

	exists, err := s.TemplateExists(ctx, "ws-1", "Pipeline", 1)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := s.GetTemplate(ctx, g.Template.ID)
	require.NoError(t, err)
	got.Nodes[0].NodeKey = "mutated"

	again, err := s.GetTemplate(ctx, g.Template.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Nodes[0].NodeKey)
}

func TestRunsAndTasks(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return fixed }))

	run := &entity.AgentRun{Status: entity.StatusSucceeded}
	tasks := []*entity.Task{{TaskType: "planning"}, {TaskType: "draft_content"}}
	require.NoError(t, s.SaveRun(ctx, run, tasks))
	assert.Equal(t, fixed, run.CreatedAt)

	got, err := s.ListTasks(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "planning", got[0].TaskType)
	assert.Equal(t, run.ID, got[1].AgentRunID)

	_, err = s.GetRun(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	ws := &entity.Workspace{Name: "Studio", Slug: "studio", OwnerID: "u-1"}
	require.NoError(t, s.CreateWorkspace(ctx, ws))
	th := &entity.Thread{Kind: entity.ThreadMain}
	require.NoError(t, s.CreateConversation(ctx, &entity.Conversation{WorkspaceID: ws.ID}, th))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AppendMessages(ctx, &entity.Message{ThreadID: th.ID, Role: entity.RoleUser}))
		}()
	}
	wg.Wait()

	msgs, err := s.ListMessages(ctx, th.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 20)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4}
	assert.Equal(t, []int{1, 2, 3, 4}, paginate(items, 0, 0))
	assert.Equal(t, []int{2, 3}, paginate(items, 1, 2))
	assert.Equal(t, []int{}, paginate(items, 10, 2))
	assert.Equal(t, []int{1}, paginate(items, -1, 1))
}
