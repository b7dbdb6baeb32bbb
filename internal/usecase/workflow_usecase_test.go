package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

func ptr[T any](v T) *T { return &v }

func starterTemplateID(t *testing.T, s *studio, f fixture) string {
	t.Helper()
	list, err := s.workflows.ListTemplates(context.Background(), f.user.ID, f.ws.ID, domain.Page{})
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0].ID
}

func TestRunStopsAtHumanGate(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 12)
	f := s.register(t, "ada@example.com")

	detail, err := s.workflows.Run(ctx, f.user.ID, starterTemplateID(t, s, f), domain.RunTemplateInput{
		ConversationID: &f.conv.ID,
		InputJSON:      map[string]any{"mode": "studio"},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusWaitingHuman, detail.Run.Status)
	assert.Nil(t, detail.Run.EndedAt)
	assert.Equal(t, map[string]any{
		"steps_completed": 4,
		"steps_total":     4,
		"final_status":    "waiting_human",
	}, detail.Run.OutputJSON)

	require.Len(t, detail.Steps, 4)
	keys := []string{}
	for _, step := range detail.Steps {
		keys = append(keys, step.NodeKey)
	}
	assert.Equal(t, []string{"research", "script", "visuals", "human_review"}, keys)
	assert.Equal(t, "Node research executed successfully", detail.Steps[0].OutputJSON["message"])
	assert.Equal(t, entity.StatusWaitingHuman, detail.Steps[3].Status)
	assert.Equal(t, true, detail.Steps[3].OutputJSON["human_gate"])

	stored, err := s.workflows.GetRun(ctx, f.user.ID, detail.Run.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Steps, 4)
}

func TestRunBudgetFailsAndIsStored(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 3)
	f := s.register(t, "ada@example.com")

	_, err := s.workflows.Run(ctx, f.user.ID, starterTemplateID(t, s, f), domain.RunTemplateInput{})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidInput(err))
	assert.Equal(t, "Circuit breaker triggered: requested_steps=4 exceeds max_steps=3", domain.UserMessage(err))
}

func TestRunRejectsForeignConversation(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 12)
	f := s.register(t, "ada@example.com")

	ws, err := s.workspaces.Create(ctx, f.user.ID, "Second", nil)
	require.NoError(t, err)
	conv, err := s.conversations.Create(ctx, f.user.ID, ws.ID, nil)
	require.NoError(t, err)

	_, err = s.workflows.Run(ctx, f.user.ID, starterTemplateID(t, s, f), domain.RunTemplateInput{ConversationID: &conv.ID})
	require.Error(t, err)
	assert.Equal(t, "Conversation and template must belong to the same workspace", domain.UserMessage(err))
}

func TestCreateTemplate(t *testing.T) {
	ctx := context.Background()
	s := newStudio(t, 12)
	f := s.register(t, "ada@example.com")

	newGraph := func() *entity.TemplateGraph {
		return &entity.TemplateGraph{
			Template: &entity.WorkflowTemplate{WorkspaceID: f.ws.ID, Name: "Podcast"},
			Nodes: []*entity.WorkflowNode{
				{NodeKey: "publish", Type: entity.NodeTool},
				{NodeKey: "gate", Type: entity.NodeHumanGate, PositionX: ptr(200.0)},
				{NodeKey: "draft", Type: entity.NodeAgent, PositionX: ptr(100.0)},
			},
			Edges: []*entity.WorkflowEdge{
				{SourceNodeKey: "gate", TargetNodeKey: "publish"},
				{SourceNodeKey: "draft", TargetNodeKey: "gate"},
			},
		}
	}

	graph, err := s.workflows.CreateTemplate(ctx, f.user.ID, newGraph())
	require.NoError(t, err)
	assert.Equal(t, 1, graph.Template.Version)
	assert.Equal(t, f.user.ID, graph.Template.CreatedBy)

	// positioned nodes first, then unpositioned; edges by source
	assert.Equal(t, "draft", graph.Nodes[0].NodeKey)
	assert.Equal(t, "gate", graph.Nodes[1].NodeKey)
	assert.Equal(t, "publish", graph.Nodes[2].NodeKey)
	assert.Equal(t, "draft", graph.Edges[0].SourceNodeKey)

	_, err = s.workflows.CreateTemplate(ctx, f.user.ID, newGraph())
	assert.True(t, domain.IsConflict(err))

	bad := newGraph()
	bad.Nodes[0].NodeKey = "gate"
	bad.Nodes[1].Type = "loop"
	_, err = s.workflows.CreateTemplate(ctx, f.user.ID, bad)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestGetTemplateNotFound(t *testing.T) {
	s := newStudio(t, 12)
	f := s.register(t, "ada@example.com")

	_, err := s.workflows.GetTemplate(context.Background(), f.user.ID, "missing")
	assert.Equal(t, "Workflow template not found", domain.UserMessage(err))

	_, err = s.workflows.GetRun(context.Background(), f.user.ID, "missing")
	assert.Equal(t, "Workflow run not found", domain.UserMessage(err))
}

func TestExecuteWorkflow(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	graph := &entity.TemplateGraph{
		Template: &entity.WorkflowTemplate{ID: "tpl"},
		Nodes: []*entity.WorkflowNode{
			{NodeKey: "b", Type: entity.NodeMemory},
			{NodeKey: "a", Type: entity.NodeRouter},
		},
	}

	detail, err := executeWorkflow(runRequest{graph: graph, maxSteps: 5, now: clock, input: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSucceeded, detail.Run.Status)
	require.NotNil(t, detail.Run.EndedAt)
	require.Len(t, detail.Steps, 2)
	assert.Equal(t, "a", detail.Steps[0].NodeKey)
	summary := detail.Steps[0].OutputJSON["summary"].(map[string]any)
	assert.Equal(t, false, summary["agentic"])

	empty := &entity.TemplateGraph{Template: &entity.WorkflowTemplate{ID: "empty"}}
	detail, err = executeWorkflow(runRequest{graph: empty, maxSteps: 5, now: clock})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSucceeded, detail.Run.Status)
	assert.Empty(t, detail.Steps)
}
