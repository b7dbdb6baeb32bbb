package ui

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/stream"
	"github.com/chazo1994/Creatory/internal/workflow"
)

func init() {
	color.NoColor = true
}

func TestRenderGraphFollowsDependencyOrder(t *testing.T) {
	detail := &types.WorkflowTemplateDetail{
		WorkflowTemplate: types.WorkflowTemplate{ID: "tpl-1", Name: "Launch", Version: 2},
		Nodes: []types.WorkflowNode{
			{NodeKey: "publish", Type: types.NodeTool},
			{NodeKey: "draft", Type: types.NodeAgent},
			{NodeKey: "gate", Type: types.NodeHumanGate},
		},
		Edges: []types.WorkflowEdge{
			{SourceNodeKey: "draft", TargetNodeKey: "gate"},
			{SourceNodeKey: "gate", TargetNodeKey: "publish"},
		},
	}
	run := &types.WorkflowRun{
		ID:     "wr-1",
		Status: "waiting_human",
		Steps: []types.WorkflowStep{
			{NodeKey: "draft", Status: "completed", OutputJSON: map[string]any{"message": "Node draft executed successfully"}},
			{NodeKey: "gate", Status: "waiting_human"},
		},
	}

	out := RenderGraph(workflow.Build(detail, run))

	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "run wr-1")
	assert.Contains(t, out, gateMarker+"gate")
	assert.Contains(t, out, "Node draft executed successfully")
	assert.Contains(t, out, "not reached")

	draft := strings.Index(out, "draft")
	gate := strings.Index(out, gateMarker+"gate")
	publish := strings.LastIndex(out, "publish")
	assert.Less(t, draft, gate)
	assert.Less(t, gate, publish)
}

func TestRenderGraphWithoutRunHasNoState(t *testing.T) {
	detail := &types.WorkflowTemplateDetail{
		Nodes: []types.WorkflowNode{{NodeKey: "gate", Type: types.NodeHumanGate}},
	}

	out := RenderGraph(workflow.Build(detail, nil))
	assert.Contains(t, out, gateMarker+"gate")
	assert.NotContains(t, out, "State:")

	assert.Contains(t, RenderGraph(workflow.Graph{}), "no nodes")
}

func TestRenderEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   stream.Event
		want []string
	}{
		{
			name: "run",
			ev:   stream.Event{Name: "run", Data: map[string]any{"stage": "start", "status": "running"}},
			want: []string{"run", "start", "running"},
		},
		{
			name: "task",
			ev:   stream.Event{Name: "task", Data: map[string]any{"task_type": "research", "status": "queued", "task_id": "t-1"}},
			want: []string{"task", "research", "queued", "t-1"},
		},
		{
			name: "other",
			ev:   stream.Event{Name: "message", Data: map[string]any{"b": 2, "a": "x"}},
			want: []string{"message", "a=x b=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderEvent(tt.ev)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestRenderTimeline(t *testing.T) {
	msgs := []types.Message{
		{ID: "m1", Role: types.RoleUser, ContentJSON: map[string]any{"text": "hello"}},
		{ID: "m2", Role: types.RoleAssistant, ContentJSON: map[string]any{"blocks": []any{"a"}}},
	}

	out := RenderTimeline(msgs, 1)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, `{"blocks":["a"]}`)
	assert.Contains(t, out, "▸")
	assert.Less(t, strings.Index(out, "You"), strings.Index(out, "Assistant"))

	assert.Contains(t, RenderTimeline(nil, -1), "No messages")
}

func TestRenderStreamStatus(t *testing.T) {
	assert.Contains(t, RenderStreamStatus(stream.State{}), "no run")

	out := RenderStreamStatus(stream.State{
		RunID:  "run-123456789",
		Active: true,
		Events: []stream.Event{{Name: "run", Data: map[string]any{"stage": "final", "status": "completed"}}},
	})
	assert.Contains(t, out, "run run-1234")
	assert.Contains(t, out, "live")
	assert.Contains(t, out, "1 events")
	assert.Contains(t, out, "final")
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintBannerBoxesTitle(t *testing.T) {
	out := captureStdout(t, func() { PrintBanner("Welcome to Creatory Studio") })
	assert.Contains(t, out, "Welcome to Creatory Studio")
	assert.Contains(t, out, "╭")
}
