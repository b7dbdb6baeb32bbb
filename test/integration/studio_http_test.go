//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/cli/client"
	"github.com/chazo1994/Creatory/internal/cli/loader"
	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/config"
	"github.com/chazo1994/Creatory/internal/conversation"
	"github.com/chazo1994/Creatory/internal/devserver"
	"github.com/chazo1994/Creatory/internal/session"
	"github.com/chazo1994/Creatory/internal/stream"
	"github.com/chazo1994/Creatory/internal/workflow"
)

// TestStudioEndToEnd drives the client core against a live dev server
// 运行方式：go test -tags integration ./test/integration/...
func TestStudioEndToEnd(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 18081 // 测试端口
	cfg.Stream.EventDelay = 10 * time.Millisecond
	cfg.Seed = config.SeedConfig{Email: "demo@creatory.local", Password: "creatory-demo"}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	srv, err := devserver.New(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, srv.Seed(context.Background()))

	// 启动服务器
	go func() {
		if err := srv.Hertz.Run(); err != nil {
			logger.Error("server failed", "error", err)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Hertz.Shutdown(ctx)
	}()

	baseURL := fmt.Sprintf("http://%s", cfg.GetServerAddr())
	waitReady(t, baseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	api, err := client.NewAPIClient(baseURL, "", client.WithLogger(logger))
	require.NoError(t, err)

	auth, err := api.Register(ctx, "ada@example.com", "correct-horse", "Ada")
	require.NoError(t, err)
	api.SetToken(auth.Token.AccessToken)

	store := session.NewStore(session.Snapshot{})
	store.SetAuth(*auth)

	workspaces, err := api.ListWorkspaces(ctx)
	require.NoError(t, err)
	snap := store.SetWorkspaces(workspaces)
	require.NotEmpty(t, snap.WorkspaceID)

	conversations, err := api.ListConversations(ctx, snap.WorkspaceID)
	require.NoError(t, err)
	require.NotEmpty(t, conversations)
	store.SelectConversation(conversations[0].ID)

	threads, err := api.ListThreads(ctx, conversations[0].ID)
	require.NoError(t, err)
	snap = store.ApplyThreads(threads)
	require.NotEmpty(t, snap.MainThreadID)
	require.NotEmpty(t, snap.QuickThreadID)

	coord := conversation.NewCoordinator(api, store, logger)
	consumer := stream.NewConsumer(api, logger)
	defer consumer.Close()

	t.Run("quick chat streams its run", func(t *testing.T) {
		result, err := coord.Send(ctx, types.ThreadQuick, "  Which tone fits a teaser?  ")
		require.NoError(t, err)
		assert.Len(t, result.Tasks, 2)

		consumer.Subscribe(store.Snapshot().Token, result.AgentRun.ID)
		state := waitStreamEnd(t, consumer)

		require.Len(t, state.Events, 4)
		assert.Equal(t, "run", state.Events[0].Name)
		assert.Equal(t, "start", state.Events[0].String("stage"))
		assert.Equal(t, "task", state.Events[1].Name)
		assert.Equal(t, "planning", state.Events[1].String("task_type"))
		assert.Equal(t, "final", state.Events[3].String("stage"))
		assert.Equal(t, result.AgentRun.ID, state.Events[3].String("run_id"))
	})

	t.Run("quick answer is injected into main", func(t *testing.T) {
		timeline, err := coord.Timeline(ctx, types.ThreadQuick)
		require.NoError(t, err)
		require.Len(t, timeline, 2)

		answer := timeline[1]
		require.True(t, coord.CanInject(answer))
		injection, err := coord.Inject(ctx, answer)
		require.NoError(t, err)
		assert.Equal(t, snap.MainThreadID, injection.ToThreadID)
		assert.Equal(t, conversation.ContentText(answer), injection.ContextBlock.Text)
	})

	t.Run("workflow run stops at the human gate", func(t *testing.T) {
		panel := workflow.NewPanel(api, store, logger)
		templates, err := panel.Templates(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, templates)

		run, err := panel.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, "waiting_human", run.Status)

		graph, err := panel.Graph(ctx)
		require.NoError(t, err)
		states := map[string]workflow.NodeState{}
		for _, n := range graph.Nodes {
			states[n.Key] = n.State
		}
		assert.Equal(t, workflow.StateSucceeded, states["research"])
		assert.Equal(t, workflow.StateWaiting, states["human_review"])
	})

	t.Run("pushed template file runs to its gate", func(t *testing.T) {
		file, err := loader.Parse([]byte(`
kind: WorkflowTemplate
spec:
  name: Teaser
  nodes:
    - key: draft
      type: agent
    - key: gate
      type: human_gate
    - key: publish
      type: tool
  edges:
    - source: draft
      target: gate
    - source: gate
      target: publish
`))
		require.NoError(t, err)

		detail, err := api.CreateTemplate(ctx, file.ToCreateRequest(store.Snapshot().WorkspaceID))
		require.NoError(t, err)
		require.Len(t, detail.Nodes, 3)

		panel := workflow.NewPanel(api, store, logger)
		panel.Select(detail.ID)
		run, err := panel.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, "waiting_human", run.Status)
	})

	t.Run("seed user can log in", func(t *testing.T) {
		seeded, err := api.Login(ctx, cfg.Seed.Email, cfg.Seed.Password)
		require.NoError(t, err)
		assert.Equal(t, cfg.Seed.Email, seeded.User.Email)
	})
}

func waitReady(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health/ready")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become ready", baseURL)
}

func waitStreamEnd(t *testing.T, consumer *stream.Consumer) stream.State {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		if state := consumer.State(); !state.Active && len(state.Events) > 0 {
			return state
		}
		select {
		case <-consumer.Changes():
		case <-timeout:
			t.Fatalf("run stream did not finish: %+v", consumer.State())
		}
	}
}
