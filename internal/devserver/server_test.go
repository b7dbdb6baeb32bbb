package devserver

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devconfig "github.com/chazo1994/Creatory/internal/config"
)

type testServer struct {
	t   *testing.T
	srv *Server
}

func newTestServer(t *testing.T, mutate ...func(*devconfig.Config)) *testServer {
	t.Helper()
	cfg := devconfig.Default()
	cfg.Stream.EventDelay = 0
	for _, m := range mutate {
		m(cfg)
	}
	srv, err := New(cfg, nil, WithStandardTransport())
	require.NoError(t, err)
	return &testServer{t: t, srv: srv}
}

// call performs a request and decodes a JSON response into out when given
func (s *testServer) call(method, path, token string, body any, out any) int {
	s.t.Helper()

	var reqBody *ut.Body
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(s.t, err)
		reqBody = &ut.Body{Body: bytes.NewReader(raw), Len: len(raw)}
	}
	headers := []ut.Header{{Key: "Content-Type", Value: "application/json"}}
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}

	resp := ut.PerformRequest(s.srv.Hertz.Engine, method, path, reqBody, headers...).Result()
	if out != nil {
		require.NoError(s.t, sonic.Unmarshal(resp.Body(), out), string(resp.Body()))
	}
	return resp.StatusCode()
}

type authBody struct {
	Token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	} `json:"token"`
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type detailBody struct {
	Detail any `json:"detail"`
}

type idBody struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (s *testServer) register(email string) authBody {
	s.t.Helper()
	var auth authBody
	status := s.call(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    email,
		"password": "correct-horse",
	}, &auth)
	require.Equal(s.t, http.StatusCreated, status)
	require.NotEmpty(s.t, auth.Token.AccessToken)
	return auth
}

// studio is the bootstrap a fresh account gets
type studio struct {
	token          string
	workspaceID    string
	conversationID string
	mainID         string
	quickID        string
}

func (s *testServer) studio(email string) studio {
	s.t.Helper()
	auth := s.register(email)
	st := studio{token: auth.Token.AccessToken}

	var workspaces []idBody
	require.Equal(s.t, http.StatusOK, s.call(http.MethodGet, "/api/v1/workspaces", st.token, nil, &workspaces))
	require.Len(s.t, workspaces, 1)
	st.workspaceID = workspaces[0].ID

	var conversations []idBody
	require.Equal(s.t, http.StatusOK, s.call(http.MethodGet, "/api/v1/conversations?workspace_id="+st.workspaceID, st.token, nil, &conversations))
	require.Len(s.t, conversations, 1)
	st.conversationID = conversations[0].ID

	var threads []idBody
	require.Equal(s.t, http.StatusOK, s.call(http.MethodGet, "/api/v1/conversations/"+st.conversationID+"/threads", st.token, nil, &threads))
	require.Len(s.t, threads, 2)
	for _, th := range threads {
		switch th.Kind {
		case "main":
			st.mainID = th.ID
		case "quick":
			st.quickID = th.ID
		}
	}
	require.NotEmpty(s.t, st.mainID)
	require.NotEmpty(s.t, st.quickID)
	return st
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	auth := s.register("Ada@Example.com")
	assert.Equal(t, "bearer", auth.Token.TokenType)
	assert.Equal(t, int64(86400), auth.Token.ExpiresIn)
	assert.Equal(t, "ada@example.com", auth.User.Email)

	var detail detailBody
	assert.Equal(t, http.StatusConflict, s.call(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email": "ada@example.com", "password": "correct-horse",
	}, &detail))
	assert.Equal(t, "Email already registered", detail.Detail)

	var login authBody
	require.Equal(t, http.StatusOK, s.call(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email": "ada@example.com", "password": "correct-horse",
	}, &login))
	assert.Equal(t, auth.User.ID, login.User.ID)

	var me idBody
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/v1/auth/me", login.Token.AccessToken, nil, &me))
	assert.Equal(t, auth.User.ID, me.ID)
}

func TestAuthFailures(t *testing.T) {
	s := newTestServer(t)
	s.register("ada@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		detail string
	}{
		{"wrong password", http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "ada@example.com", "password": "wrong-horse"}, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown email", http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "bob@example.com", "password": "correct-horse"}, http.StatusUnauthorized, "Invalid credentials"},
		{"no token", http.MethodGet, "/api/v1/auth/me", "", nil, http.StatusUnauthorized, "Not authenticated"},
		{"garbage token", http.MethodGet, "/api/v1/workspaces", "not-a-jwt", nil, http.StatusUnauthorized, "Invalid authentication credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var detail detailBody
			assert.Equal(t, tt.status, s.call(tt.method, tt.path, tt.token, tt.body, &detail))
			assert.Equal(t, tt.detail, detail.Detail)
		})
	}
}

func TestLoginMissingFieldsIsValidationError(t *testing.T) {
	s := newTestServer(t)

	var detail detailBody
	require.Equal(t, http.StatusUnprocessableEntity, s.call(http.MethodPost, "/api/v1/auth/login", "", map[string]any{}, &detail))
	items, ok := detail.Detail.([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestTokenForForgottenUser(t *testing.T) {
	// same secret, fresh store: the token verifies but its user is gone
	first := newTestServer(t)
	auth := first.register("ada@example.com")

	second := newTestServer(t)
	var detail detailBody
	assert.Equal(t, http.StatusUnauthorized, second.call(http.MethodGet, "/api/v1/auth/me", auth.Token.AccessToken, nil, &detail))
	assert.Equal(t, "User not found", detail.Detail)
}

func TestChatAndInject(t *testing.T) {
	s := newTestServer(t)
	st := s.studio("ada@example.com")

	var chat struct {
		UserMessage      idBody   `json:"user_message"`
		AssistantMessage idBody   `json:"assistant_message"`
		AgentRun         idBody   `json:"agent_run"`
		Tasks            []idBody `json:"tasks"`
	}
	path := "/api/v1/orchestration/conversations/" + st.conversationID + "/threads/" + st.quickID + "/chat"
	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, path, st.token, map[string]any{"prompt": "Which tone fits?"}, &chat))
	assert.Equal(t, "succeeded", chat.AgentRun.Status)
	assert.Len(t, chat.Tasks, 2)

	var run idBody
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/v1/orchestration/runs/"+chat.AgentRun.ID, st.token, nil, &run))
	assert.Equal(t, chat.AgentRun.ID, run.ID)

	var tasks []idBody
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/v1/orchestration/runs/"+chat.AgentRun.ID+"/tasks", st.token, nil, &tasks))
	assert.Len(t, tasks, 2)

	var messages []idBody
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/v1/conversations/"+st.conversationID+"/threads/"+st.quickID+"/messages", st.token, nil, &messages))
	require.Len(t, messages, 2)

	inject := map[string]any{
		"from_thread_id":  st.quickID,
		"from_message_id": chat.AssistantMessage.ID,
		"to_thread_id":    st.mainID,
		"context_block": map[string]any{
			"reference_id": chat.AssistantMessage.ID,
			"text":         "Warm and direct",
			"source":       "quick_thread",
		},
	}
	var injection struct {
		ID           string `json:"id"`
		ToThreadID   string `json:"to_thread_id"`
		ContextBlock struct {
			Text string `json:"text"`
		} `json:"context_block"`
	}
	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, "/api/v1/conversations/"+st.conversationID+"/inject", st.token, inject, &injection))
	assert.Equal(t, st.mainID, injection.ToThreadID)
	assert.Equal(t, "Warm and direct", injection.ContextBlock.Text)

	// the source message must live in the source thread
	inject["from_thread_id"] = st.mainID
	var detail detailBody
	assert.Equal(t, http.StatusNotFound, s.call(http.MethodPost, "/api/v1/conversations/"+st.conversationID+"/inject", st.token, inject, &detail))
	assert.Equal(t, "Source message not found", detail.Detail)
}

func TestOtherUsersCannotSeeStudio(t *testing.T) {
	s := newTestServer(t)
	ada := s.studio("ada@example.com")
	bob := s.register("bob@example.com").Token.AccessToken

	var detail detailBody
	assert.Equal(t, http.StatusNotFound, s.call(http.MethodGet, "/api/v1/conversations/"+ada.conversationID+"/threads", bob, nil, &detail))
	assert.Equal(t, http.StatusNotFound, s.call(http.MethodGet, "/api/v1/orchestration/runs/missing", bob, nil, &detail))
	assert.Equal(t, "Run not found", detail.Detail)
	assert.Equal(t, http.StatusNotFound, s.call(http.MethodGet, "/api/v1/orchestration/runs/missing/stream", bob, nil, &detail))
}

func TestWorkflowRunStopsAtHumanGate(t *testing.T) {
	s := newTestServer(t)
	st := s.studio("ada@example.com")

	var templates []idBody
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/v1/workflows/templates?workspace_id="+st.workspaceID, st.token, nil, &templates))
	require.Len(t, templates, 1)
	assert.Equal(t, "Short Video Pipeline", templates[0].Name)

	var run struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Steps  []struct {
			NodeKey string `json:"node_key"`
			Status  string `json:"status"`
		} `json:"steps"`
	}
	path := "/api/v1/workflows/templates/" + templates[0].ID + "/run"
	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, path, st.token, map[string]any{
		"conversation_id": st.conversationID,
		"input_json":      map[string]any{"mode": "studio"},
	}, &run))
	assert.Equal(t, "waiting_human", run.Status)
	require.Len(t, run.Steps, 4)
	assert.Equal(t, "research", run.Steps[0].NodeKey)
	assert.Equal(t, "human_review", run.Steps[3].NodeKey)
	assert.Equal(t, "waiting_human", run.Steps[3].Status)

	var steps []idBody
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/v1/workflows/runs/"+run.ID+"/steps", st.token, nil, &steps))
	assert.Len(t, steps, 4)
}

func TestWorkflowCircuitBreaker(t *testing.T) {
	s := newTestServer(t, func(cfg *devconfig.Config) { cfg.Workflow.MaxSteps = 2 })
	st := s.studio("ada@example.com")

	var templates []idBody
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/v1/workflows/templates?workspace_id="+st.workspaceID, st.token, nil, &templates))
	require.NotEmpty(t, templates)

	var detail detailBody
	assert.Equal(t, http.StatusBadRequest, s.call(http.MethodPost, "/api/v1/workflows/templates/"+templates[0].ID+"/run", st.token, nil, &detail))
	assert.Equal(t, "Circuit breaker triggered: requested_steps=4 exceeds max_steps=2", detail.Detail)
}

func TestCreateTemplateConflict(t *testing.T) {
	s := newTestServer(t)
	st := s.studio("ada@example.com")

	body := map[string]any{
		"workspace_id": st.workspaceID,
		"name":         "Teaser",
		"nodes": []map[string]any{
			{"node_key": "draft", "type": "agent"},
			{"node_key": "approve", "type": "human_gate"},
		},
		"edges": []map[string]any{{"source_node_key": "draft", "target_node_key": "approve"}},
	}
	var created struct {
		ID      string   `json:"id"`
		Version int      `json:"version"`
		Nodes   []idBody `json:"nodes"`
	}
	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, "/api/v1/workflows/templates", st.token, body, &created))
	assert.Equal(t, 1, created.Version)
	assert.Len(t, created.Nodes, 2)

	var detail detailBody
	assert.Equal(t, http.StatusConflict, s.call(http.MethodPost, "/api/v1/workflows/templates", st.token, body, &detail))
	assert.Equal(t, "Template name/version already exists in this workspace", detail.Detail)
}

func TestListRequiresWorkspaceID(t *testing.T) {
	s := newTestServer(t)
	st := s.studio("ada@example.com")

	var detail detailBody
	assert.Equal(t, http.StatusUnprocessableEntity, s.call(http.MethodGet, "/api/v1/conversations", st.token, nil, &detail))
	assert.Equal(t, http.StatusUnprocessableEntity, s.call(http.MethodGet, "/api/v1/workspaces?limit=abc", st.token, nil, &detail))
}

func TestSeedAndReadiness(t *testing.T) {
	s := newTestServer(t, func(cfg *devconfig.Config) {
		cfg.Seed = devconfig.SeedConfig{Email: "demo@creatory.local", Password: "creatory-demo", DisplayName: "Demo"}
	})

	assert.Equal(t, http.StatusServiceUnavailable, s.call(http.MethodGet, "/health/ready", "", nil, nil))

	require.NoError(t, s.srv.Seed(context.Background()))
	// seeding twice keeps the first account
	require.NoError(t, s.srv.Seed(context.Background()))
	assert.Equal(t, http.StatusOK, s.call(http.MethodGet, "/health/ready", "", nil, nil))

	var login authBody
	assert.Equal(t, http.StatusOK, s.call(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email": "demo@creatory.local", "password": "creatory-demo",
	}, &login))
}
