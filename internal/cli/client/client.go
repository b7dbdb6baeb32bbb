package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"github.com/chazo1994/Creatory/internal/cli/types"
)

const headerRequestID = "X-Request-ID"

// APIClient wraps Hertz Client for HTTP communication with the orchestration API
type APIClient struct {
	client *client.Client
	// stream carries the long-lived run streams; see OpenRunStream
	stream *http.Client
	server string
	logger *slog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures an APIClient
type Option func(*APIClient)

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *APIClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStreamClient replaces the HTTP client used for run streams
func WithStreamClient(hc *http.Client) Option {
	return func(c *APIClient) {
		if hc != nil {
			c.stream = hc
		}
	}
}

// NewAPIClient creates a new API client
func NewAPIClient(server, token string, opts ...Option) (*APIClient, error) {
	// Normalize server URL
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// Use standard library dialer, same transport as the stream client
	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		// cached reads run detached from their caller, so every request needs its own bound
		client.WithClientReadTimeout(2*time.Minute),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	api := &APIClient{
		client: c,
		// no overall timeout: a run stream stays open until the server closes it or ctx is cancelled
		stream: &http.Client{},
		server: normalizedServer,
		logger: slog.Default(),
		token:  token,
	}
	for _, opt := range opts {
		opt(api)
	}
	return api, nil
}

// normalizeServerURL normalizes server URL to ensure it has a scheme and no trailing slash
func normalizeServerURL(server string) (string, error) {
	// Add scheme if missing
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	// Parse and validate
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}

	// Return scheme://host (no path, no trailing slash)
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Server returns the normalized server address
func (c *APIClient) Server() string {
	return c.server
}

// SetToken replaces the bearer token used by subsequent requests
func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token
func (c *APIClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends one JSON request and decodes a 2xx response body into out.
// A nil out discards the body. Non-2xx responses become *APIError.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	req := &protocol.Request{}
	resp := &protocol.Response{}

	requestID := uuid.NewString()
	req.SetMethod(method)
	req.SetRequestURI(c.server + path)
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		bodyBytes, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(bodyBytes)
	}

	logger := c.logger.With("method", method, "path", path, "request_id", requestID)
	start := time.Now()

	// hertz Do does not observe ctx cancellation, so the caller waits on whichever comes first
	errCh := make(chan error, 1)
	go func() { errCh <- c.client.Do(ctx, req, resp) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			logger.Debug("request failed", "error", err)
			return fmt.Errorf("request failed: %w", err)
		}
	}

	statusCode := resp.StatusCode()
	logger.Debug("request completed", "status", statusCode, "latency", time.Since(start))

	if statusCode < consts.StatusOK || statusCode >= consts.StatusMultipleChoices {
		return newAPIError(statusCode, resp.Body())
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// Login performs user login
func (c *APIClient) Login(ctx context.Context, email, password string) (*types.AuthResponse, error) {
	var auth types.AuthResponse
	reqBody := types.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, consts.MethodPost, endpointLogin, reqBody, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Register creates an account; an empty displayName is sent as null
func (c *APIClient) Register(ctx context.Context, email, password, displayName string) (*types.AuthResponse, error) {
	reqBody := types.RegisterRequest{Email: email, Password: password}
	if displayName != "" {
		reqBody.DisplayName = &displayName
	}

	var auth types.AuthResponse
	if err := c.do(ctx, consts.MethodPost, endpointRegister, reqBody, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Me returns the authenticated user
func (c *APIClient) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.do(ctx, consts.MethodGet, endpointMe, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListWorkspaces lists the workspaces the user is a member of
func (c *APIClient) ListWorkspaces(ctx context.Context) ([]types.Workspace, error) {
	var workspaces []types.Workspace
	if err := c.do(ctx, consts.MethodGet, endpointWorkspaces, nil, &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// CreateWorkspace creates a workspace owned by the user
func (c *APIClient) CreateWorkspace(ctx context.Context, name string) (*types.Workspace, error) {
	var ws types.Workspace
	reqBody := types.CreateWorkspaceRequest{Name: name}
	if err := c.do(ctx, consts.MethodPost, endpointWorkspaces, reqBody, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// ListConversations lists the conversations of a workspace
func (c *APIClient) ListConversations(ctx context.Context, workspaceID string) ([]types.Conversation, error) {
	path := endpointConversations + "?workspace_id=" + url.QueryEscape(workspaceID)

	var conversations []types.Conversation
	if err := c.do(ctx, consts.MethodGet, path, nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// CreateConversation creates a conversation; the backend adds its main and quick threads
func (c *APIClient) CreateConversation(ctx context.Context, workspaceID, title string) (*types.Conversation, error) {
	var conv types.Conversation
	reqBody := types.CreateConversationRequest{WorkspaceID: workspaceID, Title: title}
	if err := c.do(ctx, consts.MethodPost, endpointConversations, reqBody, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListThreads lists the threads of a conversation
func (c *APIClient) ListThreads(ctx context.Context, conversationID string) ([]types.Thread, error) {
	path := fmt.Sprintf(endpointConversationThreads, url.PathEscape(conversationID))

	var threads []types.Thread
	if err := c.do(ctx, consts.MethodGet, path, nil, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// ListMessages lists a thread's messages in server order
func (c *APIClient) ListMessages(ctx context.Context, conversationID, threadID string) ([]types.Message, error) {
	path := fmt.Sprintf(endpointThreadMessages, url.PathEscape(conversationID), url.PathEscape(threadID))

	var messages []types.Message
	if err := c.do(ctx, consts.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// RunChat submits a chat turn on one thread
func (c *APIClient) RunChat(ctx context.Context, conversationID, threadID string, req types.ChatRequest) (*types.ChatResult, error) {
	path := fmt.Sprintf(endpointChat, url.PathEscape(conversationID), url.PathEscape(threadID))
	if req.MetadataJSON == nil {
		req.MetadataJSON = map[string]any{}
	}

	var result types.ChatResult
	if err := c.do(ctx, consts.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRun returns the current state of an agent run
func (c *APIClient) GetRun(ctx context.Context, runID string) (*types.AgentRun, error) {
	path := fmt.Sprintf(endpointRun, url.PathEscape(runID))

	var run types.AgentRun
	if err := c.do(ctx, consts.MethodGet, path, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// InjectContext copies a context block into the destination thread
func (c *APIClient) InjectContext(ctx context.Context, conversationID string, req types.InjectRequest) (*types.ContextInjection, error) {
	path := fmt.Sprintf(endpointInject, url.PathEscape(conversationID))

	var injection types.ContextInjection
	if err := c.do(ctx, consts.MethodPost, path, req, &injection); err != nil {
		return nil, err
	}
	return &injection, nil
}

// ListTemplates lists the workflow templates of a workspace
func (c *APIClient) ListTemplates(ctx context.Context, workspaceID string) ([]types.WorkflowTemplate, error) {
	path := endpointTemplates + "?workspace_id=" + url.QueryEscape(workspaceID)

	var templates []types.WorkflowTemplate
	if err := c.do(ctx, consts.MethodGet, path, nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// GetTemplate returns a template with its nodes and edges
func (c *APIClient) GetTemplate(ctx context.Context, templateID string) (*types.WorkflowTemplateDetail, error) {
	path := fmt.Sprintf(endpointTemplate, url.PathEscape(templateID))

	var detail types.WorkflowTemplateDetail
	if err := c.do(ctx, consts.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateTemplate stores a new template graph in a workspace
func (c *APIClient) CreateTemplate(ctx context.Context, req types.CreateTemplateRequest) (*types.WorkflowTemplateDetail, error) {
	var detail types.WorkflowTemplateDetail
	if err := c.do(ctx, consts.MethodPost, endpointTemplates, req, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// RunTemplate runs a template and returns the run with all of its steps
func (c *APIClient) RunTemplate(ctx context.Context, templateID string, req types.RunTemplateRequest) (*types.WorkflowRun, error) {
	path := fmt.Sprintf(endpointTemplateRun, url.PathEscape(templateID))

	var run types.WorkflowRun
	if err := c.do(ctx, consts.MethodPost, path, req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// OpenRunStream opens the event stream of a run. The returned body must be
// closed by the caller; cancelling ctx aborts both the dial and any blocked read.
//
// Streams go through net/http rather than hertz: closing a hertz streamed body
// drains the remainder first, which would hold a cancelled subscription open
// until the server ends the run.
func (c *APIClient) OpenRunStream(ctx context.Context, token, runID string) (io.ReadCloser, error) {
	path := fmt.Sprintf(endpointRunStream, url.PathEscape(runID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.server+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set(headerRequestID, uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream request failed: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, newAPIError(resp.StatusCode, body)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, fmt.Errorf("stream for run %s has no body", runID)
	}

	c.logger.Debug("run stream opened", "run_id", runID, "status", resp.StatusCode)
	return resp.Body, nil
}
