package mocks

import (
	"context"
	"sync"

	"github.com/chazo1994/Creatory/internal/cli/types"
)

// MockStudioAPI is a mock of the orchestration API used by the conversation
// coordinator and the workflow panel. Calls are counted per method.
type MockStudioAPI struct {
	ListMessagesFunc  func(ctx context.Context, conversationID, threadID string) ([]types.Message, error)
	RunChatFunc       func(ctx context.Context, conversationID, threadID string, req types.ChatRequest) (*types.ChatResult, error)
	InjectContextFunc func(ctx context.Context, conversationID string, req types.InjectRequest) (*types.ContextInjection, error)
	ListTemplatesFunc func(ctx context.Context, workspaceID string) ([]types.WorkflowTemplate, error)
	GetTemplateFunc   func(ctx context.Context, templateID string) (*types.WorkflowTemplateDetail, error)
	RunTemplateFunc   func(ctx context.Context, templateID string, req types.RunTemplateRequest) (*types.WorkflowRun, error)

	mu      sync.Mutex
	calls   map[string]int
	injects []types.InjectRequest
}

func (m *MockStudioAPI) count(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// Calls returns how often method was called; ListMessages is counted per thread
// as "ListMessages:<threadID>"
func (m *MockStudioAPI) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Injects returns the inject requests received so far
func (m *MockStudioAPI) Injects() []types.InjectRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.InjectRequest(nil), m.injects...)
}

// ListMessages mocks the ListMessages method
func (m *MockStudioAPI) ListMessages(ctx context.Context, conversationID, threadID string) ([]types.Message, error) {
	m.count("ListMessages")
	m.count("ListMessages:" + threadID)
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, conversationID, threadID)
	}
	return []types.Message{}, nil
}

// RunChat mocks the RunChat method
func (m *MockStudioAPI) RunChat(ctx context.Context, conversationID, threadID string, req types.ChatRequest) (*types.ChatResult, error) {
	m.count("RunChat")
	if m.RunChatFunc != nil {
		return m.RunChatFunc(ctx, conversationID, threadID, req)
	}
	return &types.ChatResult{
		UserMessage:      types.Message{ThreadID: threadID, Role: types.RoleUser, ContentJSON: map[string]any{"text": req.Prompt}},
		AssistantMessage: types.Message{ThreadID: threadID, Role: types.RoleAssistant, ContentJSON: map[string]any{"text": "ok"}},
		AgentRun:         types.AgentRun{ID: "run-" + threadID, Status: "completed"},
	}, nil
}

// InjectContext mocks the InjectContext method
func (m *MockStudioAPI) InjectContext(ctx context.Context, conversationID string, req types.InjectRequest) (*types.ContextInjection, error) {
	m.count("InjectContext")
	m.mu.Lock()
	m.injects = append(m.injects, req)
	m.mu.Unlock()
	if m.InjectContextFunc != nil {
		return m.InjectContextFunc(ctx, conversationID, req)
	}
	return &types.ContextInjection{
		ConversationID: conversationID,
		FromThreadID:   req.FromThreadID,
		FromMessageID:  req.FromMessageID,
		ToThreadID:     req.ToThreadID,
		ContextBlock:   req.ContextBlock,
	}, nil
}

// ListTemplates mocks the ListTemplates method
func (m *MockStudioAPI) ListTemplates(ctx context.Context, workspaceID string) ([]types.WorkflowTemplate, error) {
	m.count("ListTemplates")
	if m.ListTemplatesFunc != nil {
		return m.ListTemplatesFunc(ctx, workspaceID)
	}
	return []types.WorkflowTemplate{}, nil
}

// GetTemplate mocks the GetTemplate method
func (m *MockStudioAPI) GetTemplate(ctx context.Context, templateID string) (*types.WorkflowTemplateDetail, error) {
	m.count("GetTemplate")
	if m.GetTemplateFunc != nil {
		return m.GetTemplateFunc(ctx, templateID)
	}
	return &types.WorkflowTemplateDetail{WorkflowTemplate: types.WorkflowTemplate{ID: templateID}}, nil
}

// RunTemplate mocks the RunTemplate method
func (m *MockStudioAPI) RunTemplate(ctx context.Context, templateID string, req types.RunTemplateRequest) (*types.WorkflowRun, error) {
	m.count("RunTemplate")
	if m.RunTemplateFunc != nil {
		return m.RunTemplateFunc(ctx, templateID, req)
	}
	return &types.WorkflowRun{ID: "wr-" + templateID, Status: "completed"}, nil
}
