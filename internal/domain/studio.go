package domain

import (
	"context"

	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// ============ Repository interfaces ============

// WorkspaceRepository stores workspaces, memberships and agents
type WorkspaceRepository interface {
	// CreateWorkspace stores ws and makes owner a member with role owner
	CreateWorkspace(ctx context.Context, ws *entity.Workspace) error
	GetWorkspace(ctx context.Context, workspaceID string) (*entity.Workspace, error)
	// ListWorkspaces returns the user's workspaces, newest first
	ListWorkspaces(ctx context.Context, userID string, offset, limit int) ([]*entity.Workspace, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetMembership(ctx context.Context, workspaceID, userID string) (*entity.Membership, error)

	CreateAgent(ctx context.Context, agent *entity.Agent) error
	GetAgentBySlug(ctx context.Context, workspaceID, slug string) (*entity.Agent, error)
}

// ConversationRepository stores conversations, threads, messages and injections
type ConversationRepository interface {
	// CreateConversation stores conv together with its initial threads
	CreateConversation(ctx context.Context, conv *entity.Conversation, threads ...*entity.Thread) error
	GetConversation(ctx context.Context, conversationID string) (*entity.Conversation, error)
	// ListConversations returns a workspace's conversations, newest first
	ListConversations(ctx context.Context, workspaceID string, offset, limit int) ([]*entity.Conversation, error)

	CreateThread(ctx context.Context, thread *entity.Thread) error
	GetThread(ctx context.Context, threadID string) (*entity.Thread, error)
	// ListThreads returns a conversation's threads, oldest first
	ListThreads(ctx context.Context, conversationID string) ([]*entity.Thread, error)

	// AppendMessages stores msgs in order
	AppendMessages(ctx context.Context, msgs ...*entity.Message) error
	GetMessage(ctx context.Context, messageID string) (*entity.Message, error)
	// ListMessages returns a thread's messages in creation order
	ListMessages(ctx context.Context, threadID string, offset, limit int) ([]*entity.Message, error)

	CreateInjection(ctx context.Context, injection *entity.ContextInjection) error
}

// RunRepository stores agent runs and their tasks
type RunRepository interface {
	// SaveRun stores run and replaces its tasks
	SaveRun(ctx context.Context, run *entity.AgentRun, tasks []*entity.Task) error
	GetRun(ctx context.Context, runID string) (*entity.AgentRun, error)
	// ListTasks returns a run's tasks in creation order
	ListTasks(ctx context.Context, runID string) ([]*entity.Task, error)
}

// WorkflowRepository stores templates and workflow runs
type WorkflowRepository interface {
	// CreateTemplate fails with a conflict when the workspace already has
	// the same name and version
	CreateTemplate(ctx context.Context, graph *entity.TemplateGraph) error
	GetTemplate(ctx context.Context, templateID string) (*entity.TemplateGraph, error)
	// ListTemplates returns a workspace's templates, newest first
	ListTemplates(ctx context.Context, workspaceID string, offset, limit int) ([]*entity.WorkflowTemplate, error)
	TemplateExists(ctx context.Context, workspaceID, name string, version int) (bool, error)

	// SaveWorkflowRun stores run and replaces its steps
	SaveWorkflowRun(ctx context.Context, detail *entity.RunDetail) error
	GetWorkflowRun(ctx context.Context, runID string) (*entity.RunDetail, error)
}

// ============ Usecase 层内部使用的 DTO ============

// Page bounds a list query
type Page struct {
	Offset int
	Limit  int
}

// ChatInput is one prompt sent to a thread
type ChatInput struct {
	Prompt             string
	AssistantAgentSlug *string
	MetadataJSON       map[string]any
}

// TurnResult is everything one director turn produced
type TurnResult struct {
	UserMessage      *entity.Message
	AssistantMessage *entity.Message
	Run              *entity.AgentRun
	Tasks            []*entity.Task
}

// InjectInput copies a message of one thread into another
type InjectInput struct {
	FromThreadID  string
	FromMessageID string
	ToThreadID    string
	ToMessageID   *string
	ContextBlock  entity.ContextBlock
}

// MessageInput appends a message without running the director
type MessageInput struct {
	Role        entity.MessageRole
	ContentJSON map[string]any
	TokenCount  *int
}

// RunTemplateInput starts a workflow run
type RunTemplateInput struct {
	ConversationID *string
	InputJSON      map[string]any
}

// RunStream is a snapshot of an agent run and its tasks to be streamed
type RunStream struct {
	Run   *entity.AgentRun
	Tasks []*entity.Task
}

// ============ Usecase interfaces ============

// WorkspaceUsecase manages the workspaces a user belongs to
type WorkspaceUsecase interface {
	// Create stores a workspace with a unique slug and bootstraps its
	// director agent and starter template
	Create(ctx context.Context, userID, name string, slug *string) (*entity.Workspace, error)
	List(ctx context.Context, userID string, page Page) ([]*entity.Workspace, error)
	Get(ctx context.Context, userID, workspaceID string) (*entity.Workspace, error)
}

// ConversationUsecase manages conversations, threads and injections
type ConversationUsecase interface {
	// Create stores a conversation with one main and one quick thread
	Create(ctx context.Context, userID, workspaceID string, title *string) (*entity.Conversation, error)
	List(ctx context.Context, userID, workspaceID string, page Page) ([]*entity.Conversation, error)
	CreateThread(ctx context.Context, userID, conversationID string, kind entity.ThreadKind, parentThreadID *string) (*entity.Thread, error)
	ListThreads(ctx context.Context, userID, conversationID string) ([]*entity.Thread, error)
	CreateMessage(ctx context.Context, userID, conversationID, threadID string, in MessageInput) (*entity.Message, error)
	ListMessages(ctx context.Context, userID, conversationID, threadID string, page Page) ([]*entity.Message, error)
	Inject(ctx context.Context, userID, conversationID string, in InjectInput) (*entity.ContextInjection, error)
}

// OrchestrationUsecase runs director turns and exposes their runs
type OrchestrationUsecase interface {
	Chat(ctx context.Context, userID, conversationID, threadID string, in ChatInput) (*TurnResult, error)
	GetRun(ctx context.Context, userID, runID string) (*entity.AgentRun, error)
	ListTasks(ctx context.Context, userID, runID string) ([]*entity.Task, error)
	// OpenStream loads the run and its tasks for the event stream
	OpenStream(ctx context.Context, userID, runID string) (*RunStream, error)
}

// WorkflowUsecase manages templates and runs them
type WorkflowUsecase interface {
	CreateTemplate(ctx context.Context, userID string, graph *entity.TemplateGraph) (*entity.TemplateGraph, error)
	ListTemplates(ctx context.Context, userID, workspaceID string, page Page) ([]*entity.WorkflowTemplate, error)
	GetTemplate(ctx context.Context, userID, templateID string) (*entity.TemplateGraph, error)
	// Run executes the template's nodes in order until the first human gate
	Run(ctx context.Context, userID, templateID string, in RunTemplateInput) (*entity.RunDetail, error)
	GetRun(ctx context.Context, userID, runID string) (*entity.RunDetail, error)
}
