package types

import "time"

// Role of a message author
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Message is immutable once created; server order is authoritative
type Message struct {
	ID          string         `json:"id"`
	ThreadID    string         `json:"thread_id"`
	Role        Role           `json:"role"`
	ContentJSON map[string]any `json:"content_json"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ChatRequest is the body of a chat turn
type ChatRequest struct {
	Prompt             string         `json:"prompt"`
	AssistantAgentSlug *string        `json:"assistant_agent_slug"`
	MetadataJSON       map[string]any `json:"metadata_json"`
}

// AgentRun is the run produced by a chat turn
type AgentRun struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

// Task is one unit of work planned by a chat turn
type Task struct {
	ID       string `json:"id"`
	TaskType string `json:"task_type"`
	Status   string `json:"status"`
}

// ChatResult is returned by a chat turn
type ChatResult struct {
	UserMessage      Message  `json:"user_message"`
	AssistantMessage Message  `json:"assistant_message"`
	AgentRun         AgentRun `json:"agent_run"`
	Tasks            []Task   `json:"tasks"`
}

// ContextBlock is the payload copied into the destination thread
type ContextBlock struct {
	ReferenceID string `json:"reference_id"`
	Text        string `json:"text"`
	Source      string `json:"source"`
}

// InjectRequest is the body of POST /conversations/{id}/inject
type InjectRequest struct {
	FromThreadID  string       `json:"from_thread_id"`
	FromMessageID string       `json:"from_message_id"`
	ToThreadID    string       `json:"to_thread_id"`
	ToMessageID   *string      `json:"to_message_id"`
	ContextBlock  ContextBlock `json:"context_block"`
}

// ContextInjection is the entity the backend persists for an injection
type ContextInjection struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	FromThreadID   string       `json:"from_thread_id"`
	FromMessageID  string       `json:"from_message_id"`
	ToThreadID     string       `json:"to_thread_id"`
	ToMessageID    *string      `json:"to_message_id"`
	ContextBlock   ContextBlock `json:"context_block"`
	InjectedBy     string       `json:"injected_by"`
	CreatedAt      time.Time    `json:"created_at"`
}
