package entity

import "time"

// ThreadKind discriminates the timelines of a conversation
type ThreadKind string

const (
	ThreadMain  ThreadKind = "main"
	ThreadQuick ThreadKind = "quick"
)

// Valid reports whether k is a known thread kind
func (k ThreadKind) Valid() bool {
	return k == ThreadMain || k == ThreadQuick
}

// MessageRole of a message author
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
	RoleSystem    MessageRole = "system"
)

// Valid reports whether r is a known role
func (r MessageRole) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleTool, RoleSystem:
		return true
	}
	return false
}

// Conversation belongs to one workspace
type Conversation struct {
	ID          string
	WorkspaceID string
	CreatorID   string
	Title       *string
	CreatedAt   time.Time
}

// Thread is one timeline of a conversation
type Thread struct {
	ID             string
	ConversationID string
	Kind           ThreadKind
	ParentThreadID *string
	CreatedBy      string
	CreatedAt      time.Time
}

// Message is immutable once stored
type Message struct {
	ID          string
	ThreadID    string
	Role        MessageRole
	ContentJSON map[string]any
	TokenCount  *int
	// CreatedBy is nil for agent-authored messages
	CreatedBy *string
	CreatedAt time.Time
}

// ContextBlock is the text copied between threads
type ContextBlock struct {
	ReferenceID string
	Text        string
	Source      string
}

// ContextInjection records a message copied from one thread into another
type ContextInjection struct {
	ID             string
	ConversationID string
	FromThreadID   string
	FromMessageID  string
	ToThreadID     string
	ToMessageID    *string
	ContextBlock   ContextBlock
	InjectedBy     string
	CreatedAt      time.Time
}
