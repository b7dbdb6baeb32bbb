package types

// ThreadKind discriminates the two timelines of a conversation
type ThreadKind string

const (
	ThreadMain  ThreadKind = "main"
	ThreadQuick ThreadKind = "quick"
)

// Workspace owns conversations, templates and assets
type Workspace struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	OwnerID string `json:"owner_id"`
}

// Conversation belongs to exactly one workspace
type Conversation struct {
	ID          string  `json:"id"`
	WorkspaceID string  `json:"workspace_id"`
	Title       *string `json:"title,omitempty"`
}

// Thread belongs to exactly one conversation
type Thread struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	Kind           ThreadKind `json:"kind"`
	ParentThreadID *string    `json:"parent_thread_id,omitempty"`
}

// CreateWorkspaceRequest is the body of POST /workspaces
type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

// CreateConversationRequest is the body of POST /conversations
type CreateConversationRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Title       string `json:"title"`
}
