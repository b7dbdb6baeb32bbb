package dto

import (
	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// CreateConversationRequest is the body of POST /conversations
type CreateConversationRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	Title       *string `json:"title"`
}

// CreateThreadRequest is the body of POST /conversations/{id}/threads
type CreateThreadRequest struct {
	Kind           string  `json:"kind"`
	ParentThreadID *string `json:"parent_thread_id"`
}

// CreateMessageRequest appends a message without running the director
type CreateMessageRequest struct {
	Role        string         `json:"role"`
	ContentJSON map[string]any `json:"content_json"`
	TokenCount  *int           `json:"token_count"`
}

// ToInput converts the request for the usecase layer
func (r *CreateMessageRequest) ToInput() domain.MessageInput {
	return domain.MessageInput{
		Role:        entity.MessageRole(r.Role),
		ContentJSON: r.ContentJSON,
		TokenCount:  r.TokenCount,
	}
}

// ContextBlock is the text copied between threads
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

// ToInput converts the request for the usecase layer
func (r *InjectRequest) ToInput() domain.InjectInput {
	return domain.InjectInput{
		FromThreadID:  r.FromThreadID,
		FromMessageID: r.FromMessageID,
		ToThreadID:    r.ToThreadID,
		ToMessageID:   r.ToMessageID,
		ContextBlock: entity.ContextBlock{
			ReferenceID: r.ContextBlock.ReferenceID,
			Text:        r.ContextBlock.Text,
			Source:      r.ContextBlock.Source,
		},
	}
}

// ConversationResponse 会话响应（HTTP）
type ConversationResponse struct {
	ID          string  `json:"id"`
	WorkspaceID string  `json:"workspace_id"`
	CreatorID   string  `json:"creator_id"`
	Title       *string `json:"title"`
	CreatedAt   string  `json:"created_at"`
}

// ThreadResponse 线程响应（HTTP）
type ThreadResponse struct {
	ID             string  `json:"id"`
	ConversationID string  `json:"conversation_id"`
	Kind           string  `json:"kind"`
	ParentThreadID *string `json:"parent_thread_id"`
	CreatedBy      string  `json:"created_by"`
	CreatedAt      string  `json:"created_at"`
}

// MessageResponse 消息响应（HTTP）
type MessageResponse struct {
	ID          string         `json:"id"`
	ThreadID    string         `json:"thread_id"`
	Role        string         `json:"role"`
	ContentJSON map[string]any `json:"content_json"`
	TokenCount  *int           `json:"token_count"`
	CreatedBy   *string        `json:"created_by"`
	CreatedAt   string         `json:"created_at"`
}

// InjectionResponse 上下文注入响应（HTTP）
type InjectionResponse struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	FromThreadID   string       `json:"from_thread_id"`
	FromMessageID  string       `json:"from_message_id"`
	ToThreadID     string       `json:"to_thread_id"`
	ToMessageID    *string      `json:"to_message_id"`
	ContextBlock   ContextBlock `json:"context_block"`
	InjectedBy     string       `json:"injected_by"`
	CreatedAt      string       `json:"created_at"`
}

// ToConversationResponse converts entity.Conversation to ConversationResponse DTO
func ToConversationResponse(conv *entity.Conversation) *ConversationResponse {
	return &ConversationResponse{
		ID:          conv.ID,
		WorkspaceID: conv.WorkspaceID,
		CreatorID:   conv.CreatorID,
		Title:       conv.Title,
		CreatedAt:   formatTime(conv.CreatedAt),
	}
}

// ToConversationList converts conversations in order
func ToConversationList(list []*entity.Conversation) []*ConversationResponse {
	out := make([]*ConversationResponse, len(list))
	for i, conv := range list {
		out[i] = ToConversationResponse(conv)
	}
	return out
}

// ToThreadResponse converts entity.Thread to ThreadResponse DTO
func ToThreadResponse(thread *entity.Thread) *ThreadResponse {
	return &ThreadResponse{
		ID:             thread.ID,
		ConversationID: thread.ConversationID,
		Kind:           string(thread.Kind),
		ParentThreadID: thread.ParentThreadID,
		CreatedBy:      thread.CreatedBy,
		CreatedAt:      formatTime(thread.CreatedAt),
	}
}

// ToThreadList converts threads in order
func ToThreadList(list []*entity.Thread) []*ThreadResponse {
	out := make([]*ThreadResponse, len(list))
	for i, thread := range list {
		out[i] = ToThreadResponse(thread)
	}
	return out
}

// ToMessageResponse converts entity.Message to MessageResponse DTO
func ToMessageResponse(msg *entity.Message) *MessageResponse {
	return &MessageResponse{
		ID:          msg.ID,
		ThreadID:    msg.ThreadID,
		Role:        string(msg.Role),
		ContentJSON: emptyIfNil(msg.ContentJSON),
		TokenCount:  msg.TokenCount,
		CreatedBy:   msg.CreatedBy,
		CreatedAt:   formatTime(msg.CreatedAt),
	}
}

// ToMessageList converts messages in order
func ToMessageList(list []*entity.Message) []*MessageResponse {
	out := make([]*MessageResponse, len(list))
	for i, msg := range list {
		out[i] = ToMessageResponse(msg)
	}
	return out
}

// ToInjectionResponse converts entity.ContextInjection to InjectionResponse DTO
func ToInjectionResponse(inj *entity.ContextInjection) *InjectionResponse {
	return &InjectionResponse{
		ID:             inj.ID,
		ConversationID: inj.ConversationID,
		FromThreadID:   inj.FromThreadID,
		FromMessageID:  inj.FromMessageID,
		ToThreadID:     inj.ToThreadID,
		ToMessageID:    inj.ToMessageID,
		ContextBlock: ContextBlock{
			ReferenceID: inj.ContextBlock.ReferenceID,
			Text:        inj.ContextBlock.Text,
			Source:      inj.ContextBlock.Source,
		},
		InjectedBy: inj.InjectedBy,
		CreatedAt:  formatTime(inj.CreatedAt),
	}
}
