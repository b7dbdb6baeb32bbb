package memory

import (
	"context"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// CreateConversation stores conv and its initial threads atomically
func (s *Store) CreateConversation(ctx context.Context, conv *entity.Conversation, threads ...*entity.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workspaces[conv.WorkspaceID]; !ok {
		return domain.NewNotFoundError("Workspace", conv.WorkspaceID)
	}

	assignID(&conv.ID)
	s.stamp(&conv.CreatedAt)

	stored := *conv
	s.conversations[conv.ID] = &stored
	s.conversationOrder = append(s.conversationOrder, conv.ID)

	for _, t := range threads {
		t.ConversationID = conv.ID
		s.putThread(t)
	}
	return nil
}

// GetConversation looks a conversation up by id
func (s *Store) GetConversation(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.conversations[conversationID]
	if !ok {
		return nil, domain.NewNotFoundError("Conversation", conversationID)
	}
	c := *stored
	return &c, nil
}

// ListConversations returns a workspace's conversations, newest first
func (s *Store) ListConversations(ctx context.Context, workspaceID string, offset, limit int) ([]*entity.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.Conversation
	for i := len(s.conversationOrder) - 1; i >= 0; i-- {
		stored := s.conversations[s.conversationOrder[i]]
		if stored.WorkspaceID != workspaceID {
			continue
		}
		c := *stored
		out = append(out, &c)
	}
	return paginate(out, offset, limit), nil
}

// CreateThread stores a thread in an existing conversation
func (s *Store) CreateThread(ctx context.Context, thread *entity.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[thread.ConversationID]; !ok {
		return domain.NewNotFoundError("Conversation", thread.ConversationID)
	}
	s.putThread(thread)
	return nil
}

// putThread requires s.mu held for writing
func (s *Store) putThread(thread *entity.Thread) {
	assignID(&thread.ID)
	s.stamp(&thread.CreatedAt)

	stored := *thread
	s.threads[thread.ID] = &stored
	s.threadOrder[thread.ConversationID] = append(s.threadOrder[thread.ConversationID], thread.ID)
}

// GetThread looks a thread up by id
func (s *Store) GetThread(ctx context.Context, threadID string) (*entity.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.threads[threadID]
	if !ok {
		return nil, domain.NewNotFoundError("Thread", threadID)
	}
	t := *stored
	return &t, nil
}

// ListThreads returns a conversation's threads, oldest first
func (s *Store) ListThreads(ctx context.Context, conversationID string) ([]*entity.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.threadOrder[conversationID]
	out := make([]*entity.Thread, 0, len(ids))
	for _, id := range ids {
		t := *s.threads[id]
		out = append(out, &t)
	}
	return out, nil
}

// AppendMessages stores msgs in order; every thread must exist
func (s *Store) AppendMessages(ctx context.Context, msgs ...*entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range msgs {
		if _, ok := s.threads[m.ThreadID]; !ok {
			return domain.NewNotFoundError("Thread", m.ThreadID)
		}
	}

	for _, m := range msgs {
		assignID(&m.ID)
		s.stamp(&m.CreatedAt)

		stored := *m
		s.messages[m.ID] = &stored
		s.messageOrder[m.ThreadID] = append(s.messageOrder[m.ThreadID], m.ID)
	}
	return nil
}

// GetMessage looks a message up by id
func (s *Store) GetMessage(ctx context.Context, messageID string) (*entity.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.messages[messageID]
	if !ok {
		return nil, domain.NewNotFoundError("Message", messageID)
	}
	m := *stored
	return &m, nil
}

// ListMessages returns a thread's messages in creation order
func (s *Store) ListMessages(ctx context.Context, threadID string, offset, limit int) ([]*entity.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.messageOrder[threadID]
	out := make([]*entity.Message, 0, len(ids))
	for _, id := range ids {
		m := *s.messages[id]
		out = append(out, &m)
	}
	return paginate(out, offset, limit), nil
}

// CreateInjection stores an injection record
func (s *Store) CreateInjection(ctx context.Context, injection *entity.ContextInjection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignID(&injection.ID)
	s.stamp(&injection.CreatedAt)

	stored := *injection
	s.injections[injection.ID] = &stored
	return nil
}
