package usecase

import (
	"context"
	"fmt"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// access resolves resources on behalf of a user; anything the user cannot
// see is reported as not found
type access struct {
	workspaces    domain.WorkspaceRepository
	conversations domain.ConversationRepository
}

func (a access) workspaceMember(ctx context.Context, workspaceID, userID string) (*entity.Membership, error) {
	m, err := a.workspaces.GetMembership(ctx, workspaceID, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewMissingError("Workspace not found")
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	return m, nil
}

func (a access) conversationMember(ctx context.Context, conversationID, userID string) (*entity.Conversation, error) {
	conv, err := a.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewMissingError("Conversation not found")
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if _, err := a.workspaceMember(ctx, conv.WorkspaceID, userID); err != nil {
		return nil, err
	}
	return conv, nil
}

func (a access) threadIn(ctx context.Context, threadID, conversationID string) (*entity.Thread, error) {
	thread, err := a.conversations.GetThread(ctx, threadID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewMissingError("Thread not found")
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	if thread.ConversationID != conversationID {
		return nil, domain.NewMissingError("Thread not found")
	}
	return thread, nil
}

// clampPage applies list defaults: limit in [1, max] falling back to def
func clampPage(p domain.Page, def, max int) domain.Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit < 1 || p.Limit > max {
		p.Limit = def
	}
	return p
}
