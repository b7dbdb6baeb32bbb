package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// conversationUsecase implements domain.ConversationUsecase
type conversationUsecase struct {
	conversations domain.ConversationRepository
	access        access
	logger        *slog.Logger
}

// NewConversationUsecase creates a ConversationUsecase
func NewConversationUsecase(
	workspaces domain.WorkspaceRepository,
	conversations domain.ConversationRepository,
	logger *slog.Logger,
) domain.ConversationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &conversationUsecase{
		conversations: conversations,
		access:        access{workspaces: workspaces, conversations: conversations},
		logger:        logger,
	}
}

// Create stores a conversation that starts with a main and a quick thread
func (u *conversationUsecase) Create(ctx context.Context, userID, workspaceID string, title *string) (*entity.Conversation, error) {
	if title != nil && len(*title) > 200 {
		verr := &domain.ValidationError{}
		verr.Add("title must be at most 200 characters", "body", "title")
		return nil, verr
	}
	if _, err := u.access.workspaceMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	conv := &entity.Conversation{WorkspaceID: workspaceID, CreatorID: userID, Title: title}
	main := &entity.Thread{Kind: entity.ThreadMain, CreatedBy: userID}
	quick := &entity.Thread{Kind: entity.ThreadQuick, CreatedBy: userID}
	if err := u.conversations.CreateConversation(ctx, conv, main, quick); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	u.logger.Info("conversation created",
		"conversation_id", conv.ID,
		"workspace_id", workspaceID,
		"main_thread_id", main.ID,
		"quick_thread_id", quick.ID,
	)
	return conv, nil
}

// List returns a workspace's conversations, newest first
func (u *conversationUsecase) List(ctx context.Context, userID, workspaceID string, page domain.Page) ([]*entity.Conversation, error) {
	if _, err := u.access.workspaceMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	page = clampPage(page, 20, 100)
	list, err := u.conversations.ListConversations(ctx, workspaceID, page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return list, nil
}

// CreateThread adds a thread; a parent must belong to the same conversation
func (u *conversationUsecase) CreateThread(ctx context.Context, userID, conversationID string, kind entity.ThreadKind, parentThreadID *string) (*entity.Thread, error) {
	if !kind.Valid() {
		verr := &domain.ValidationError{}
		verr.Add("kind must be 'main' or 'quick'", "body", "kind")
		return nil, verr
	}
	conv, err := u.access.conversationMember(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if parentThreadID != nil {
		if _, err := u.access.threadIn(ctx, *parentThreadID, conv.ID); err != nil {
			return nil, err
		}
	}

	thread := &entity.Thread{ConversationID: conv.ID, Kind: kind, ParentThreadID: parentThreadID, CreatedBy: userID}
	if err := u.conversations.CreateThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread, nil
}

// ListThreads returns a conversation's threads, oldest first
func (u *conversationUsecase) ListThreads(ctx context.Context, userID, conversationID string) ([]*entity.Thread, error) {
	if _, err := u.access.conversationMember(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	threads, err := u.conversations.ListThreads(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return threads, nil
}

// CreateMessage appends a message authored by userID
func (u *conversationUsecase) CreateMessage(ctx context.Context, userID, conversationID, threadID string, in domain.MessageInput) (*entity.Message, error) {
	if in.Role == "" {
		in.Role = entity.RoleUser
	}
	verr := &domain.ValidationError{}
	if !in.Role.Valid() {
		verr.Add("unknown role", "body", "role")
	}
	if in.ContentJSON == nil {
		verr.Add("field required", "body", "content_json")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := u.access.conversationMember(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if _, err := u.access.threadIn(ctx, threadID, conversationID); err != nil {
		return nil, err
	}

	msg := &entity.Message{
		ThreadID:    threadID,
		Role:        in.Role,
		ContentJSON: in.ContentJSON,
		TokenCount:  in.TokenCount,
		CreatedBy:   &userID,
	}
	if err := u.conversations.AppendMessages(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return msg, nil
}

// ListMessages returns a thread's messages in creation order
func (u *conversationUsecase) ListMessages(ctx context.Context, userID, conversationID, threadID string, page domain.Page) ([]*entity.Message, error) {
	if _, err := u.access.conversationMember(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if _, err := u.access.threadIn(ctx, threadID, conversationID); err != nil {
		return nil, err
	}
	page = clampPage(page, 50, 200)
	msgs, err := u.conversations.ListMessages(ctx, threadID, page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// Inject records a context block copied from one thread into another. The
// source message must live in the source thread and the optional anchor in
// the target thread. Repeated injections of the same message are all kept.
func (u *conversationUsecase) Inject(ctx context.Context, userID, conversationID string, in domain.InjectInput) (*entity.ContextInjection, error) {
	verr := &domain.ValidationError{}
	if in.FromThreadID == "" {
		verr.Add("field required", "body", "from_thread_id")
	}
	if in.FromMessageID == "" {
		verr.Add("field required", "body", "from_message_id")
	}
	if in.ToThreadID == "" {
		verr.Add("field required", "body", "to_thread_id")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := u.access.conversationMember(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if _, err := u.access.threadIn(ctx, in.FromThreadID, conversationID); err != nil {
		return nil, err
	}
	if _, err := u.access.threadIn(ctx, in.ToThreadID, conversationID); err != nil {
		return nil, err
	}

	from, err := u.conversations.GetMessage(ctx, in.FromMessageID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get source message: %w", err)
	}
	if from == nil || from.ThreadID != in.FromThreadID {
		return nil, domain.NewMissingError("Source message not found")
	}

	if in.ToMessageID != nil && *in.ToMessageID != "" {
		to, err := u.conversations.GetMessage(ctx, *in.ToMessageID)
		if err != nil && !domain.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get target message: %w", err)
		}
		if to == nil || to.ThreadID != in.ToThreadID {
			return nil, domain.NewMissingError("Target message not found")
		}
	}

	injection := &entity.ContextInjection{
		ConversationID: conversationID,
		FromThreadID:   in.FromThreadID,
		FromMessageID:  in.FromMessageID,
		ToThreadID:     in.ToThreadID,
		ToMessageID:    in.ToMessageID,
		ContextBlock:   in.ContextBlock,
		InjectedBy:     userID,
	}
	if err := u.conversations.CreateInjection(ctx, injection); err != nil {
		return nil, fmt.Errorf("failed to create injection: %w", err)
	}

	u.logger.Info("context injected",
		"conversation_id", conversationID,
		"from_message_id", in.FromMessageID,
		"to_thread_id", in.ToThreadID,
	)
	return injection, nil
}
