package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
	"github.com/chazo1994/Creatory/internal/handler/dto"
)

// ConversationHandler serves /conversations and their threads
type ConversationHandler struct {
	usecase domain.ConversationUsecase
	logger  *slog.Logger
}

// NewConversationHandler creates a conversation handler
func NewConversationHandler(usecase domain.ConversationUsecase, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{usecase: usecase, logger: logger}
}

// Create POST /api/v1/conversations
func (h *ConversationHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateConversationRequest
	if err := bindBody(c, &req); err != nil {
		ErrorResponse(c, err)
		return
	}

	conv, err := h.usecase.Create(ctx, userID(c), req.WorkspaceID, req.Title)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, dto.ToConversationResponse(conv))
}

// List GET /api/v1/conversations?workspace_id=
func (h *ConversationHandler) List(ctx context.Context, c *app.RequestContext) {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		verr := &domain.ValidationError{}
		verr.Add("Field required", "query", "workspace_id")
		ErrorResponse(c, verr)
		return
	}
	page, err := pageParams(c)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	list, err := h.usecase.List(ctx, userID(c), workspaceID, page)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToConversationList(list))
}

// CreateThread POST /api/v1/conversations/:id/threads
func (h *ConversationHandler) CreateThread(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateThreadRequest
	if err := bindBody(c, &req); err != nil {
		ErrorResponse(c, err)
		return
	}

	thread, err := h.usecase.CreateThread(ctx, userID(c), c.Param("id"), entity.ThreadKind(req.Kind), req.ParentThreadID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, dto.ToThreadResponse(thread))
}

// ListThreads GET /api/v1/conversations/:id/threads
func (h *ConversationHandler) ListThreads(ctx context.Context, c *app.RequestContext) {
	threads, err := h.usecase.ListThreads(ctx, userID(c), c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToThreadList(threads))
}

// CreateMessage POST /api/v1/conversations/:id/threads/:tid/messages
func (h *ConversationHandler) CreateMessage(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateMessageRequest
	if err := bindBody(c, &req); err != nil {
		ErrorResponse(c, err)
		return
	}

	msg, err := h.usecase.CreateMessage(ctx, userID(c), c.Param("id"), c.Param("tid"), req.ToInput())
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToMessageResponse(msg))
}

// ListMessages GET /api/v1/conversations/:id/threads/:tid/messages
func (h *ConversationHandler) ListMessages(ctx context.Context, c *app.RequestContext) {
	page, err := pageParams(c)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	msgs, err := h.usecase.ListMessages(ctx, userID(c), c.Param("id"), c.Param("tid"), page)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToMessageList(msgs))
}

// Inject POST /api/v1/conversations/:id/inject
func (h *ConversationHandler) Inject(ctx context.Context, c *app.RequestContext) {
	var req dto.InjectRequest
	if err := bindBody(c, &req); err != nil {
		ErrorResponse(c, err)
		return
	}

	injection, err := h.usecase.Inject(ctx, userID(c), c.Param("id"), req.ToInput())
	if err != nil {
		h.logger.Warn("context injection rejected", "conversation_id", c.Param("id"), "error", err)
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, dto.ToInjectionResponse(injection))
}
