package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/handler/dto"
)

// WorkspaceHandler serves /workspaces
type WorkspaceHandler struct {
	usecase domain.WorkspaceUsecase
	logger  *slog.Logger
}

// NewWorkspaceHandler creates a workspace handler
func NewWorkspaceHandler(usecase domain.WorkspaceUsecase, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{usecase: usecase, logger: logger}
}

// Create POST /api/v1/workspaces
func (h *WorkspaceHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateWorkspaceRequest
	if err := bindBody(c, &req); err != nil {
		ErrorResponse(c, err)
		return
	}

	ws, err := h.usecase.Create(ctx, userID(c), req.Name, req.Slug)
	if err != nil {
		h.logger.Warn("failed to create workspace", "error", err)
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, dto.ToWorkspaceResponse(ws))
}

// List GET /api/v1/workspaces
func (h *WorkspaceHandler) List(ctx context.Context, c *app.RequestContext) {
	page, err := pageParams(c)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	list, err := h.usecase.List(ctx, userID(c), page)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToWorkspaceList(list))
}

// Get GET /api/v1/workspaces/:id
func (h *WorkspaceHandler) Get(ctx context.Context, c *app.RequestContext) {
	ws, err := h.usecase.Get(ctx, userID(c), c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToWorkspaceResponse(ws))
}
