package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/handler/dto"
)

// WorkflowHandler serves templates and workflow runs
type WorkflowHandler struct {
	usecase domain.WorkflowUsecase
	logger  *slog.Logger
}

// NewWorkflowHandler creates a workflow handler
func NewWorkflowHandler(usecase domain.WorkflowUsecase, logger *slog.Logger) *WorkflowHandler {
	return &WorkflowHandler{usecase: usecase, logger: logger}
}

// CreateTemplate POST /api/v1/workflows/templates
func (h *WorkflowHandler) CreateTemplate(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateTemplateRequest
	if err := bindBody(c, &req); err != nil {
		ErrorResponse(c, err)
		return
	}

	graph, err := h.usecase.CreateTemplate(ctx, userID(c), req.ToGraph())
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, dto.ToTemplateDetailResponse(graph))
}

// ListTemplates GET /api/v1/workflows/templates?workspace_id=
func (h *WorkflowHandler) ListTemplates(ctx context.Context, c *app.RequestContext) {
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

	list, err := h.usecase.ListTemplates(ctx, userID(c), workspaceID, page)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToTemplateList(list))
}

// GetTemplate GET /api/v1/workflows/templates/:id
func (h *WorkflowHandler) GetTemplate(ctx context.Context, c *app.RequestContext) {
	graph, err := h.usecase.GetTemplate(ctx, userID(c), c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToTemplateDetailResponse(graph))
}

// RunTemplate POST /api/v1/workflows/templates/:id/run
//
// An empty body runs the template without a conversation.
func (h *WorkflowHandler) RunTemplate(ctx context.Context, c *app.RequestContext) {
	var req dto.RunTemplateRequest
	if len(c.Request.Body()) > 0 {
		if err := bindBody(c, &req); err != nil {
			ErrorResponse(c, err)
			return
		}
	}

	detail, err := h.usecase.Run(ctx, userID(c), c.Param("id"), req.ToInput())
	if err != nil {
		h.logger.Warn("workflow run rejected", "template_id", c.Param("id"), "error", err)
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, dto.ToWorkflowRunResponse(detail))
}

// GetRun GET /api/v1/workflows/runs/:id
func (h *WorkflowHandler) GetRun(ctx context.Context, c *app.RequestContext) {
	detail, err := h.usecase.GetRun(ctx, userID(c), c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToWorkflowRunResponse(detail))
}

// ListSteps GET /api/v1/workflows/runs/:id/steps
func (h *WorkflowHandler) ListSteps(ctx context.Context, c *app.RequestContext) {
	detail, err := h.usecase.GetRun(ctx, userID(c), c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	OKResponse(c, dto.ToStepList(detail.Steps))
}
