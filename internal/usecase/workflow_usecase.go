package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// workflowUsecase implements domain.WorkflowUsecase
type workflowUsecase struct {
	workflows domain.WorkflowRepository
	access    access
	maxSteps  int
	now       func() time.Time
	logger    *slog.Logger
}

// NewWorkflowUsecase creates a WorkflowUsecase; maxSteps is the circuit
// breaker budget of one run
func NewWorkflowUsecase(
	workspaces domain.WorkspaceRepository,
	conversations domain.ConversationRepository,
	workflows domain.WorkflowRepository,
	maxSteps int,
	logger *slog.Logger,
) domain.WorkflowUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &workflowUsecase{
		workflows: workflows,
		access:    access{workspaces: workspaces, conversations: conversations},
		maxSteps:  maxSteps,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// CreateTemplate stores a template graph in a workspace the user belongs to
func (u *workflowUsecase) CreateTemplate(ctx context.Context, userID string, graph *entity.TemplateGraph) (*entity.TemplateGraph, error) {
	if graph == nil || graph.Template == nil {
		return nil, domain.NewInvalidInputError("template is required")
	}
	tpl := graph.Template
	if tpl.Version == 0 {
		tpl.Version = 1
	}
	if tpl.DefinitionJSON == nil {
		tpl.DefinitionJSON = map[string]any{}
	}
	if err := validateGraph(graph); err != nil {
		return nil, err
	}
	if _, err := u.access.workspaceMember(ctx, tpl.WorkspaceID, userID); err != nil {
		return nil, err
	}

	tpl.ID = ""
	tpl.CreatedBy = userID
	if err := u.workflows.CreateTemplate(ctx, graph); err != nil {
		if domain.IsConflict(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	u.logger.Info("workflow template created", "template_id", tpl.ID, "name", tpl.Name, "version", tpl.Version)
	return u.GetTemplate(ctx, userID, tpl.ID)
}

// ListTemplates returns a workspace's templates, newest first
func (u *workflowUsecase) ListTemplates(ctx context.Context, userID, workspaceID string, page domain.Page) ([]*entity.WorkflowTemplate, error) {
	if _, err := u.access.workspaceMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	page = clampPage(page, 50, 200)
	list, err := u.workflows.ListTemplates(ctx, workspaceID, page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return list, nil
}

// GetTemplate returns a template graph with nodes in execution order and
// edges sorted by source then target
func (u *workflowUsecase) GetTemplate(ctx context.Context, userID, templateID string) (*entity.TemplateGraph, error) {
	graph, err := u.templateFor(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}
	sortNodes(graph.Nodes)
	sortEdges(graph.Edges)
	return graph, nil
}

// Run executes a template and stores the run, including one that tripped the
// step budget
func (u *workflowUsecase) Run(ctx context.Context, userID, templateID string, in domain.RunTemplateInput) (*entity.RunDetail, error) {
	graph, err := u.templateFor(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	if in.ConversationID != nil && *in.ConversationID != "" {
		conv, err := u.access.conversationMember(ctx, *in.ConversationID, userID)
		if err != nil {
			return nil, err
		}
		if conv.WorkspaceID != graph.Template.WorkspaceID {
			return nil, domain.NewInvalidInputError("Conversation and template must belong to the same workspace")
		}
	} else {
		in.ConversationID = nil
	}
	if in.InputJSON == nil {
		in.InputJSON = map[string]any{}
	}

	detail, runErr := executeWorkflow(runRequest{
		graph:          graph,
		createdBy:      userID,
		conversationID: in.ConversationID,
		input:          in.InputJSON,
		maxSteps:       u.maxSteps,
		now:            u.now,
	})
	if err := u.workflows.SaveWorkflowRun(ctx, detail); err != nil {
		return nil, fmt.Errorf("failed to store workflow run: %w", err)
	}
	if runErr != nil {
		u.logger.Warn("workflow run stopped by circuit breaker",
			"run_id", detail.Run.ID,
			"template_id", templateID,
			"steps_total", len(graph.Nodes),
			"max_steps", u.maxSteps,
		)
		return nil, runErr
	}

	u.logger.Info("workflow run finished",
		"run_id", detail.Run.ID,
		"template_id", templateID,
		"status", detail.Run.Status,
		"steps", len(detail.Steps),
	)
	return detail, nil
}

// GetRun returns a stored workflow run and its steps
func (u *workflowUsecase) GetRun(ctx context.Context, userID, runID string) (*entity.RunDetail, error) {
	detail, err := u.workflows.GetWorkflowRun(ctx, runID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewMissingError("Workflow run not found")
		}
		return nil, fmt.Errorf("failed to get workflow run: %w", err)
	}
	if _, err := u.templateFor(ctx, userID, detail.Run.TemplateID); err != nil {
		return nil, err
	}
	return detail, nil
}

func (u *workflowUsecase) templateFor(ctx context.Context, userID, templateID string) (*entity.TemplateGraph, error) {
	graph, err := u.workflows.GetTemplate(ctx, templateID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewMissingError("Workflow template not found")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if _, err := u.access.workspaceMember(ctx, graph.Template.WorkspaceID, userID); err != nil {
		return nil, err
	}
	return graph, nil
}

func validateGraph(graph *entity.TemplateGraph) error {
	verr := &domain.ValidationError{}
	tpl := graph.Template

	if name := strings.TrimSpace(tpl.Name); name == "" || len(name) > 120 {
		verr.Add("name must be 1-120 characters", "body", "name")
	}
	if tpl.Version < 1 {
		verr.Add("version must be at least 1", "body", "version")
	}

	seen := make(map[string]bool, len(graph.Nodes))
	for i, n := range graph.Nodes {
		idx := fmt.Sprint(i)
		if n.NodeKey == "" || len(n.NodeKey) > 120 {
			verr.Add("node_key must be 1-120 characters", "body", "nodes", idx, "node_key")
		} else if seen[n.NodeKey] {
			verr.Add("duplicate node_key "+n.NodeKey, "body", "nodes", idx, "node_key")
		}
		seen[n.NodeKey] = true
		if !n.Type.Valid() {
			verr.Add("unknown node type "+string(n.Type), "body", "nodes", idx, "type")
		}
		if n.ConfigJSON == nil {
			n.ConfigJSON = map[string]any{}
		}
	}

	for i, e := range graph.Edges {
		idx := fmt.Sprint(i)
		if e.SourceNodeKey == "" || len(e.SourceNodeKey) > 120 {
			verr.Add("source_node_key must be 1-120 characters", "body", "edges", idx, "source_node_key")
		}
		if e.TargetNodeKey == "" || len(e.TargetNodeKey) > 120 {
			verr.Add("target_node_key must be 1-120 characters", "body", "edges", idx, "target_node_key")
		}
		if e.MetadataJSON == nil {
			e.MetadataJSON = map[string]any{}
		}
	}

	return verr.OrNil()
}
