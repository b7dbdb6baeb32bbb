package dto

import (
	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// WorkflowNodeRequest is one node of a template being created
type WorkflowNodeRequest struct {
	NodeKey    string         `json:"node_key"`
	Type       string         `json:"type"`
	ConfigJSON map[string]any `json:"config_json"`
	PositionX  *float64       `json:"position_x"`
	PositionY  *float64       `json:"position_y"`
}

// WorkflowEdgeRequest is one edge of a template being created
type WorkflowEdgeRequest struct {
	SourceNodeKey string         `json:"source_node_key"`
	TargetNodeKey string         `json:"target_node_key"`
	ConditionExpr *string        `json:"condition_expr"`
	MetadataJSON  map[string]any `json:"metadata_json"`
}

// CreateTemplateRequest is the body of POST /workflows/templates
type CreateTemplateRequest struct {
	WorkspaceID    string                `json:"workspace_id"`
	Name           string                `json:"name"`
	Description    *string               `json:"description"`
	Version        int                   `json:"version"`
	IsPublic       bool                  `json:"is_public"`
	DefinitionJSON map[string]any        `json:"definition_json"`
	Nodes          []WorkflowNodeRequest `json:"nodes"`
	Edges          []WorkflowEdgeRequest `json:"edges"`
}

// ToGraph converts the request into a template graph
func (r *CreateTemplateRequest) ToGraph() *entity.TemplateGraph {
	graph := &entity.TemplateGraph{
		Template: &entity.WorkflowTemplate{
			WorkspaceID:    r.WorkspaceID,
			Name:           r.Name,
			Description:    r.Description,
			Version:        r.Version,
			IsPublic:       r.IsPublic,
			DefinitionJSON: r.DefinitionJSON,
		},
		Nodes: make([]*entity.WorkflowNode, 0, len(r.Nodes)),
		Edges: make([]*entity.WorkflowEdge, 0, len(r.Edges)),
	}
	for _, n := range r.Nodes {
		graph.Nodes = append(graph.Nodes, &entity.WorkflowNode{
			NodeKey:    n.NodeKey,
			Type:       entity.NodeType(n.Type),
			ConfigJSON: emptyIfNil(n.ConfigJSON),
			PositionX:  n.PositionX,
			PositionY:  n.PositionY,
		})
	}
	for _, e := range r.Edges {
		graph.Edges = append(graph.Edges, &entity.WorkflowEdge{
			SourceNodeKey: e.SourceNodeKey,
			TargetNodeKey: e.TargetNodeKey,
			ConditionExpr: e.ConditionExpr,
			MetadataJSON:  emptyIfNil(e.MetadataJSON),
		})
	}
	return graph
}

// RunTemplateRequest is the body of POST /workflows/templates/{id}/run
type RunTemplateRequest struct {
	ConversationID *string        `json:"conversation_id"`
	InputJSON      map[string]any `json:"input_json"`
}

// ToInput converts the request for the usecase layer
func (r *RunTemplateRequest) ToInput() domain.RunTemplateInput {
	return domain.RunTemplateInput{
		ConversationID: r.ConversationID,
		InputJSON:      r.InputJSON,
	}
}

// TemplateResponse is the list view of a template
type TemplateResponse struct {
	ID             string         `json:"id"`
	WorkspaceID    string         `json:"workspace_id"`
	Name           string         `json:"name"`
	Description    *string        `json:"description"`
	Version        int            `json:"version"`
	IsPublic       bool           `json:"is_public"`
	DefinitionJSON map[string]any `json:"definition_json"`
	CreatedBy      string         `json:"created_by"`
	CreatedAt      string         `json:"created_at"`
}

// NodeResponse is a node of a template graph
type NodeResponse struct {
	ID         string         `json:"id"`
	NodeKey    string         `json:"node_key"`
	Type       string         `json:"type"`
	ConfigJSON map[string]any `json:"config_json"`
	PositionX  *float64       `json:"position_x"`
	PositionY  *float64       `json:"position_y"`
}

// EdgeResponse connects two nodes by key
type EdgeResponse struct {
	ID            string         `json:"id"`
	SourceNodeKey string         `json:"source_node_key"`
	TargetNodeKey string         `json:"target_node_key"`
	ConditionExpr *string        `json:"condition_expr"`
	MetadataJSON  map[string]any `json:"metadata_json"`
}

// TemplateDetailResponse is a template with its graph
type TemplateDetailResponse struct {
	*TemplateResponse
	Nodes []*NodeResponse `json:"nodes"`
	Edges []*EdgeResponse `json:"edges"`
}

// StepResponse is one node's result within a workflow run
type StepResponse struct {
	ID            string         `json:"id"`
	WorkflowRunID string         `json:"workflow_run_id"`
	NodeKey       string         `json:"node_key"`
	Status        string         `json:"status"`
	InputJSON     map[string]any `json:"input_json"`
	OutputJSON    map[string]any `json:"output_json"`
	Attempt       int            `json:"attempt"`
	StartedAt     *string        `json:"started_at"`
	EndedAt       *string        `json:"ended_at"`
	CreatedAt     string         `json:"created_at"`
}

// WorkflowRunResponse is a workflow run with its steps
type WorkflowRunResponse struct {
	ID             string          `json:"id"`
	TemplateID     string          `json:"template_id"`
	ConversationID *string         `json:"conversation_id"`
	Status         string          `json:"status"`
	InputJSON      map[string]any  `json:"input_json"`
	OutputJSON     map[string]any  `json:"output_json"`
	StartedAt      *string         `json:"started_at"`
	EndedAt        *string         `json:"ended_at"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      string          `json:"created_at"`
	Steps          []*StepResponse `json:"steps"`
}

// ToTemplateResponse converts entity.WorkflowTemplate to TemplateResponse DTO
func ToTemplateResponse(tpl *entity.WorkflowTemplate) *TemplateResponse {
	return &TemplateResponse{
		ID:             tpl.ID,
		WorkspaceID:    tpl.WorkspaceID,
		Name:           tpl.Name,
		Description:    tpl.Description,
		Version:        tpl.Version,
		IsPublic:       tpl.IsPublic,
		DefinitionJSON: emptyIfNil(tpl.DefinitionJSON),
		CreatedBy:      tpl.CreatedBy,
		CreatedAt:      formatTime(tpl.CreatedAt),
	}
}

// ToTemplateList converts templates in order
func ToTemplateList(list []*entity.WorkflowTemplate) []*TemplateResponse {
	out := make([]*TemplateResponse, len(list))
	for i, tpl := range list {
		out[i] = ToTemplateResponse(tpl)
	}
	return out
}

// ToTemplateDetailResponse converts a template graph
func ToTemplateDetailResponse(graph *entity.TemplateGraph) *TemplateDetailResponse {
	resp := &TemplateDetailResponse{
		TemplateResponse: ToTemplateResponse(graph.Template),
		Nodes:            make([]*NodeResponse, len(graph.Nodes)),
		Edges:            make([]*EdgeResponse, len(graph.Edges)),
	}
	for i, n := range graph.Nodes {
		resp.Nodes[i] = &NodeResponse{
			ID:         n.ID,
			NodeKey:    n.NodeKey,
			Type:       string(n.Type),
			ConfigJSON: emptyIfNil(n.ConfigJSON),
			PositionX:  n.PositionX,
			PositionY:  n.PositionY,
		}
	}
	for i, e := range graph.Edges {
		resp.Edges[i] = &EdgeResponse{
			ID:            e.ID,
			SourceNodeKey: e.SourceNodeKey,
			TargetNodeKey: e.TargetNodeKey,
			ConditionExpr: e.ConditionExpr,
			MetadataJSON:  emptyIfNil(e.MetadataJSON),
		}
	}
	return resp
}

// ToStepResponse converts entity.WorkflowRunStep to StepResponse DTO
func ToStepResponse(step *entity.WorkflowRunStep) *StepResponse {
	return &StepResponse{
		ID:            step.ID,
		WorkflowRunID: step.WorkflowRunID,
		NodeKey:       step.NodeKey,
		Status:        string(step.Status),
		InputJSON:     emptyIfNil(step.InputJSON),
		OutputJSON:    emptyIfNil(step.OutputJSON),
		Attempt:       step.Attempt,
		StartedAt:     formatTimePtr(step.StartedAt),
		EndedAt:       formatTimePtr(step.EndedAt),
		CreatedAt:     formatTime(step.CreatedAt),
	}
}

// ToStepList converts steps in order
func ToStepList(list []*entity.WorkflowRunStep) []*StepResponse {
	out := make([]*StepResponse, len(list))
	for i, step := range list {
		out[i] = ToStepResponse(step)
	}
	return out
}

// ToWorkflowRunResponse converts a workflow run with its steps
func ToWorkflowRunResponse(detail *entity.RunDetail) *WorkflowRunResponse {
	run := detail.Run
	return &WorkflowRunResponse{
		ID:             run.ID,
		TemplateID:     run.TemplateID,
		ConversationID: run.ConversationID,
		Status:         string(run.Status),
		InputJSON:      emptyIfNil(run.InputJSON),
		OutputJSON:     emptyIfNil(run.OutputJSON),
		StartedAt:      formatTimePtr(run.StartedAt),
		EndedAt:        formatTimePtr(run.EndedAt),
		CreatedBy:      run.CreatedBy,
		CreatedAt:      formatTime(run.CreatedAt),
		Steps:          ToStepList(detail.Steps),
	}
}
