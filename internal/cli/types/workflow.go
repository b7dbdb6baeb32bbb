package types

// NodeType of a workflow node
type NodeType string

const (
	NodeAgent     NodeType = "agent"
	NodeTool      NodeType = "tool"
	NodeHumanGate NodeType = "human_gate"
	NodeRouter    NodeType = "router"
	NodeMemory    NodeType = "memory"
)

// WorkflowTemplate is the list view of a template
type WorkflowTemplate struct {
	ID          string  `json:"id"`
	WorkspaceID string  `json:"workspace_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Version     int     `json:"version"`
}

// WorkflowNode is a node of a template graph
type WorkflowNode struct {
	ID         string         `json:"id"`
	NodeKey    string         `json:"node_key"`
	Type       NodeType       `json:"type"`
	ConfigJSON map[string]any `json:"config_json"`
	PositionX  *float64       `json:"position_x,omitempty"`
	PositionY  *float64       `json:"position_y,omitempty"`
}

// WorkflowEdge connects two nodes by key
type WorkflowEdge struct {
	ID            string         `json:"id"`
	SourceNodeKey string         `json:"source_node_key"`
	TargetNodeKey string         `json:"target_node_key"`
	ConditionExpr *string        `json:"condition_expr,omitempty"`
	MetadataJSON  map[string]any `json:"metadata_json"`
}

// WorkflowTemplateDetail is a template with its graph
type WorkflowTemplateDetail struct {
	WorkflowTemplate
	Nodes []WorkflowNode `json:"nodes"`
	Edges []WorkflowEdge `json:"edges"`
}

// WorkflowStep is one node's execution result within a run
type WorkflowStep struct {
	ID         string         `json:"id"`
	NodeKey    string         `json:"node_key"`
	Status     string         `json:"status"`
	OutputJSON map[string]any `json:"output_json"`
}

// WorkflowRun is the batch result of running a template
type WorkflowRun struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Steps  []WorkflowStep `json:"steps"`
}

// RunTemplateRequest is the body of POST /workflows/templates/{id}/run
type RunTemplateRequest struct {
	ConversationID *string        `json:"conversation_id"`
	InputJSON      map[string]any `json:"input_json"`
}

// TemplateNodeInput is one node of a template being created
type TemplateNodeInput struct {
	NodeKey    string         `json:"node_key"`
	Type       NodeType       `json:"type"`
	ConfigJSON map[string]any `json:"config_json"`
	PositionX  *float64       `json:"position_x,omitempty"`
	PositionY  *float64       `json:"position_y,omitempty"`
}

// TemplateEdgeInput is one edge of a template being created
type TemplateEdgeInput struct {
	SourceNodeKey string         `json:"source_node_key"`
	TargetNodeKey string         `json:"target_node_key"`
	ConditionExpr *string        `json:"condition_expr,omitempty"`
	MetadataJSON  map[string]any `json:"metadata_json"`
}

// CreateTemplateRequest is the body of POST /workflows/templates
type CreateTemplateRequest struct {
	WorkspaceID string              `json:"workspace_id"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	Version     int                 `json:"version,omitempty"`
	Nodes       []TemplateNodeInput `json:"nodes"`
	Edges       []TemplateEdgeInput `json:"edges"`
}
