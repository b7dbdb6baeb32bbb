package entity

import "time"

// NodeType of a workflow node
type NodeType string

const (
	NodeAgent     NodeType = "agent"
	NodeTool      NodeType = "tool"
	NodeHumanGate NodeType = "human_gate"
	NodeRouter    NodeType = "router"
	NodeMemory    NodeType = "memory"
)

// Valid reports whether t is a known node type
func (t NodeType) Valid() bool {
	switch t {
	case NodeAgent, NodeTool, NodeHumanGate, NodeRouter, NodeMemory:
		return true
	}
	return false
}

// WorkflowTemplate is a named, versioned graph of nodes
type WorkflowTemplate struct {
	ID             string
	WorkspaceID    string
	Name           string
	Description    *string
	Version        int
	IsPublic       bool
	DefinitionJSON map[string]any
	CreatedBy      string
	CreatedAt      time.Time
}

// WorkflowNode is addressed by its key within a template
type WorkflowNode struct {
	ID         string
	TemplateID string
	NodeKey    string
	Type       NodeType
	ConfigJSON map[string]any
	PositionX  *float64
	PositionY  *float64
}

// WorkflowEdge connects two node keys
type WorkflowEdge struct {
	ID            string
	TemplateID    string
	SourceNodeKey string
	TargetNodeKey string
	ConditionExpr *string
	MetadataJSON  map[string]any
}

// TemplateGraph is a template with its nodes and edges
type TemplateGraph struct {
	Template *WorkflowTemplate
	Nodes    []*WorkflowNode
	Edges    []*WorkflowEdge
}

// WorkflowRun is one execution of a template
type WorkflowRun struct {
	ID             string
	TemplateID     string
	ConversationID *string
	Status         RunStatus
	InputJSON      map[string]any
	OutputJSON     map[string]any
	StartedAt      *time.Time
	EndedAt        *time.Time
	CreatedBy      string
	CreatedAt      time.Time
}

// WorkflowRunStep is the result of one node within a run
type WorkflowRunStep struct {
	ID            string
	WorkflowRunID string
	NodeKey       string
	Status        RunStatus
	InputJSON     map[string]any
	OutputJSON    map[string]any
	Attempt       int
	StartedAt     *time.Time
	EndedAt       *time.Time
	CreatedAt     time.Time
}

// RunDetail is a workflow run with its steps
type RunDetail struct {
	Run   *WorkflowRun
	Steps []*WorkflowRunStep
}
