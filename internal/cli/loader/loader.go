package loader

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/chazo1994/Creatory/internal/cli/types"
)

// KindWorkflowTemplate is the only kind a template file may declare
const KindWorkflowTemplate = "WorkflowTemplate"

// TemplateFile represents a workflow template definition loaded from a YAML file
type TemplateFile struct {
	// Kind must be "WorkflowTemplate"
	Kind string `json:"kind"`
	// Spec contains the template graph
	Spec TemplateSpec `json:"spec"`
	// Run optionally overlays step statuses for previewing a run
	Run *RunSpec `json:"run,omitempty"`
}

// TemplateSpec defines a template and its graph
type TemplateSpec struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Version     int        `json:"version,omitempty"`
	Nodes       []NodeSpec `json:"nodes"`
	Edges       []EdgeSpec `json:"edges,omitempty"`
}

// NodeSpec is one node; x and y are optional layout hints
type NodeSpec struct {
	Key    string         `json:"key"`
	Type   types.NodeType `json:"type"`
	Config map[string]any `json:"config,omitempty"`
	X      *float64       `json:"x,omitempty"`
	Y      *float64       `json:"y,omitempty"`
}

// EdgeSpec connects two nodes by key
type EdgeSpec struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Condition string `json:"condition,omitempty"`
}

// RunSpec is a hand-written run used for previews
type RunSpec struct {
	Status string            `json:"status,omitempty"`
	Steps  map[string]string `json:"steps,omitempty"`
}

// LoadFromFile loads a workflow template definition from a YAML file
func LoadFromFile(filepath string) (*TemplateFile, error) {
	// Read file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a workflow template definition
func Parse(data []byte) (*TemplateFile, error) {
	var file TemplateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// Validate Kind field
	if file.Kind == "" {
		return nil, fmt.Errorf("'kind' field is required")
	}
	if file.Kind != KindWorkflowTemplate {
		return nil, fmt.Errorf("invalid kind '%s', must be '%s'", file.Kind, KindWorkflowTemplate)
	}

	if err := file.Spec.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *TemplateSpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("spec.name is required")
	}
	if len(s.Nodes) == 0 {
		return fmt.Errorf("spec.nodes is required and must not be empty")
	}

	seen := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.Key == "" {
			return fmt.Errorf("spec.nodes[%d].key is required", i)
		}
		if seen[n.Key] {
			return fmt.Errorf("spec.nodes[%d].key '%s' is duplicated", i, n.Key)
		}
		seen[n.Key] = true

		switch n.Type {
		case types.NodeAgent, types.NodeTool, types.NodeHumanGate, types.NodeRouter, types.NodeMemory:
		default:
			return fmt.Errorf("spec.nodes[%d].type '%s' is not a known node type", i, n.Type)
		}
	}

	for i, e := range s.Edges {
		if e.Source == "" || e.Target == "" {
			return fmt.Errorf("spec.edges[%d] needs both source and target", i)
		}
	}
	return nil
}

// DanglingEdges lists edges whose endpoints are not both declared nodes
func (f *TemplateFile) DanglingEdges() []EdgeSpec {
	keys := make(map[string]bool, len(f.Spec.Nodes))
	for _, n := range f.Spec.Nodes {
		keys[n.Key] = true
	}

	var dangling []EdgeSpec
	for _, e := range f.Spec.Edges {
		if !keys[e.Source] || !keys[e.Target] {
			dangling = append(dangling, e)
		}
	}
	return dangling
}

// ToDetail converts the file into the template detail served by the API
func (f *TemplateFile) ToDetail() *types.WorkflowTemplateDetail {
	version := f.Spec.Version
	if version == 0 {
		version = 1
	}

	detail := &types.WorkflowTemplateDetail{
		WorkflowTemplate: types.WorkflowTemplate{
			ID:      "local:" + f.Spec.Name,
			Name:    f.Spec.Name,
			Version: version,
		},
	}
	if f.Spec.Description != "" {
		desc := f.Spec.Description
		detail.Description = &desc
	}

	for _, n := range f.Spec.Nodes {
		cfg := n.Config
		if cfg == nil {
			cfg = map[string]any{}
		}
		detail.Nodes = append(detail.Nodes, types.WorkflowNode{
			ID:         n.Key,
			NodeKey:    n.Key,
			Type:       n.Type,
			ConfigJSON: cfg,
			PositionX:  n.X,
			PositionY:  n.Y,
		})
	}
	for _, e := range f.Spec.Edges {
		edge := types.WorkflowEdge{
			ID:            e.Source + "-" + e.Target,
			SourceNodeKey: e.Source,
			TargetNodeKey: e.Target,
			MetadataJSON:  map[string]any{},
		}
		if e.Condition != "" {
			cond := e.Condition
			edge.ConditionExpr = &cond
		}
		detail.Edges = append(detail.Edges, edge)
	}
	return detail
}

// ToCreateRequest converts the file into a template creation request for
// workspaceID; nodes keep their file order
func (f *TemplateFile) ToCreateRequest(workspaceID string) types.CreateTemplateRequest {
	version := f.Spec.Version
	if version == 0 {
		version = 1
	}

	req := types.CreateTemplateRequest{
		WorkspaceID: workspaceID,
		Name:        f.Spec.Name,
		Version:     version,
		Nodes:       make([]types.TemplateNodeInput, 0, len(f.Spec.Nodes)),
		Edges:       make([]types.TemplateEdgeInput, 0, len(f.Spec.Edges)),
	}
	if f.Spec.Description != "" {
		desc := f.Spec.Description
		req.Description = &desc
	}

	for i, n := range f.Spec.Nodes {
		cfg := n.Config
		if cfg == nil {
			cfg = map[string]any{}
		}
		node := types.TemplateNodeInput{
			NodeKey:    n.Key,
			Type:       n.Type,
			ConfigJSON: cfg,
			PositionX:  n.X,
			PositionY:  n.Y,
		}
		// the server orders nodes by x, so files without layout keep their order
		if node.PositionX == nil {
			x := float64(i*220 + 60)
			node.PositionX = &x
		}
		req.Nodes = append(req.Nodes, node)
	}
	for _, e := range f.Spec.Edges {
		edge := types.TemplateEdgeInput{
			SourceNodeKey: e.Source,
			TargetNodeKey: e.Target,
			MetadataJSON:  map[string]any{},
		}
		if e.Condition != "" {
			cond := e.Condition
			edge.ConditionExpr = &cond
		}
		req.Edges = append(req.Edges, edge)
	}
	return req
}

// ToRun converts the optional run overlay; steps follow node order
func (f *TemplateFile) ToRun() *types.WorkflowRun {
	if f.Run == nil {
		return nil
	}

	run := &types.WorkflowRun{ID: "preview", Status: f.Run.Status}
	for _, n := range f.Spec.Nodes {
		status, ok := f.Run.Steps[n.Key]
		if !ok {
			continue
		}
		run.Steps = append(run.Steps, types.WorkflowStep{
			ID:      "preview-" + n.Key,
			NodeKey: n.Key,
			Status:  status,
		})
	}
	return run
}
