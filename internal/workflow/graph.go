// Package workflow turns workflow templates and their runs into renderable
// graphs, and holds the state of the workflow panel.
package workflow

import (
	"fmt"
	"strings"

	"github.com/chazo1994/Creatory/internal/cli/types"
)

// Default layout when a template carries no position hints
const (
	defaultSpacingX = 220
	defaultOffsetX  = 60
	defaultY        = 120
)

// NodeState is the visual state of a node
type NodeState string

const (
	StateIdle      NodeState = "idle" // no step for the node in the run
	StateQueued    NodeState = "queued"
	StateRunning   NodeState = "running"
	StateWaiting   NodeState = "waiting_human"
	StateSucceeded NodeState = "succeeded"
	StateFailed    NodeState = "failed"
	StateCancelled NodeState = "cancelled"
	StateUnknown   NodeState = "unknown"
)

// StateOf maps a step status onto a node state
func StateOf(status string) NodeState {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "queued", "pending":
		return StateQueued
	case "running":
		return StateRunning
	case "waiting_human":
		return StateWaiting
	case "succeeded", "completed":
		return StateSucceeded
	case "failed":
		return StateFailed
	case "cancelled", "canceled":
		return StateCancelled
	default:
		return StateUnknown
	}
}

// Node is a renderable template node
type Node struct {
	Key   string
	Type  types.NodeType
	Label string
	X, Y  float64
	// Gate marks human_gate nodes; it depends on the type only, never on run status
	Gate   bool
	State  NodeState
	Status string
	Output map[string]any
}

// Edge is a renderable connection between two present nodes
type Edge struct {
	ID        string
	Source    string
	Target    string
	Condition string
}

// Graph is a template graph with the state of its latest run
type Graph struct {
	TemplateID string
	Name       string
	Version    int
	Nodes      []Node
	Edges      []Edge
	RunID      string
	RunStatus  string
}

// Node returns the node with key
func (g Graph) Node(key string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Key == key {
			return n, true
		}
	}
	return Node{}, false
}

// Build lays out detail's graph and colours it with run's steps. run may be
// nil. Edges whose endpoints are not both nodes of the template are left out.
func Build(detail *types.WorkflowTemplateDetail, run *types.WorkflowRun) Graph {
	var g Graph
	if detail == nil {
		return g
	}
	g.TemplateID = detail.ID
	g.Name = detail.Name
	g.Version = detail.Version

	steps := make(map[string]types.WorkflowStep)
	if run != nil {
		g.RunID = run.ID
		g.RunStatus = run.Status
		// a later step for the same node supersedes an earlier one
		for _, step := range run.Steps {
			steps[step.NodeKey] = step
		}
	}

	present := make(map[string]bool, len(detail.Nodes))
	g.Nodes = make([]Node, 0, len(detail.Nodes))
	for i, n := range detail.Nodes {
		if present[n.NodeKey] {
			continue
		}
		present[n.NodeKey] = true

		node := Node{
			Key:   n.NodeKey,
			Type:  n.Type,
			Label: fmt.Sprintf("%s · %s", n.NodeKey, n.Type),
			X:     float64(i*defaultSpacingX + defaultOffsetX),
			Y:     defaultY,
			Gate:  n.Type == types.NodeHumanGate,
			State: StateIdle,
		}
		if n.PositionX != nil {
			node.X = *n.PositionX
		}
		if n.PositionY != nil {
			node.Y = *n.PositionY
		}
		if step, ok := steps[n.NodeKey]; ok {
			node.State = StateOf(step.Status)
			node.Status = step.Status
			node.Output = step.OutputJSON
		}
		g.Nodes = append(g.Nodes, node)
	}

	g.Edges = make([]Edge, 0, len(detail.Edges))
	for _, e := range detail.Edges {
		if !present[e.SourceNodeKey] || !present[e.TargetNodeKey] {
			continue
		}
		edge := Edge{
			ID:     e.SourceNodeKey + "-" + e.TargetNodeKey,
			Source: e.SourceNodeKey,
			Target: e.TargetNodeKey,
		}
		if e.ConditionExpr != nil {
			edge.Condition = *e.ConditionExpr
		}
		g.Edges = append(g.Edges, edge)
	}
	return g
}

// Order returns node keys in dependency order, starting from nodes with no
// incoming edge. Nodes on a cycle keep their template order at the end.
func (g Graph) Order() []string {
	indegree := make(map[string]int, len(g.Nodes))
	next := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		indegree[e.Target]++
		next[e.Source] = append(next[e.Source], e.Target)
	}

	var queue, order []string
	for _, n := range g.Nodes {
		if indegree[n.Key] == 0 {
			queue = append(queue, n.Key)
		}
	}
	seen := make(map[string]bool, len(g.Nodes))
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if seen[key] {
			continue
		}
		seen[key] = true
		order = append(order, key)
		for _, t := range next[key] {
			indegree[t]--
			if indegree[t] == 0 {
				queue = append(queue, t)
			}
		}
	}
	for _, n := range g.Nodes {
		if !seen[n.Key] {
			order = append(order, n.Key)
		}
	}
	return order
}
