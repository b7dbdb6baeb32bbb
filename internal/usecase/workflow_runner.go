package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/chazo1994/Creatory/internal/domain/entity"
)

const humanGateMessage = "Awaiting creator confirmation before continuing."

// sortNodes orders nodes by x position (missing positions last), then key
func sortNodes(nodes []*entity.WorkflowNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		switch {
		case a.PositionX == nil && b.PositionX != nil:
			return false
		case a.PositionX != nil && b.PositionX == nil:
			return true
		case a.PositionX != nil && b.PositionX != nil && *a.PositionX != *b.PositionX:
			return *a.PositionX < *b.PositionX
		}
		return a.NodeKey < b.NodeKey
	})
}

func sortEdges(edges []*entity.WorkflowEdge) {
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].SourceNodeKey != edges[j].SourceNodeKey {
			return edges[i].SourceNodeKey < edges[j].SourceNodeKey
		}
		return edges[i].TargetNodeKey < edges[j].TargetNodeKey
	})
}

// runRequest is one workflow execution
type runRequest struct {
	graph          *entity.TemplateGraph
	createdBy      string
	conversationID *string
	input          map[string]any
	maxSteps       int
	now            func() time.Time
}

// executeWorkflow walks the nodes in order. Agent, tool, router and memory
// nodes succeed immediately; the first human gate pauses the run with
// waiting_human. A template larger than the step budget fails before any
// step runs; the failed run is returned together with the budget error.
func executeWorkflow(req runRequest) (*entity.RunDetail, error) {
	nodes := append([]*entity.WorkflowNode(nil), req.graph.Nodes...)
	sortNodes(nodes)

	started := req.now()
	run := &entity.WorkflowRun{
		TemplateID:     req.graph.Template.ID,
		ConversationID: req.conversationID,
		Status:         entity.StatusRunning,
		InputJSON:      req.input,
		OutputJSON:     map[string]any{},
		StartedAt:      &started,
		CreatedBy:      req.createdBy,
		CreatedAt:      started,
	}
	detail := &entity.RunDetail{Run: run, Steps: []*entity.WorkflowRunStep{}}

	if err := checkStepBudget(len(nodes), req.maxSteps); err != nil {
		ended := req.now()
		run.Status = entity.StatusFailed
		run.OutputJSON = runOutput(0, len(nodes), entity.StatusFailed)
		run.EndedAt = &ended
		return detail, err
	}

	status := entity.StatusSucceeded
	for _, node := range nodes {
		stepStarted := req.now()
		step := &entity.WorkflowRunStep{
			NodeKey:   node.NodeKey,
			InputJSON: map[string]any{"node": node.NodeKey, "type": string(node.Type)},
			Attempt:   1,
			StartedAt: &stepStarted,
			CreatedAt: stepStarted,
		}

		if node.Type == entity.NodeHumanGate {
			step.Status = entity.StatusWaitingHuman
			step.OutputJSON = map[string]any{
				"message":    humanGateMessage,
				"human_gate": true,
			}
			ended := req.now()
			step.EndedAt = &ended
			detail.Steps = append(detail.Steps, step)
			status = entity.StatusWaitingHuman
			break
		}

		config := node.ConfigJSON
		if config == nil {
			config = map[string]any{}
		}
		step.Status = entity.StatusSucceeded
		step.OutputJSON = map[string]any{
			"message": fmt.Sprintf("Node %s executed successfully", node.NodeKey),
			"summary": map[string]any{
				"agentic": node.Type == entity.NodeAgent || node.Type == entity.NodeTool,
				"config":  config,
			},
		}
		ended := req.now()
		step.EndedAt = &ended
		detail.Steps = append(detail.Steps, step)
	}

	run.Status = status
	run.OutputJSON = runOutput(len(detail.Steps), len(nodes), status)
	if status != entity.StatusWaitingHuman {
		ended := req.now()
		run.EndedAt = &ended
	}
	return detail, nil
}

func runOutput(completed, total int, status entity.RunStatus) map[string]any {
	return map[string]any{
		"steps_completed": completed,
		"steps_total":     total,
		"final_status":    string(status),
	}
}
