package usecase

import (
	"context"
	"fmt"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

const (
	// DirectorAgentSlug is the system agent every workspace starts with
	DirectorAgentSlug = "main-director"

	starterTemplateName = "Short Video Pipeline"
)

func directorAgent(workspaceID string) *entity.Agent {
	return &entity.Agent{
		WorkspaceID: workspaceID,
		Slug:        DirectorAgentSlug,
		DisplayName: "Main Director Agent",
		PersonaPrompt: "You are the central coordinator for creator workflows. " +
			"Break ideas into concrete tasks, propose tool calls, and keep outputs ready for publishing.",
		ConfigJSON: map[string]any{
			"mode":                 "director",
			"supports_dual_stream": true,
			"supports_injection":   true,
		},
		IsSystem: true,
	}
}

func starterTemplate(ws *entity.Workspace) *entity.TemplateGraph {
	description := "Starter agentic pipeline for short-form content production."
	node := func(key string, typ entity.NodeType, x float64, config map[string]any) *entity.WorkflowNode {
		y := 120.0
		return &entity.WorkflowNode{NodeKey: key, Type: typ, ConfigJSON: config, PositionX: &x, PositionY: &y}
	}
	edge := func(source, target string) *entity.WorkflowEdge {
		return &entity.WorkflowEdge{SourceNodeKey: source, TargetNodeKey: target, MetadataJSON: map[string]any{}}
	}

	return &entity.TemplateGraph{
		Template: &entity.WorkflowTemplate{
			WorkspaceID: ws.ID,
			Name:        starterTemplateName,
			Description: &description,
			Version:     1,
			DefinitionJSON: map[string]any{
				"objective": "Transform an idea into a ready-to-publish short video package",
				"category":  "short-form",
			},
			CreatedBy: ws.OwnerID,
		},
		Nodes: []*entity.WorkflowNode{
			node("research", entity.NodeAgent, 60, map[string]any{"agent": "trend-researcher"}),
			node("script", entity.NodeAgent, 320, map[string]any{"agent": "script-writer"}),
			node("visuals", entity.NodeTool, 580, map[string]any{"tool_group": "image-video-gen"}),
			node("human_review", entity.NodeHumanGate, 840, map[string]any{"required": true, "label": "Creator Review"}),
		},
		Edges: []*entity.WorkflowEdge{
			edge("research", "script"),
			edge("script", "visuals"),
			edge("visuals", "human_review"),
		},
	}
}

// bootstrapWorkspace adds the director agent and the starter template when
// they are missing
func bootstrapWorkspace(ctx context.Context, workspaces domain.WorkspaceRepository, workflows domain.WorkflowRepository, ws *entity.Workspace) error {
	if _, err := workspaces.GetAgentBySlug(ctx, ws.ID, DirectorAgentSlug); err != nil {
		if !domain.IsNotFound(err) {
			return fmt.Errorf("failed to look up director agent: %w", err)
		}
		if err := workspaces.CreateAgent(ctx, directorAgent(ws.ID)); err != nil && !domain.IsAlreadyExists(err) {
			return fmt.Errorf("failed to create director agent: %w", err)
		}
	}

	exists, err := workflows.TemplateExists(ctx, ws.ID, starterTemplateName, 1)
	if err != nil {
		return fmt.Errorf("failed to look up starter template: %w", err)
	}
	if exists {
		return nil
	}
	if err := workflows.CreateTemplate(ctx, starterTemplate(ws)); err != nil && !domain.IsConflict(err) {
		return fmt.Errorf("failed to create starter template: %w", err)
	}
	return nil
}
