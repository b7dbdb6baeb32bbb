package memory

import (
	"context"
	"fmt"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// CreateTemplate stores a template graph; name and version are unique per
// workspace
func (s *Store) CreateTemplate(ctx context.Context, graph *entity.TemplateGraph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl := graph.Template
	key := templateKey{tpl.WorkspaceID, tpl.Name, tpl.Version}
	if _, ok := s.templateKeys[key]; ok {
		return domain.NewConflictError("Template name/version already exists in this workspace")
	}

	assignID(&tpl.ID)
	s.stamp(&tpl.CreatedAt)
	for _, n := range graph.Nodes {
		n.TemplateID = tpl.ID
		assignID(&n.ID)
	}
	for _, e := range graph.Edges {
		e.TemplateID = tpl.ID
		assignID(&e.ID)
	}

	s.templates[tpl.ID] = cloneGraph(graph)
	s.templateOrder = append(s.templateOrder, tpl.ID)
	s.templateKeys[key] = tpl.ID
	return nil
}

// GetTemplate returns a copy of the template graph
func (s *Store) GetTemplate(ctx context.Context, templateID string) (*entity.TemplateGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.templates[templateID]
	if !ok {
		return nil, domain.NewNotFoundError("WorkflowTemplate", templateID)
	}
	return cloneGraph(stored), nil
}

// ListTemplates returns a workspace's templates, newest first
func (s *Store) ListTemplates(ctx context.Context, workspaceID string, offset, limit int) ([]*entity.WorkflowTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.WorkflowTemplate
	for i := len(s.templateOrder) - 1; i >= 0; i-- {
		stored := s.templates[s.templateOrder[i]].Template
		if stored.WorkspaceID != workspaceID {
			continue
		}
		t := *stored
		out = append(out, &t)
	}
	return paginate(out, offset, limit), nil
}

// TemplateExists reports whether name and version are taken in a workspace
func (s *Store) TemplateExists(ctx context.Context, workspaceID, name string, version int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.templateKeys[templateKey{workspaceID, name, version}]
	return ok, nil
}

// SaveWorkflowRun stores a run and replaces its steps
func (s *Store) SaveWorkflowRun(ctx context.Context, detail *entity.RunDetail) error {
	if detail == nil || detail.Run == nil {
		return fmt.Errorf("workflow run is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run := detail.Run
	assignID(&run.ID)
	s.stamp(&run.CreatedAt)
	for _, step := range detail.Steps {
		step.WorkflowRunID = run.ID
		assignID(&step.ID)
		s.stamp(&step.CreatedAt)
	}

	s.workflowRuns[run.ID] = cloneRunDetail(detail)
	return nil
}

// GetWorkflowRun returns a copy of a run and its steps
func (s *Store) GetWorkflowRun(ctx context.Context, runID string) (*entity.RunDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.workflowRuns[runID]
	if !ok {
		return nil, domain.NewNotFoundError("WorkflowRun", runID)
	}
	return cloneRunDetail(stored), nil
}

func cloneGraph(g *entity.TemplateGraph) *entity.TemplateGraph {
	tpl := *g.Template
	out := &entity.TemplateGraph{
		Template: &tpl,
		Nodes:    make([]*entity.WorkflowNode, 0, len(g.Nodes)),
		Edges:    make([]*entity.WorkflowEdge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		c := *n
		out.Nodes = append(out.Nodes, &c)
	}
	for _, e := range g.Edges {
		c := *e
		out.Edges = append(out.Edges, &c)
	}
	return out
}

func cloneRunDetail(d *entity.RunDetail) *entity.RunDetail {
	run := *d.Run
	out := &entity.RunDetail{Run: &run, Steps: make([]*entity.WorkflowRunStep, 0, len(d.Steps))}
	for _, s := range d.Steps {
		c := *s
		out.Steps = append(out.Steps, &c)
	}
	return out
}
