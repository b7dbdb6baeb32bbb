package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/querycache"
	"github.com/chazo1994/Creatory/internal/session"
)

// RunMode is the mode sent in every run's input envelope
const RunMode = "studio"

// API is the slice of the orchestration API the panel needs
type API interface {
	ListTemplates(ctx context.Context, workspaceID string) ([]types.WorkflowTemplate, error)
	GetTemplate(ctx context.Context, templateID string) (*types.WorkflowTemplateDetail, error)
	RunTemplate(ctx context.Context, templateID string, req types.RunTemplateRequest) (*types.WorkflowRun, error)
}

// SessionReader supplies the current identity and selection
type SessionReader interface {
	Snapshot() session.Snapshot
}

// TemplatesKey is the cache key of a workspace's template list
func TemplatesKey(workspaceID string) querycache.Key {
	return querycache.NewKey("workflow-templates", workspaceID)
}

// TemplateKey is the cache key of one template's detail
func TemplateKey(templateID string) querycache.Key {
	return querycache.NewKey("workflow-template", templateID)
}

// Panel holds the template selection and the latest run of the workflow view.
// Runs are not streamed: each run's steps arrive as one batch and replace the
// previous run's steps.
type Panel struct {
	api       API
	session   SessionReader
	logger    *slog.Logger
	now       func() time.Time
	templates *querycache.Cache[[]types.WorkflowTemplate]
	details   *querycache.Cache[*types.WorkflowTemplateDetail]

	mu          sync.Mutex
	workspaceID string
	selected    string
	lastRun     *types.WorkflowRun
	runTemplate string
}

// NewPanel creates a panel over api reading selection from sess
func NewPanel(api API, sess SessionReader, logger *slog.Logger) *Panel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Panel{
		api:       api,
		session:   sess,
		logger:    logger.With("component", "workflow"),
		now:       time.Now,
		templates: querycache.New[[]types.WorkflowTemplate](),
		details:   querycache.New[*types.WorkflowTemplateDetail](),
	}
}

func (p *Panel) workspace() (string, error) {
	snap := p.session.Snapshot()
	if !snap.Authenticated() {
		return "", domain.NewUnauthenticatedError()
	}
	if snap.WorkspaceID == "" {
		return "", domain.NewNoSelectionError("workspace")
	}
	return snap.WorkspaceID, nil
}

// Templates lists the selected workspace's templates and selects the first
// one when nothing is selected yet.
func (p *Panel) Templates(ctx context.Context) ([]types.WorkflowTemplate, error) {
	wsID, err := p.workspace()
	if err != nil {
		return nil, err
	}

	templates, err := p.templates.Get(ctx, TemplatesKey(wsID), func(ctx context.Context) ([]types.WorkflowTemplate, error) {
		templates, err := p.api.ListTemplates(ctx, wsID)
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		return templates, nil
	})
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.workspaceID != wsID {
		p.workspaceID = wsID
		p.selected = ""
	}
	if p.selected == "" && len(templates) > 0 {
		p.selected = templates[0].ID
	}
	return templates, nil
}

// Select makes templateID the selected template
func (p *Panel) Select(templateID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = templateID
	p.workspaceID = p.session.Snapshot().WorkspaceID
}

// Selected returns the selected template id, or ""
func (p *Panel) Selected() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// Detail returns the selected template with its nodes and edges
func (p *Panel) Detail(ctx context.Context) (*types.WorkflowTemplateDetail, error) {
	if _, err := p.workspace(); err != nil {
		return nil, err
	}
	templateID := p.Selected()
	if templateID == "" {
		return nil, domain.NewNoSelectionError("template")
	}

	return p.details.Get(ctx, TemplateKey(templateID), func(ctx context.Context) (*types.WorkflowTemplateDetail, error) {
		detail, err := p.api.GetTemplate(ctx, templateID)
		if err != nil {
			return nil, fmt.Errorf("get template %s: %w", templateID, err)
		}
		return detail, nil
	})
}

// Run runs the selected template against the selected conversation, which may
// be none. The returned steps replace those of the previous run.
func (p *Panel) Run(ctx context.Context) (*types.WorkflowRun, error) {
	if _, err := p.workspace(); err != nil {
		return nil, err
	}
	templateID := p.Selected()
	if templateID == "" {
		return nil, domain.NewNoSelectionError("template")
	}

	req := types.RunTemplateRequest{InputJSON: p.envelope()}
	if convID := p.session.Snapshot().ConversationID; convID != "" {
		req.ConversationID = &convID
	}

	run, err := p.api.RunTemplate(ctx, templateID, req)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.lastRun = run
	p.runTemplate = templateID
	p.mu.Unlock()

	p.details.Invalidate(TemplateKey(templateID))
	p.logger.Debug("workflow run completed", "template_id", templateID, "run_id", run.ID, "status", run.Status, "steps", len(run.Steps))
	return run, nil
}

func (p *Panel) envelope() map[string]any {
	return map[string]any{
		"mode":      RunMode,
		"timestamp": p.now().UTC().Format(time.RFC3339Nano),
	}
}

// LastRun returns the latest run of the selected template, or nil
func (p *Panel) LastRun() *types.WorkflowRun {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastRun == nil || p.runTemplate != p.selected {
		return nil
	}
	return p.lastRun
}

// Graph builds the selected template's graph coloured by its latest run
func (p *Panel) Graph(ctx context.Context) (Graph, error) {
	detail, err := p.Detail(ctx)
	if err != nil {
		return Graph{}, err
	}
	return Build(detail, p.LastRun()), nil
}
