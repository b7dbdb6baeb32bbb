package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashes  = regexp.MustCompile(`-{2,}`)
)

// workspaceUsecase implements domain.WorkspaceUsecase
type workspaceUsecase struct {
	workspaces domain.WorkspaceRepository
	workflows  domain.WorkflowRepository
	access     access
	logger     *slog.Logger
}

// NewWorkspaceUsecase creates a WorkspaceUsecase
func NewWorkspaceUsecase(
	workspaces domain.WorkspaceRepository,
	conversations domain.ConversationRepository,
	workflows domain.WorkflowRepository,
	logger *slog.Logger,
) domain.WorkspaceUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &workspaceUsecase{
		workspaces: workspaces,
		workflows:  workflows,
		access:     access{workspaces: workspaces, conversations: conversations},
		logger:     logger,
	}
}

// Create stores a workspace owned by userID
func (u *workspaceUsecase) Create(ctx context.Context, userID, name string, slug *string) (*entity.Workspace, error) {
	name = strings.TrimSpace(name)
	verr := &domain.ValidationError{}
	if name == "" || len(name) > 120 {
		verr.Add("name must be 1-120 characters", "body", "name")
	}
	if slug != nil && len(*slug) > 120 {
		verr.Add("slug must be at most 120 characters", "body", "slug")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	source := name
	if slug != nil && *slug != "" {
		source = *slug
	}
	unique, err := u.uniqueSlug(ctx, source)
	if err != nil {
		return nil, err
	}

	ws := &entity.Workspace{Name: name, Slug: unique, OwnerID: userID}
	if err := u.workspaces.CreateWorkspace(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	if err := bootstrapWorkspace(ctx, u.workspaces, u.workflows, ws); err != nil {
		return nil, err
	}

	u.logger.Info("workspace created", "workspace_id", ws.ID, "slug", ws.Slug, "owner_id", userID)
	return ws, nil
}

// List returns the user's workspaces, newest first
func (u *workspaceUsecase) List(ctx context.Context, userID string, page domain.Page) ([]*entity.Workspace, error) {
	page = clampPage(page, 20, 100)
	list, err := u.workspaces.ListWorkspaces(ctx, userID, page.Offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return list, nil
}

// Get returns a workspace the user is a member of
func (u *workspaceUsecase) Get(ctx context.Context, userID, workspaceID string) (*entity.Workspace, error) {
	if _, err := u.access.workspaceMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	ws, err := u.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewMissingError("Workspace not found")
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return ws, nil
}

// uniqueSlug appends -1, -2, ... until the slug is free
func (u *workspaceUsecase) uniqueSlug(ctx context.Context, source string) (string, error) {
	base := slugify(source)
	if base == "" {
		base = "workspace-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := u.workspaces.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func slugify(value string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
