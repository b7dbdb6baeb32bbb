package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

var (
	_ domain.UserRepository         = (*Store)(nil)
	_ domain.WorkspaceRepository    = (*Store)(nil)
	_ domain.ConversationRepository = (*Store)(nil)
	_ domain.RunRepository          = (*Store)(nil)
	_ domain.WorkflowRepository     = (*Store)(nil)
)

type memberKey struct {
	workspaceID string
	userID      string
}

type agentKey struct {
	workspaceID string
	slug        string
}

type templateKey struct {
	workspaceID string
	name        string
	version     int
}

// Store is an in-process implementation of every repository. Records are
// copied on the way in and out; ids and creation times are assigned when
// the caller left them empty.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users        map[string]*entity.User
	usersByEmail map[string]string

	workspaces     map[string]*entity.Workspace
	workspaceOrder []string
	slugs          map[string]struct{}
	memberships    map[memberKey]*entity.Membership
	agents         map[agentKey]*entity.Agent

	conversations     map[string]*entity.Conversation
	conversationOrder []string
	threads           map[string]*entity.Thread
	threadOrder       map[string][]string
	messages          map[string]*entity.Message
	messageOrder      map[string][]string
	injections        map[string]*entity.ContextInjection

	runs     map[string]*entity.AgentRun
	runTasks map[string][]*entity.Task

	templates     map[string]*entity.TemplateGraph
	templateOrder []string
	templateKeys  map[templateKey]string
	workflowRuns  map[string]*entity.RunDetail
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces the clock used for creation times
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:           func() time.Time { return time.Now().UTC() },
		users:         make(map[string]*entity.User),
		usersByEmail:  make(map[string]string),
		workspaces:    make(map[string]*entity.Workspace),
		slugs:         make(map[string]struct{}),
		memberships:   make(map[memberKey]*entity.Membership),
		agents:        make(map[agentKey]*entity.Agent),
		conversations: make(map[string]*entity.Conversation),
		threads:       make(map[string]*entity.Thread),
		threadOrder:   make(map[string][]string),
		messages:      make(map[string]*entity.Message),
		messageOrder:  make(map[string][]string),
		injections:    make(map[string]*entity.ContextInjection),
		runs:          make(map[string]*entity.AgentRun),
		runTasks:      make(map[string][]*entity.Task),
		templates:     make(map[string]*entity.TemplateGraph),
		templateKeys:  make(map[templateKey]string),
		workflowRuns:  make(map[string]*entity.RunDetail),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (s *Store) stamp(t *time.Time) {
	if t.IsZero() {
		*t = s.now()
	}
}

// ============ users ============

// Create stores a new user
func (s *Store) Create(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.usersByEmail[email]; ok {
		return domain.NewAlreadyExistsError("User", email)
	}

	assignID(&user.ID)
	s.stamp(&user.CreatedAt)
	user.Email = email

	stored := *user
	s.users[user.ID] = &stored
	s.usersByEmail[email] = user.ID
	return nil
}

// GetByEmail looks a user up by email, ignoring case
func (s *Store) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.NewNotFoundError("User", email)
	}
	u := *s.users[id]
	return &u, nil
}

// GetByID looks a user up by id
func (s *Store) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.users[userID]
	if !ok {
		return nil, domain.NewNotFoundError("User", userID)
	}
	u := *stored
	return &u, nil
}

// UpdateLastLogin records the login time
func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[userID]
	if !ok {
		return domain.NewNotFoundError("User", userID)
	}
	now := s.now()
	stored.LastLoginAt = &now
	return nil
}

// ============ workspaces ============

// CreateWorkspace stores ws and makes its owner a member
func (s *Store) CreateWorkspace(ctx context.Context, ws *entity.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.slugs[ws.Slug]; taken {
		return domain.NewAlreadyExistsError("Workspace", ws.Slug)
	}

	assignID(&ws.ID)
	s.stamp(&ws.CreatedAt)

	stored := *ws
	s.workspaces[ws.ID] = &stored
	s.workspaceOrder = append(s.workspaceOrder, ws.ID)
	s.slugs[ws.Slug] = struct{}{}
	s.memberships[memberKey{ws.ID, ws.OwnerID}] = &entity.Membership{
		WorkspaceID: ws.ID,
		UserID:      ws.OwnerID,
		Role:        entity.RoleOwner,
	}
	return nil
}

// GetWorkspace looks a workspace up by id
func (s *Store) GetWorkspace(ctx context.Context, workspaceID string) (*entity.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.workspaces[workspaceID]
	if !ok {
		return nil, domain.NewNotFoundError("Workspace", workspaceID)
	}
	ws := *stored
	return &ws, nil
}

// ListWorkspaces returns the workspaces userID is a member of, newest first
func (s *Store) ListWorkspaces(ctx context.Context, userID string, offset, limit int) ([]*entity.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.Workspace
	for i := len(s.workspaceOrder) - 1; i >= 0; i-- {
		id := s.workspaceOrder[i]
		if _, member := s.memberships[memberKey{id, userID}]; !member {
			continue
		}
		ws := *s.workspaces[id]
		out = append(out, &ws)
	}
	return paginate(out, offset, limit), nil
}

// SlugExists reports whether a workspace already uses slug
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.slugs[slug]
	return ok, nil
}

// GetMembership returns the user's membership of a workspace
func (s *Store) GetMembership(ctx context.Context, workspaceID, userID string) (*entity.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.memberships[memberKey{workspaceID, userID}]
	if !ok {
		return nil, domain.NewNotFoundError("Membership", workspaceID)
	}
	m := *stored
	return &m, nil
}

// CreateAgent stores an agent; slugs are unique per workspace
func (s *Store) CreateAgent(ctx context.Context, agent *entity.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := agentKey{agent.WorkspaceID, agent.Slug}
	if _, ok := s.agents[key]; ok {
		return domain.NewAlreadyExistsError("Agent", agent.Slug)
	}

	assignID(&agent.ID)
	s.stamp(&agent.CreatedAt)

	stored := *agent
	s.agents[key] = &stored
	return nil
}

// GetAgentBySlug looks an agent up within a workspace
func (s *Store) GetAgentBySlug(ctx context.Context, workspaceID, slug string) (*entity.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.agents[agentKey{workspaceID, slug}]
	if !ok {
		return nil, domain.NewNotFoundError("Agent", slug)
	}
	a := *stored
	return &a, nil
}

// paginate applies offset and limit; a non-positive limit keeps everything
func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
