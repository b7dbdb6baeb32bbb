package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// orchestrationUsecase implements domain.OrchestrationUsecase
type orchestrationUsecase struct {
	workspaces    domain.WorkspaceRepository
	conversations domain.ConversationRepository
	runs          domain.RunRepository
	access        access
	maxSteps      int
	now           func() time.Time
	logger        *slog.Logger
}

// NewOrchestrationUsecase creates an OrchestrationUsecase; maxSteps is the
// circuit breaker budget of one turn
func NewOrchestrationUsecase(
	workspaces domain.WorkspaceRepository,
	conversations domain.ConversationRepository,
	runs domain.RunRepository,
	maxSteps int,
	logger *slog.Logger,
) domain.OrchestrationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &orchestrationUsecase{
		workspaces:    workspaces,
		conversations: conversations,
		runs:          runs,
		access:        access{workspaces: workspaces, conversations: conversations},
		maxSteps:      maxSteps,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger,
	}
}

// Chat runs one director turn on a thread: it stores the user prompt, plans,
// records a run with planning and drafting tasks and stores the reply
func (u *orchestrationUsecase) Chat(ctx context.Context, userID, conversationID, threadID string, in domain.ChatInput) (*domain.TurnResult, error) {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.Prompt) == "" {
		verr.Add("prompt must not be empty", "body", "prompt")
	}
	if in.AssistantAgentSlug != nil && len(*in.AssistantAgentSlug) > 120 {
		verr.Add("assistant_agent_slug must be at most 120 characters", "body", "assistant_agent_slug")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if in.MetadataJSON == nil {
		in.MetadataJSON = map[string]any{}
	}

	conv, err := u.access.conversationMember(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	thread, err := u.access.threadIn(ctx, threadID, conv.ID)
	if err != nil {
		return nil, err
	}

	plan := buildPlan(in.Prompt, thread.Kind)
	if err := checkStepBudget(len(plan), u.maxSteps); err != nil {
		return nil, err
	}
	route := routeForTask(in.Prompt)

	agent, err := u.resolveAgent(ctx, conv.WorkspaceID, in.AssistantAgentSlug)
	if err != nil {
		return nil, err
	}

	started := u.now()
	userMsg := &entity.Message{
		ThreadID: thread.ID,
		Role:     entity.RoleUser,
		ContentJSON: map[string]any{
			"text":     in.Prompt,
			"metadata": in.MetadataJSON,
		},
		CreatedBy: &userID,
		CreatedAt: started,
	}
	if err := u.conversations.AppendMessages(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store prompt: %w", err)
	}

	planningEnded := u.now()
	planning := &entity.Task{
		ID:        uuid.NewString(),
		TaskType:  taskPlanning,
		Status:    entity.StatusSucceeded,
		InputJSON: map[string]any{"prompt": in.Prompt},
		OutputJSON: map[string]any{
			"plan":             plan,
			"provider_routing": route.toJSON(),
		},
		StartedAt: &started,
		EndedAt:   &planningEnded,
		CreatedAt: planningEnded,
	}

	draftKind := "structured_outline"
	if thread.Kind == entity.ThreadQuick {
		draftKind = "quick_reply"
	}
	draftAt := u.now()
	draft := &entity.Task{
		ParentTaskID: &planning.ID,
		TaskType:     taskDraftContent,
		Status:       entity.StatusSucceeded,
		InputJSON:    map[string]any{"plan": plan},
		OutputJSON: map[string]any{
			"draft_kind":      draftKind,
			"draft_provider":  route.Draft,
			"refine_provider": route.Refine,
		},
		StartedAt: &draftAt,
		EndedAt:   &draftAt,
		CreatedAt: draftAt,
	}

	reply := &entity.Message{
		ThreadID: thread.ID,
		Role:     entity.RoleAssistant,
		ContentJSON: map[string]any{
			"text": assistantText(in.Prompt, thread.Kind, plan, route),
			"plan": plan,
			"agent": map[string]any{
				"id":           agent.ID,
				"slug":         agent.Slug,
				"display_name": agent.DisplayName,
			},
			"provider_routing": route.toJSON(),
		},
		CreatedAt: u.now(),
	}
	if err := u.conversations.AppendMessages(ctx, reply); err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}

	ended := u.now()
	convID, thID := conv.ID, thread.ID
	run := &entity.AgentRun{
		ConversationID: &convID,
		ThreadID:       &thID,
		AgentID:        agent.ID,
		Status:         entity.StatusSucceeded,
		InputJSON: map[string]any{
			"prompt":      in.Prompt,
			"thread_kind": string(thread.Kind),
			"metadata":    in.MetadataJSON,
		},
		OutputJSON: map[string]any{
			"assistant_message_id": reply.ID,
			"plan":                 plan,
			"provider_routing":     route.toJSON(),
			"tasks":                []string{taskPlanning, taskDraftContent},
		},
		StartedAt: &started,
		EndedAt:   &ended,
		CreatedAt: started,
	}
	tasks := []*entity.Task{planning, draft}
	if err := u.runs.SaveRun(ctx, run, tasks); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}

	u.logger.Info("director turn completed",
		"run_id", run.ID,
		"conversation_id", conv.ID,
		"thread_id", thread.ID,
		"thread_kind", thread.Kind,
	)

	return &domain.TurnResult{
		UserMessage:      userMsg,
		AssistantMessage: reply,
		Run:              run,
		Tasks:            tasks,
	}, nil
}

// resolveAgent prefers the requested agent, then the workspace director,
// and recreates the director when it is gone
func (u *orchestrationUsecase) resolveAgent(ctx context.Context, workspaceID string, slug *string) (*entity.Agent, error) {
	if slug != nil && *slug != "" {
		agent, err := u.workspaces.GetAgentBySlug(ctx, workspaceID, *slug)
		if err == nil {
			return agent, nil
		}
		if !domain.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get agent: %w", err)
		}
	}

	agent, err := u.workspaces.GetAgentBySlug(ctx, workspaceID, DirectorAgentSlug)
	if err == nil {
		return agent, nil
	}
	if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get director agent: %w", err)
	}

	agent = directorAgent(workspaceID)
	if err := u.workspaces.CreateAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to create director agent: %w", err)
	}
	return agent, nil
}

// GetRun returns an agent run visible to the user
func (u *orchestrationUsecase) GetRun(ctx context.Context, userID, runID string) (*entity.AgentRun, error) {
	run, err := u.runs.GetRun(ctx, runID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewMissingError("Run not found")
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run.ConversationID != nil {
		if _, err := u.access.conversationMember(ctx, *run.ConversationID, userID); err != nil {
			return nil, err
		}
	}
	return run, nil
}

// ListTasks returns a run's tasks in creation order
func (u *orchestrationUsecase) ListTasks(ctx context.Context, userID, runID string) ([]*entity.Task, error) {
	run, err := u.GetRun(ctx, userID, runID)
	if err != nil {
		return nil, err
	}
	tasks, err := u.runs.ListTasks(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// OpenStream loads a run and its tasks for the event stream
func (u *orchestrationUsecase) OpenStream(ctx context.Context, userID, runID string) (*domain.RunStream, error) {
	run, err := u.GetRun(ctx, userID, runID)
	if err != nil {
		return nil, err
	}
	tasks, err := u.runs.ListTasks(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return &domain.RunStream{Run: run, Tasks: tasks}, nil
}
