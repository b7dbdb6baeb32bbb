package dto

import (
	"time"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// ChatRequest is the body of a chat turn
type ChatRequest struct {
	Prompt             string         `json:"prompt"`
	AssistantAgentSlug *string        `json:"assistant_agent_slug"`
	MetadataJSON       map[string]any `json:"metadata_json"`
}

// ToInput converts the request for the usecase layer
func (r *ChatRequest) ToInput() domain.ChatInput {
	return domain.ChatInput{
		Prompt:             r.Prompt,
		AssistantAgentSlug: r.AssistantAgentSlug,
		MetadataJSON:       r.MetadataJSON,
	}
}

// AgentRunResponse Agent 运行响应（HTTP）
type AgentRunResponse struct {
	ID             string         `json:"id"`
	ConversationID *string        `json:"conversation_id"`
	ThreadID       *string        `json:"thread_id"`
	AgentID        string         `json:"agent_id"`
	Status         string         `json:"status"`
	InputJSON      map[string]any `json:"input_json"`
	OutputJSON     map[string]any `json:"output_json"`
	StartedAt      *string        `json:"started_at"`
	EndedAt        *string        `json:"ended_at"`
	CreatedAt      string         `json:"created_at"`
}

// TaskResponse 任务响应（HTTP）
type TaskResponse struct {
	ID           string         `json:"id"`
	AgentRunID   string         `json:"agent_run_id"`
	ParentTaskID *string        `json:"parent_task_id"`
	TaskType     string         `json:"task_type"`
	Status       string         `json:"status"`
	InputJSON    map[string]any `json:"input_json"`
	OutputJSON   map[string]any `json:"output_json"`
	StartedAt    *string        `json:"started_at"`
	EndedAt      *string        `json:"ended_at"`
	CreatedAt    string         `json:"created_at"`
}

// ChatResponse is everything one chat turn produced
type ChatResponse struct {
	UserMessage      *MessageResponse  `json:"user_message"`
	AssistantMessage *MessageResponse  `json:"assistant_message"`
	AgentRun         *AgentRunResponse `json:"agent_run"`
	Tasks            []*TaskResponse   `json:"tasks"`
}

// RunEvent is the payload of an "event: run" frame
type RunEvent struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	At     string `json:"at"`
	Stage  string `json:"stage"`
}

// TaskEvent is the payload of an "event: task" frame
type TaskEvent struct {
	RunID    string `json:"run_id"`
	TaskID   string `json:"task_id"`
	TaskType string `json:"task_type"`
	Status   string `json:"status"`
	At       string `json:"at"`
}

// ToAgentRunResponse converts entity.AgentRun to AgentRunResponse DTO
func ToAgentRunResponse(run *entity.AgentRun) *AgentRunResponse {
	return &AgentRunResponse{
		ID:             run.ID,
		ConversationID: run.ConversationID,
		ThreadID:       run.ThreadID,
		AgentID:        run.AgentID,
		Status:         string(run.Status),
		InputJSON:      emptyIfNil(run.InputJSON),
		OutputJSON:     emptyIfNil(run.OutputJSON),
		StartedAt:      formatTimePtr(run.StartedAt),
		EndedAt:        formatTimePtr(run.EndedAt),
		CreatedAt:      formatTime(run.CreatedAt),
	}
}

// ToTaskResponse converts entity.Task to TaskResponse DTO
func ToTaskResponse(task *entity.Task) *TaskResponse {
	return &TaskResponse{
		ID:           task.ID,
		AgentRunID:   task.AgentRunID,
		ParentTaskID: task.ParentTaskID,
		TaskType:     task.TaskType,
		Status:       string(task.Status),
		InputJSON:    emptyIfNil(task.InputJSON),
		OutputJSON:   emptyIfNil(task.OutputJSON),
		StartedAt:    formatTimePtr(task.StartedAt),
		EndedAt:      formatTimePtr(task.EndedAt),
		CreatedAt:    formatTime(task.CreatedAt),
	}
}

// ToTaskList converts tasks in order
func ToTaskList(list []*entity.Task) []*TaskResponse {
	out := make([]*TaskResponse, len(list))
	for i, task := range list {
		out[i] = ToTaskResponse(task)
	}
	return out
}

// ToChatResponse converts a director turn
func ToChatResponse(turn *domain.TurnResult) *ChatResponse {
	return &ChatResponse{
		UserMessage:      ToMessageResponse(turn.UserMessage),
		AssistantMessage: ToMessageResponse(turn.AssistantMessage),
		AgentRun:         ToAgentRunResponse(turn.Run),
		Tasks:            ToTaskList(turn.Tasks),
	}
}

// NewRunEvent builds a run frame for stage "start" or "final"
func NewRunEvent(run *entity.AgentRun, stage string, at time.Time) RunEvent {
	return RunEvent{
		RunID:  run.ID,
		Status: string(run.Status),
		At:     formatTime(at),
		Stage:  stage,
	}
}

// NewTaskEvent builds a task frame
func NewTaskEvent(task *entity.Task, at time.Time) TaskEvent {
	return TaskEvent{
		RunID:    task.AgentRunID,
		TaskID:   task.ID,
		TaskType: task.TaskType,
		Status:   string(task.Status),
		At:       formatTime(at),
	}
}
