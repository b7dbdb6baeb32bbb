package entity

import "time"

// RunStatus is shared by agent runs, tasks, workflow runs and steps
type RunStatus string

const (
	StatusQueued       RunStatus = "queued"
	StatusRunning      RunStatus = "running"
	StatusWaitingHuman RunStatus = "waiting_human"
	StatusSucceeded    RunStatus = "succeeded"
	StatusFailed       RunStatus = "failed"
	StatusCancelled    RunStatus = "cancelled"
)

// AgentRun is produced by one director chat turn
type AgentRun struct {
	ID             string
	ConversationID *string
	ThreadID       *string
	AgentID        string
	Status         RunStatus
	InputJSON      map[string]any
	OutputJSON     map[string]any
	StartedAt      *time.Time
	EndedAt        *time.Time
	CreatedAt      time.Time
}

// Task is one unit of work inside an agent run
type Task struct {
	ID           string
	AgentRunID   string
	ParentTaskID *string
	TaskType     string
	Status       RunStatus
	InputJSON    map[string]any
	OutputJSON   map[string]any
	StartedAt    *time.Time
	EndedAt      *time.Time
	CreatedAt    time.Time
}
