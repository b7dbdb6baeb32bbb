package memory

import (
	"context"

	"github.com/chazo1994/Creatory/internal/domain"
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// SaveRun stores run and replaces its task list
func (s *Store) SaveRun(ctx context.Context, run *entity.AgentRun, tasks []*entity.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignID(&run.ID)
	s.stamp(&run.CreatedAt)

	stored := *run
	s.runs[run.ID] = &stored

	copied := make([]*entity.Task, 0, len(tasks))
	for _, t := range tasks {
		t.AgentRunID = run.ID
		assignID(&t.ID)
		s.stamp(&t.CreatedAt)
		c := *t
		copied = append(copied, &c)
	}
	s.runTasks[run.ID] = copied
	return nil
}

// GetRun looks an agent run up by id
func (s *Store) GetRun(ctx context.Context, runID string) (*entity.AgentRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.runs[runID]
	if !ok {
		return nil, domain.NewNotFoundError("Run", runID)
	}
	r := *stored
	return &r, nil
}

// ListTasks returns a run's tasks in creation order
func (s *Store) ListTasks(ctx context.Context, runID string) ([]*entity.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.runTasks[runID]
	out := make([]*entity.Task, 0, len(stored))
	for _, t := range stored {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}
