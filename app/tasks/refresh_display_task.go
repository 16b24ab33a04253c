package tasks

import (
	"context"
	"log/slog"
)

// RefreshDisplayTask re-publishes the current selection from cached feed
// text only, keeping countdowns fresh between full sync cycles.
type RefreshDisplayTask struct {
	Task
	orchestrator OrchestratorInterface
}

func NewRefreshDisplayTask(orchestrator OrchestratorInterface) *RefreshDisplayTask {
	return &RefreshDisplayTask{
		Task:         NewTask(TaskTypeRefreshDisplay),
		orchestrator: orchestrator,
	}
}

func (t *RefreshDisplayTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.orchestrator.RefreshDisplay(ctx); err != nil {
		return err
	}

	slog.Debug("Task completed",
		"type", "RefreshDisplay",
		"duration", t.GetDuration())

	return nil
}
