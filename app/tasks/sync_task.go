package tasks

import (
	"context"
	"log/slog"

	"github.com/Pianokruemel/TymR/app/engine"
)

type SyncTask struct {
	Task
	Request      engine.Request
	orchestrator OrchestratorInterface
}

func NewSyncTask(req engine.Request, orchestrator OrchestratorInterface) *SyncTask {
	return &SyncTask{
		Task:         NewTask(TaskTypeSync),
		Request:      req,
		orchestrator: orchestrator,
	}
}

func (t *SyncTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.orchestrator.Sync(ctx, t.Request); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "Sync",
		"mode", string(t.Request.Mode),
		"duration", t.GetDuration())

	return nil
}
