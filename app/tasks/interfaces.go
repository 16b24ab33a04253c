package tasks

import (
	"context"
	"time"

	"github.com/Pianokruemel/TymR/app/engine"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	Start()
	GetDuration() time.Duration
}

// OrchestratorInterface is the slice of the sync engine the task layer
// drives.
type OrchestratorInterface interface {
	Sync(ctx context.Context, req engine.Request) error
	RefreshDisplay(ctx context.Context) error
}

var _ OrchestratorInterface = (*engine.Orchestrator)(nil)

// TaskSchedulerInterface defines the interface for background task
// scheduling. EnqueueSync supersedes any in-flight or pending sync cycle
// (latest wins); sync cycles never overlap.
// Example usage:
//
//	scheduler := NewScheduler(orchestrator, 15*time.Minute, time.Minute)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueSync(engine.Request{Mode: engine.ModeForceAll})
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueSync(req engine.Request) error
	EnqueueDisplayRefresh() error
}
