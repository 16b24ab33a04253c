package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Pianokruemel/TymR/app/engine"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler drives the sync engine on two tickers: full sync passes at
// syncInterval and cache-only display refreshes at displayInterval. A
// single worker executes tasks, so sync cycles never overlap; enqueueing
// a new sync cancels the in-flight one and replaces any pending one.
type Scheduler struct {
	orchestrator    OrchestratorInterface
	syncInterval    time.Duration
	displayInterval time.Duration
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	syncQueue       chan *SyncTask
	displayQueue    chan *RefreshDisplayTask
	mu              sync.Mutex
	cancelInflight  context.CancelFunc
}

func NewScheduler(orchestrator OrchestratorInterface, syncInterval, displayInterval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		orchestrator:    orchestrator,
		syncInterval:    syncInterval,
		displayInterval: displayInterval,
		ctx:             ctx,
		cancel:          cancel,
		syncQueue:       make(chan *SyncTask, 1),
		displayQueue:    make(chan *RefreshDisplayTask, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		syncTicker := time.NewTicker(s.syncInterval)
		defer syncTicker.Stop()
		displayTicker := time.NewTicker(s.displayInterval)
		defer displayTicker.Stop()

		// One immediate pass at startup, then the periodic cycle.
		if err := s.EnqueueSync(engine.Request{Mode: engine.ModeScheduled}); err != nil {
			slog.Warn("Failed to enqueue startup sync", "error", err)
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-syncTicker.C:
				if err := s.EnqueueSync(engine.Request{Mode: engine.ModeScheduled}); err != nil {
					slog.Warn("Failed to enqueue scheduled sync", "error", err)
				}
			case <-displayTicker.C:
				if err := s.EnqueueDisplayRefresh(); err != nil {
					slog.Warn("Failed to enqueue display refresh", "error", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.syncQueue)
	close(s.displayQueue)
}

// EnqueueSync schedules a sync pass. Any in-flight pass is canceled and a
// pending one is dropped: the latest request wins, cycles are never queued
// behind each other.
func (s *Scheduler) EnqueueSync(req engine.Request) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	s.mu.Lock()
	if s.cancelInflight != nil {
		s.cancelInflight()
	}
	s.mu.Unlock()

	task := NewSyncTask(req, s.orchestrator)
	for {
		select {
		case s.syncQueue <- task:
			return nil
		default:
			// Drop the superseded pending task and retry.
			select {
			case stale := <-s.syncQueue:
				slog.Debug("Dropped superseded sync task", "id", stale.GetID())
			default:
			}
		}
	}
}

// EnqueueDisplayRefresh schedules a cache-only republish. A refresh that
// is already pending makes a new one redundant.
func (s *Scheduler) EnqueueDisplayRefresh() error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.displayQueue <- NewRefreshDisplayTask(s.orchestrator):
	default:
	}
	return nil
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case task, ok := <-s.syncQueue:
			if !ok {
				return
			}
			s.executeSync(task)
		case task, ok := <-s.displayQueue:
			if !ok {
				return
			}
			s.executeTask(task)
		}
	}
}

// executeSync runs a sync task with a cancel hook registered so a later
// EnqueueSync can supersede it mid-flight.
func (s *Scheduler) executeSync(task *SyncTask) {
	taskCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.mu.Lock()
	s.cancelInflight = cancel
	s.mu.Unlock()

	task.Start()
	err := task.Execute(taskCtx)

	s.mu.Lock()
	s.cancelInflight = nil
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Debug("Sync task superseded", "id", task.GetID())
		} else {
			slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "error", err)
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	if err := task.Execute(s.ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Debug("Task canceled during shutdown", "type", string(task.GetType()), "id", task.GetID())
		} else {
			slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "error", err)
		}
	}
}
