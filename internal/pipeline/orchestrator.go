package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/doctoc/internal/config"
)

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("pipeline stopped")

// Orchestrator runs outline jobs on a pool of workers.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	proc  *Processor
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	mu      sync.RWMutex // guards stopped and the close of queue
	stopped bool
}

// Stats summarizes pipeline load.
type Stats struct {
	Workers    int               `json:"workers"`
	QueueDepth int               `json:"queue_depth"`
	QueueSize  int               `json:"queue_size"`
	Jobs       map[JobStatus]int `json:"jobs"`
}

// NewOrchestrator creates the pipeline. Call Start before submitting jobs.
func NewOrchestrator(cfg config.Config, proc *Processor, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		proc:  proc,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches cfg.WorkerCount workers and the job store janitor. They
// run until ctx is cancelled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.work(workerCtx, NewWorker(o.proc, o.jobs, o.log.With("worker", i)))
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.janitor(workerCtx, cleanupInterval(o.cfg.JobTTL))
	}()

	o.log.Debug("pipeline started", "workers", o.cfg.WorkerCount, "queue_size", o.cfg.MaxQueueSize)
}

func (o *Orchestrator) work(ctx context.Context, w *Worker) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.jobs.Cleanup()
		}
	}
}

// cleanupInterval sweeps at half the TTL, capped at five minutes.
func cleanupInterval(ttl time.Duration) time.Duration {
	every := ttl / 2
	if every <= 0 || every > 5*time.Minute {
		every = 5 * time.Minute
	}
	return every
}

// Stop cancels the workers and waits for them. Jobs still queued are
// failed so their waiters are released. Safe to call more than once.
func (o *Orchestrator) Stop() {
	o.once.Do(func() {
		if o.cancel != nil {
			o.cancel()
		}
		o.mu.Lock()
		o.stopped = true
		close(o.queue)
		o.mu.Unlock()
		o.wg.Wait()
		for job := range o.queue {
			job.AddError(ErrStopped.Error())
			job.SetStatus(StatusFailed, "queued")
		}
	})
}

// Submit registers job and queues it without blocking. A full queue or a
// stopped pipeline fails the job immediately.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.AddError(ErrStopped.Error())
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID, or nil once it has expired.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns the number of jobs waiting for a worker.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats reports worker, queue and job counts.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		Workers:    o.cfg.WorkerCount,
		QueueDepth: len(o.queue),
		QueueSize:  cap(o.queue),
		Jobs:       o.jobs.Counts(),
	}
}

// Processor returns the processor for synchronous use by API handlers.
func (o *Orchestrator) Processor() *Processor {
	return o.proc
}
