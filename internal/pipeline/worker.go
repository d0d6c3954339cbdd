package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
)

// Worker processes a single document job.
type Worker struct {
	proc *Processor
	jobs *JobStore
	log  *slog.Logger
}

func NewWorker(proc *Processor, jobs *JobStore, log *slog.Logger) *Worker {
	return &Worker{
		proc: proc,
		jobs: jobs,
		log:  log,
	}
}

// Process parses the job's file, builds its outline and stores the rendered
// document on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "queued")
		return
	}

	// Identical bytes with the same extension parse to the same tree.
	key := dedupKey(job)
	if prev := w.jobs.Lookup(key); prev != nil && prev != job {
		if r := prev.Result(); reusable(r, prev, job) {
			log.Info("duplicate document, reusing result", "existing_job_id", prev.ID)
			job.SetResult(r)
			job.SetStatus(StatusDuplicate, "dedup")
			return
		}
	}

	job.SetStatus(StatusBuilding, "building")
	res, err := w.proc.Outline(job.FileData(), job.Filename)
	if err != nil {
		log.Error("outline failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "building")
		return
	}

	job.SetResult(res)
	w.jobs.Remember(key, job)
	log.Info("outline complete", "headings", res.Outline.Count(), "collisions", len(res.Collisions))
	job.SetStatus(StatusCompleted, "done")
}

// reusable reports whether prev's result also describes job. A title taken
// from the filename only carries over between files with the same name.
func reusable(r *Result, prev, job *Job) bool {
	if r == nil {
		return false
	}
	return !r.Untitled || stem(prev.Filename) == stem(job.Filename)
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func dedupKey(job *Job) string {
	return strings.ToLower(filepath.Ext(job.Filename)) + ":" + job.ContentHash
}
