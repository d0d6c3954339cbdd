package pipeline

import (
	"context"
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob("a.html", []byte("<h2>x</h2>"))
	b := NewJob("a.html", []byte("<h2>x</h2>"))

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, a.Status)
	}
	if a.ContentHash != b.ContentHash {
		t.Error("expected identical content hashes")
	}
	if string(a.FileData()) != "<h2>x</h2>" {
		t.Errorf("unexpected file data %q", a.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("doc.html", nil)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusBuilding, "building"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_TerminalStatusIsFinal(t *testing.T) {
	job := NewJob("doc.html", nil)
	job.SetStatus(StatusFailed, "building")
	job.SetStatus(StatusCompleted, "done")

	if job.Status != StatusFailed {
		t.Errorf("expected status to stay %q, got %q", StatusFailed, job.Status)
	}
}

func TestJob_Wait(t *testing.T) {
	job := NewJob("doc.html", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := job.Wait(ctx); err == nil {
		t.Fatal("expected Wait to time out on a queued job")
	}

	go job.SetStatus(StatusCompleted, "done")
	if err := job.Wait(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJob_AddError(t *testing.T) {
	job := NewJob("doc.html", nil)
	job.AddError("parse failed")
	job.AddError("render failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "parse failed" {
		t.Errorf("expected first error %q, got %q", "parse failed", snap.Progress.Errors[0])
	}
}

func TestJob_SnapshotSlicesNotNil(t *testing.T) {
	job := NewJob("doc.html", nil)
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Progress.Collisions == nil {
		t.Error("expected non-nil collisions slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)
	store.Remember("html:old", expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)
	store.Remember("html:new", fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Lookup("html:old") != nil {
		t.Error("expected expired dedup entry to be cleaned up")
	}
	if store.Get("new") == nil || store.Lookup("html:new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
