package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chalimba/papertree/internal/extract"
	"github.com/chalimba/papertree/internal/paperstore"
)

func newTestJob(data string) *Job {
	now := time.Now()
	job := &Job{
		ID:          "job-1",
		PaperID:     "paper-1",
		Status:      StatusQueued,
		Filename:    "paper.txt",
		Name:        "paper",
		ContentHash: ContentHashHex([]byte(data)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	job.SetFileData([]byte(data))
	return job
}

func newTestWorker(storeURL string) (*Worker, *ExtractionStats) {
	stats := NewExtractionStats()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(extract.NewDefault(), paperstore.NewClient(storeURL, "k"), stats, log, false)
	return w, stats
}

func TestWorker_ProcessCompletes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/by_hash/"):
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	w, stats := newTestWorker(srv.URL)
	job := newTestJob("1 First question. (3 marks)\n\n2 Second question.")
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", job.Status)
	}
	snap := stats.Snapshot()
	if snap.PapersProcessed != 1 || snap.PapersFailed != 0 {
		t.Errorf("stats = %+v", snap)
	}
	if job.Snapshot().Progress.Questions != 2 {
		t.Errorf("progress = %+v", job.Snapshot().Progress)
	}
}

func TestWorker_StoreFailureCountsAsFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/by_hash/"):
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			// Non-retryable, so the worker gives up immediately.
			http.Error(w, "rejected", http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	w, stats := newTestWorker(srv.URL)
	job := newTestJob("1 Only question.")
	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if snap := stats.Snapshot(); snap.PapersFailed != 1 {
		t.Errorf("store failure not counted: %+v", snap)
	}
}

func TestWorker_UnsupportedFormatFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	w, stats := newTestWorker(srv.URL)
	job := newTestJob("whatever")
	job.Filename = "paper.exe"
	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if snap := stats.Snapshot(); snap.PapersFailed != 1 {
		t.Errorf("parse failure not counted: %+v", snap)
	}
}
