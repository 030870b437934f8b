package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chalimba/papertree/internal/extract"
	"github.com/chalimba/papertree/internal/paper"
	"github.com/chalimba/papertree/internal/paperstore"
	"github.com/chalimba/papertree/internal/parser"
)

// Worker processes a single paper extraction job.
type Worker struct {
	engine      *extract.Engine
	store       *paperstore.Client
	stats       *ExtractionStats
	log         *slog.Logger
	pdfFallback bool
}

func NewWorker(engine *extract.Engine, store *paperstore.Client, stats *ExtractionStats, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{
		engine:      engine,
		store:       store,
		stats:       stats,
		log:         log,
		pdfFallback: pdfFallback,
	}
}

// Process runs the full pipeline for a job: capture blocks, run the
// numbering engine, persist the tree.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "paper_id", job.PaperID)

	// Phase 1: Parse into blocks.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		w.stats.RecordFailure()
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.pdfFallback
	}

	blocks, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		w.stats.RecordFailure()
		return
	}
	job.SetTotalBlocks(len(blocks))

	// Dedup check against previously stored papers.
	if existing, err := w.store.FindByHash(ctx, job.ContentHash); err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if existing != nil && existing.ID != job.PaperID {
		log.Info("duplicate paper, skipping", "existing_paper_id", existing.ID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Run the numbering engine. Zero blocks is a valid empty
	// paper, not an error.
	job.SetStatus(StatusNumbering, "numbering")
	tree, diags, err := w.engine.Extract(paper.RawDocument{
		PaperID: job.PaperID,
		Name:    job.Name,
		Blocks:  blocks,
	})
	if err != nil {
		log.Error("numbering failed", "error", err)
		job.AddError(fmt.Sprintf("numbering: %s", err))
		job.SetStatus(StatusFailed, "numbering")
		w.stats.RecordFailure()
		return
	}
	questions := tree.QuestionCount()
	job.SetTreeCounts(len(tree.Nodes), questions, tree.TotalMarks(), len(diags.Orphans), len(diags.MissingMarks))
	w.stats.RecordRun(len(tree.Nodes), questions, len(diags.MissingMarks), len(diags.Orphans), len(diags.DuplicatesMerged))
	log.Info("numbering complete",
		"nodes", len(tree.Nodes),
		"questions", questions,
		"total_marks", tree.TotalMarks(),
		"orphans", len(diags.Orphans),
		"missing_marks", len(diags.MissingMarks),
	)

	// Phase 3: Persist.
	job.SetStatus(StatusStoring, "storing")
	meta := paperstore.PaperMeta{
		ID:          job.PaperID,
		Name:        job.Name,
		Filename:    job.Filename,
		ContentHash: job.ContentHash,
		TotalMarks:  tree.TotalMarks(),
		Questions:   questions,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
	}
	if err := w.withRetry(ctx, log, "put paper", func() error {
		return w.store.PutPaper(ctx, meta)
	}); err != nil {
		job.AddError(fmt.Sprintf("store paper: %s", err))
		job.SetStatus(StatusFailed, "storing")
		w.stats.RecordFailure()
		return
	}
	if err := w.withRetry(ctx, log, "put tree", func() error {
		return w.store.PutTree(ctx, job.PaperID, paperstore.TreeRecord{Tree: tree, Diagnostics: diags})
	}); err != nil {
		job.AddError(fmt.Sprintf("store tree: %s", err))
		job.SetStatus(StatusFailed, "storing")
		w.stats.RecordFailure()
		return
	}

	job.SetStatus(StatusCompleted, "done")
}

// withRetry retries transient store errors with backoff.
func (w *Worker) withRetry(ctx context.Context, log *slog.Logger, op string, fn func() error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		log.Warn("retryable store error", "op", op, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
