package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chalimba/papertree/internal/extract"
	"github.com/chalimba/papertree/internal/paper"
	"github.com/chalimba/papertree/internal/paperstore"
)

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"paper_id": snap.PaperID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")
	rec, err := s.orchestrator.StoreClient().GetTree(r.Context(), paperID)
	if err != nil {
		jsonError(w, "failed to load tree: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		jsonError(w, "tree not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// handleRenumber re-runs the numbering engine over a paper's stored
// blocks and reports what changed. On an unedited paper the change set
// is empty; a non-empty set after a pattern-file update shows exactly
// which nodes the new patterns touched.
func (s *Server) handleRenumber(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")
	ctx := r.Context()
	store := s.orchestrator.StoreClient()

	rec, err := store.GetTree(ctx, paperID)
	if err != nil {
		jsonError(w, "failed to load tree: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil || rec.Tree == nil {
		jsonError(w, "tree not found", http.StatusNotFound)
		return
	}

	fresh, diags, err := s.orchestrator.Engine().Extract(paper.RawDocument{
		PaperID: paperID,
		Name:    rec.Tree.Name,
		Blocks:  rec.Tree.Blocks(),
	})
	if err != nil {
		jsonError(w, "numbering failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	changes := extract.Compare(rec.Tree, fresh)

	if err := store.PutTree(ctx, paperID, paperstore.TreeRecord{Tree: fresh, Diagnostics: diags}); err != nil {
		jsonError(w, "failed to store tree: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"paper_id":    paperID,
		"changes":     changes,
		"diagnostics": diags,
		"nodes":       len(fresh.Nodes),
		"total_marks": fresh.TotalMarks(),
	})
}

func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.orchestrator.StoreClient().ListPapers(r.Context(), 200)
	if err != nil {
		jsonError(w, "failed to list papers: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if papers == nil {
		papers = []paperstore.PaperMeta{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"papers": papers})
}

func (s *Server) handleDeletePaper(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")
	if err := s.orchestrator.StoreClient().DeletePaper(r.Context(), paperID); err != nil {
		jsonError(w, "failed to delete paper: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": paperID})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"extraction":  s.orchestrator.Stats().Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
