package pipeline

import "sync"

// StatsSnapshot is a point-in-time aggregate of extraction outcomes.
type StatsSnapshot struct {
	PapersProcessed int     `json:"papers_processed"`
	PapersFailed    int     `json:"papers_failed"`
	Nodes           int     `json:"nodes"`
	Questions       int     `json:"questions"`
	MarksDetected   int     `json:"marks_detected"`
	MarksMissing    int     `json:"marks_missing"`
	Orphans         int     `json:"orphans"`
	DuplicateMerges int     `json:"duplicate_merges"`
	MarkDetectRate  float64 `json:"mark_detect_rate"`
}

// ExtractionStats accumulates counters across jobs. Mark-detection
// rate is the headline quality signal for the heuristics: a sudden
// drop after a pattern-file change is the first thing operators look
// at.
type ExtractionStats struct {
	mu   sync.Mutex
	snap StatsSnapshot
}

func NewExtractionStats() *ExtractionStats {
	return &ExtractionStats{}
}

// RecordRun folds one completed extraction into the counters.
func (s *ExtractionStats) RecordRun(nodes, questions, missingMarks, orphans, dupMerges int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.PapersProcessed++
	s.snap.Nodes += nodes
	s.snap.Questions += questions
	s.snap.MarksMissing += missingMarks
	s.snap.MarksDetected += questions - missingMarks
	s.snap.Orphans += orphans
	s.snap.DuplicateMerges += dupMerges
}

// RecordFailure counts a job that never produced a tree.
func (s *ExtractionStats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.PapersFailed++
}

// Snapshot returns a copy of the counters with the derived rate filled
// in.
func (s *ExtractionStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap
	if snap.Questions > 0 {
		snap.MarkDetectRate = float64(snap.MarksDetected) / float64(snap.Questions)
	}
	return snap
}
