package pipeline

import (
	"time"

	"github.com/leonardotrapani/chunkscribe/internal/segment"
)

// State is the furthest point a file reached.
type State string

const (
	Pending        State = "pending"
	Probed         State = "probed"
	Direct         State = "direct"
	Converted      State = "converted"
	ConvertedSplit State = "converted_split"
	Dispatched     State = "dispatched"
	Adjusted       State = "adjusted"
	Merged         State = "merged"
	Persisted      State = "persisted"
	Failed         State = "failed"
)

// Status is the user-facing verdict for a file.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// SegmentIssue records why one unit is missing from the artifact.
type SegmentIssue struct {
	Index int
	Err   error
}

// FileResult is the outcome for one source file.
type FileResult struct {
	Path     string
	Output   string
	Decision segment.Decision
	State    State
	Segments int
	Gaps     []int
	Issues   []SegmentIssue
	Refined  int
	Err      error
	Elapsed  time.Duration
}

func (r FileResult) Status() Status {
	switch {
	case r.State != Persisted:
		return StatusFailed
	case len(r.Gaps) > 0:
		return StatusPartial
	default:
		return StatusOK
	}
}

// Summary is the outcome of a batch.
type Summary struct {
	RunID   string
	Files   []FileResult
	Cleanup []error
	Elapsed time.Duration
}

// Count returns how many files ended with status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, f := range s.Files {
		if f.Status() == status {
			n++
		}
	}
	return n
}

// OK reports whether every file was transcribed without gaps.
func (s *Summary) OK() bool {
	return s.Count(StatusOK) == len(s.Files)
}
