package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/lecture-flow/internal/portal"
)

// ProgressFunc observes batch progress: called once after every job
// completes, success or failure.
type ProgressFunc func(completed, total int, label string)

// Orchestrator fans a batch of jobs through download, transcription and
// summarization with per-job failure isolation.
type Orchestrator interface {
	Run(ctx context.Context, sess *portal.Session, jobs []Job, progress ProgressFunc) []Outcome
}
