package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
	"github.com/nguyentantai21042004/lecture-flow/internal/portal"
	"github.com/nguyentantai21042004/lecture-flow/internal/summarizer"
)

// Run processes the batch through a bounded worker pool. Each worker holds a
// private sub-context derived from the shared authenticated session. One
// job's failure never stops the batch; outcomes keep input order so callers
// can correlate outcome i with job i. Cancellation stops launching new jobs
// and marks the unlaunched remainder failed; artifacts already written stay
// on disk.
func (o *implOrchestrator) Run(ctx context.Context, sess *portal.Session, jobs []Job, progress ProgressFunc) []Outcome {
	outcomes := make([]Outcome, len(jobs))
	sem := newSemaphore(o.cfg.Performance.MaxConcurrent)

	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	o.logger.Info(ctx, "Processing %d job(s), max %d concurrent", len(jobs), o.cfg.Performance.MaxConcurrent)

	for i := range jobs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(jobs); j++ {
				outcomes[j] = Outcome{Job: jobs[j], State: StateFailed, Err: err}
			}
			break
		}
		if err := sem.acquire(ctx); err != nil {
			for j := i; j < len(jobs); j++ {
				outcomes[j] = Outcome{Job: jobs[j], State: StateFailed, Err: err}
			}
			break
		}

		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			defer sem.release()

			outcomes[i] = o.process(ctx, sess.Derive(), job)

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()

			if outcomes[i].Done() {
				o.logger.Info(ctx, "[%d/%d] Done: %s", done, len(jobs), job.Result.Title)
			} else {
				o.logger.Error(ctx, "[%d/%d] Failed at %s: %s: %v", done, len(jobs), outcomes[i].FailedStage, job.Result.Title, outcomes[i].Err)
			}
			if progress != nil {
				progress(done, len(jobs), job.Result.Title)
			}
		}(i, jobs[i])
	}

	wg.Wait()
	return outcomes
}

// process walks one job through the state machine. Artifacts are written
// only when their stage succeeded; partials from a failed job are left in
// place for inspection.
func (o *implOrchestrator) process(ctx context.Context, sess *portal.Session, job Job) Outcome {
	out := Outcome{Job: job, State: StatePending}
	advance := func(s State) {
		out.State = s
		o.logger.Debug(ctx, "Job %s: %s", job.Slug, s)
	}

	if _, err := o.acquirer.Acquire(ctx, sess, job.Result.SourceURL, job.AudioPath); err != nil {
		return failed(job, StageDownload, err)
	}
	advance(StateAudioAcquired)

	transcript, err := o.transcribe.Transcribe(ctx, job.AudioPath)
	if err != nil {
		return failed(job, StageTranscribe, err)
	}
	if err := os.WriteFile(job.TranscriptPath, []byte(transcript+"\n"), 0644); err != nil {
		return failed(job, StageTranscribe, errs.NewTranscription("write transcript", err))
	}
	advance(StateTranscribed)

	notes, err := o.summarize.Summarize(ctx, transcript, job.Result.Title, job.Result.Speaker)
	if err != nil {
		return failed(job, StageSummarize, err)
	}
	if err := os.WriteFile(job.NotesPath, []byte(notes+"\n"), 0644); err != nil {
		return failed(job, StageSummarize, errs.NewSummarization("write notes", err))
	}
	advance(StateSummarized)

	if o.cfg.Summary.Docx {
		docxPath := strings.TrimSuffix(job.NotesPath, ".md") + ".docx"
		if err := summarizer.RenderDocx(job.Result.Title, notes, docxPath); err != nil {
			o.logger.Warn(ctx, "Failed to render notes docx %s: %v", docxPath, err)
		}
	}

	advance(StateDone)
	return out
}

func failed(job Job, stage Stage, err error) Outcome {
	var pe *errs.Error
	if errors.As(err, &pe) && pe.Stage == "" {
		pe.Stage = string(stage)
	}
	return Outcome{Job: job, State: StateFailed, FailedStage: stage, Err: err}
}
