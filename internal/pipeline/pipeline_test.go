package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/portal"
)

type fakeAcquirer struct {
	calls atomic.Int64
	fail  map[string]bool // sourceURL -> fail
}

func (f *fakeAcquirer) Acquire(ctx context.Context, sess *portal.Session, sourceURL, destPath string) (string, error) {
	f.calls.Add(1)
	if f.fail[sourceURL] {
		return "", errs.NewDownload("no playable stream", nil)
	}
	if err := os.WriteFile(destPath, []byte("audio"), 0644); err != nil {
		return "", err
	}
	return destPath, nil
}

type fakeTranscriber struct {
	calls atomic.Int64
	err   error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return "transcript of " + audioPath, nil
}

type fakeSummarizer struct {
	calls atomic.Int64
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript, title, speaker string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return "- summary of " + title, nil
}

func testJobs(t *testing.T, n int) []Job {
	t.Helper()
	outDir := t.TempDir()
	results := make([]portal.SearchResult, n)
	for i := range results {
		results[i] = portal.SearchResult{
			Title:     fmt.Sprintf("Lecture %d", i+1),
			SourceURL: fmt.Sprintf("https://library.example.org/video/%d", i+1),
		}
	}
	return NewJobs(results, outDir)
}

func newTestOrchestrator(acq *fakeAcquirer, tr *fakeTranscriber, sum *fakeSummarizer) Orchestrator {
	cfg := &config.Config{
		Performance: config.PerformanceConfig{MaxConcurrent: 2},
	}
	return New(cfg, acq, tr, sum, logger.New("error"))
}

func TestRunAllSucceed(t *testing.T) {
	acq, tr, sum := &fakeAcquirer{}, &fakeTranscriber{}, &fakeSummarizer{}
	orch := newTestOrchestrator(acq, tr, sum)
	jobs := testJobs(t, 3)

	var progressCalls atomic.Int64
	outcomes := orch.Run(context.Background(), &portal.Session{}, jobs, func(completed, total int, label string) {
		progressCalls.Add(1)
		assert.Equal(t, 3, total)
	})

	require.Len(t, outcomes, 3)
	for i, o := range outcomes {
		assert.True(t, o.Done(), "job %d should be done: %v", i, o.Err)
		assert.Equal(t, jobs[i].Slug, o.Job.Slug, "outcome order must match input order")
		assert.FileExists(t, o.Job.TranscriptPath)
		assert.FileExists(t, o.Job.NotesPath)
	}
	assert.Equal(t, int64(3), progressCalls.Load())
}

func TestRunIsolatesDownloadFailure(t *testing.T) {
	jobs := testJobs(t, 3)
	acq := &fakeAcquirer{fail: map[string]bool{jobs[1].Result.SourceURL: true}}
	tr, sum := &fakeTranscriber{}, &fakeSummarizer{}
	orch := newTestOrchestrator(acq, tr, sum)

	outcomes := orch.Run(context.Background(), &portal.Session{}, jobs, nil)

	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Done())
	assert.True(t, outcomes[2].Done())

	failed := outcomes[1]
	assert.Equal(t, StateFailed, failed.State)
	assert.Equal(t, StageDownload, failed.FailedStage)
	assert.True(t, errs.Is(failed.Err, errs.KindDownload))
	assert.NoFileExists(t, failed.Job.TranscriptPath)
	assert.NoFileExists(t, failed.Job.NotesPath)
}

func TestRunTranscriptionFailureLeavesNoNotes(t *testing.T) {
	jobs := testJobs(t, 2)
	acq := &fakeAcquirer{}
	tr := &fakeTranscriber{err: errs.NewTranscription("request timed out", context.DeadlineExceeded)}
	sum := &fakeSummarizer{}
	orch := newTestOrchestrator(acq, tr, sum)

	outcomes := orch.Run(context.Background(), &portal.Session{}, jobs, nil)

	for _, o := range outcomes {
		assert.Equal(t, StateFailed, o.State)
		assert.Equal(t, StageTranscribe, o.FailedStage)
		assert.True(t, errs.Is(o.Err, errs.KindTranscription))
		// Audio stays on disk for inspection, notes are never written.
		assert.FileExists(t, o.Job.AudioPath)
		assert.NoFileExists(t, o.Job.NotesPath)
	}
	assert.Equal(t, int64(0), sum.calls.Load())
}

func TestRunCanceledBeforeStart(t *testing.T) {
	acq, tr, sum := &fakeAcquirer{}, &fakeTranscriber{}, &fakeSummarizer{}
	orch := newTestOrchestrator(acq, tr, sum)
	jobs := testJobs(t, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := orch.Run(ctx, &portal.Session{}, jobs, nil)

	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.Equal(t, StateFailed, o.State)
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.Equal(t, int64(0), acq.calls.Load(), "no stage should launch after cancellation")
}

// recordingLogger captures formatted log lines for assertions.
type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) record(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(msg, args...))
}

func (l *recordingLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.record(msg, args...)
}

func (l *recordingLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.record(msg, args...)
}

func (l *recordingLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.record(msg, args...)
}

func (l *recordingLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.record(msg, args...)
}

func (l *recordingLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

func TestRunAdvancesJobStates(t *testing.T) {
	log := &recordingLogger{}
	cfg := &config.Config{Performance: config.PerformanceConfig{MaxConcurrent: 1}}
	orch := New(cfg, &fakeAcquirer{}, &fakeTranscriber{}, &fakeSummarizer{}, log)
	jobs := testJobs(t, 1)

	outcomes := orch.Run(context.Background(), &portal.Session{}, jobs, nil)
	require.True(t, outcomes[0].Done())

	prefix := "Job " + jobs[0].Slug + ": "
	var states []string
	for _, m := range log.all() {
		if strings.HasPrefix(m, prefix) {
			states = append(states, strings.TrimPrefix(m, prefix))
		}
	}
	assert.Equal(t, []string{"audio_acquired", "transcribed", "summarized", "done"}, states)
}

func TestRunRendersDocxNotes(t *testing.T) {
	outDir := t.TempDir()
	jobs := NewJobs([]portal.SearchResult{{Title: "Lecture One", SourceURL: "u1"}}, outDir)
	cfg := &config.Config{
		Performance: config.PerformanceConfig{MaxConcurrent: 1},
		Summary:     config.SummaryConfig{Docx: true},
	}
	orch := New(cfg, &fakeAcquirer{}, &fakeTranscriber{}, &fakeSummarizer{}, logger.New("error"))

	outcomes := orch.Run(context.Background(), &portal.Session{}, jobs, nil)
	require.True(t, outcomes[0].Done())
	assert.FileExists(t, filepath.Join(outDir, "Lecture_One.notes.docx"))
}

func TestRunRecordsStageOnError(t *testing.T) {
	jobs := testJobs(t, 1)
	acq := &fakeAcquirer{}
	tr := &fakeTranscriber{}
	sum := &fakeSummarizer{err: errs.NewSummarization("rate limited", nil)}
	orch := newTestOrchestrator(acq, tr, sum)

	outcomes := orch.Run(context.Background(), &portal.Session{}, jobs, nil)

	o := outcomes[0]
	assert.Equal(t, StageSummarize, o.FailedStage)
	var pe *errs.Error
	require.ErrorAs(t, o.Err, &pe)
	assert.Equal(t, string(StageSummarize), pe.Stage)
	// Transcript from the stage that succeeded stays in place.
	assert.FileExists(t, o.Job.TranscriptPath)
}
