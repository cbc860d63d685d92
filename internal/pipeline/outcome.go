package pipeline

// Stage is one pipeline step.
type Stage string

const (
	StageDownload   Stage = "download"
	StageTranscribe Stage = "transcribe"
	StageSummarize  Stage = "summarize"
)

// State is the per-job position in the state machine.
type State string

const (
	StatePending       State = "pending"
	StateAudioAcquired State = "audio_acquired"
	StateTranscribed   State = "transcribed"
	StateSummarized    State = "summarized"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// Outcome is the terminal result for one job. Outcome i always corresponds
// to input job i, whatever order the workers finished in.
type Outcome struct {
	Job         Job
	State       State
	FailedStage Stage
	Err         error
}

// Done reports whether the job produced all of its artifacts.
func (o Outcome) Done() bool {
	return o.State == StateDone
}
