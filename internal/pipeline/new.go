package pipeline

import (
	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/media"
	"github.com/nguyentantai21042004/lecture-flow/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-flow/internal/transcriber"
)

type implOrchestrator struct {
	cfg        *config.Config
	acquirer   media.Acquirer
	transcribe transcriber.Transcriber
	summarize  summarizer.Summarizer
	logger     logger.Logger
}

// New creates an Orchestrator over the three stage implementations.
func New(cfg *config.Config, acq media.Acquirer, tr transcriber.Transcriber, sum summarizer.Summarizer, log logger.Logger) Orchestrator {
	return &implOrchestrator{
		cfg:        cfg,
		acquirer:   acq,
		transcribe: tr,
		summarize:  sum,
		logger:     log,
	}
}
