package transcriber

import (
	"net/http"
	"time"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
)

type implTranscriber struct {
	cfg    *config.Config
	client *http.Client
	logger logger.Logger
}

// New creates a Transcriber backed by the configured speech-to-text API.
func New(cfg *config.Config, log logger.Logger) Transcriber {
	return &implTranscriber{
		cfg: cfg,
		// Generous client timeout: the file is uploaded whole, unchunked.
		client: &http.Client{Timeout: 10 * time.Minute},
		logger: log,
	}
}
