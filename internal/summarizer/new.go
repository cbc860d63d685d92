package summarizer

import (
	"net/http"
	"sync"
	"time"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
)

type implSummarizer struct {
	cfg    *config.Config
	client *http.Client
	logger logger.Logger

	// keyMu guards currentKey: one Summarizer is shared across workers.
	keyMu      sync.Mutex
	currentKey int
}

// New creates a Summarizer for the configured completion provider.
func New(cfg *config.Config, log logger.Logger) Summarizer {
	return &implSummarizer{
		cfg:    cfg,
		client: &http.Client{Timeout: 2 * time.Minute},
		logger: log,
	}
}
