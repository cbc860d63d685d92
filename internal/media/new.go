package media

import (
	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/pkg/executor"
)

type implAcquirer struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
}

// New creates an Acquirer backed by the configured downloader binary.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Acquirer {
	return &implAcquirer{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
