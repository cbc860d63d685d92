package portal

import (
	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
)

type implPortal struct {
	cfg    *config.Config
	logger logger.Logger
}

// New creates a Portal client for the configured library.
func New(cfg *config.Config, log logger.Logger) Portal {
	return &implPortal{
		cfg:    cfg,
		logger: log,
	}
}
