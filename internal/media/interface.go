package media

import (
	"context"

	"github.com/nguyentantai21042004/lecture-flow/internal/portal"
)

// Acquirer downloads the best available audio-only stream for a catalog
// entry to local storage.
type Acquirer interface {
	Acquire(ctx context.Context, sess *portal.Session, sourceURL, destPath string) (string, error)
}
