package summarizer

import "context"

// Summarizer distills a lecture transcript into a bounded bullet list.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, title, speaker string) (string, error)
}
