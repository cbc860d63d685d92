package transcriber

import "context"

// Transcriber converts an audio file to plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
