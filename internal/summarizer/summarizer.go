package summarizer

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
)

const summaryPrompt = `Summarise the following conference lecture titled %q by %s into at most %d concise bullet points.
Use markdown "- " bullets, one key point per bullet. Keep clinical and technical terms exact.

Transcript:
---
%s
---`

// Summarize builds the summary prompt and requests a bounded completion at
// low temperature. The bullet cap is enforced locally afterwards: the prompt
// asks for it, clampBullets guarantees it.
func (s *implSummarizer) Summarize(ctx context.Context, transcript, title, speaker string) (string, error) {
	if speaker == "" {
		speaker = "unknown speaker"
	}

	prompt := fmt.Sprintf(summaryPrompt, title, speaker, s.cfg.Summary.MaxBullets, transcript)

	var raw string
	var err error
	switch s.cfg.Summary.Provider {
	case "gemini":
		raw, err = s.callGemini(ctx, prompt)
	default:
		raw, err = s.callOpenAI(ctx, prompt)
	}
	if err != nil {
		return "", err
	}

	notes := clampBullets(raw, s.cfg.Summary.MaxBullets)
	s.logger.Info(ctx, "Summary for %q: %d bullet(s)", title, countBullets(notes))
	return notes, nil
}

func (s *implSummarizer) requireOpenAIKey() error {
	if s.cfg.OpenAI.APIKey == "" {
		return errs.NewConfiguration("summarization API key is required")
	}
	return nil
}
