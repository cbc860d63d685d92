package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
)

// callGemini sends the prompt to Gemini and returns the raw completion.
// Rotates API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, prompt string) (string, error) {
	if len(s.cfg.Gemini.APIKeys) == 0 {
		return "", errs.NewConfiguration("at least one Gemini API key is required")
	}

	attempts := len(s.cfg.Gemini.APIKeys)
	var lastErr error

	for range attempts {
		key, idx := s.geminiKey()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.cfg.Gemini.Model, genai.Text(prompt), nil)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				s.logger.Warn(ctx, "Gemini key %d rate limited, rotating", idx+1)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", errs.NewSummarization("generate content", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text string
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text += part.Text
				}
			}
			return strings.TrimSpace(text), nil
		}

		return "", errs.NewSummarization("empty response from Gemini", nil)
	}

	return "", errs.NewSummarization("all Gemini API keys exhausted", lastErr)
}

// geminiKey returns the active key and its index under the rotation lock.
func (s *implSummarizer) geminiKey() (string, int) {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()
	return s.cfg.Gemini.APIKeys[s.currentKey], s.currentKey
}

func (s *implSummarizer) rotateKey() {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()
	s.currentKey = (s.currentKey + 1) % len(s.cfg.Gemini.APIKeys)
}
