package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// callOpenAI requests a chat completion at the configured low temperature.
// Server and transport failures are retried; rate limiting and content
// rejection are surfaced as SummarizationError without retry.
func (s *implSummarizer) callOpenAI(ctx context.Context, prompt string) (string, error) {
	if err := s.requireOpenAIKey(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(chatRequest{
		Model:       s.cfg.OpenAI.ChatModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: s.cfg.OpenAI.Temperature,
		MaxTokens:   s.cfg.OpenAI.MaxTokens,
	})
	if err != nil {
		return "", errs.NewSummarization("encode completion request", err)
	}

	endpoint := strings.TrimRight(s.cfg.OpenAI.BaseURL, "/") + "/chat/completions"

	var content string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.cfg.OpenAI.APIKey)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("request rejected with %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("decode completion response: %w", err)
		}
		if parsed.Error != nil {
			return backoff.Permanent(fmt.Errorf("completion error: %s", parsed.Error.Message))
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("completion response has no choices")
		}

		content = strings.TrimSpace(parsed.Choices[0].Message.Content)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 90 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", errs.NewSummarization("completion request failed", err)
	}

	return content, nil
}
