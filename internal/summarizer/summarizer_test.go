package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
)

func testSummarizerConfig(t *testing.T, baseURL, apiKey string) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Portal: config.PortalConfig{BaseURL: "https://library.example.org"},
		OpenAI: config.OpenAIConfig{BaseURL: baseURL, APIKey: apiKey},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

// completionServer replies to /chat/completions with a fixed content string
// and hands the last prompt back to the test.
func completionServer(t *testing.T, content string, lastPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		if lastPrompt != nil {
			*lastPrompt = req.Messages[0].Content
		}

		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}{})
		resp.Choices[0].Message.Content = content
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSummarize(t *testing.T) {
	var prompt string
	srv := completionServer(t, "- key point one\n- key point two", &prompt)

	sum := New(testSummarizerConfig(t, srv.URL, "sk-test"), logger.New("error"))
	notes, err := sum.Summarize(context.Background(), "the transcript", "Case Review: TIPS", "Dr. Example")
	require.NoError(t, err)

	assert.Equal(t, "- key point one\n- key point two", notes)
	assert.Contains(t, prompt, `"Case Review: TIPS"`)
	assert.Contains(t, prompt, "Dr. Example")
	assert.Contains(t, prompt, "at most 15")
	assert.Contains(t, prompt, "the transcript")
}

func TestSummarizeUnknownSpeaker(t *testing.T) {
	var prompt string
	srv := completionServer(t, "- a point", &prompt)

	sum := New(testSummarizerConfig(t, srv.URL, "sk-test"), logger.New("error"))
	_, err := sum.Summarize(context.Background(), "text", "Untitled", "")
	require.NoError(t, err)
	assert.Contains(t, prompt, "unknown speaker")
}

func TestSummarizeClampsOverproducedBullets(t *testing.T) {
	srv := completionServer(t, bulletList(25), nil)

	cfg := testSummarizerConfig(t, srv.URL, "sk-test")
	cfg.Summary.MaxBullets = 10
	sum := New(cfg, logger.New("error"))

	notes, err := sum.Summarize(context.Background(), "text", "Long Lecture", "s")
	require.NoError(t, err)
	assert.Equal(t, 10, countBullets(notes))
}

func TestSummarizeMissingKey(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	t.Cleanup(srv.Close)

	sum := New(testSummarizerConfig(t, srv.URL, ""), logger.New("error"))
	_, err := sum.Summarize(context.Background(), "text", "t", "s")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfiguration))
	assert.Equal(t, int64(0), requests.Load())
}

func TestSummarizeRateLimited(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, `{"error":{"message":"rate limit"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	sum := New(testSummarizerConfig(t, srv.URL, "sk-test"), logger.New("error"))
	_, err := sum.Summarize(context.Background(), "text", "t", "s")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindSummarization))
	assert.Equal(t, int64(1), requests.Load(), "client rejections must not be retried")
}

func TestSummarizeEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always empty: the retry loop gives up within its elapsed budget,
		// but the context deadline below cuts it short.
		require.NoError(t, json.NewEncoder(w).Encode(chatResponse{}))
	}))
	t.Cleanup(srv.Close)

	sum := New(testSummarizerConfig(t, srv.URL, "sk-test"), logger.New("error"))
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := sum.Summarize(ctx, "text", "t", "s")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindSummarization))
}

func TestSummarizeTrimsWhitespace(t *testing.T) {
	srv := completionServer(t, "\n\n- padded point\n\n", nil)

	sum := New(testSummarizerConfig(t, srv.URL, "sk-test"), logger.New("error"))
	notes, err := sum.Summarize(context.Background(), "text", "t", "s")
	require.NoError(t, err)
	assert.Equal(t, "- padded point", notes)
	assert.False(t, strings.HasSuffix(notes, "\n"))
}
