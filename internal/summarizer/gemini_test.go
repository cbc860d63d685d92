package summarizer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
)

// Workers share one Summarizer, so rotation must hold up under the race
// detector with several goroutines reading and rotating the key at once.
func TestGeminiKeyRotationConcurrent(t *testing.T) {
	cfg := testSummarizerConfig(t, "http://127.0.0.1:0", "sk-test")
	cfg.Gemini.APIKeys = []string{"key-a", "key-b", "key-c"}
	s := New(cfg, logger.New("error")).(*implSummarizer)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				key, idx := s.geminiKey()
				assert.Equal(t, cfg.Gemini.APIKeys[idx], key)
				s.rotateKey()
			}
		}()
	}
	wg.Wait()

	_, idx := s.geminiKey()
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, len(cfg.Gemini.APIKeys))
}

func TestRotateKeyWraps(t *testing.T) {
	cfg := testSummarizerConfig(t, "http://127.0.0.1:0", "sk-test")
	cfg.Gemini.APIKeys = []string{"key-a", "key-b"}
	s := New(cfg, logger.New("error")).(*implSummarizer)

	first, _ := s.geminiKey()
	assert.Equal(t, "key-a", first)

	s.rotateKey()
	second, _ := s.geminiKey()
	assert.Equal(t, "key-b", second)

	s.rotateKey()
	wrapped, _ := s.geminiKey()
	assert.Equal(t, "key-a", wrapped)
}
