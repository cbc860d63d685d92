package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
)

// Transcribe submits the audio file whole to the speech-to-text endpoint and
// returns the plain-text transcript. Transport and server errors are retried
// with exponential backoff; client rejections (oversized file, rate limit,
// bad request) are not.
func (t *implTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if t.cfg.OpenAI.APIKey == "" {
		return "", errs.NewConfiguration("transcription API key is required")
	}

	body, contentType, err := t.buildUpload(audioPath)
	if err != nil {
		return "", errs.NewTranscription("prepare audio upload", err)
	}

	endpoint := strings.TrimRight(t.cfg.OpenAI.BaseURL, "/") + "/audio/transcriptions"
	t.logger.Info(ctx, "Transcribing %s (%d bytes upload)", audioPath, body.Len())

	var text string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body.Bytes()))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+t.cfg.OpenAI.APIKey)

		resp, err := t.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(resp.Body)
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		case resp.StatusCode >= 400:
			// 413 oversized, 429 rate limited, etc. Retrying cannot help.
			return backoff.Permanent(fmt.Errorf("request rejected with %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
		}

		text = string(respBody)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", errs.NewTranscription("speech-to-text request failed", err)
	}

	t.logger.Info(ctx, "Transcription complete: %d characters", len(text))
	return strings.TrimSpace(text), nil
}

// buildUpload assembles the multipart body for one whole-file upload.
func (t *implTranscriber) buildUpload(audioPath string) (*bytes.Buffer, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("model", t.cfg.OpenAI.AudioModel); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("response_format", "text"); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
