package media

import (
	"context"
	"os"

	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
	"github.com/nguyentantai21042004/lecture-flow/internal/portal"
)

// Acquire resolves and downloads the audio stream for sourceURL to destPath,
// overwriting any prior file. Certificate checking is relaxed when configured:
// several catalog media hosts serve self-signed or misconfigured certificates.
func (a *implAcquirer) Acquire(ctx context.Context, sess *portal.Session, sourceURL, destPath string) (string, error) {
	a.logger.Info(ctx, "Downloading audio: %s -> %s", sourceURL, destPath)

	args := []string{
		"-f", a.cfg.Downloader.Format,
		"-o", destPath,
		"--force-overwrites",
		"--quiet",
	}
	if a.cfg.Downloader.InsecureTLS {
		args = append(args, "--no-check-certificate")
	}
	if cookie := sess.CookieHeader(sourceURL); cookie != "" {
		args = append(args, "--add-header", "Cookie: "+cookie)
	}
	args = append(args, sourceURL)

	if _, err := a.executor.Execute(ctx, a.cfg.Downloader.Binary, args...); err != nil {
		return "", errs.NewDownload("download audio stream", err)
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return "", errs.NewDownload("downloader produced no output file", err)
	}
	if info.Size() == 0 {
		return "", errs.NewDownload("downloader produced an empty file", nil)
	}

	a.logger.Info(ctx, "Audio downloaded: %s (%d bytes)", destPath, info.Size())
	return destPath, nil
}
