package pipeline

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/lecture-flow/internal/portal"
)

// Job is one selected catalog entry plus its derived artifact paths. Paths
// are deterministic in the title, so re-running overwrites instead of
// duplicating.
type Job struct {
	Result         portal.SearchResult
	Slug           string
	AudioPath      string
	TranscriptPath string
	NotesPath      string
}

// NewJob derives the slug and the three output paths for a search result.
func NewJob(result portal.SearchResult, outputDir string) Job {
	slug := Slugify(result.Title)
	return Job{
		Result:         result,
		Slug:           slug,
		AudioPath:      filepath.Join(outputDir, slug+".mp3"),
		TranscriptPath: filepath.Join(outputDir, slug+".md"),
		NotesPath:      filepath.Join(outputDir, slug+".notes.md"),
	}
}

// NewJobs derives jobs for a batch, preserving input order.
func NewJobs(results []portal.SearchResult, outputDir string) []Job {
	jobs := make([]Job, len(results))
	for i, r := range results {
		jobs[i] = NewJob(r, outputDir)
	}
	return jobs
}

var reNonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

const maxSlugLen = 50

// Slugify collapses non-alphanumeric runs to a single underscore, trims
// edge separators and caps the length. Same title, same slug, always.
func Slugify(title string) string {
	slug := reNonAlnum.ReplaceAllString(title, "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "_")
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}
