package portal

import (
	"context"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
)

// Portal is the client for the gated media library: one login, then
// catalog searches against the authenticated session.
type Portal interface {
	Authenticate(ctx context.Context, creds config.CredentialsConfig) (*Session, error)
	Search(ctx context.Context, sess *Session, query string, maxResults int) ([]SearchResult, error)
}

// SearchResult is one catalog entry. Year and Speaker are optional and empty
// when the card does not carry them.
type SearchResult struct {
	Title     string
	SourceURL string
	Year      string
	Speaker   string
}
