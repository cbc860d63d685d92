package portal

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
)

// Search queries the catalog and extracts up to maxResults entries in the
// order the portal presents them. Zero matching cards is a normal outcome
// and yields an empty slice; a present card missing its required fields is
// a SearchError.
func (p *implPortal) Search(ctx context.Context, sess *Session, query string, maxResults int) ([]SearchResult, error) {
	if maxResults < 1 {
		return nil, errs.NewSearch("maxResults must be at least 1", nil)
	}

	searchURL := sess.resolve(p.cfg.Portal.SearchPath) + "?q=" + url.QueryEscape(query)
	p.logger.Debug(ctx, "Searching catalog: %s", searchURL)

	resp, err := sess.get(ctx, searchURL)
	if err != nil {
		return nil, errs.NewSearch("fetch search results", err)
	}
	doc, err := readDocument(resp)
	if err != nil {
		return nil, errs.NewSearch("parse search results", err)
	}

	sel := p.cfg.Portal.Selectors
	results := []SearchResult{}
	var extractErr error

	doc.Find(sel.Result).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(results) >= maxResults {
			return false
		}

		title, ok := requiredText(card, sel.ResultTitle)
		if !ok {
			extractErr = errs.NewSearch("search result is missing a title", nil)
			return false
		}

		href, ok := requiredAttr(card, sel.ResultLink, "href")
		if !ok {
			extractErr = errs.NewSearch("search result is missing a link", nil)
			return false
		}

		results = append(results, SearchResult{
			Title:     title,
			SourceURL: sess.resolve(href),
			Year:      optionalText(card, sel.Year),
			Speaker:   optionalText(card, sel.Speaker),
		})
		return true
	})

	if extractErr != nil {
		return nil, extractErr
	}

	p.logger.Info(ctx, "Search %q returned %d result(s)", query, len(results))
	return results, nil
}

// requiredText returns the trimmed text of the first selector match.
func requiredText(s *goquery.Selection, selector string) (string, bool) {
	text := strings.TrimSpace(s.Find(selector).First().Text())
	return text, text != ""
}

// requiredAttr returns the named attribute of the first selector match.
func requiredAttr(s *goquery.Selection, selector, attr string) (string, bool) {
	value, ok := s.Find(selector).First().Attr(attr)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// optionalText resolves a best-effort field: absent or empty elements
// become "", never an error.
func optionalText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}
