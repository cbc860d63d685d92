package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/errs"
)

// Session is one authenticated browsing context. It owns the cookie jar
// produced by login; downstream stages borrow it read-only for the run.
type Session struct {
	jar     http.CookieJar
	client  *http.Client
	baseURL *url.URL
	timeout time.Duration
}

// Derive returns a sub-context for one worker: a fresh client sharing the
// authenticated cookie jar, so concurrent jobs never mutate each other's
// transport state and never re-authenticate.
func (s *Session) Derive() *Session {
	return &Session{
		jar:     s.jar,
		client:  &http.Client{Jar: s.jar, Timeout: s.timeout},
		baseURL: s.baseURL,
		timeout: s.timeout,
	}
}

// CookieHeader renders the session cookies for rawURL as a Cookie header
// value, for tools that perform their own HTTP (the media downloader).
func (s *Session) CookieHeader(rawURL string) string {
	if s.jar == nil {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	var parts []string
	for _, c := range s.jar.Cookies(u) {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// get issues a GET with browser-like headers through the session client.
func (s *Session) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req)
	return s.client.Do(req)
}

func (s *Session) postForm(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setBrowserHeaders(req)
	return s.client.Do(req)
}

// resolve turns a possibly-relative href into an absolute URL against the portal.
func (s *Session) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return s.baseURL.ResolveReference(ref).String()
}

// Some catalog hosts reject requests without browser-like headers.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// Authenticate logs into the portal and returns the authenticated Session.
// Success is decided by the presence of the configured post-login marker,
// not by the request merely completing: a settled page without the marker
// means the credentials were rejected.
func (p *implPortal) Authenticate(ctx context.Context, creds config.CredentialsConfig) (*Session, error) {
	if creds.Email == "" {
		return nil, errs.NewConfiguration("portal email is required")
	}
	if creds.Password == "" {
		return nil, errs.NewConfiguration("portal password is required")
	}

	base, err := url.Parse(p.cfg.Portal.BaseURL)
	if err != nil {
		return nil, errs.NewConfiguration(fmt.Sprintf("invalid portal base_url %q", p.cfg.Portal.BaseURL))
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errs.NewAuthentication("create cookie jar", err)
	}

	sess := &Session{
		jar:     jar,
		client:  &http.Client{Jar: jar, Timeout: p.cfg.Portal.Timeout()},
		baseURL: base,
		timeout: p.cfg.Portal.Timeout(),
	}

	loginURL := sess.resolve(p.cfg.Portal.LoginPath)
	p.logger.Debug(ctx, "Fetching login page: %s", loginURL)

	resp, err := sess.get(ctx, loginURL)
	if err != nil {
		return nil, errs.NewAuthentication("reach login page", err)
	}
	doc, err := readDocument(resp)
	if err != nil {
		return nil, errs.NewAuthentication("parse login page", err)
	}

	action, form, err := p.loginForm(doc, creds)
	if err != nil {
		return nil, err
	}

	p.logger.Debug(ctx, "Submitting credentials to %s", action)
	resp, err = sess.postForm(ctx, sess.resolve(action), form)
	if err != nil {
		return nil, errs.NewAuthentication("submit credentials", err)
	}
	doc, err = readDocument(resp)
	if err != nil {
		return nil, errs.NewAuthentication("parse post-login page", err)
	}

	if doc.Find(p.cfg.Portal.Selectors.LoggedIn).Length() == 0 {
		return nil, errs.NewAuthentication("login rejected: post-login marker not found", nil)
	}

	p.logger.Info(ctx, "Authenticated against %s", base.Host)
	return sess, nil
}

// loginForm extracts the login form action and builds the submission body,
// carrying over hidden inputs (CSRF tokens and friends) untouched.
func (p *implPortal) loginForm(doc *goquery.Document, creds config.CredentialsConfig) (string, url.Values, error) {
	sel := doc.Find(p.cfg.Portal.Selectors.LoginForm).First()
	if sel.Length() == 0 {
		return "", nil, errs.NewAuthentication("login form not found", nil)
	}

	action, ok := sel.Attr("action")
	if !ok || action == "" {
		action = p.cfg.Portal.LoginPath
	}

	form := url.Values{}
	emailSet, passwordSet := false, false

	sel.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, hasName := input.Attr("name")
		if !hasName || name == "" {
			return
		}
		typ, _ := input.Attr("type")

		switch {
		case typ == "password":
			form.Set(name, creds.Password)
			passwordSet = true
		case typ == "email" || strings.Contains(strings.ToLower(name), "email"):
			form.Set(name, creds.Email)
			emailSet = true
		case typ == "hidden":
			value, _ := input.Attr("value")
			form.Set(name, value)
		}
	})

	if !emailSet || !passwordSet {
		return "", nil, errs.NewAuthentication("login form has no email/password inputs", nil)
	}

	return action, form, nil
}

func readDocument(resp *http.Response) (*goquery.Document, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
