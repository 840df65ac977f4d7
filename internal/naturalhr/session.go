// Package naturalhr drives the Natural HR portal through a replayed browser
// session, scraping its pages and submitting its forms.
package naturalhr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

// ErrNoSession is returned when no usable portal session could be found.
var ErrNoSession = errors.New("couldn't find a valid session cookie, please log in to Natural HR")

// browserHeaders are sent with every request so the portal serves the same
// markup a desktop Chrome gets.
var browserHeaders = map[string]string{
	"Connection":                "keep-alive",
	"Cache-Control":             "max-age=0",
	"Upgrade-Insecure-Requests": "1",
	"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_12_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/67.0.3396.99 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
}

// trackingCookies accompany the session cookie; the portal's load balancer
// expects them.
var trackingCookies = map[string]string{
	"_ga":      "GA1.2.2023189312.1467903497",
	"SERVERID": "http27_49-6020",
	"_gid":     "GA1.2.607146262.1531921353",
}

// Options configures NewSession.
type Options struct {
	// BaseURL is the portal root, e.g. https://www.naturalhr.net.
	BaseURL string
	// CookieName is the session cookie's name, normally PHPSESSID.
	CookieName string
	// Cookie is the session value. Empty means read it from Chrome.
	Cookie string
	// ChromeCookieDB overrides the Chrome cookie database path.
	ChromeCookieDB string
	// HTTPClient is used as a template; its jar is replaced.
	HTTPClient *http.Client
}

// Session is an authenticated portal session.
type Session struct {
	base   *url.URL
	client *http.Client
}

// NewSession installs the session cookie and replays it against the portal
// home page. It fails with ErrNoSession unless the portal answers 200 with
// something other than its login page.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid portal URL %q", opts.BaseURL)
	}

	value := opts.Cookie
	if value == "" {
		value, err = ChromeCookie(ctx, opts.ChromeCookieDB, base.Hostname(), opts.CookieName)
		if err != nil {
			log.Debug().Err(err).Msg("reading session cookie from Chrome")
			return nil, ErrNoSession
		}
	}
	if value == "" {
		return nil, ErrNoSession
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	cookies := []*http.Cookie{{Name: opts.CookieName, Value: value, Path: "/"}}
	for name, v := range trackingCookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: v, Path: "/"})
	}
	jar.SetCookies(base, cookies)

	client := &http.Client{Timeout: 30 * time.Second}
	if opts.HTTPClient != nil {
		c := *opts.HTTPClient
		client = &c
	}
	client.Jar = jar

	s := &Session{base: base, client: client}
	if err := s.bootstrap(ctx); err != nil {
		log.Debug().Err(err).Msg("session bootstrap")
		return nil, ErrNoSession
	}
	return s, nil
}

func (s *Session) bootstrap(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodGet, s.URL(pathHome), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("portal home returned %d", resp.StatusCode)
	}
	if strings.Contains(strings.ToLower(resp.Request.URL.Path), "login") {
		return fmt.Errorf("portal redirected to %s", resp.Request.URL.Path)
	}
	return nil
}

// URL resolves a portal path or scraped link against the base URL.
func (s *Session) URL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return s.base.String() + ref
	}
	return s.base.ResolveReference(u).String()
}

func (s *Session) do(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Origin", target)
	req.Header.Set("Referer", target)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log.Debug().Str("method", method).Str("url", target).Msg("portal request")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal request failed: %w", err)
	}
	return resp, nil
}

// Page fetches a portal page and parses it.
func (s *Session) Page(ctx context.Context, ref string) (*goquery.Document, error) {
	target := s.URL(ref)
	resp, err := s.do(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal error %d for %s", resp.StatusCode, target)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", target, err)
	}
	return doc, nil
}

// Post submits params as multipart/form-data, one plain field per key, the
// way the portal's own forms do.
func (s *Session) Post(ctx context.Context, ref string, params map[string]string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, params[k]); err != nil {
			return fmt.Errorf("encoding field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("encoding form: %w", err)
	}

	target := s.URL(ref)
	resp, err := s.do(ctx, http.MethodPost, target, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("portal error %d for %s: %s", resp.StatusCode, target, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
