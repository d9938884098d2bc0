package helpers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"
)

// SessionSeed carries the browser-negotiated identity that detail-page
// requests reuse: the cookies the site set during rendering and the
// user agent the browser presented.
type SessionSeed struct {
	Cookies   []*http.Cookie
	UserAgent string
}

// FetchResult is the outcome of a detail-page fetch. A non-2xx status is
// a recoverable gap, not an error, so callers inspect StatusCode.
type FetchResult struct {
	StatusCode int
	Body       io.Reader
}

// Session is an HTTP client seeded with a browser session, used for the
// lightweight detail-page fetches that follow a rendered search page.
type Session struct {
	client    *http.Client
	userAgent string
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewSession builds a Session from a seed. Seed cookies are registered
// against siteURL so the jar replays them on same-site requests.
func NewSession(seed SessionSeed, siteURL string, timeout time.Duration) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if len(seed.Cookies) > 0 {
		u, err := url.Parse(siteURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse site URL %q: %w", siteURL, err)
		}
		jar.SetCookies(u, seed.Cookies)
	}

	ua := seed.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Session{
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		userAgent: ua,
	}, nil
}

// Fetch performs a GET with the session identity and returns the body
// converted to UTF-8. Network failures return an error; any HTTP status
// is reported through the result instead.
func (s *Session) Fetch(pageURL string) (*FetchResult, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-ZA,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	body, err := toUTF8(bodyBytes, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// toUTF8 converts a response body to UTF-8 based on the Content-Type
// header and the body content itself.
func toUTF8(bodyBytes []byte, contentType string) (io.Reader, error) {
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, contentType)
	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, fmt.Errorf("failed to convert body to UTF-8: %w", err)
	}
	return &buf, nil
}
