package box

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"boxpull/internal/config"
)

// HTTPDoer describes the HTTP client used by the session.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var (
	folderTypedIDPattern = regexp.MustCompile(`"typedID":"d_(\d+)"`)
	folderAltPattern     = regexp.MustCompile(`(?s)"id":"(\d+)".*?"type":"folder"`)
)

// Session carries everything needed to talk to the shared-folder service on
// behalf of one shared link: the HTTP client, the link itself, and the header
// conventions the semi-public API expects.
type Session struct {
	SharedLink string
	APIBaseURL string
	StaticHost string
	userAgent  string
	client     HTTPDoer
}

// NewSession builds a session for the given shared link using config
// settings. The client's timeout bounds each individual request so one
// unresponsive strategy cannot stall a whole chain.
func NewSession(cfg *config.Config, sharedLink string) *Session {
	timeout := time.Duration(cfg.Box.RequestTimeout) * time.Second
	return &Session{
		SharedLink: strings.TrimSpace(sharedLink),
		APIBaseURL: cfg.Box.APIBaseURL,
		StaticHost: cfg.Box.StaticHost,
		userAgent:  cfg.Box.UserAgent,
		client:     &http.Client{Timeout: timeout},
	}
}

// NewSessionWithClient injects a custom HTTP client; tests use this with
// httptest servers.
func NewSessionWithClient(cfg *config.Config, sharedLink string, client HTTPDoer) *Session {
	s := NewSession(cfg, sharedLink)
	s.client = client
	return s
}

// SharedName returns the trailing path segment of the shared link, which the
// static download endpoints key on.
func (s *Session) SharedName() string {
	trimmed := strings.TrimRight(s.SharedLink, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// Get issues a GET with the session's user agent and referer headers.
// withAPIHeader adds the shared-link authorization header the metadata API
// accepts in place of account credentials.
func (s *Session) Get(ctx context.Context, url string, withAPIHeader bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Referer", s.SharedLink)
	if withAPIHeader {
		req.Header.Set("BoxApi", "shared_link="+s.SharedLink)
	}
	return s.client.Do(req)
}

// FetchPage retrieves the shared folder's rendered page body.
func (s *Session) FetchPage(ctx context.Context) (string, error) {
	resp, err := s.Get(ctx, s.SharedLink, false)
	if err != nil {
		return "", fmt.Errorf("fetch shared page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch shared page: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read shared page: %w", err)
	}
	return string(body), nil
}

// ResolveFolderID scans the shared page for the folder identifier. The
// typed-ID convention is tried first, then the looser id/type pairing.
func (s *Session) ResolveFolderID(ctx context.Context) (string, error) {
	body, err := s.FetchPage(ctx)
	if err != nil {
		return "", err
	}
	return extractFolderID(body)
}

func extractFolderID(body string) (string, error) {
	if match := folderTypedIDPattern.FindStringSubmatch(body); match != nil {
		return match[1], nil
	}
	if match := folderAltPattern.FindStringSubmatch(body); match != nil {
		return match[1], nil
	}
	return "", fmt.Errorf("no folder identifier in shared page")
}
