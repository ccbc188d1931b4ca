package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// webElementKey is the W3C WebDriver element identifier property.
const webElementKey = "element-6066-11e4-a52e-4f735466cecf"

// ErrNoSuchElement reports a lookup that matched nothing.
var ErrNoSuchElement = errors.New("no such element")

// HTTPDoer describes the HTTP client used to reach the driver endpoint.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client speaks the W3C WebDriver wire protocol to a locally running driver
// (chromedriver, geckodriver). Only the handful of commands the UI-driven
// strategies need are implemented.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// Session is one established browser session.
type Session struct {
	client *Client
	id     string
}

// Element references a located DOM node within a session.
type Element struct {
	session *Session
	id      string
}

// New builds a client for the driver at baseURL.
func New(baseURL string, client HTTPDoer) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type valueEnvelope struct {
	Value json.RawMessage `json:"value"`
}

type errorValue struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) command(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode webdriver payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build webdriver request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webdriver %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var envelope valueEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode webdriver response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var we errorValue
		if json.Unmarshal(envelope.Value, &we) == nil && we.Error != "" {
			if we.Error == "no such element" {
				return nil, ErrNoSuchElement
			}
			return nil, fmt.Errorf("webdriver %s: %s", we.Error, we.Message)
		}
		return nil, fmt.Errorf("webdriver %s %s: status %d", method, path, resp.StatusCode)
	}
	return envelope.Value, nil
}

// NewSession starts a browser session. headless and downloadDir map onto
// Chrome options; other drivers ignore them.
func (c *Client) NewSession(ctx context.Context, headless bool, downloadDir string) (*Session, error) {
	args := []string{"--disable-blink-features=AutomationControlled"}
	if headless {
		args = append(args, "--headless=new", "--no-sandbox", "--disable-dev-shm-usage")
	}
	chromeOptions := map[string]any{"args": args}
	if downloadDir != "" {
		chromeOptions["prefs"] = map[string]any{
			"download.default_directory":   downloadDir,
			"download.prompt_for_download": false,
		}
	}
	body := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": map[string]any{
				"goog:chromeOptions": chromeOptions,
			},
		},
	}

	value, err := c.command(ctx, http.MethodPost, "/session", body)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(value, &payload); err != nil || payload.SessionID == "" {
		return nil, fmt.Errorf("start session: malformed response")
	}
	return &Session{client: c, id: payload.SessionID}, nil
}

// Close tears the session down. Safe on nil.
func (s *Session) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	_, err := s.client.command(ctx, http.MethodDelete, "/session/"+s.id, nil)
	return err
}

// Navigate loads the given URL.
func (s *Session) Navigate(ctx context.Context, url string) error {
	_, err := s.client.command(ctx, http.MethodPost, "/session/"+s.id+"/url", map[string]string{"url": url})
	return err
}

// FindElements returns every node matching the CSS selector. An empty result
// is not an error.
func (s *Session) FindElements(ctx context.Context, selector string) ([]Element, error) {
	value, err := s.client.command(ctx, http.MethodPost, "/session/"+s.id+"/elements", locator(selector))
	if err != nil {
		return nil, err
	}
	var refs []map[string]string
	if err := json.Unmarshal(value, &refs); err != nil {
		return nil, fmt.Errorf("decode element list: %w", err)
	}
	elements := make([]Element, 0, len(refs))
	for _, ref := range refs {
		if id := ref[webElementKey]; id != "" {
			elements = append(elements, Element{session: s, id: id})
		}
	}
	return elements, nil
}

// FindElement returns the first node matching the CSS selector, or
// ErrNoSuchElement.
func (s *Session) FindElement(ctx context.Context, selector string) (Element, error) {
	value, err := s.client.command(ctx, http.MethodPost, "/session/"+s.id+"/element", locator(selector))
	if err != nil {
		return Element{}, err
	}
	return s.decodeElement(value)
}

// WaitForElements polls FindElements until at least one node matches or the
// deadline passes. This is the per-strategy readiness bound: a page that
// never renders costs at most the timeout.
func (s *Session) WaitForElements(ctx context.Context, selector string, timeout time.Duration) ([]Element, error) {
	deadline := time.Now().Add(timeout)
	for {
		elements, err := s.FindElements(ctx, selector)
		if err != nil && !errors.Is(err, ErrNoSuchElement) {
			return nil, err
		}
		if len(elements) > 0 {
			return elements, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("wait for %q: timed out after %s", selector, timeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (s *Session) decodeElement(value json.RawMessage) (Element, error) {
	var ref map[string]string
	if err := json.Unmarshal(value, &ref); err != nil {
		return Element{}, fmt.Errorf("decode element: %w", err)
	}
	id := ref[webElementKey]
	if id == "" {
		return Element{}, ErrNoSuchElement
	}
	return Element{session: s, id: id}, nil
}

// ID exposes the element reference for catalog locators.
func (e Element) ID() string { return e.id }

// FindElement locates a descendant of this element.
func (e Element) FindElement(ctx context.Context, selector string) (Element, error) {
	value, err := e.session.client.command(ctx, http.MethodPost,
		"/session/"+e.session.id+"/element/"+e.id+"/element", locator(selector))
	if err != nil {
		return Element{}, err
	}
	return e.session.decodeElement(value)
}

// Text returns the node's rendered text.
func (e Element) Text(ctx context.Context) (string, error) {
	value, err := e.session.client.command(ctx, http.MethodGet,
		"/session/"+e.session.id+"/element/"+e.id+"/text", nil)
	if err != nil {
		return "", err
	}
	var text string
	if err := json.Unmarshal(value, &text); err != nil {
		return "", fmt.Errorf("decode element text: %w", err)
	}
	return text, nil
}

// Click clicks the node.
func (e Element) Click(ctx context.Context) error {
	_, err := e.session.client.command(ctx, http.MethodPost,
		"/session/"+e.session.id+"/element/"+e.id+"/click", nil)
	return err
}

// SendKeys types text into the node.
func (e Element) SendKeys(ctx context.Context, text string) error {
	_, err := e.session.client.command(ctx, http.MethodPost,
		"/session/"+e.session.id+"/element/"+e.id+"/value", map[string]string{"text": text})
	return err
}

// ElementByID rebuilds an element handle from a stored reference, letting a
// catalog entry carry a row locator across package boundaries.
func (s *Session) ElementByID(id string) Element {
	return Element{session: s, id: id}
}

func locator(selector string) map[string]string {
	return map[string]string{"using": "css selector", "value": selector}
}
