package box

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"boxpull/internal/logging"
	"boxpull/internal/share"
)

const streamDataMarker = "Box.postStreamData"

var filePairPattern = regexp.MustCompile(`"typedID":"f_(\d+)"[^}]*"name":"([^"]+)"`)

// Enumerator lists a shared folder's contents by walking an ordered chain of
// discovery strategies: the structured metadata endpoint, the embedded page
// blob, then a raw pattern scan of the page body. The first strategy that
// yields entries wins. A strategy's failure is logged and swallowed; when
// every strategy comes up empty the result is an empty slice, not an error,
// so "no files" and "no access" are indistinguishable to callers.
type Enumerator struct {
	session *Session
	logger  *slog.Logger
}

// NewEnumerator builds an enumerator over the given session.
func NewEnumerator(session *Session, logger *slog.Logger) *Enumerator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enumerator{session: session, logger: logger}
}

type listStrategy struct {
	name string
	run  func(ctx context.Context) ([]share.Item, error)
}

// Enumerate returns the folder's catalog. The listing is eager: retention
// decisions need the complete set before any retrieval or deletion starts.
func (e *Enumerator) Enumerate(ctx context.Context) ([]share.Item, error) {
	folderID, err := e.session.ResolveFolderID(ctx)
	if err != nil {
		e.logger.Warn("folder id resolution failed", logging.Args(logging.Error(err))...)
	}

	strategies := []listStrategy{
		{name: "api", run: func(ctx context.Context) ([]share.Item, error) {
			if folderID == "" {
				return nil, fmt.Errorf("no folder id available")
			}
			return e.listViaAPI(ctx, folderID)
		}},
		{name: "embedded", run: e.listViaEmbeddedData},
		{name: "pattern", run: e.listViaPatternScan},
	}

	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := strategy.run(ctx)
		if err != nil {
			e.logger.Warn("discovery strategy failed",
				logging.Args(logging.String("strategy", strategy.name), logging.Error(err))...)
			continue
		}
		if len(items) == 0 {
			e.logger.Debug("discovery strategy found nothing",
				logging.Args(logging.String("strategy", strategy.name))...)
			continue
		}
		e.logger.Info("folder enumerated",
			logging.Args(logging.String("strategy", strategy.name), logging.Int("items", len(items)))...)
		return items, nil
	}

	e.logger.Info("all discovery strategies exhausted; treating folder as empty")
	return nil, nil
}

// listViaAPI asks the structured metadata endpoint for the folder listing,
// authorizing with the shared link header instead of account credentials.
func (e *Enumerator) listViaAPI(ctx context.Context, folderID string) ([]share.Item, error) {
	url := fmt.Sprintf("%s/folders/%s/items", e.session.APIBaseURL, folderID)
	resp, err := e.session.Get(ctx, url, true)
	if err != nil {
		return nil, share.Wrap(share.ErrStrategyFailure, "list folder items", "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, share.Wrap(share.ErrStrategyFailure, "list folder items", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var payload folderItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, share.Wrap(share.ErrStrategyFailure, "decode folder listing", "", err)
	}

	items := make([]share.Item, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		kind := share.KindUnknown
		switch entry.Type {
		case "file":
			kind = share.KindFile
		case "folder":
			kind = share.KindFolder
		}
		item := share.NewItem(entry.Name, kind)
		item.ID = entry.ID
		items = append(items, item)
	}
	return items, nil
}

// listViaEmbeddedData scrapes the rendered page for the embedded stream-data
// blob. A missing marker falls through quietly; malformed JSON inside a found
// marker counts as zero items from this strategy, never a fault.
func (e *Enumerator) listViaEmbeddedData(ctx context.Context) ([]share.Item, error) {
	body, err := e.session.FetchPage(ctx)
	if err != nil {
		return nil, share.Wrap(share.ErrStrategyFailure, "fetch page for embedded data", "", err)
	}

	blob, found := extractStreamData(body)
	if !found {
		return nil, nil
	}

	var payload postStreamData
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		e.logger.Debug("embedded data blob unparsable", logging.Args(logging.Error(err))...)
		return nil, nil
	}

	var items []share.Item
	for _, entry := range payload.Item.ItemCollection.Entries {
		if entry.Type != "file" {
			continue
		}
		item := share.NewItem(entry.Name, share.KindFile)
		item.ID = entry.ID
		item.DownloadURL = entry.DownloadURL
		items = append(items, item)
	}
	return items, nil
}

// listViaPatternScan is the lowest-fidelity fallback: recurring typed-ID and
// name pairs scraped straight out of the page markup. Only names and IDs are
// recoverable; everything is reported as a file.
func (e *Enumerator) listViaPatternScan(ctx context.Context) ([]share.Item, error) {
	body, err := e.session.FetchPage(ctx)
	if err != nil {
		return nil, share.Wrap(share.ErrStrategyFailure, "fetch page for pattern scan", "", err)
	}

	matches := filePairPattern.FindAllStringSubmatch(body, -1)
	items := make([]share.Item, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		id, name := match[1], match[2]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		item := share.NewItem(name, share.KindFile)
		item.ID = id
		items = append(items, item)
	}
	return items, nil
}

// extractStreamData isolates the JSON object assigned to the stream-data
// marker by balancing braces from the first opening brace after it.
func extractStreamData(body string) (string, bool) {
	idx := strings.Index(body, streamDataMarker)
	if idx < 0 {
		return "", false
	}
	rest := body[idx:]
	start := strings.Index(rest, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(rest); i++ {
		ch := rest[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[start : i+1], true
			}
		}
	}
	return "", false
}

// drainBody discards a response body so the transport can reuse the
// connection after a failed attempt.
func drainBody(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<20))
}
