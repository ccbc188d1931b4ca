package browser

import (
	"context"
	"errors"
	"strings"

	"boxpull/internal/logging"
	"boxpull/internal/share"
	"boxpull/internal/webdriver"
)

const (
	rowSelector  = "div[role='row']"
	nameSelector = "[class*='name']"
)

// Enumerate lists a shared folder by reading the rendered row list. It is
// the slowest and least reliable discovery surface, used when no HTTP
// strategy is available. The readiness wait is bounded; an empty or
// unrenderable folder yields an empty catalog, not an error.
func (s *Surface) Enumerate(ctx context.Context, sharedLink string) ([]share.Item, error) {
	if err := s.session.Navigate(ctx, sharedLink); err != nil {
		return nil, share.Wrap(share.ErrStrategyFailure, "browser enumerate", "navigate", err)
	}

	rows, err := s.session.WaitForElements(ctx, rowSelector, s.pageTimeout)
	if err != nil {
		s.logger.Warn("folder rows never rendered", logging.Args(logging.Error(err))...)
		return nil, nil
	}

	var items []share.Item
	for _, row := range rows {
		nameNode, err := row.FindElement(ctx, nameSelector)
		if err != nil {
			if errors.Is(err, webdriver.ErrNoSuchElement) {
				continue
			}
			s.logger.Debug("row name lookup failed", logging.Args(logging.Error(err))...)
			continue
		}
		name, err := nameNode.Text(ctx)
		if err != nil {
			continue
		}
		name = strings.TrimSpace(name)
		// The grid's first row is a literal "Name" header.
		if name == "" || name == "Name" {
			continue
		}
		item := share.NewItem(name, share.KindFile)
		item.RowRef = row.ID()
		items = append(items, item)
	}
	return items, nil
}
