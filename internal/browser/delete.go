package browser

import (
	"context"
	"errors"
	"strings"

	"boxpull/internal/share"
	"boxpull/internal/webdriver"
)

var deleteControlSelectors = []string{
	"button[aria-label*='Delete']",
	"button[data-testid='delete-btn']",
}

// Delete removes one entry at the source: select the row, find a delete
// control (directly or via the overflow menu), then confirm the dialog.
// Implements retention.Deleter for the remote cleanup workflow.
func (s *Surface) Delete(ctx context.Context, item share.Item) error {
	if item.RowRef == "" {
		return share.Wrap(share.ErrDeletionFailure, "browser delete", item.Name+": no row reference", nil)
	}

	row := s.session.ElementByID(item.RowRef)
	if err := row.Click(ctx); err != nil {
		return share.Wrap(share.ErrDeletionFailure, "browser delete", "select row", err)
	}

	if err := s.clickDeleteControl(ctx); err != nil {
		return err
	}

	// A confirmation dialog usually follows.
	confirm, err := s.session.WaitForElements(ctx, "div[role='dialog'] button", s.pageTimeout)
	if err != nil {
		return share.Wrap(share.ErrDeletionFailure, "browser delete", item.Name+": no confirmation dialog", err)
	}
	for _, button := range confirm {
		text, err := button.Text(ctx)
		if err != nil {
			continue
		}
		lowered := strings.ToLower(text)
		if strings.Contains(lowered, "delete") || strings.Contains(lowered, "confirm") {
			if err := button.Click(ctx); err != nil {
				return share.Wrap(share.ErrDeletionFailure, "browser delete", item.Name+": confirm", err)
			}
			return nil
		}
	}
	return share.Wrap(share.ErrDeletionFailure, "browser delete", item.Name+": confirmation control not found", nil)
}

func (s *Surface) clickDeleteControl(ctx context.Context) error {
	for _, selector := range deleteControlSelectors {
		control, err := s.session.FindElement(ctx, selector)
		if err != nil {
			continue
		}
		if err := control.Click(ctx); err == nil {
			return nil
		}
	}

	more, err := s.session.FindElement(ctx, moreOptionsSelector)
	if err != nil {
		if errors.Is(err, webdriver.ErrNoSuchElement) {
			return share.Wrap(share.ErrDeletionFailure, "browser delete", "no delete control", nil)
		}
		return share.Wrap(share.ErrDeletionFailure, "browser delete", "overflow menu", err)
	}
	if err := more.Click(ctx); err != nil {
		return share.Wrap(share.ErrDeletionFailure, "browser delete", "open overflow menu", err)
	}
	actions, err := s.session.WaitForElements(ctx, "[role='menuitem']", s.pageTimeout)
	if err != nil {
		return share.Wrap(share.ErrDeletionFailure, "browser delete", "overflow menu items", err)
	}
	for _, candidate := range actions {
		text, err := candidate.Text(ctx)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(text), "delete") {
			if err := candidate.Click(ctx); err == nil {
				return nil
			}
		}
	}
	return share.Wrap(share.ErrDeletionFailure, "browser delete", "no delete action in menu", nil)
}
