package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"boxpull/internal/config"
	"boxpull/internal/logging"
	"boxpull/internal/webdriver"
)

const loginURL = "https://account.box.com/login"

// Surface owns one browser session and encapsulates every UI-specific
// detail: element lookup, clicks, readiness waits. Callers see the same
// strategy-shaped operations the HTTP surfaces offer and stay agnostic to
// how the interaction happened.
type Surface struct {
	session         *webdriver.Session
	logger          *slog.Logger
	pageTimeout     time.Duration
	downloadTimeout time.Duration
	downloadDir     string
}

// Open starts a browser session configured for the given download directory.
// The caller must Close the surface on every exit path.
func Open(ctx context.Context, cfg *config.Config, downloadDir string, logger *slog.Logger) (*Surface, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	client := webdriver.New(cfg.Browser.WebDriverURL, nil)
	session, err := client.NewSession(ctx, cfg.Browser.Headless, downloadDir)
	if err != nil {
		return nil, fmt.Errorf("open browser session: %w", err)
	}
	return &Surface{
		session:         session,
		logger:          logger,
		pageTimeout:     time.Duration(cfg.Browser.PageTimeout) * time.Second,
		downloadTimeout: time.Duration(cfg.Browser.DownloadTimeout) * time.Second,
		downloadDir:     downloadDir,
	}, nil
}

// Close tears the browser session down. Safe on nil.
func (s *Surface) Close(ctx context.Context) {
	if s == nil || s.session == nil {
		return
	}
	if err := s.session.Close(ctx); err != nil {
		s.logger.Debug("browser session close failed", logging.Args(logging.Error(err))...)
	}
}

// Login signs into the service when a credential pair is available. Missing
// credentials are a normal read-only outcome, not an error; a failed login
// attempt is reported so the caller can degrade to best-effort behaviour.
func (s *Surface) Login(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		s.logger.Debug("no credentials; staying read-only")
		return false, nil
	}
	if err := s.session.Navigate(ctx, loginURL); err != nil {
		return false, fmt.Errorf("open login page: %w", err)
	}

	fields, err := s.session.WaitForElements(ctx, "input[name='login']", s.pageTimeout)
	if err != nil {
		return false, fmt.Errorf("login form: %w", err)
	}
	if err := fields[0].SendKeys(ctx, email); err != nil {
		return false, fmt.Errorf("enter email: %w", err)
	}

	passwordField, err := s.session.FindElement(ctx, "input[name='password']")
	if err != nil {
		return false, fmt.Errorf("password field: %w", err)
	}
	if err := passwordField.SendKeys(ctx, password); err != nil {
		return false, fmt.Errorf("enter password: %w", err)
	}

	submit, err := s.session.FindElement(ctx, "button[type='submit']")
	if err != nil {
		return false, fmt.Errorf("submit control: %w", err)
	}
	if err := submit.Click(ctx); err != nil {
		return false, fmt.Errorf("submit login: %w", err)
	}

	// The post-login redirect has no reliable marker; give it a moment
	// bounded by the page timeout.
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(minDuration(5*time.Second, s.pageTimeout)):
	}
	s.logger.Info("logged in", logging.Args(logging.String("email", email))...)
	return true, nil
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
