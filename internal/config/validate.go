package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBox(); err != nil {
		return err
	}
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBox() error {
	if !strings.HasPrefix(c.Box.APIBaseURL, "http://") && !strings.HasPrefix(c.Box.APIBaseURL, "https://") {
		return fmt.Errorf("box.api_base_url must be an http(s) URL, got %q", c.Box.APIBaseURL)
	}
	if !strings.HasPrefix(c.Box.StaticHost, "http://") && !strings.HasPrefix(c.Box.StaticHost, "https://") {
		return fmt.Errorf("box.static_host must be an http(s) URL, got %q", c.Box.StaticHost)
	}
	if c.Box.Password != "" && strings.TrimSpace(c.Box.Email) == "" {
		return errors.New("box.email must be set when box.password is provided")
	}
	return nil
}

func (c *Config) validateBrowser() error {
	if !c.Browser.Enabled {
		return nil
	}
	if !strings.HasPrefix(c.Browser.WebDriverURL, "http://") && !strings.HasPrefix(c.Browser.WebDriverURL, "https://") {
		return fmt.Errorf("browser.webdriver_url must be an http(s) URL, got %q", c.Browser.WebDriverURL)
	}
	return nil
}

func (c *Config) validateWatch() error {
	schedule := strings.TrimSpace(c.Watch.Schedule)
	if schedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("watch.schedule: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
