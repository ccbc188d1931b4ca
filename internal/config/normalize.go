package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBox()
	c.normalizeBrowser()
	c.normalizeRetrieval()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBox() {
	c.Box.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Box.APIBaseURL), "/")
	if c.Box.APIBaseURL == "" {
		c.Box.APIBaseURL = defaultAPIBaseURL
	}
	c.Box.StaticHost = strings.TrimRight(strings.TrimSpace(c.Box.StaticHost), "/")
	if c.Box.StaticHost == "" {
		c.Box.StaticHost = defaultStaticHost
	}
	if strings.TrimSpace(c.Box.UserAgent) == "" {
		c.Box.UserAgent = defaultUserAgent
	}
	if c.Box.RequestTimeout <= 0 {
		c.Box.RequestTimeout = defaultRequestTimeout
	}

	links := make([]string, 0, len(c.Box.SharedLinks))
	for _, link := range c.Box.SharedLinks {
		if trimmed := strings.TrimSpace(link); trimmed != "" {
			links = append(links, trimmed)
		}
	}
	c.Box.SharedLinks = links

	if c.Box.Email == "" {
		if value, ok := os.LookupEnv("BOX_EMAIL"); ok {
			c.Box.Email = strings.TrimSpace(value)
		}
	}
	if c.Box.Password == "" {
		if value, ok := os.LookupEnv("BOX_PASSWORD"); ok {
			c.Box.Password = value
		}
	}
}

func (c *Config) normalizeBrowser() {
	c.Browser.WebDriverURL = strings.TrimRight(strings.TrimSpace(c.Browser.WebDriverURL), "/")
	if c.Browser.WebDriverURL == "" {
		c.Browser.WebDriverURL = defaultWebDriverURL
	}
	if c.Browser.PageTimeout <= 0 {
		c.Browser.PageTimeout = defaultPageTimeout
	}
	if c.Browser.DownloadTimeout <= 0 {
		c.Browser.DownloadTimeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizeRetrieval() {
	if c.Retrieval.Workers <= 0 {
		c.Retrieval.Workers = defaultWorkers
	}
	if c.Retrieval.ChunkKiB <= 0 {
		c.Retrieval.ChunkKiB = defaultChunkKiB
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
