package config

const (
	defaultOutputDir       = "~/.local/share/boxpull/downloads"
	defaultLogDir          = "~/.local/share/boxpull/logs"
	defaultAPIBaseURL      = "https://api.box.com/2.0"
	defaultStaticHost      = "https://rak.app.box.com"
	defaultUserAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultRequestTimeout  = 60
	defaultWebDriverURL    = "http://127.0.0.1:9515"
	defaultPageTimeout     = 20
	defaultDownloadTimeout = 60
	defaultWorkers         = 4
	defaultChunkKiB        = 64
	defaultWatchSchedule   = "0 6 * * *"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogRetention    = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Box: Box{
			APIBaseURL:     defaultAPIBaseURL,
			StaticHost:     defaultStaticHost,
			UserAgent:      defaultUserAgent,
			RequestTimeout: defaultRequestTimeout,
		},
		Browser: Browser{
			Enabled:         false,
			WebDriverURL:    defaultWebDriverURL,
			Headless:        true,
			PageTimeout:     defaultPageTimeout,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Retrieval: Retrieval{
			Workers:  defaultWorkers,
			ChunkKiB: defaultChunkKiB,
		},
		Watch: Watch{
			Schedule: defaultWatchSchedule,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
