package config

const (
	defaultTMDbBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDbLanguage      = "en-US"
	defaultTVDbBaseURL       = "https://api.thetvdb.com"
	defaultTVDbLanguage      = "en"
	defaultOMDbBaseURL       = "http://www.omdbapi.com"
	defaultCacheEnabled      = true
	defaultCacheRetention    = 6
	defaultHTTPTimeout       = 1
	defaultHTTPRetryMax      = 2
	defaultLogFormat         = "console"
	defaultLogLevel          = "warn"
	defaultConfigPath        = "~/.config/mapi/config.toml"
	defaultProjectConfigName = "mapi.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		TMDb: Provider{
			BaseURL:  defaultTMDbBaseURL,
			Language: defaultTMDbLanguage,
		},
		TVDb: Provider{
			BaseURL:  defaultTVDbBaseURL,
			Language: defaultTVDbLanguage,
		},
		OMDb: Provider{
			BaseURL: defaultOMDbBaseURL,
		},
		Cache: Cache{
			Enabled:       defaultCacheEnabled,
			Path:          defaultCachePath(),
			RetentionDays: defaultCacheRetention,
		},
		HTTP: HTTP{
			TimeoutSeconds: defaultHTTPTimeout,
			RetryMax:       defaultHTTPRetryMax,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
