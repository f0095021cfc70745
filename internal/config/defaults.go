package config

const (
	defaultConfigPath     = "~/.config/ytscribe/config.toml"
	defaultOutputDir      = "."
	defaultLogDirFallback = "~/.local/state/ytscribe/logs"
	defaultLanguage       = "en"
	defaultRequestTimeout = 30
	defaultRequestRate    = 2.0
	defaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultOutputFormat   = "text"
	defaultUIBind         = "127.0.0.1:0"
	defaultIdleTimeout    = 180
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultLogRetention   = 14
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir(),
		},
		YouTube: YouTube{
			Languages:         []string{defaultLanguage},
			RequestTimeout:    defaultRequestTimeout,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: defaultRequestRate,
		},
		Output: Output{
			Format: defaultOutputFormat,
			Save:   true,
		},
		UI: UI{
			Bind:        defaultUIBind,
			OpenBrowser: true,
			IdleTimeout: defaultIdleTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
