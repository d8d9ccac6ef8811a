package config

const (
	defaultDataDir             = "~/.local/share/scriptqueue"
	defaultLogDir              = "~/.local/share/scriptqueue/logs"
	defaultAPIBind             = "127.0.0.1:7910"
	defaultTokenHours          = 24
	defaultScanIntervalMinutes = 30
	defaultNearDueDays         = 2
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Auth: Auth{
			TokenHours: defaultTokenHours,
		},
		Deadlines: Deadlines{
			ScanIntervalMinutes: defaultScanIntervalMinutes,
			NearDueDays:         defaultNearDueDays,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Deadlines:      true,
			Completions:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
