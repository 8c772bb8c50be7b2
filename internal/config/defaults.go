package config

const (
	defaultDataDir             = "~/.local/share/showrunner"
	defaultLogDir              = "~/.local/share/showrunner/logs"
	defaultRenderOutputDir     = "~/.local/share/showrunner/renders"
	defaultAPIBind             = "127.0.0.1:7718"
	defaultRenderBaseURL       = "http://127.0.0.1:8188"
	defaultRenderTimeout       = 30
	defaultRenderPollInterval  = 5
	defaultRenderPollAttempts  = 360
	defaultGateWaitWarnSeconds = 300
	defaultStuckAfterMinutes   = 90
	defaultOrphanWindowMinutes = 240
	defaultSceneFanoutLimit    = 4
	defaultMaintenanceInterval = 15
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:         defaultDataDir,
			LogDir:          defaultLogDir,
			RenderOutputDir: defaultRenderOutputDir,
			APIBind:         defaultAPIBind,
		},
		Render: Render{
			BaseURL:         defaultRenderBaseURL,
			RequestTimeout:  defaultRenderTimeout,
			PollInterval:    defaultRenderPollInterval,
			MaxPollAttempts: defaultRenderPollAttempts,
		},
		Gate: Gate{
			WaitWarnSeconds: defaultGateWaitWarnSeconds,
		},
		Runner: Runner{
			StuckAfterMinutes:          defaultStuckAfterMinutes,
			OrphanWindowMinutes:        defaultOrphanWindowMinutes,
			SceneFanoutLimit:           defaultSceneFanoutLimit,
			MaintenanceIntervalMinutes: defaultMaintenanceInterval,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
