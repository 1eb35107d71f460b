package types

type RunMode string

const (
	// ModeLocal runs the API server and the recurring task scheduler in one process
	ModeLocal RunMode = "local"
	// ModeAPI runs just the API server, the scheduler is expected to run elsewhere
	ModeAPI RunMode = "api"
	// ModeScheduler runs just the recurring task scheduler
	ModeScheduler RunMode = "scheduler"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
