package config

const (
	DefaultServerLogLevel = "info"

	DefaultStoreLockTimeout  = "5s"
	DefaultStoreLockRetry    = "200ms"
	DefaultStoreLockMaxRetry = 10

	// Plan and tool execution limits.
	DefaultAgentMaxSteps      = 6
	DefaultAgentStepTimeout   = "30s"
	DefaultAgentMaxInputChars = 4000

	DefaultClassifierModel        = "gpt-4o-mini"
	DefaultClassifierMaxTokens    = 500
	DefaultClassifierCacheSize    = 100
	DefaultClassifierMaxPlanSteps = 5

	DefaultRateLimitMaxRequests = 20
	DefaultRateLimitWindow      = "60s"

	DefaultTelegramUpdateTimeout  = 60
	DefaultTelegramIdempotencyTTL = "24h"

	// 07:30 local time every day.
	DefaultSchedulerBriefCron = "30 7 * * *"
)
