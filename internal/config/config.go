package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Agent      AgentConfig      `koanf:"agent"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Guardrails GuardrailsConfig `koanf:"guardrails"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	Telegram   TelegramConfig   `koanf:"telegram"`
	Scheduler  SchedulerConfig  `koanf:"scheduler"`
}

type ServerConfig struct {
	LogLevel string `koanf:"log_level"`
	DataDir  string `koanf:"data_dir"`
}

type StoreConfig struct {
	LockTimeout  string `koanf:"lock_timeout"`
	LockRetry    string `koanf:"lock_retry"`
	LockMaxRetry int    `koanf:"lock_max_retry"`
}

type AgentConfig struct {
	MaxSteps      int    `koanf:"max_steps"`
	StepTimeout   string `koanf:"step_timeout"`
	MaxInputChars int    `koanf:"max_input_chars"`
}

type ClassifierConfig struct {
	Enabled      bool   `koanf:"enabled"`
	APIKey       string `koanf:"api_key"`
	Model        string `koanf:"model"`
	BaseURL      string `koanf:"base_url"`
	MaxTokens    int    `koanf:"max_tokens"`
	CacheSize    int    `koanf:"cache_size"`
	MaxPlanSteps int    `koanf:"max_plan_steps"`
}

type GuardrailsConfig struct {
	// Extra tool -> high-risk actions merged over the built-in table.
	Extra map[string][]string `koanf:"extra"`
}

type RateLimitConfig struct {
	MaxRequests int    `koanf:"max_requests"`
	Window      string `koanf:"window"`
}

type TelegramConfig struct {
	Token          string `koanf:"token"`
	UpdateTimeout  int    `koanf:"update_timeout"`
	IdempotencyTTL string `koanf:"idempotency_ttl"`
}

type SchedulerConfig struct {
	Enabled   bool   `koanf:"enabled"`
	BriefCron string `koanf:"brief_cron"`
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"server.log_level":          DefaultServerLogLevel,
		"server.data_dir":           filepath.Join(os.Getenv("HOME"), ".kaizen"),
		"store.lock_timeout":        DefaultStoreLockTimeout,
		"store.lock_retry":          DefaultStoreLockRetry,
		"store.lock_max_retry":      DefaultStoreLockMaxRetry,
		"agent.max_steps":           DefaultAgentMaxSteps,
		"agent.step_timeout":        DefaultAgentStepTimeout,
		"agent.max_input_chars":     DefaultAgentMaxInputChars,
		"classifier.enabled":        false,
		"classifier.model":          DefaultClassifierModel,
		"classifier.max_tokens":     DefaultClassifierMaxTokens,
		"classifier.cache_size":     DefaultClassifierCacheSize,
		"classifier.max_plan_steps": DefaultClassifierMaxPlanSteps,
		"rate_limit.max_requests":   DefaultRateLimitMaxRequests,
		"rate_limit.window":         DefaultRateLimitWindow,
		"telegram.update_timeout":   DefaultTelegramUpdateTimeout,
		"telegram.idempotency_ttl":  DefaultTelegramIdempotencyTTL,
		"scheduler.enabled":         true,
		"scheduler.brief_cron":      DefaultSchedulerBriefCron,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".kaizen", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider("KAIZEN_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "KAIZEN_")), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Post-Process: Inject standard Env Vars if missing
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Classifier.APIKey == "" {
		cfg.Classifier.APIKey = key
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" && cfg.Telegram.Token == "" {
		cfg.Telegram.Token = token
	}

	return &cfg, nil
}
