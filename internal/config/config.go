// internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Provider identifies a reasoning-model backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Driver identifies an actuation/perception backend.
type Driver string

const (
	// DriverNative injects OS-level input and captures the physical screen.
	DriverNative Driver = "native"
	// DriverCDP pilots a remote-controlled browser session over the
	// Chrome DevTools Protocol.
	DriverCDP Driver = "cdp"
)

// Config holds the entire application configuration.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Agent  AgentConfig  `mapstructure:"agent" yaml:"agent"`
	LLM    LLMConfig    `mapstructure:"llm" yaml:"llm"`
	Debug  DebugConfig  `mapstructure:"debug" yaml:"debug"`
	Screen ScreenConfig `mapstructure:"screen" yaml:"screen"`
}

// LoggerConfig controls the zap logger and optional rotating file sink.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
}

// AgentConfig bounds the action loop.
type AgentConfig struct {
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations"`
	// MaxContextScreenshots caps how many recent turns keep their image
	// payload after pruning.
	MaxContextScreenshots int           `mapstructure:"max_context_screenshots" yaml:"max_context_screenshots"`
	LaunchSettle          time.Duration `mapstructure:"launch_settle" yaml:"launch_settle"`
	ClickSettle           time.Duration `mapstructure:"click_settle" yaml:"click_settle"`
	InputSettle           time.Duration `mapstructure:"input_settle" yaml:"input_settle"`
	HoverPause            time.Duration `mapstructure:"hover_pause" yaml:"hover_pause"`
}

// LLMConfig selects and tunes the reasoning backend.
type LLMConfig struct {
	Provider   Provider      `mapstructure:"provider" yaml:"provider"`
	Model      string        `mapstructure:"model" yaml:"model"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	MaxTokens  int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	APITimeout time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	// RequestsPerMinute throttles gateway calls; zero disables the limiter.
	RequestsPerMinute int         `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Retry             RetryConfig `mapstructure:"retry" yaml:"retry"`
}

// RetryConfig bounds transient-failure retries of gateway calls.
type RetryConfig struct {
	// MaxAttempts counts every call, including the first one.
	MaxAttempts     int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval" yaml:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval" yaml:"max_interval"`
}

// DebugConfig controls the click-calibration artifact recorder.
type DebugConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// ScreenConfig tunes capture and annotation.
type ScreenConfig struct {
	// CaptureSettle is the pause between hiding the overlay window and
	// taking the screenshot, so the compositor finishes removing it.
	CaptureSettle time.Duration `mapstructure:"capture_settle" yaml:"capture_settle"`
	// GridSpacing is the fractional distance between reference grid lines.
	GridSpacing float64 `mapstructure:"grid_spacing" yaml:"grid_spacing"`
	Driver      Driver  `mapstructure:"driver" yaml:"driver"`
	// CDPURL is the DevTools websocket endpoint when Driver is cdp.
	CDPURL string `mapstructure:"cdp_url" yaml:"cdp_url"`
}

// SetDefaults registers every recognized option with viper so a bare run
// works without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "screenagent")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)

	v.SetDefault("agent.max_iterations", 15)
	v.SetDefault("agent.max_context_screenshots", 3)
	v.SetDefault("agent.launch_settle", 2*time.Second)
	v.SetDefault("agent.click_settle", 1000*time.Millisecond)
	v.SetDefault("agent.input_settle", 800*time.Millisecond)
	v.SetDefault("agent.hover_pause", 100*time.Millisecond)

	v.SetDefault("llm.provider", string(ProviderOpenAI))
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.api_timeout", 60*time.Second)
	v.SetDefault("llm.requests_per_minute", 0)
	v.SetDefault("llm.retry.max_attempts", 3)
	v.SetDefault("llm.retry.initial_interval", time.Second)
	v.SetDefault("llm.retry.max_interval", 30*time.Second)

	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.directory", defaultDebugDir())

	v.SetDefault("screen.capture_settle", 250*time.Millisecond)
	v.SetDefault("screen.grid_spacing", 0.1)
	v.SetDefault("screen.driver", string(DriverNative))
}

// Load reads configuration from the given file (optional), the environment
// (SCREENAGENT_ prefix), and the defaults, in that precedence order.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SCREENAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars carry the run.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the loop cannot honor.
func (c *Config) Validate() error {
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.MaxContextScreenshots <= 0 {
		return fmt.Errorf("agent.max_context_screenshots must be positive, got %d", c.Agent.MaxContextScreenshots)
	}
	if c.Screen.GridSpacing <= 0 || c.Screen.GridSpacing >= 1 {
		return fmt.Errorf("screen.grid_spacing must be in (0,1), got %v", c.Screen.GridSpacing)
	}
	if c.LLM.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("llm.retry.max_attempts must be positive, got %d", c.LLM.Retry.MaxAttempts)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Screen.Driver {
	case DriverNative, DriverCDP:
	default:
		return fmt.Errorf("unknown screen driver %q", c.Screen.Driver)
	}
	return nil
}

func defaultDebugDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "screenagent-debug"
	}
	return filepath.Join(home, ".screenagent", "debug")
}
