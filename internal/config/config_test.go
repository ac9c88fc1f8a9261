// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Point at an empty temp dir so no stray config.yaml is picked up.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Agent.MaxIterations)
	assert.Equal(t, 3, cfg.Agent.MaxContextScreenshots)
	assert.Equal(t, 1000*time.Millisecond, cfg.Agent.ClickSettle)
	assert.Equal(t, 800*time.Millisecond, cfg.Agent.InputSettle)
	assert.Equal(t, 250*time.Millisecond, cfg.Screen.CaptureSettle)
	assert.Equal(t, 0.1, cfg.Screen.GridSpacing)
	assert.Equal(t, DriverNative, cfg.Screen.Driver)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.LLM.Retry.InitialInterval)
	assert.Equal(t, 30*time.Second, cfg.LLM.Retry.MaxInterval)
	assert.False(t, cfg.Debug.Enabled)
	assert.NotEmpty(t, cfg.Debug.Directory)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
llm:
  provider: gemini
  model: gemini-2.0-flash
agent:
  max_iterations: 5
screen:
  driver: cdp
  cdp_url: ws://127.0.0.1:9222
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.Equal(t, DriverCDP, cfg.Screen.Driver)
	assert.Equal(t, "ws://127.0.0.1:9222", cfg.Screen.CDPURL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Agent:  AgentConfig{MaxIterations: 15, MaxContextScreenshots: 3},
			LLM:    LLMConfig{Provider: ProviderOpenAI, Retry: RetryConfig{MaxAttempts: 3}},
			Screen: ScreenConfig{GridSpacing: 0.1, Driver: DriverNative},
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.Agent.MaxIterations = 0
	assert.Error(t, c.Validate())

	c = base()
	c.Screen.GridSpacing = 1.5
	assert.Error(t, c.Validate())

	c = base()
	c.LLM.Provider = "anthropc"
	assert.Error(t, c.Validate())

	c = base()
	c.Screen.Driver = "vnc"
	assert.Error(t, c.Validate())
}
