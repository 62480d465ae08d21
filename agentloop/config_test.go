package agentloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmera/agentkit/llmstream"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("openai")
	assert.Equal(t, "openai", cfg.Provider)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.7, *cfg.Temperature)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"missing provider", func(c *Config) { c.Provider = "" }, false},
		{"temperature too high", func(c *Config) { c.Temperature = llmstream.Float64(1.1) }, false},
		{"temperature negative", func(c *Config) { c.Temperature = llmstream.Float64(-0.1) }, false},
		{"negative iterations", func(c *Config) { c.MaxIterations = -1 }, false},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, false},
		{"temperature at bounds", func(c *Config) { c.Temperature = llmstream.Float64(1.0) }, true},
		{"temperature unset", func(c *Config) { c.Temperature = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("openai")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, llmstream.IsConfiguration(err))
			}
		})
	}
}

func TestConfigExplicitZeroTemperatureSurvives(t *testing.T) {
	cfg := Config{Provider: "openai", Temperature: llmstream.Float64(0)}
	cfg = cfg.withDefaults()
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.0, *cfg.Temperature)
	require.NoError(t, cfg.Validate())

	unset := Config{Provider: "openai"}.withDefaults()
	require.NotNil(t, unset.Temperature)
	assert.Equal(t, 0.7, *unset.Temperature)
}

func TestConfigModelResolution(t *testing.T) {
	cfg := DefaultConfig("openai")
	assert.Equal(t, "gpt-4o", cfg.model())

	cfg.Model = "gpt-4o-mini"
	assert.Equal(t, "gpt-4o-mini", cfg.model())
}

func TestConfigContextWindow(t *testing.T) {
	cfg := DefaultConfig("openai")
	assert.Equal(t, 128000, cfg.contextWindow())

	cfg.ContextWindow = 4096
	assert.Equal(t, 4096, cfg.contextWindow())

	unknown := DefaultConfig("custom")
	unknown.Model = "house-model"
	assert.Equal(t, 128000, unknown.contextWindow())
}
