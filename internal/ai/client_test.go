package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultModelEnvOverride(t *testing.T) {
	t.Setenv("DOCSMITH_MODEL", "")
	assert.Equal(t, ModelDefault, GetDefaultModel())

	t.Setenv("DOCSMITH_MODEL", "claude-test-model")
	assert.Equal(t, "claude-test-model", GetDefaultModel())
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewClient(Config{})
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}

func TestNewClientDefaults(t *testing.T) {
	t.Setenv("DOCSMITH_MODEL", "")
	c, err := NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, ModelDefault, c.Model())
	assert.NotNil(t, c.limiter)
	assert.NotNil(t, c.sem)
	assert.Equal(t, Usage{}, c.Usage())
}

func TestNewClientUnlimitedModes(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.RequestsPerSecond = 0
	cfg.MaxConcurrentCalls = 0
	c, err := NewClient(Config{APIKey: "test-key", Model: "m", Retry: cfg})
	require.NoError(t, err)
	assert.Nil(t, c.limiter)
	assert.Nil(t, c.sem)
	assert.Equal(t, "m", c.Model())
}
