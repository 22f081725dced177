package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterus/afterus-backend/internal/config"
)

func TestCreateProvider(t *testing.T) {
	p, err := CreateProvider(config.AIConfig{Provider: "canned"})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = CreateProvider(config.AIConfig{Provider: "openai", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = CreateProvider(config.AIConfig{Provider: "ollama", BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = CreateProvider(config.AIConfig{Provider: "ollama"})
	assert.Error(t, err)

	_, err = CreateProvider(config.AIConfig{Provider: "mystery"})
	assert.ErrorContains(t, err, "unknown provider type")
}

func TestCreateProvider_Anthropic(t *testing.T) {
	p, err := CreateProvider(config.AIConfig{Provider: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())
}
