package main

import (
	"path/filepath"
	"testing"

	"github.com/op/go-logging"
	"github.com/shini4i/postdeplist/internal/app"
	"github.com/shini4i/postdeplist/internal/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingInit(t *testing.T) {
	loggingInit(true)
	assert.Equal(t, logging.DEBUG, logging.GetLevel(""))

	loggingInit(false)
	assert.Equal(t, logging.INFO, logging.GetLevel(""))
}

func TestNewCredentialsProviderUsesConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.yaml")

	provider, err := newCredentialsProvider(app.Config{CredentialsFile: path})
	require.NoError(t, err)

	chain, ok := provider.(*credentials.Chain)
	require.True(t, ok)
	assert.Equal(t, path, chain.Store.Path)
	assert.NotNil(t, chain.Prompt)
}

func TestNewCredentialsProviderDefaultsToUserConfig(t *testing.T) {
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	provider, err := newCredentialsProvider(app.Config{})
	require.NoError(t, err)

	chain, ok := provider.(*credentials.Chain)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/xdg", credentials.FileName), chain.Store.Path)
}
