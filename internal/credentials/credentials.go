// Package credentials supplies the Flowdock and Jira logins used during a run.
package credentials

//go:generate mockgen -destination=../mocks/credentials.go -package=mocks -source=credentials.go

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/shini4i/postdeplist/internal/models"
)

// FileName is the credentials file created under the user configuration directory.
const FileName = "postdeplist.yaml"

// ErrNotConfigured indicates no usable credentials were stored yet.
var ErrNotConfigured = errors.New("credentials are not configured")

// Provider returns the credential pairs for the chat service and the tracker.
type Provider interface {
	Credentials() (models.ServiceCredentials, error)
}

// DefaultPath returns the per-user credentials file location.
// APPDATA wins on Windows, then XDG_CONFIG_HOME, then ~/.config.
func DefaultPath() (string, error) {
	if dir, ok := os.LookupEnv("APPDATA"); ok && dir != "" {
		return filepath.Join(dir, FileName), nil
	}
	if dir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && dir != "" {
		return filepath.Join(dir, FileName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", FileName), nil
}
