package credentials

import (
	"errors"

	"github.com/op/go-logging"
	"github.com/shini4i/postdeplist/internal/models"
)

// Chain loads credentials from Store and falls back to Prompt on first run,
// persisting whatever the user entered.
type Chain struct {
	Store  *FileStore
	Prompt Provider
	Log    *logging.Logger
}

// Ensure Chain implements Provider.
var _ Provider = (*Chain)(nil)

// Credentials returns stored credentials, prompting and saving them when none are stored yet.
func (c *Chain) Credentials() (models.ServiceCredentials, error) {
	creds, err := c.Store.Load()
	if err == nil {
		c.debugf("▶ Loaded credentials from [%s]", c.Store.Path)
		return creds, nil
	}
	if !errors.Is(err, ErrNotConfigured) {
		return models.ServiceCredentials{}, err
	}
	if c.Prompt == nil {
		return models.ServiceCredentials{}, err
	}

	creds, err = c.Prompt.Credentials()
	if err != nil {
		return models.ServiceCredentials{}, err
	}

	if err := c.Store.Save(creds); err != nil {
		return models.ServiceCredentials{}, err
	}
	if c.Log != nil {
		c.Log.Infof("===> Credentials saved to [%s]", c.Store.Path)
	}

	return creds, nil
}

func (c *Chain) debugf(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Debugf(format, args...)
	}
}
