package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shini4i/postdeplist/internal/models"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileStore keeps credentials in a YAML file with one section per service.
type FileStore struct {
	FS   afero.Fs
	Path string
}

// Ensure FileStore implements Provider.
var _ Provider = (*FileStore)(nil)

// Credentials returns the stored credentials.
func (s *FileStore) Credentials() (models.ServiceCredentials, error) {
	return s.Load()
}

// Load reads the credentials file, returning ErrNotConfigured when it is absent or incomplete.
func (s *FileStore) Load() (models.ServiceCredentials, error) {
	data, err := afero.ReadFile(s.FS, s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ServiceCredentials{}, ErrNotConfigured
		}
		return models.ServiceCredentials{}, fmt.Errorf("read credentials %s: %w", s.Path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return models.ServiceCredentials{}, ErrNotConfigured
	}

	var creds models.ServiceCredentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return models.ServiceCredentials{}, fmt.Errorf("parse credentials %s: %w", s.Path, err)
	}

	if !creds.Chat.Complete() || !creds.Tracker.Complete() {
		return models.ServiceCredentials{}, ErrNotConfigured
	}

	return creds, nil
}

// Save writes creds to the credentials file, readable by the owner only.
func (s *FileStore) Save(creds models.ServiceCredentials) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := s.FS.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	if err := afero.WriteFile(s.FS, s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials %s: %w", s.Path, err)
	}

	return nil
}
