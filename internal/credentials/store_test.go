package credentials

import (
	"testing"

	"github.com/shini4i/postdeplist/internal/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storePath = "/home/deployer/.config/postdeplist.yaml"

var fullCredentials = models.ServiceCredentials{
	Chat:    models.Credentials{Username: "fd-user", Password: "fd-pass"},
	Tracker: models.Credentials{Username: "jira-user", Password: "jira-pass"},
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := &FileStore{FS: fs, Path: storePath}

	require.NoError(t, store.Save(fullCredentials))

	info, err := fs.Stat(storePath)
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	creds, err := store.Credentials()
	require.NoError(t, err)
	assert.Equal(t, fullCredentials, creds)
}

func TestFileStoreFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := &FileStore{FS: fs, Path: storePath}

	require.NoError(t, store.Save(fullCredentials))

	data, err := afero.ReadFile(fs, storePath)
	require.NoError(t, err)
	assert.Equal(t, "flowdock:\n    username: fd-user\n    password: fd-pass\njira:\n    username: jira-user\n    password: jira-pass\n", string(data))
}

func TestFileStoreNotConfigured(t *testing.T) {
	cases := []struct {
		name    string
		content *string
	}{
		{name: "missing file"},
		{name: "empty file", content: strPtr("")},
		{name: "whitespace only", content: strPtr("\n  \n")},
		{name: "missing tracker section", content: strPtr("flowdock:\n  username: a\n  password: b\n")},
		{name: "missing password", content: strPtr("flowdock:\n  username: a\njira:\n  username: c\n  password: d\n")},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tc.content != nil {
				require.NoError(t, afero.WriteFile(fs, storePath, []byte(*tc.content), 0o600))
			}

			_, err := (&FileStore{FS: fs, Path: storePath}).Load()
			assert.ErrorIs(t, err, ErrNotConfigured)
		})
	}
}

func TestFileStoreInvalidYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, storePath, []byte("flowdock: [unterminated"), 0o600))

	_, err := (&FileStore{FS: fs, Path: storePath}).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestFileStoreSaveReadOnlyFs(t *testing.T) {
	store := &FileStore{FS: afero.NewReadOnlyFs(afero.NewMemMapFs()), Path: storePath}

	err := store.Save(fullCredentials)
	require.Error(t, err)
}

func strPtr(s string) *string {
	return &s
}
