package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
)

func TestResolveHandlesOnlyExactSpecifier(t *testing.T) {
	require.Equal(t, marker, Resolve(Specifier))

	for _, id := range []string{
		"",
		"auth:config2",
		"auth:confi",
		" auth:config",
		"Auth:Config",
		"./auth.config",
		marker,
	} {
		require.Empty(t, Resolve(id), "id %q should not resolve", id)
	}
}

func TestIsMarker(t *testing.T) {
	require.True(t, IsMarker(Resolve(Specifier)))
	require.False(t, IsMarker(Specifier))
	require.False(t, IsMarker(""))
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadYAMLConfig(t *testing.T) {
	path := writeConfig(t, "auth.config.yaml", `
secret: file-secret
prefix: /auth
providers:
  - id: github
    name: GitHub
    client_id: client-id
    scopes:
      - read:user
`)

	cfg, err := New(WithConfigFile(path)).Read()
	require.NoError(t, err)
	require.Equal(t, "file-secret", cfg.Secret)
	require.Equal(t, "/auth", cfg.Prefix)
	require.Len(t, cfg.Providers, 1)
	require.Equal(t, "github", cfg.Providers[0].ID)
	require.Equal(t, []string{"read:user"}, cfg.Providers[0].Scopes)
}

func TestReadJSONConfig(t *testing.T) {
	path := writeConfig(t, "auth.config.json", `{
  "secret": "json-secret",
  "providers": [{"id": "google", "client_id": "client-id"}]
}`)

	cfg, err := New(WithConfigFile(path)).Read()
	require.NoError(t, err)
	require.Equal(t, "json-secret", cfg.Secret)
	require.Equal(t, "google", cfg.Providers[0].ID)
}

func TestReadDiscoversExtension(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "auth.config.yml")
	require.NoError(t, os.WriteFile(full, []byte("secret: discovered\n"), 0o600))

	cfg, err := New(WithConfigFile(filepath.Join(dir, "auth.config"))).Read()
	require.NoError(t, err)
	require.Equal(t, "discovered", cfg.Secret)
}

func TestReadMissingFileIsNamedError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "auth.config")

	_, err := New(WithConfigFile(missing)).Read()
	require.Error(t, err)
	require.Contains(t, err.Error(), missing)

	var rich *errors.Error
	require.True(t, errors.As(err, &rich))
	require.Equal(t, missing, rich.Metadata["path"])
}

func TestReadMalformedFile(t *testing.T) {
	path := writeConfig(t, "auth.config.yaml", "secret: [unterminated")

	_, err := New(WithConfigFile(path)).Read()
	require.Error(t, err)
}

func TestLoadIgnoresForeignIDs(t *testing.T) {
	l := New(WithConfigFile(filepath.Join(t.TempDir(), "auth.config")))

	cfg, err := l.Load("some/other/module")
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestLoadMarkerReadsConfig(t *testing.T) {
	path := writeConfig(t, "auth.config.yaml", "secret: via-marker\n")

	cfg, err := New(WithConfigFile(path)).Load(Resolve(Specifier))
	require.NoError(t, err)
	require.Equal(t, "via-marker", cfg.Secret)
}
