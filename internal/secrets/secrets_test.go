// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, NCBIAPIKey), []byte("abc123def456\n"), 0o600))

	secrets, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "abc123def456", secrets[NCBIAPIKey])
}

func TestLoadMissingDirectory(t *testing.T) {
	secrets, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, secrets)
}

func TestLoadSkipsHiddenAndEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty-key"), []byte("  \n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, NCBIAPIKey), []byte("k"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	secrets, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{NCBIAPIKey: "k"}, secrets)
}

func TestLoadTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, NCBIAPIKey), []byte("  key-with-spaces  \n\n"), 0o600))

	secrets, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "key-with-spaces", secrets[NCBIAPIKey])
}
