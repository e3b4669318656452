package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.bin")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(NamespaceAuth, "access_token", "tok-1"))
	require.NoError(t, s.SetBool(NamespaceOnboarding, "seen", true))

	// A fresh handle over the same files must see the same values.
	s2, err := Open(path)
	require.NoError(t, err)
	v, ok := s2.Get(NamespaceAuth, "access_token")
	require.True(t, ok)
	assert.Equal(t, "tok-1", v)
	assert.True(t, s2.GetBool(NamespaceOnboarding, "seen"))
}

func TestNamespaceIsolation(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prefs.bin"))
	require.NoError(t, err)

	require.NoError(t, s.Set(NamespaceAuth, "k", "auth-value"))
	require.NoError(t, s.Set(NamespaceUser, "k", "user-value"))

	require.NoError(t, s.ClearNamespace(NamespaceAuth))

	_, ok := s.Get(NamespaceAuth, "k")
	assert.False(t, ok)
	v, ok := s.Get(NamespaceUser, "k")
	require.True(t, ok)
	assert.Equal(t, "user-value", v)
}

func TestDelete(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prefs.bin"))
	require.NoError(t, err)

	require.NoError(t, s.Set(NamespaceUser, "name", "Ana"))
	require.NoError(t, s.Delete(NamespaceUser, "name"))
	_, ok := s.Get(NamespaceUser, "name")
	assert.False(t, ok)

	// Deleting a missing key is a no-op.
	require.NoError(t, s.Delete(NamespaceUser, "missing"))
	require.NoError(t, s.Delete("no-such-ns", "missing"))
}

func TestGetBoolDefaultsFalse(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prefs.bin"))
	require.NoError(t, err)
	assert.False(t, s.GetBool(NamespaceBiometric, "enabled"))

	require.NoError(t, s.SetBool(NamespaceBiometric, "enabled", false))
	assert.False(t, s.GetBool(NamespaceBiometric, "enabled"))
}

func TestFileIsSealed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.bin")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(NamespaceAuth, "access_token", "super-secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-token")
	assert.NotContains(t, string(raw), NamespaceAuth)
}

func TestTamperedFileIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.bin")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(NamespaceAuth, "k", "v"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestTruncatedFileIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.bin")
	_, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))
	_, err = Open(path)
	assert.ErrorIs(t, err, ErrCorrupt)
}
