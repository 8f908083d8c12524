package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newMockKeyring(t *testing.T) *Keyring {
	t.Helper()
	keyring.MockInit()
	kr, err := NewKeyring()
	require.NoError(t, err)
	return kr
}

func TestKeyringRoundTrip(t *testing.T) {
	kr := newMockKeyring(t)

	require.NoError(t, kr.Save("rdpmen/host/web01", "bob", "secret2"))

	entry, found, err := kr.Read("rdpmen/host/web01")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "bob", entry.Username)
	assert.Equal(t, "secret2", entry.Secret)

	_, found, err = kr.Read("rdpmen/host/ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKeyringIndexTracksSavesAndDeletes(t *testing.T) {
	kr := newMockKeyring(t)

	require.NoError(t, kr.Save("rdpmen/default", "alice", "s1"))
	require.NoError(t, kr.Save("rdpmen/host/web01", "bob", "s2"))
	require.NoError(t, kr.Save("rdpmen/host/db01", "carol", "s3"))

	targets, err := kr.ListTargets("rdpmen/host/")
	require.NoError(t, err)
	assert.Equal(t, []string{"rdpmen/host/db01", "rdpmen/host/web01"}, targets)

	require.NoError(t, kr.Delete("rdpmen/host/web01"))
	targets, err = kr.ListTargets("rdpmen/host/")
	require.NoError(t, err)
	assert.Equal(t, []string{"rdpmen/host/db01"}, targets)

	// Saving twice keeps a single index entry.
	require.NoError(t, kr.Save("rdpmen/host/db01", "carol", "s3b"))
	targets, err = kr.ListTargets("rdpmen/host/")
	require.NoError(t, err)
	assert.Equal(t, []string{"rdpmen/host/db01"}, targets)
}

func TestKeyringDeleteIsIdempotent(t *testing.T) {
	kr := newMockKeyring(t)

	require.NoError(t, kr.Delete("rdpmen/host/ghost"))

	targets, err := kr.ListTargets("")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestKeyringSaveOverwrites(t *testing.T) {
	kr := newMockKeyring(t)

	require.NoError(t, kr.Save("rdpmen/default", "alice", "old"))
	require.NoError(t, kr.Save("rdpmen/default", "alice", "new"))

	entry, found, err := kr.Read("rdpmen/default")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "new", entry.Secret)
}
