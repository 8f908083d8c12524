package credentials

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdpManager/internal/apperrors"
	"rdpManager/internal/vault"
)

func newTestResolver() (*Resolver, *vault.Memory) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	v := vault.NewMemory()
	return NewResolver(v, logrus.NewEntry(logger)), v
}

func TestHostTargetIsDeterministic(t *testing.T) {
	assert.Equal(t, "rdpmen/host/web01", HostTarget("web01"))
	assert.Equal(t, "rdpmen/host/web01", HostTarget("WEB01"))
	assert.Equal(t, "rdpmen/host/web01", HostTarget("  web01  "))
	assert.Equal(t, "TERMSRV/web01:3390", SessionTarget("web01:3390"))
}

func TestResolveFallsBackToGlobal(t *testing.T) {
	resolver, _ := newTestResolver()
	require.NoError(t, resolver.SaveGlobal("alice", "secret1"))

	cred, err := resolver.ResolveForHost("web01")
	require.NoError(t, err)
	assert.Equal(t, "alice", cred.Username)
	assert.Equal(t, "secret1", cred.Secret)
}

func TestResolvePrefersPerHost(t *testing.T) {
	resolver, _ := newTestResolver()
	require.NoError(t, resolver.SaveGlobal("alice", "secret1"))
	require.NoError(t, resolver.SavePerHost("web01", "bob", "secret2"))

	cred, err := resolver.ResolveForHost("web01")
	require.NoError(t, err)
	assert.Equal(t, "bob", cred.Username)
	assert.Equal(t, "secret2", cred.Secret)

	// Other hosts still get the global credential.
	cred, err = resolver.ResolveForHost("db01")
	require.NoError(t, err)
	assert.Equal(t, "alice", cred.Username)
}

func TestDeletePerHostRestoresFallback(t *testing.T) {
	resolver, _ := newTestResolver()
	require.NoError(t, resolver.SaveGlobal("alice", "secret1"))
	require.NoError(t, resolver.SavePerHost("web01", "bob", "secret2"))
	require.NoError(t, resolver.DeletePerHost("web01"))

	cred, err := resolver.ResolveForHost("web01")
	require.NoError(t, err)
	assert.Equal(t, "alice", cred.Username)
}

func TestResolveMissingNamesHostTarget(t *testing.T) {
	resolver, _ := newTestResolver()

	_, err := resolver.ResolveForHost("web01")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.CredentialsNotFound))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, HostTarget("web01"), appErr.Target)
}

func TestSaveRejectsEmptyUsername(t *testing.T) {
	resolver, _ := newTestResolver()

	assert.Error(t, resolver.SaveGlobal("", "secret"))
	assert.Error(t, resolver.SaveGlobal("   ", "secret"))
	assert.Error(t, resolver.SavePerHost("web01", "", "secret"))
}

func TestSavePerHostRejectsBadHostname(t *testing.T) {
	resolver, _ := newTestResolver()

	err := resolver.SavePerHost("../etc", "bob", "secret")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.InvalidHostname))
}

func TestDomainUsernameSplit(t *testing.T) {
	resolver, _ := newTestResolver()
	require.NoError(t, resolver.SaveGlobal(`CORP\alice`, "secret1"))

	cred, err := resolver.ResolveForHost("web01")
	require.NoError(t, err)
	assert.Equal(t, "alice", cred.Username)
	assert.Equal(t, "CORP", cred.Domain)
	assert.Equal(t, `CORP\alice`, cred.DisplayUser())
}

func TestClearAllRemovesEverything(t *testing.T) {
	resolver, v := newTestResolver()
	require.NoError(t, resolver.SaveGlobal("alice", "secret1"))
	require.NoError(t, resolver.SavePerHost("web01", "bob", "secret2"))
	require.NoError(t, resolver.SavePerHost("db01", "carol", "secret3"))
	require.NoError(t, v.Save(SessionTarget("web01"), "bob", "secret2"))

	report := resolver.ClearAll()
	require.NoError(t, report.Err())
	assert.Equal(t, 4, report.Deleted)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, v.Len())
}

func TestClearAllCollectsFailures(t *testing.T) {
	resolver, v := newTestResolver()
	require.NoError(t, resolver.SaveGlobal("alice", "secret1"))
	require.NoError(t, resolver.SavePerHost("web01", "bob", "secret2"))
	require.NoError(t, resolver.SavePerHost("db01", "carol", "secret3"))
	v.FailDelete = map[string]bool{HostTarget("web01"): true}

	report := resolver.ClearAll()
	require.Error(t, report.Err())
	assert.Equal(t, 2, report.Deleted)
	assert.Equal(t, 1, report.Failed)

	// The failing entry survived, everything else is gone.
	_, found, err := v.Read(HostTarget("web01"))
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = v.Read(GlobalTarget)
	require.NoError(t, err)
	assert.False(t, found)
}
