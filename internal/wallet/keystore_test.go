package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseHexKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0xabc123", "abc123"},
		{"0Xabc123", "abc123"},
		{"abc123", "abc123"},
		{"  0xabc  ", "abc"},
		{"0x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normaliseHexKey(tt.in), tt.in)
	}
}

func TestKeystoreRetrieveEnvVarOverride(t *testing.T) {
	t.Setenv(KeyEnvVar, "0x"+testPrivKeyHex)

	ks := &Keystore{ring: nil} // nil ring: must be served by env var
	got, err := ks.Retrieve("w3vault.any-ref")
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)
}

func TestKeystoreNilRing(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := &Keystore{ring: nil}

	_, err := ks.Retrieve("w3vault.ghost")
	assert.ErrorContains(t, err, "keystore not available")

	_, err = ks.Store("ghost", testPrivKeyHex)
	assert.ErrorContains(t, err, "keystore not available")

	assert.NoError(t, ks.Delete("w3vault.ghost"))
}

func TestKeystoreFileBackendRoundTrip(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := testKeystore(t)

	ref, err := ks.Store("alice", "0x"+testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "w3vault.alice", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorContains(t, err, "keychain retrieve")

	assert.NoError(t, ks.Delete(ref), "deleting a missing key is not an error")
}

func TestInMemoryKeystore(t *testing.T) {
	iks := NewInMemoryKeystore()

	ref, err := iks.Store("mykey", "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "w3vault.mykey", ref)

	val, err := iks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", val)

	iks.Store("mykey", "second") //nolint:errcheck
	val, _ = iks.Retrieve(ref)
	assert.Equal(t, "second", val, "second store should overwrite first")

	require.NoError(t, iks.Delete(ref))
	_, err = iks.Retrieve(ref)
	assert.ErrorContains(t, err, "not found")
	assert.NoError(t, iks.Delete(ref))
}

var _ KeystoreBackend = (*Keystore)(nil)
var _ KeystoreBackend = (*InMemoryKeystore)(nil)
