package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	store := NewJSONStore(path)

	w := &Wallet{
		Name:      "full",
		Address:   testSignerAddr,
		Type:      TypeSigning,
		KeyRef:    "w3vault.full",
		IsDefault: true,
		CreatedAt: "2024-01-01T00:00:00Z",
	}
	require.NoError(t, store.Save([]*Wallet{{Name: "alice", Address: "0x1111", Type: TypeWatchOnly}, w}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "alice", loaded[0].Name)
	assert.Equal(t, *w, *loaded[1])
}

func TestJSONStoreLoadNoFile(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "nonexistent.json"))

	wallets, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, wallets, "loading a missing file should return nil, nil")
}

func TestJSONStoreSaveRestrictivePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	require.NoError(t, NewJSONStore(path).Save([]*Wallet{{Name: "w", Address: "0x1"}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm() != 0 { // Unix only
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestJSONStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o600))

	_, err := NewJSONStore(path).Load()
	require.Error(t, err)

	mgr := NewManager(WithStore(NewJSONStore(path)))
	_, err = mgr.List()
	assert.ErrorContains(t, err, "loading wallets")
}

func TestWithStoreOptionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")

	mgr := NewManager(WithStore(NewJSONStore(path)))
	require.NoError(t, mgr.AddWatchOnly("test-ws", testSignerAddr))
	require.NoError(t, mgr.SetDefault("test-ws"))

	mgr2 := NewManager(WithStore(NewJSONStore(path)))
	w, err := mgr2.Get("test-ws")
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, w.Address)
	assert.True(t, w.IsDefault)
}
