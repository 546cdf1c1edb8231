package wallet

import (
	"math/big"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0; never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
// Using the FileBackend avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "w3vault-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("testpass"),
	})
	require.NoError(t, err)
	return &Keystore{ring: ring}
}

func dynamicTx() *types.Transaction {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(31337),
		Nonce:     0,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
		Gas:       200_000,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      common.FromHex("0xb6b55f25"),
	})
}

func TestSignerAddress(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning}
	s := NewSigner(w, NewInMemoryKeystore())
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestSignTxWatchOnlyError(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	s := NewSigner(w, NewInMemoryKeystore())

	_, err := s.SignTx(dynamicTx(), big.NewInt(31337))
	assert.ErrorContains(t, err, "watch-only")
}

func TestSignTxKeyNotFound(t *testing.T) {
	w := &Wallet{Name: "missing", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3vault.doesnotexist"}
	s := NewSigner(w, NewInMemoryKeystore())

	_, err := s.SignTx(dynamicTx(), big.NewInt(31337))
	assert.ErrorContains(t, err, "retrieving key")
}

func TestSignTxKeyAddressMismatch(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("w", testPrivKeyHex)
	w := &Wallet{Name: "w", Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", Type: TypeSigning, KeyRef: ref}

	_, err := NewSigner(w, ks).SignTx(dynamicTx(), big.NewInt(31337))
	assert.ErrorContains(t, err, "belongs to")
}

func TestSignTxRecoversSender(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	ks := testKeystore(t)
	ref, err := ks.Store("testwal", testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "testwal", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	raw, err := NewSigner(w, ks).SignTx(dynamicTx(), big.NewInt(31337))
	require.NoError(t, err)

	var decoded types.Transaction
	require.NoError(t, decoded.UnmarshalBinary(raw))
	assert.Equal(t, uint8(types.DynamicFeeTxType), decoded.Type())

	sender, err := types.Sender(types.NewLondonSigner(big.NewInt(31337)), &decoded)
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, sender.Hex())
}

func TestSignTxDifferentChainIDs(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("w", testPrivKeyHex)
	s := NewSigner(&Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}, ks)

	legacy := types.NewTransaction(0, common.Address{1}, big.NewInt(0), 21000, big.NewInt(1e9), nil)
	rawMainnet, err := s.SignTx(legacy, big.NewInt(1))
	require.NoError(t, err)
	rawBase, err := s.SignTx(legacy, big.NewInt(8453))
	require.NoError(t, err)

	assert.NotEqual(t, rawMainnet, rawBase, "same tx signed on different chains must differ")
}
