package contract

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the subset of chain.EVMClient the vault binding needs.
type Backend interface {
	CallContract(ctx context.Context, to, calldata string) (string, error)
	EstimateGas(ctx context.Context, from, to, data string, value *big.Int) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	MaxPriorityFee(ctx context.Context) (*big.Int, error)
	BaseFee(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, address string) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendRawTransaction(ctx context.Context, rawTx string) (string, error)
	WaitForReceipt(ctx context.Context, hash string, timeout time.Duration) (*chain.TxReceipt, error)
}

// TxSigner signs a transaction on behalf of from and returns the raw bytes.
type TxSigner interface {
	SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Vault is a typed binding for the WBTC vault contract.
type Vault struct {
	backend        Backend
	signer         TxSigner
	address        common.Address
	chainID        *big.Int
	gasFallback    uint64
	confirmTimeout time.Duration
}

// VaultOption configures a Vault.
type VaultOption func(*Vault)

// WithChainID pins the chain ID instead of asking the node for every write.
func WithChainID(id *big.Int) VaultOption {
	return func(v *Vault) { v.chainID = id }
}

// WithGasFallback sets the gas limit used when estimation fails.
func WithGasFallback(limit uint64) VaultOption {
	return func(v *Vault) { v.gasFallback = limit }
}

// WithConfirmTimeout bounds how long a write waits for its receipt.
func WithConfirmTimeout(d time.Duration) VaultOption {
	return func(v *Vault) { v.confirmTimeout = d }
}

// NewVault binds the vault at address. signer may be nil for read-only use.
func NewVault(backend Backend, address common.Address, signer TxSigner, opts ...VaultOption) *Vault {
	v := &Vault{
		backend:        backend,
		signer:         signer,
		address:        address,
		gasFallback:    config.GasLimitContractCall,
		confirmTimeout: config.TxConfirmTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Address returns the bound contract address.
func (v *Vault) Address() common.Address { return v.address }

// Deposit calls deposit(amount) from the given account.
func (v *Vault) Deposit(ctx context.Context, from common.Address, amount *big.Int) (*chain.TxReceipt, error) {
	return v.transact(ctx, from, nil, FnDeposit, amount.String())
}

// FundGas calls fundGas(beneficiary) sending value along with it.
func (v *Vault) FundGas(ctx context.Context, from, beneficiary common.Address, value *big.Int) (*chain.TxReceipt, error) {
	return v.transact(ctx, from, value, FnFundGas, beneficiary.Hex())
}

// WithdrawGas calls withdrawGas(amount) from the given account.
func (v *Vault) WithdrawGas(ctx context.Context, from common.Address, amount *big.Int) (*chain.TxReceipt, error) {
	return v.transact(ctx, from, nil, FnWithdrawGas, amount.String())
}

// CheckBalance returns the deposited balance of depositor in base units.
func (v *Vault) CheckBalance(ctx context.Context, depositor common.Address) (*big.Int, error) {
	out, err := v.call(ctx, FnCheckBalance, depositor.Hex())
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(out[0], 10)
	if !ok {
		return nil, fmt.Errorf("decoding %s result %q", FnCheckBalance, out[0])
	}
	return n, nil
}

// CheckBeneficiary returns the beneficiary registered for depositor.
func (v *Vault) CheckBeneficiary(ctx context.Context, depositor common.Address) (common.Address, error) {
	out, err := v.call(ctx, FnCheckBeneficiary, depositor.Hex())
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(out[0]), nil
}

func (v *Vault) call(ctx context.Context, name string, args ...string) ([]string, error) {
	fn := findFunction(VaultABI, name)
	if fn == nil || !fn.IsReadFunction() {
		return nil, fmt.Errorf("%s is not a read function of the vault", name)
	}
	calldata, err := encodeCall(fn, args)
	if err != nil {
		return nil, err
	}
	raw, err := v.backend.CallContract(ctx, v.address.Hex(), calldata)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return decodeResult(fn, raw)
}

func (v *Vault) transact(ctx context.Context, from common.Address, value *big.Int, name string, args ...string) (*chain.TxReceipt, error) {
	if v.signer == nil {
		return nil, fmt.Errorf("%s: no signer configured", name)
	}
	fn := findFunction(VaultABI, name)
	if fn == nil || !fn.IsWriteFunction() {
		return nil, fmt.Errorf("%s is not a write function of the vault", name)
	}
	if value != nil && value.Sign() > 0 && !fn.IsPayable() {
		return nil, fmt.Errorf("%s is not payable", name)
	}
	if value == nil {
		value = new(big.Int)
	}

	calldata, err := encodeCall(fn, args)
	if err != nil {
		return nil, err
	}
	to := v.address

	gasLimit, err := v.backend.EstimateGas(ctx, from.Hex(), to.Hex(), calldata, value)
	if err != nil {
		gasLimit = v.gasFallback
	}

	tipCap, feeCap, err := v.suggestFees(ctx)
	if err != nil {
		return nil, err
	}

	nonce, err := v.backend.PendingNonce(ctx, from.Hex())
	if err != nil {
		return nil, fmt.Errorf("fetching nonce: %w", err)
	}

	chainID := v.chainID
	if chainID == nil {
		if chainID, err = v.backend.ChainID(ctx); err != nil {
			return nil, fmt.Errorf("fetching chain id: %w", err)
		}
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      common.FromHex(calldata),
	})

	raw, err := v.signer.SignTx(ctx, from, tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("signing %s: %w", name, err)
	}

	hash, err := v.backend.SendRawTransaction(ctx, hexutil.Encode(raw))
	if err != nil {
		return nil, fmt.Errorf("broadcasting %s: %w", name, err)
	}

	receipt, err := v.backend.WaitForReceipt(ctx, hash, v.confirmTimeout)
	if err != nil {
		return receipt, fmt.Errorf("%s: %w", name, err)
	}
	return receipt, nil
}

// suggestFees returns the tip and fee cap for a dynamic fee transaction:
// the node's suggested tip, capped at twice the latest base fee plus the tip.
// Nodes without a fee oracle or base fee get the legacy gas price for both.
func (v *Vault) suggestFees(ctx context.Context) (tipCap, feeCap *big.Int, err error) {
	if tip, err := v.backend.MaxPriorityFee(ctx); err == nil {
		if base, err := v.backend.BaseFee(ctx); err == nil {
			feeCap = new(big.Int).Mul(base, big.NewInt(2))
			return tip, feeCap.Add(feeCap, tip), nil
		}
	}
	gasPrice, err := v.backend.GasPrice(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching gas price: %w", err)
	}
	return gasPrice, gasPrice, nil
}
