package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Provider errors.
var (
	ErrUserRejected    = errors.New("user rejected the request")
	ErrNoSigningWallet = errors.New("no signing wallet configured")
	ErrNotConnected    = errors.New("account is not connected")
)

// ApproveFunc decides whether the wallet's account may be handed to the caller.
type ApproveFunc func(ctx context.Context, w *Wallet) (bool, error)

// Provider exposes the active signing wallet to the rest of the program:
// it hands out the account on request and signs transactions for it.
type Provider struct {
	mgr     *Manager
	name    string
	approve ApproveFunc
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithWalletName selects a wallet by name instead of the default one.
func WithWalletName(name string) ProviderOption {
	return func(p *Provider) { p.name = name }
}

// WithApproval installs a hook consulted on every account request.
func WithApproval(fn ApproveFunc) ProviderOption {
	return func(p *Provider) { p.approve = fn }
}

// NewProvider creates a provider over the wallets and keys held by mgr.
func NewProvider(mgr *Manager, opts ...ProviderOption) *Provider {
	p := &Provider{mgr: mgr}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequestAccounts returns the active account. A declined approval yields
// ErrUserRejected.
func (p *Provider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	w, err := p.active()
	if err != nil {
		return nil, err
	}
	if p.approve != nil {
		ok, err := p.approve(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("approval: %w", err)
		}
		if !ok {
			return nil, ErrUserRejected
		}
	}
	return []common.Address{common.HexToAddress(w.Address)}, nil
}

// SignTx signs tx with the active wallet's key. from must be the active account.
func (p *Provider) SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := p.active()
	if err != nil {
		return nil, err
	}
	if common.HexToAddress(w.Address) != from {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, from.Hex())
	}
	return NewSigner(w, p.mgr.Keystore()).SignTx(tx, chainID)
}

// HasSigningWallet reports whether an account request could succeed.
func (p *Provider) HasSigningWallet() bool {
	_, err := p.active()
	return err == nil
}

// Active returns the wallet the provider would use.
func (p *Provider) Active() (*Wallet, error) { return p.active() }

func (p *Provider) active() (*Wallet, error) {
	var w *Wallet
	if p.name != "" {
		found, err := p.mgr.Get(p.name)
		if err != nil {
			return nil, err
		}
		w = found
	} else if w = p.mgr.Default(); w == nil {
		return nil, ErrNoSigningWallet
	}
	if !w.CanSign() {
		return nil, fmt.Errorf("%w: wallet %q is watch-only", ErrNoSigningWallet, w.Name)
	}
	return w, nil
}
