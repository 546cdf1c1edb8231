package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/bridge"
	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/Mohsinsiddi/w3vault/internal/rpc"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const noWalletWarning = "No signing wallet configured. Add one with: w3vault wallet add <name> --key <private-key>"

// session is everything a vault command needs: a bridge over the configured
// RPC endpoints, signed by the selected wallet.
type session struct {
	bridge   *bridge.Bridge
	provider *wallet.Provider
	vault    common.Address
	registry *prometheus.Registry
}

// newSession wires wallet, contract and bridge. approve may be nil to connect
// without asking. No RPC traffic happens until the bridge makes its first
// contract call.
func newSession(approve wallet.ApproveFunc) *session {
	provider := newProvider(newWalletManager(), approve)

	var vopts []contract.VaultOption
	if cfg.ChainID > 0 {
		vopts = append(vopts, contract.WithChainID(big.NewInt(cfg.ChainID)))
	}
	vault := contract.NewVault(&lazyBackend{}, vaultAddress(), provider, vopts...)

	reg := prometheus.NewRegistry()
	b := bridge.New(provider, vault,
		bridge.WithLogger(log),
		bridge.WithMetrics(bridge.NewMetrics(reg)),
	)

	return &session{
		bridge:   b,
		provider: provider,
		vault:    vault.Address(),
		registry: reg,
	}
}

// warning is the banner surfaces show when no account request can succeed.
func (s *session) warning() string {
	if s.provider.HasSigningWallet() {
		return ""
	}
	return noWalletWarning
}

// newWalletManager creates a Manager backed by the config-dir JSON store and
// the OS keychain.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.OpenKeystore(cfg.Dir())),
	)
}

func newProvider(mgr *wallet.Manager, approve wallet.ApproveFunc) *wallet.Provider {
	var opts []wallet.ProviderOption
	if name := activeWalletName(); name != "" {
		opts = append(opts, wallet.WithWalletName(name))
	}
	if approve != nil {
		opts = append(opts, wallet.WithApproval(approve))
	}
	return wallet.NewProvider(mgr, opts...)
}

// activeWalletName resolves --wallet, then the configured default.
func activeWalletName() string {
	if walletName != "" {
		return walletName
	}
	return cfg.DefaultWallet
}

func vaultAddress() common.Address {
	if cfg.VaultAddress != "" {
		return common.HexToAddress(cfg.VaultAddress)
	}
	return common.HexToAddress(contract.DefaultVaultAddress)
}

// rpcSummary describes the endpoints a session will choose from.
func rpcSummary() string {
	if len(cfg.RPCURLs) == 1 {
		return cfg.RPCURLs[0]
	}
	return fmt.Sprintf("%s of %s", cfg.RPCAlgorithm, strings.Join(cfg.RPCURLs, ", "))
}

// lazyBackend selects an RPC endpoint on its first call and reuses the client
// afterwards. A failed selection is not cached; the next call tries again.
type lazyBackend struct {
	mu     sync.Mutex
	client *chain.EVMClient
}

func (l *lazyBackend) get(ctx context.Context) (*chain.EVMClient, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.client != nil {
		return l.client, nil
	}
	url, err := selectRPC(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("using RPC endpoint", zap.String("url", url))
	l.client = chain.NewEVMClient(url, chain.WithPollInterval(config.ReceiptPollInterval))
	return l.client, nil
}

func (l *lazyBackend) CallContract(ctx context.Context, to, calldata string) (string, error) {
	c, err := l.get(ctx)
	if err != nil {
		return "", err
	}
	return c.CallContract(ctx, to, calldata)
}

func (l *lazyBackend) EstimateGas(ctx context.Context, from, to, data string, value *big.Int) (uint64, error) {
	c, err := l.get(ctx)
	if err != nil {
		return 0, err
	}
	return c.EstimateGas(ctx, from, to, data, value)
}

func (l *lazyBackend) GasPrice(ctx context.Context) (*big.Int, error) {
	c, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.GasPrice(ctx)
}

func (l *lazyBackend) MaxPriorityFee(ctx context.Context) (*big.Int, error) {
	c, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.MaxPriorityFee(ctx)
}

func (l *lazyBackend) BaseFee(ctx context.Context) (*big.Int, error) {
	c, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.BaseFee(ctx)
}

func (l *lazyBackend) PendingNonce(ctx context.Context, address string) (uint64, error) {
	c, err := l.get(ctx)
	if err != nil {
		return 0, err
	}
	return c.PendingNonce(ctx, address)
}

func (l *lazyBackend) ChainID(ctx context.Context) (*big.Int, error) {
	c, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.ChainID(ctx)
}

func (l *lazyBackend) SendRawTransaction(ctx context.Context, rawTx string) (string, error) {
	c, err := l.get(ctx)
	if err != nil {
		return "", err
	}
	return c.SendRawTransaction(ctx, rawTx)
}

func (l *lazyBackend) WaitForReceipt(ctx context.Context, hash string, timeout time.Duration) (*chain.TxReceipt, error) {
	c, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.WaitForReceipt(ctx, hash, timeout)
}

// selectRPC benchmarks the configured endpoints and applies the configured
// algorithm. A single endpoint is used as is.
func selectRPC(ctx context.Context) (string, error) {
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()

	url, err := rpc.Select(ctx, cfg.RPCURLs, algo, rpc.DefaultPinger)
	if err != nil {
		return "", fmt.Errorf("selecting RPC endpoint: %w", err)
	}
	return url, nil
}

func errLine(err error) string {
	return ui.Err(err.Error())
}
