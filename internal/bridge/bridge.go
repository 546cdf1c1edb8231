// Package bridge maps each vault form to a single contract call and reports
// the outcome through the surface that submitted it.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/amount"
	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Errors.
var (
	ErrNoAccounts     = errors.New("wallet returned no accounts")
	ErrInvalidAddress = errors.New("invalid address")
)

// Notice texts.
const (
	MsgDepositOK       = "Deposit successful!"
	MsgDepositFailed   = "Deposit failed. Please try again."
	MsgFundGasOK       = "Gas funded successfully!"
	MsgFundGasFailed   = "Gas funding failed. Please try again."
	MsgWithdrawGasOK   = "Gas withdrawn successfully!"
	MsgWithdrawFailed  = "Gas withdrawal failed. Please try again."
	MsgQueryFailed     = "Query failed. Please try again."
	balanceDisplayUnit = "WBTC"
)

// Accounts hands out the active wallet account.
type Accounts interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
}

// Vault is the remote contract the forms talk to.
type Vault interface {
	Deposit(ctx context.Context, from common.Address, amount *big.Int) (*chain.TxReceipt, error)
	FundGas(ctx context.Context, from, beneficiary common.Address, value *big.Int) (*chain.TxReceipt, error)
	WithdrawGas(ctx context.Context, from common.Address, amount *big.Int) (*chain.TxReceipt, error)
	CheckBalance(ctx context.Context, depositor common.Address) (*big.Int, error)
	CheckBeneficiary(ctx context.Context, depositor common.Address) (common.Address, error)
}

// PendingAction is one submitted write, alive for the duration of its call.
type PendingAction struct {
	Operation string
	Input     string
	Amount    amount.Amount
	Account   common.Address
}

// QueryResult is what the read-only query returns for a depositor.
type QueryResult struct {
	Balance     amount.Amount
	Beneficiary common.Address
}

// BalanceText is the text shown in the balance element.
func (r QueryResult) BalanceText() string {
	return fmt.Sprintf("Balance: %s %s", r.Balance, balanceDisplayUnit)
}

// BeneficiaryText is the text shown in the beneficiary element.
func (r QueryResult) BeneficiaryText() string {
	return "Beneficiary: " + r.Beneficiary.Hex()
}

// Bridge turns form submissions into vault calls. Handlers share no state;
// concurrent submissions run independently.
type Bridge struct {
	accounts Accounts
	vault    Vault
	log      *zap.Logger
	metrics  *Metrics
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger failures are written to.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// WithMetrics records every action in m.
func WithMetrics(m *Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// New creates a Bridge.
func New(accounts Accounts, vault Vault, opts ...Option) *Bridge {
	b := &Bridge{
		accounts: accounts,
		vault:    vault,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type writeAction struct {
	form    string
	success string
	failure string
	send    func(ctx context.Context, p *PendingAction) (*chain.TxReceipt, error)
}

// Deposit deposits amountText WBTC from the active account.
func (b *Bridge) Deposit(ctx context.Context, amountText string, out Output) error {
	return b.write(ctx, writeAction{
		form:    FormDeposit,
		success: MsgDepositOK,
		failure: MsgDepositFailed,
		send: func(ctx context.Context, p *PendingAction) (*chain.TxReceipt, error) {
			return b.vault.Deposit(ctx, p.Account, p.Amount.Base())
		},
	}, amountText, out)
}

// FundGas sends amountText of native currency to the vault as gas for the
// active account, which is both payer and beneficiary.
func (b *Bridge) FundGas(ctx context.Context, amountText string, out Output) error {
	return b.write(ctx, writeAction{
		form:    FormFundGas,
		success: MsgFundGasOK,
		failure: MsgFundGasFailed,
		send: func(ctx context.Context, p *PendingAction) (*chain.TxReceipt, error) {
			return b.vault.FundGas(ctx, p.Account, p.Account, p.Amount.Base())
		},
	}, amountText, out)
}

// WithdrawGas withdraws amountText of previously funded gas.
func (b *Bridge) WithdrawGas(ctx context.Context, amountText string, out Output) error {
	return b.write(ctx, writeAction{
		form:    FormWithdrawGas,
		success: MsgWithdrawGasOK,
		failure: MsgWithdrawFailed,
		send: func(ctx context.Context, p *PendingAction) (*chain.TxReceipt, error) {
			return b.vault.WithdrawGas(ctx, p.Account, p.Amount.Base())
		},
	}, amountText, out)
}

func (b *Bridge) write(ctx context.Context, act writeAction, input string, out Output) (err error) {
	start := time.Now()
	defer func() { b.metrics.observe(act.form, start, err) }()

	fail := func(err error) error {
		b.log.Error("action failed", zap.String("action", act.form), zap.String("input", input), zap.Error(err))
		out.Notify(Notice{Level: LevelFailure, Message: act.failure})
		return err
	}

	amt, err := amount.Parse(input)
	if err != nil {
		return fail(err)
	}

	account, err := b.requestAccount(ctx)
	if err != nil {
		return fail(err)
	}

	pending := &PendingAction{Operation: act.form, Input: input, Amount: amt, Account: account}
	b.log.Debug("submitting",
		zap.String("action", act.form),
		zap.String("amount", amt.String()),
		zap.String("account", account.Hex()))

	receipt, err := act.send(ctx, pending)
	if err != nil {
		return fail(err)
	}

	fields := []zap.Field{zap.String("action", act.form), zap.String("account", account.Hex())}
	if receipt != nil {
		fields = append(fields, zap.String("tx", receipt.Hash), zap.Uint64("block", receipt.BlockNumber))
	}
	b.log.Info("action succeeded", fields...)
	out.Notify(Notice{Level: LevelSuccess, Message: act.success})
	return nil
}

func (b *Bridge) requestAccount(ctx context.Context) (common.Address, error) {
	accounts, err := b.accounts.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("requesting account: %w", err)
	}
	if len(accounts) == 0 {
		return common.Address{}, ErrNoAccounts
	}
	return accounts[0], nil
}

// Query reads the balance and beneficiary of depositor concurrently.
func (b *Bridge) Query(ctx context.Context, depositor string) (*QueryResult, error) {
	depositor = strings.TrimSpace(depositor)
	if !common.IsHexAddress(depositor) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, depositor)
	}
	addr := common.HexToAddress(depositor)

	var (
		balance     *big.Int
		beneficiary common.Address
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = b.vault.CheckBalance(gctx, addr)
		return err
	})
	g.Go(func() error {
		var err error
		beneficiary, err = b.vault.CheckBeneficiary(gctx, addr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &QueryResult{Balance: amount.FromBase(balance), Beneficiary: beneficiary}, nil
}

// QueryDeposit runs Query and writes both display elements on success.
// On failure the elements keep their previous content.
func (b *Bridge) QueryDeposit(ctx context.Context, depositor string, out Output) (err error) {
	start := time.Now()
	defer func() { b.metrics.observe(FormQuery, start, err) }()

	res, err := b.Query(ctx, depositor)
	if err != nil {
		b.log.Error("action failed", zap.String("action", FormQuery), zap.String("input", depositor), zap.Error(err))
		out.Notify(Notice{Level: LevelFailure, Message: MsgQueryFailed})
		return err
	}

	out.Display(ElementBalance, res.BalanceText())
	out.Display(ElementBeneficiary, res.BeneficiaryText())
	return nil
}
