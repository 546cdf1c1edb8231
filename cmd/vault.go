package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/bridge"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/wallet"
	"github.com/spf13/cobra"
)

var depositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Deposit WBTC into the vault",
	Long: `Deposit WBTC into the vault from the active wallet.

The amount is in whole WBTC and may have up to 18 decimals.

Examples:
  w3vault deposit 1.5
  w3vault deposit 0.25 --wallet alice --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(cmd, args[0], "deposit", (*bridge.Bridge).Deposit)
	},
}

var fundGasCmd = &cobra.Command{
	Use:   "fund-gas <amount>",
	Short: "Fund gas for the active wallet",
	Long: `Send native currency to the vault as gas for the active wallet.

The active wallet pays and is credited as the beneficiary.

Example:
  w3vault fund-gas 0.01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(cmd, args[0], "gas funding", (*bridge.Bridge).FundGas)
	},
}

var withdrawGasCmd = &cobra.Command{
	Use:   "withdraw-gas <amount>",
	Short: "Withdraw previously funded gas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(cmd, args[0], "gas withdrawal", (*bridge.Bridge).WithdrawGas)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <address>",
	Short: "Show a depositor's balance and beneficiary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(nil)
		return s.bridge.QueryDeposit(cmd.Context(), args[0], ui.NewConsole(cmd.OutOrStdout()))
	},
}

type submitFunc func(b *bridge.Bridge, ctx context.Context, input string, out bridge.Output) error

// runWrite submits one write form. The wallet connection is confirmed on the
// terminal unless --yes is set; a spinner runs from approval until the notice.
func runWrite(cmd *cobra.Command, input, what string, submit submitFunc) error {
	ctx := cmd.Context()
	spin := ui.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Waiting for %s to be mined...", what))
	started := false
	stop := func() {
		if started {
			spin.Stop()
		}
	}
	defer stop()

	approve := func(_ context.Context, w *wallet.Wallet) (bool, error) {
		if !assumeYes {
			prompt := fmt.Sprintf("Connect wallet %q (%s) to the vault?", w.Name, w.Address)
			if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
				return false, nil
			}
		}
		spin.Start()
		started = true
		return true, nil
	}

	s := newSession(approve)
	out := &spinnerOutput{Output: ui.NewConsole(cmd.OutOrStdout()), stop: stop}
	return submit(s.bridge, ctx, input, out)
}

// spinnerOutput clears the spinner line before anything is printed.
type spinnerOutput struct {
	bridge.Output
	stop func()
}

func (o *spinnerOutput) Notify(n bridge.Notice) {
	o.stop()
	o.Output.Notify(n)
}

func (o *spinnerOutput) Display(element, text string) {
	o.stop()
	o.Output.Display(element, text)
}
