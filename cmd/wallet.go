package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag     string
	walletAddressFlag string
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the wallets that sign vault transactions",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a wallet",
	Long: `Add a signing wallet (private key stored in the OS keychain) or a
watch-only wallet.

Examples:
  w3vault wallet add alice --key 0xac09...
  w3vault wallet add treasury --address 0x7099...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()
		mgr := newWalletManager()

		switch {
		case walletKeyFlag != "":
			if err := mgr.AddWithKey(name, walletKeyFlag); err != nil {
				return err
			}
			w, err := mgr.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		case walletAddressFlag != "":
			if err := mgr.AddWatchOnly(name, walletAddressFlag); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(walletAddressFlag))))
		default:
			return fmt.Errorf("either --key or --address is required\n  Usage: w3vault wallet add <name> --key <private-key>")
		}
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("Set as default with: w3vault wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		wallets, err := newWalletManager().List()
		if err != nil {
			return err
		}

		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Meta("No wallets configured yet."))
			fmt.Fprintln(out, ui.Meta("Add one with: w3vault wallet add alice --key <private-key>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.Val(w.Name),
				ui.Addr(w.Address),
				ui.Meta(walletTypeLabel(w.Type)),
				def,
			})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Long:  `Set the wallet used when --wallet is not given. Without a name, pick one from a list.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()

		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			picked, err := pickWallet(mgr)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.SetDefaultWallet(name)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()
		if !assumeYes && !ui.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.SetDefaultWallet("")
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key of a signing wallet (stored in the OS keychain)")
	walletAddCmd.Flags().StringVar(&walletAddressFlag, "address", "", "address of a watch-only wallet")
	walletAddCmd.MarkFlagsMutuallyExclusive("key", "address")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}

func pickWallet(mgr *wallet.Manager) (string, error) {
	wallets, err := mgr.List()
	if err != nil {
		return "", err
	}
	if len(wallets) == 0 {
		return "", fmt.Errorf("no wallets configured; add one with: w3vault wallet add <name> --key <private-key>")
	}
	items := make([]ui.PickerItem, len(wallets))
	for i, w := range wallets {
		items[i] = ui.PickerItem{
			Label:    w.Name,
			SubLabel: ui.TruncateAddr(w.Address) + "  " + walletTypeLabel(w.Type),
			Value:    w.Name,
			Current:  w.IsDefault,
		}
	}
	return ui.PickItem("Default wallet  ·  select to use", items)
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "read-write"
	default:
		return t
	}
}
