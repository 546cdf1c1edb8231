package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration after defaults, config.json, .env and W3VAULT_* variables are applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vault := cfg.VaultAddress
		if vault == "" {
			vault = contract.DefaultVaultAddress + " " + ui.Meta("(built-in)")
		}
		chainID := ui.Meta("from node")
		if cfg.ChainID > 0 {
			chainID = strconv.FormatInt(cfg.ChainID, 10)
		}
		defWallet := cfg.DefaultWallet
		if defWallet == "" {
			defWallet = ui.Meta("none")
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Current Configuration", [][2]string{
			{"RPC URLs", ui.Val(strings.Join(cfg.RPCURLs, ", "))},
			{"RPC algorithm", ui.Val(cfg.RPCAlgorithm)},
			{"Chain ID", chainID},
			{"Vault", ui.Addr(vault)},
			{"Default wallet", defWallet},
			{"Listen", ui.Val(cfg.ListenAddr)},
			{"Env", ui.Val(cfg.Env)},
			{"Log file", ui.Meta(cfg.LogPath())},
		}))
		fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <url>",
	Short: "Add an RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Added RPC "+args[0]))
		return nil
	},
}

var configRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <url>",
	Short: "Remove an RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.RPCURLs) == 1 && cfg.RPCURLs[0] == args[0] {
			return fmt.Errorf("cannot remove the last RPC endpoint")
		}
		if err := cfg.RemoveRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed RPC "+args[0]))
		return nil
	},
}

var configSetVaultCmd = &cobra.Command{
	Use:   "set-vault <address>",
	Short: "Point w3vault at a different vault contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetVault(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Vault set to "+ui.Addr(cfg.VaultAddress)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configAddRPCCmd, configRemoveRPCCmd, configSetVaultCmd)
}
