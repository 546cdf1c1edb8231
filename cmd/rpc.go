package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/rpc"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Inspect RPC endpoints",
}

var rpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "Benchmark the configured RPC endpoints",
	Long: `Ping every configured RPC endpoint in parallel and show latency, block
height and which endpoint the configured algorithm would pick.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()

		endpoints := rpc.Benchmark(ctx, cfg.RPCURLs, rpc.DefaultPinger)
		picked, pickErr := rpc.NewPicker(algo).Pick(endpoints)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 40},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 12},
		})
		for _, ep := range endpoints {
			status := ui.Success("healthy")
			latency := fmt.Sprintf("%dms", ep.Latency.Milliseconds())
			block := fmt.Sprintf("%d", ep.BlockNumber)
			if !ep.Healthy {
				status = ui.Err("down")
				latency, block = "-", "-"
			}
			if pickErr == nil && picked.URL == ep.URL {
				status += " " + ui.Meta("*")
			}
			t.AddRow(ui.Row{ep.URL, latency, block, status})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("RPC endpoints (%s)", algo)))
		fmt.Fprintln(out, t.Render())
		if pickErr != nil {
			fmt.Fprintln(out, ui.Warn(pickErr.Error()))
		} else {
			fmt.Fprintln(out, ui.Meta("* selected"))
		}
		return nil
	},
}

func init() {
	rpcCmd.AddCommand(rpcListCmd)
}
