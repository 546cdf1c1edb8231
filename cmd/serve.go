package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/server"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the vault forms as a web page",
	Long: `Serve a single page with the deposit, fund gas, withdraw gas and query
forms. Submissions are signed by the active wallet without a prompt.

Also serves /healthz and Prometheus metrics on /metrics.

Example:
  w3vault serve --listen 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession(nil)

		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}

		srv := server.New(
			server.WithLogger(log),
			server.WithRegistry(s.registry),
			server.WithVaultAddress(s.vault.Hex()),
			server.WithWarning(s.warning()),
		)
		s.bridge.Wire(srv)

		if w := s.warning(); w != "" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn(w))
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("w3vault", [][2]string{
			{"Page", ui.Val("http://" + addr)},
			{"Vault", ui.Addr(s.vault.Hex())},
			{"RPC", ui.Meta(rpcSummary())},
		}))
		log.Info("serving", zap.String("addr", addr), zap.String("vault", s.vault.Hex()))

		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "listen address (default: listen_addr from config)")
}
