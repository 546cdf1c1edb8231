package cmd

import (
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the vault forms in the terminal",
	Long: `Show the four vault forms on one terminal screen.

Tab switches form, Enter submits, Esc quits. Several submissions may run at
once; each shows its own notice. Logs go to w3vault.log in the config dir.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := newSession(nil)

		surface := ui.NewFormSurface(
			ui.WithFormWarning(s.warning()),
			ui.WithFormVault(s.vault.Hex()),
		)
		s.bridge.Wire(surface)
		return surface.Run(ctx)
	},
}
