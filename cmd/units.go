package cmd

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3vault/internal/amount"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var unitsFromBase bool

var unitsCmd = &cobra.Command{
	Use:   "units <amount>",
	Short: "Convert between whole units and 18-decimal base units",
	Long: `Convert an amount the way the vault forms do.

Examples:
  w3vault units 1.5              # → 1500000000000000000
  w3vault units --base 2000000000000000000   # → 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := convertUnits(args[0], unitsFromBase)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Unit Conversion", [][2]string{
			{"Whole", ui.Val(a.String())},
			{"Base", ui.Val(a.Base().String())},
			{"Hex", ui.Meta("0x" + a.Base().Text(16))},
		}))
		return nil
	},
}

// convertUnits parses input as whole units, or as a base-unit integer when base is set.
func convertUnits(input string, base bool) (amount.Amount, error) {
	if !base {
		return amount.Parse(input)
	}
	n, ok := new(big.Int).SetString(input, 10)
	if !ok || n.Sign() < 0 {
		return amount.Amount{}, &amount.InputError{Input: input, Reason: "not a non-negative integer"}
	}
	return amount.FromBase(n), nil
}

func init() {
	unitsCmd.Flags().BoolVar(&unitsFromBase, "base", false, "input is in base units")
}
