// Package retag provides the retag command.
package retag

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/moneyview/cmd/root"
)

// Cmd represents the retag command
var Cmd = &cobra.Command{
	Use:   "retag",
	Short: "Re-apply the current tags to every stored transaction",
	Long: `Re-apply the current tag definitions to every transaction in the ledger.
Run it after editing the tags file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.RequireContainer()
		if err != nil {
			return err
		}
		n, err := c.GetService().Retag(root.Context(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Retagged %d transactions\n", n)
		return nil
	},
}
