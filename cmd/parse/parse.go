// Package parse provides the parse command, which prints a tagged statement as
// CSV without touching the ledger.
package parse

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/moneyview/cmd/root"
	"fjacquet/moneyview/internal/export"
	"fjacquet/moneyview/internal/fileutils"
)

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse an MT940 statement and write its transactions as CSV",
	Long: `Parse an MT940 statement, tag every transaction and write the result as CSV.
Without --output the CSV goes to standard output. Nothing is stored.`,
	RunE: parseFunc,
}

func parseFunc(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}
	input := root.SharedFlags.Input
	if input == "" {
		return fmt.Errorf("input file is required (--input)")
	}

	raw, err := fileutils.ReadFile(input)
	if err != nil {
		return err
	}

	service := c.GetService()
	ctx := root.Context(cmd)
	txs, err := service.Categorize(ctx, input, raw)
	if err != nil {
		return err
	}

	names, err := service.TagNames()
	if err != nil {
		return err
	}
	delimiter, err := export.ParseDelimiter(c.GetConfig().Export.Delimiter)
	if err != nil {
		return err
	}

	if out := root.SharedFlags.Output; out != "" {
		return export.WriteCSVFile(out, txs, names, delimiter, c.GetLogger())
	}
	return export.WriteCSV(cmd.OutOrStdout(), txs, names, delimiter)
}
