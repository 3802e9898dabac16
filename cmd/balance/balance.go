// Package balance provides the balance command, which reports expenses and
// income per partner or per tag.
package balance

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fjacquet/moneyview/cmd/root"
	"fjacquet/moneyview/internal/ingest"
	"fjacquet/moneyview/internal/models"
)

const (
	byPartner = "partner"
	byTag     = "tag"
)

var groupBy string

// Cmd represents the balance command
var Cmd = &cobra.Command{
	Use:   "balance",
	Short: "Report expenses and income per partner or per tag",
	Long: `Report the stored transactions grouped by partner (--by partner) or by tag
(--by tag). Expenses and income are listed separately, each with its total.`,
	RunE: balanceFunc,
}

func init() {
	Cmd.Flags().StringVar(&groupBy, "by", byPartner, "Grouping: partner or tag")
}

func balanceFunc(cmd *cobra.Command, args []string) error {
	c, err := root.RequireContainer()
	if err != nil {
		return err
	}

	report, err := reporter(c.GetService(), groupBy)
	if err != nil {
		return err
	}

	ctx := root.Context(cmd)
	expenses, err := report(ctx, false)
	if err != nil {
		return err
	}
	income, err := report(ctx, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeReport(out, "Expenses", expenses); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return writeReport(out, "Income", income)
}

func reporter(service *ingest.Service, by string) (func(ctx context.Context, positive bool) (models.BalanceReport, error), error) {
	switch by {
	case byPartner:
		return service.PartnerBalance, nil
	case byTag:
		return service.TagBalance, nil
	default:
		return nil, fmt.Errorf("invalid --by value '%s', expected %s or %s", by, byPartner, byTag)
	}
}

func writeReport(out io.Writer, title string, report models.BalanceReport) error {
	fmt.Fprintf(out, "%s\n", title)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, row := range report.Rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t\n", row.Name, row.Balance.StringFixed(2), row.TransactionCount)
	}
	fmt.Fprintf(w, "%s\t%s\t\t\n", "Total", report.Total.StringFixed(2))
	return w.Flush()
}
