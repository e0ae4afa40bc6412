package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRatesCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Show the rate sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := rc.openDesk()
			if err != nil {
				return err
			}
			defer d.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "PAIR\tBID\tASK\tMID\tSPREAD\tCHANGE %\t")
			for _, q := range d.Rates() {
				fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.2f\t\n", q.Pair, q.Bid, q.Ask, q.Mid(), q.Spread(), q.ChangePct)
			}
			return tw.Flush()
		},
	}
}
