package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/treasury/journal"
	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/positions"
)

func newBookCmd(rc *RootConfig) *cobra.Command {
	var (
		lp      string
		account string
		dateStr string
	)

	cmd := &cobra.Command{
		Use:   "book PAIR AMOUNT RATE",
		Short: "Book a customer trade (positive AMOUNT buys the base currency)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := market.ParsePair(strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("bad amount: %w", err)
			}
			rate, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("bad rate: %w", err)
			}

			var at time.Time
			if dateStr != "" {
				if at, err = time.Parse(time.RFC3339, dateStr); err != nil {
					if at, err = time.Parse(time.DateOnly, dateStr); err != nil {
						return fmt.Errorf("bad --date: %w", err)
					}
				}
			}

			d, err := rc.openDesk()
			if err != nil {
				return err
			}
			defer d.Close()

			t, mirrors, err := d.BookTrade(ledger.TradeInput{
				Pair:              pair,
				Amount:            amount,
				Rate:              rate,
				Account:           account,
				LiquidityProvider: lp,
				Time:              at,
			})
			if err != nil {
				return err
			}
			writeTrade(cmd.OutOrStdout(), t, mirrors)
			return nil
		},
	}

	cmd.Flags().StringVar(&lp, "lp", "", "Liquidity provider (required)")
	cmd.Flags().StringVar(&account, "account", "", "Customer account")
	cmd.Flags().StringVar(&dateStr, "date", "", "Trade date, RFC3339 or YYYY-MM-DD (default now)")
	_ = cmd.MarkFlagRequired("lp")

	return cmd
}

func newTradeCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "trade ID",
		Short: "Show one journaled trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := rc.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			t, err := j.GetTrade(args[0])
			if err != nil {
				return err
			}
			writeTrade(cmd.OutOrStdout(), t, nil)
			if t.IsMirror() {
				fmt.Fprintf(cmd.OutOrStdout(), "  USD leg of %s\n", t.ParentTradeID)
			}
			return nil
		},
	}
}

func writeTrade(w io.Writer, t ledger.Trade, mirrors []ledger.Trade) {
	fmt.Fprintf(w, "%s %s %.2f @ %v [%s]\n", t.ID, t.OriginalPair, t.OriginalAmount, t.Rate, t.Mode.Label())
	fmt.Fprintf(w, "  %s\n", t.DecompositionReason)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, l := range t.Legs {
		fmt.Fprintf(tw, "  %s\t%s\t%s %.2f\tUSD %.2f\n", l.Pair, l.Side, l.LocalCurrency, l.LocalPosition, l.USDPosition)
	}
	_ = tw.Flush()

	for _, m := range mirrors {
		fmt.Fprintf(w, "  mirror %s %s\n", m.ID, m.Legs[0].Pair)
	}
	if t.Exotic {
		fmt.Fprintf(w, "  net USD exposure %.2f\n", t.NetUSDExposure)
	}
}

func newPositionsCmd(rc *RootConfig) *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Show net positions by currency and liquidity provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := rc.openDesk()
			if err != nil {
				return err
			}
			defer d.Close()

			book := d.Positions()
			sorted := positions.Sorted(book)
			if asCSV {
				return journal.WritePositionsCSV(cmd.OutOrStdout(), sorted)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "CCY\tLP\tNET\tRATE\tMTM USD\tUNREALIZED\tREALIZED\tSTATUS\t")
			for _, p := range sorted {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.4f\t%.2f\t%.2f\t%.2f\t%s\t\n",
					p.Currency, p.LiquidityProvider, p.NetPosition, p.CurrentRate,
					p.MTMValue, p.UnrealizedPnL, p.RealizedPnL, p.Status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			s := positions.Totals(book)
			fmt.Fprintf(cmd.OutOrStdout(), "total MTM %.2f USD, unrealized %.2f, realized %.2f, %d open, %d hedged\n",
				s.TotalMTM, s.TotalUnrealized, s.TotalRealized, s.OpenPositions, s.HedgedPositions)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write CSV instead of a table")
	return cmd
}
