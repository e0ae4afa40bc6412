package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/desk"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/routing"
)

func newMatrixCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Print the routing matrix (D direct, X via USD)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := rc.openDesk()
			if err != nil {
				return err
			}
			defer d.Close()

			cfg := d.Routing()
			fmt.Fprintf(cmd.OutOrStdout(), "version %d, last modified by %s\n", cfg.Version, cfg.ModifiedBy)
			return writeMatrix(cmd.OutOrStdout(), cfg.ActiveCurrencies, cfg.Matrix())
		},
	}
}

func writeMatrix(w io.Writer, ccys []market.Currency, grid [][]routing.PairStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprint(tw, "\t")
	for _, c := range ccys {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)
	for i, row := range grid {
		fmt.Fprintf(tw, "%s\t", ccys[i])
		for _, cell := range row {
			mark := "X"
			switch {
			case cell.Base == cell.Quote:
				mark = "-"
			case cell.Direct:
				mark = "D"
			}
			fmt.Fprintf(tw, "%s\t", mark)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func newRoutingCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routing",
		Short: "Change how currency pairs are routed",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set PAIR MODE",
			Short: "Route PAIR (EUR/SGD) as direct or exotic",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := market.ParsePair(strings.ToUpper(args[0]))
				if err != nil {
					return err
				}
				m, err := routing.ParseMode(args[1])
				if err != nil {
					return err
				}
				return rc.commit(cmd.OutOrStdout(), func(st *routing.Staging) error {
					return st.Set(p.Base, p.Quote, m)
				})
			},
		},
		&cobra.Command{
			Use:   "toggle PAIR",
			Short: "Flip PAIR between direct and exotic",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := market.ParsePair(strings.ToUpper(args[0]))
				if err != nil {
					return err
				}
				return rc.commit(cmd.OutOrStdout(), func(st *routing.Staging) error {
					_, err := st.Toggle(p.Base, p.Quote)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "add CCY",
			Short: "Activate a currency; its pairs route via USD until set",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c := market.Currency(strings.ToUpper(args[0]))
				return rc.commit(cmd.OutOrStdout(), func(st *routing.Staging) error {
					return st.AddCurrency(c, routing.Exotic)
				})
			},
		},
		&cobra.Command{
			Use:   "remove CCY",
			Short: "Hide a currency from the matrix, keeping its pair settings",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c := market.Currency(strings.ToUpper(args[0]))
				return rc.commit(cmd.OutOrStdout(), func(st *routing.Staging) error {
					return st.RemoveCurrency(c)
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the reference currencies, all pairwise direct",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return rc.save(cmd.OutOrStdout(), func(d *desk.Desk) (routing.Configuration, audit.Event, error) {
					return d.ResetRouting(rc.cfg.Actor)
				})
			},
		},
	)
	return cmd
}

// commit stages one edit and commits it as the configured actor.
func (rc *RootConfig) commit(w io.Writer, edit func(*routing.Staging) error) error {
	return rc.save(w, func(d *desk.Desk) (routing.Configuration, audit.Event, error) {
		st := d.Stage()
		if err := edit(st); err != nil {
			return routing.Configuration{}, audit.Event{}, err
		}
		return d.CommitStaged(st, rc.cfg.Actor)
	})
}

func (rc *RootConfig) save(w io.Writer, change func(*desk.Desk) (routing.Configuration, audit.Event, error)) error {
	d, err := rc.openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	cfg, ev, err := change(d)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "saved version %d\n", cfg.Version)
	writeChange(w, ev.Change)
	return nil
}

func writeChange(w io.Writer, c *audit.Change) {
	if c == nil || c.Empty() {
		fmt.Fprintln(w, "  no changes")
		return
	}
	for _, a := range c.Added {
		fmt.Fprintf(w, "  + %s\n", a)
	}
	for _, r := range c.Removed {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	for _, pc := range c.PairsChanged {
		fmt.Fprintf(w, "  %s: %s -> %s\n", pc.Pair, pc.From, pc.To)
	}
}
