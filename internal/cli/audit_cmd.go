package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/journal"
)

func newAuditCmd(rc *RootConfig) *cobra.Command {
	var (
		f     audit.Filter
		typ   string
		asOrg bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := rc.auditEvents(audit.EventType(typ), f)
			if err != nil {
				return err
			}
			if asOrg {
				_, err := fmt.Fprint(cmd.OutOrStdout(), journal.FormatEventsOrg(events))
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTYPE\tUSER\tSTATUS\tDESCRIPTION")
			for _, e := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Time.Format(time.DateTime), e.Type, e.User, e.Status, e.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", `Event type, e.g. "Configuration Change"`)
	cmd.Flags().StringVar(&f.Status, "status", "", "Status: Completed|Pending|Approved|Rejected")
	cmd.Flags().StringVar(&f.User, "user", "", "Substring of the user, case-insensitive")
	cmd.Flags().BoolVar(&asOrg, "org", false, "Render as Org-mode entries")
	return cmd
}

// auditEvents reads one event type straight from the journal, which indexes
// it, and anything else from the desk's restored trail.
func (rc *RootConfig) auditEvents(typ audit.EventType, f audit.Filter) ([]audit.Event, error) {
	if typ == "" {
		d, err := rc.openDesk()
		if err != nil {
			return nil, err
		}
		defer d.Close()
		return d.AuditEvents(f), nil
	}

	j, err := rc.openJournal()
	if err != nil {
		return nil, err
	}
	defer j.Close()

	all, err := j.EventsByType(typ)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}
