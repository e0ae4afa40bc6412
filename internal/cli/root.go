package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/treasury/config"
	"github.com/rustyeddy/treasury/desk"
	"github.com/rustyeddy/treasury/internal/logging"
	"github.com/rustyeddy/treasury/journal"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// RootConfig holds the persistent flags and what PersistentPreRunE builds
// from them.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	Actor      string
	EnvFiles   []string

	lookup func(string) (string, bool)
	cfg    *config.Config
	log    *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(os.LookupEnv)
}

func newRootCmd(lookup func(string) (string, bool)) *cobra.Command {
	rc := &RootConfig{lookup: lookup}

	cmd := &cobra.Command{
		Use:           "treasury",
		Short:         "Treasury desk: currency routing, positions and approvals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite journal database (default: in-memory)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&rc.Actor, "user", "", "User recorded on changes")
	cmd.PersistentFlags().StringSliceVar(&rc.EnvFiles, "env-file", nil, "Env files to load (default .env when present)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.load()
	}

	cmd.AddCommand(
		newConfigCmd(rc),
		newMatrixCmd(rc),
		newRoutingCmd(rc),
		newBookCmd(rc),
		newTradeCmd(rc),
		newPositionsCmd(rc),
		newRatesCmd(rc),
		newAuditCmd(rc),
		newServeCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "treasury (%s)\n", Version)
		},
	})

	return cmd
}

// load resolves the configuration: file or defaults, then env, then flags.
func (rc *RootConfig) load() error {
	if err := config.LoadEnv(rc.EnvFiles...); err != nil {
		return err
	}

	cfg := config.Default()
	if rc.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(rc.ConfigPath); err != nil {
			return err
		}
	}
	cfg.ApplyEnv(rc.lookup)

	if rc.DBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = rc.DBPath
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = rc.LogLevel
	}
	if rc.Actor != "" {
		cfg.Actor = rc.Actor
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	rc.cfg, rc.log = cfg, log
	return nil
}

// openJournal opens the configured journal. Callers close it.
func (rc *RootConfig) openJournal() (journal.Journal, error) {
	if rc.cfg.Journal.Type == "sqlite" {
		return journal.NewSQLite(rc.cfg.Journal.DBPath)
	}
	return journal.NewMemory(), nil
}

// openDesk builds a desk over the configured journal. Callers close it.
func (rc *RootConfig) openDesk() (*desk.Desk, error) {
	j, err := rc.openJournal()
	if err != nil {
		return nil, err
	}

	seed, err := rc.cfg.DefaultRouting()
	if err != nil {
		_ = j.Close()
		return nil, err
	}
	d, err := desk.New(desk.Options{
		Routing:           seed,
		Reference:         rc.cfg.Routing.Reference,
		Rates:             rc.cfg.Rates,
		Journal:           j,
		DualAuthThreshold: rc.cfg.Approval.DualAuthThreshold,
		Logger:            rc.log,
	})
	if err != nil {
		_ = j.Close()
		return nil, err
	}
	return d, nil
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
