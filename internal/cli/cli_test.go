package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/treasury/config"
	"github.com/rustyeddy/treasury/journal"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/routing"
)

func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(config.MapLookup(env))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "treasury (dev)\n", out)
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "treasury.yaml")

	out, err := run(t, nil, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	_, err = run(t, nil, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")
	_, err = run(t, nil, "config", "init", "--force", path)
	assert.NoError(t, err)

	out, err = run(t, nil, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 11 reference currencies, 3 extra")
	assert.Contains(t, out, "journal memory")

	out, err = run(t, map[string]string{config.EnvDB: filepath.Join(t.TempDir(), "x.sqlite")}, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "journal sqlite")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log:\n  format: xml\n"), 0o644))
	_, err = run(t, nil, "--config", bad, "config", "validate")
	assert.Error(t, err)
}

func TestBookPositionsAndAudit(t *testing.T) {
	t.Parallel()
	db := filepath.Join(t.TempDir(), "desk.sqlite")

	out, err := run(t, nil, "--db", db, "book", "myr/hkd", "4500000", "1.7573", "--lp", "HSBC")
	require.NoError(t, err)
	assert.Contains(t, out, "MYR/HKD 4500000.00 @ 1.7573 [Exotic]")
	assert.Contains(t, out, "decomposed via USD/MYR and USD/HKD")
	assert.Equal(t, 2, strings.Count(out, "mirror "))
	exoticID := strings.Fields(out)[0]

	out, err = run(t, nil, "--db", db, "book", "EUR/SGD", "1000000", "1.4562", "--lp", "DBS", "--date", "2024-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "[Direct]")

	_, err = run(t, nil, "--db", db, "book", "EUR/SGD", "1000000", "1.4562")
	assert.Error(t, err)
	_, err = run(t, nil, "--db", db, "book", "EUR/SGD", "lots", "1.4562", "--lp", "DBS")
	assert.ErrorContains(t, err, "bad amount")

	out, err = run(t, nil, "--db", db, "positions", "--csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "currency,liquidity_provider,net_position"))
	assert.Contains(t, out, "MYR,HSBC,4500000.00")
	assert.Contains(t, out, "EUR,DBS,1000000.00")

	out, err = run(t, nil, "--db", db, "positions")
	require.NoError(t, err)
	assert.Contains(t, out, "3 open")

	out, err = run(t, nil, "--db", db, "--user", "admin@treasury.com", "routing", "toggle", "EUR/SGD")
	require.NoError(t, err)
	assert.Contains(t, out, "saved version 2")
	assert.Contains(t, out, "EUR/SGD: direct -> exotic")

	out, err = run(t, nil, "--db", db, "audit", "--org", "--user", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration Change")
	assert.Contains(t, out, "- EUR/SGD: direct -> exotic")

	out, err = run(t, nil, "--db", db, "audit", "--type", "Rate Update")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1, "header only")

	out, err = run(t, nil, "--db", db, "audit", "--type", "Configuration Change", "--user", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out), "\n")+1, "header and one event")
	assert.Contains(t, out, "admin@treasury.com")

	out, err = run(t, nil, "--db", db, "trade", exoticID)
	require.NoError(t, err)
	assert.Contains(t, out, exoticID+" MYR/HKD 4500000.00 @ 1.7573 [Exotic]")
	assert.Contains(t, out, "net USD exposure 0.00")
	_, err = run(t, nil, "--db", db, "trade", "TRD-404")
	assert.ErrorIs(t, err, journal.ErrNotFound)

	// a USD pair skips routing and books at the original amount
	out, err = run(t, nil, "--db", db, "book", "USD/SGD", "250000", "1.3422", "--lp", "DBS")
	require.NoError(t, err)
	assert.Contains(t, out, "[USD pair]")
	assert.Contains(t, out, "USD 250000.00")
	assert.NotContains(t, out, "mirror ")
}

func TestRoutingCommands(t *testing.T) {
	t.Parallel()
	db := filepath.Join(t.TempDir(), "desk.sqlite")

	out, err := run(t, nil, "--db", db, "routing", "set", "GBP_JPY", "exotic")
	require.NoError(t, err)
	assert.Contains(t, out, "GBP/JPY: direct -> exotic")

	out, err = run(t, nil, "--db", db, "routing", "set", "GBP/JPY", "exotic")
	require.NoError(t, err)
	assert.Contains(t, out, "no changes")

	_, err = run(t, nil, "--db", db, "routing", "set", "GBP/JPY", "sideways")
	assert.ErrorIs(t, err, routing.ErrValidation)

	out, err = run(t, nil, "--db", db, "routing", "remove", "cnh")
	require.NoError(t, err)
	assert.Contains(t, out, "- CNH")

	out, err = run(t, nil, "--db", db, "routing", "add", "TRY")
	require.NoError(t, err)
	assert.Contains(t, out, "+ TRY")

	out, err = run(t, nil, "--db", db, "matrix")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "version 5"), out)
	assert.Contains(t, out, "TRY")
	assert.NotContains(t, out, "CNH")

	out, err = run(t, nil, "--db", db, "--user", "head.of.desk@treasury.com", "routing", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "saved version 6")
	assert.Contains(t, out, "- TRY")
	assert.Contains(t, out, "GBP/JPY: exotic -> direct")

	out, err = run(t, nil, "--db", db, "matrix")
	require.NoError(t, err)
	assert.Contains(t, out, "last modified by head.of.desk@treasury.com")
	assert.NotContains(t, out, "TRY")
	assert.NotContains(t, out, "MYR")
}

func TestRates(t *testing.T) {
	t.Parallel()

	out, err := run(t, nil, "rates")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, len(market.DefaultQuotes())+1)
	assert.Equal(t, []string{"PAIR", "BID", "ASK", "MID", "SPREAD", "CHANGE", "%"}, strings.Fields(lines[0]))
	aud := strings.Fields(lines[1])
	require.Len(t, aud, 6)
	assert.Equal(t, []string{"AUD/USD", "0.6580", "0.6585"}, aud[:3])
	assert.Equal(t, "0.0005", aud[4])
}

func TestEnvSelectsJournal(t *testing.T) {
	t.Parallel()
	db := filepath.Join(t.TempDir(), "env.sqlite")

	_, err := run(t, map[string]string{config.EnvDB: db, config.EnvActor: "ops@treasury.com"}, "routing", "toggle", "AUD/NZD")
	require.NoError(t, err)
	_, err = os.Stat(db)
	require.NoError(t, err)

	out, err := run(t, nil, "--db", db, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "ops@treasury.com")
}

func TestWriteMatrix(t *testing.T) {
	t.Parallel()

	cfg, err := routing.DefaultConfiguration([]market.Currency{"USD", "EUR"}, []market.Currency{"MYR"}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeMatrix(&buf, cfg.ActiveCurrencies, cfg.Matrix()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"USD", "-", "D", "X"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"MYR", "X", "X", "-"}, strings.Fields(lines[3]))
}
