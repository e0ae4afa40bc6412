package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/routing"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	j, err := NewSQLiteDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// NewSQLiteDB wraps an open database and makes sure the schema exists.
func NewSQLiteDB(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("journal schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordEvent(e audit.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = j.db.Exec(`
		INSERT OR IGNORE INTO audit_events
		(event_id, time, event_type, user, status, body)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time, string(e.Type), e.User, e.Status, string(body),
	)
	if err != nil {
		return fmt.Errorf("record event %s: %w", e.ID, err)
	}
	return nil
}

func (j *SQLite) RecordConfig(c routing.Configuration) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = j.db.Exec(`
		INSERT OR REPLACE INTO routing_configs
		(version, config_id, modified_by, modified_at, body)
		VALUES (?, ?, ?, ?, ?)`,
		c.Version, c.ID, c.ModifiedBy, c.ModifiedAt, string(body),
	)
	if err != nil {
		return fmt.Errorf("record config v%d: %w", c.Version, err)
	}
	return nil
}

func (j *SQLite) RecordTrade(t ledger.Trade) error {
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = j.db.Exec(`
		INSERT OR IGNORE INTO trades
		(trade_id, parent_trade_id, kind, liquidity_provider, pair, amount, trade_date, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ParentTradeID, string(t.Kind), t.LiquidityProvider,
		t.OriginalPair.String(), t.OriginalAmount, t.Time, string(body),
	)
	if err != nil {
		return fmt.Errorf("record trade %s: %w", t.ID, err)
	}
	return nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
