package journal

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/routing"
)

func (j *SQLite) Events() ([]audit.Event, error) {
	rows, err := j.db.Query(`SELECT body FROM audit_events ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var e audit.Event
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EventsByType returns events of one type, newest first.
func (j *SQLite) EventsByType(t audit.EventType) ([]audit.Event, error) {
	rows, err := j.db.Query(`
		SELECT body FROM audit_events
		WHERE event_type = ?
		ORDER BY seq DESC`, string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var e audit.Event
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) LatestConfig() (routing.Configuration, error) {
	var body string
	err := j.db.QueryRow(`
		SELECT body FROM routing_configs
		ORDER BY version DESC
		LIMIT 1`).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return routing.Configuration{}, ErrNotFound
		}
		return routing.Configuration{}, err
	}

	var c routing.Configuration
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return routing.Configuration{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func (j *SQLite) Trades() ([]ledger.Trade, error) {
	rows, err := j.db.Query(`SELECT body FROM trades ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Trade
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var t ledger.Trade
		if err := json.Unmarshal([]byte(body), &t); err != nil {
			return nil, fmt.Errorf("decode trade: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrade returns a single trade by ID.
func (j *SQLite) GetTrade(tradeID string) (ledger.Trade, error) {
	var body string
	err := j.db.QueryRow(`SELECT body FROM trades WHERE trade_id = ?`, tradeID).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Trade{}, fmt.Errorf("%w: trade %q", ErrNotFound, tradeID)
		}
		return ledger.Trade{}, err
	}
	var t ledger.Trade
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return ledger.Trade{}, fmt.Errorf("decode trade: %w", err)
	}
	return t, nil
}
