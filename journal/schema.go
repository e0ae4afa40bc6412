package journal

const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id TEXT NOT NULL UNIQUE,
	time DATETIME NOT NULL,
	event_type TEXT NOT NULL,
	user TEXT NOT NULL,
	status TEXT NOT NULL,
	body TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS routing_configs (
	version INTEGER PRIMARY KEY,
	config_id TEXT NOT NULL,
	modified_by TEXT NOT NULL,
	modified_at DATETIME NOT NULL,
	body TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	trade_id TEXT NOT NULL UNIQUE,
	parent_trade_id TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL,
	liquidity_provider TEXT NOT NULL,
	pair TEXT NOT NULL,
	amount REAL NOT NULL,
	trade_date DATETIME NOT NULL,
	body TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events(event_type);
CREATE INDEX IF NOT EXISTS idx_trades_parent ON trades(parent_trade_id);
`
