// Package desk wires routing, the ledger, hedges, resets and the audit
// trail into the operations the treasury front end calls.
package desk

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/hedge"
	"github.com/rustyeddy/treasury/internal/logging"
	"github.com/rustyeddy/treasury/internal/metrics"
	"github.com/rustyeddy/treasury/journal"
	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/reset"
	"github.com/rustyeddy/treasury/routing"
)

var ErrUnknownPosition = errors.New("no such position")

type Options struct {
	// Routing is used when the journal holds no newer configuration.
	Routing routing.Configuration
	// Reference is the set ResetRouting restores, market.G10 when empty.
	Reference         []market.Currency
	Rates             []market.Quote
	Journal           journal.Journal
	DualAuthThreshold float64
	Logger            logrus.FieldLogger
}

// Desk is safe for concurrent use.
type Desk struct {
	log       logrus.FieldLogger
	audit     *audit.Log
	store     *routing.Store
	rates     *market.RateBook
	book      *ledger.Book
	hedges    *hedge.Register
	resets    *reset.Workflow
	journal   journal.Journal
	threshold float64
	reference []market.Currency
}

// New builds a desk and restores whatever the journal holds.
func New(opts Options) (*Desk, error) {
	d := &Desk{
		log:       opts.Logger,
		audit:     audit.NewLog(),
		rates:     market.NewRateBook(opts.Rates...),
		book:      ledger.NewBook(),
		hedges:    hedge.NewRegister(),
		journal:   opts.Journal,
		threshold: opts.DualAuthThreshold,
		reference: append([]market.Currency(nil), opts.Reference...),
	}
	if d.log == nil {
		d.log = logging.Discard()
	}
	if d.journal == nil {
		d.journal = journal.NewMemory()
	}
	if len(d.reference) == 0 {
		d.reference = append([]market.Currency(nil), market.G10...)
	}
	if d.threshold <= 0 {
		d.threshold = hedge.DefaultDualAuthThreshold
	}
	d.resets = reset.NewWorkflow(reset.ExecutorFunc(d.executeReset))

	cfg, fresh := opts.Routing, true
	restored, err := d.journal.LatestConfig()
	switch {
	case err == nil && restored.Version >= cfg.Version:
		cfg, fresh = restored, false
		d.log.WithField("version", cfg.Version).Info("restored routing configuration")
	case err != nil && !errors.Is(err, journal.ErrNotFound):
		return nil, fmt.Errorf("restore routing: %w", err)
	}

	if events, err := d.journal.Events(); err != nil {
		return nil, fmt.Errorf("restore audit trail: %w", err)
	} else if len(events) > 0 {
		d.audit.Restore(events)
	}
	if trades, err := d.journal.Trades(); err != nil {
		return nil, fmt.Errorf("restore trades: %w", err)
	} else if n := d.book.Add(trades...); n > 0 {
		d.log.WithField("trades", n).Info("restored trade book")
	}

	d.store, err = routing.NewStore(cfg, d.audit)
	if err != nil {
		return nil, err
	}
	if fresh {
		d.persistConfig(d.store.Current())
	}
	metrics.RoutingVersion.Set(float64(d.store.Version()))
	return d, nil
}

func (d *Desk) Close() error {
	return d.journal.Close()
}

// record prepends a desk event to the trail and journals it.
func (d *Desk) record(e audit.Event) audit.Event {
	e = d.audit.Prepend(e)
	d.persistEvent(e)
	return e
}

func (d *Desk) persistEvent(e audit.Event) {
	metrics.AuditEvents.WithLabelValues(string(e.Type)).Inc()
	if err := d.journal.RecordEvent(e); err != nil {
		metrics.JournalErrors.Inc()
		d.log.WithError(err).WithField("event_id", e.ID).Error("journal event")
	}
}

func (d *Desk) persistConfig(c routing.Configuration) {
	if err := d.journal.RecordConfig(c); err != nil {
		metrics.JournalErrors.Inc()
		d.log.WithError(err).WithField("version", c.Version).Error("journal routing configuration")
	}
}

func (d *Desk) persistTrades(ts ...ledger.Trade) {
	for _, t := range ts {
		if err := d.journal.RecordTrade(t); err != nil {
			metrics.JournalErrors.Inc()
			d.log.WithError(err).WithField("trade_id", t.ID).Error("journal trade")
		}
	}
}

// AuditEvents returns the trail newest first, narrowed by f.
func (d *Desk) AuditEvents(f audit.Filter) []audit.Event {
	return d.audit.Filter(f)
}
