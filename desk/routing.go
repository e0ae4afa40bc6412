package desk

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/internal/metrics"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/routing"
)

func (d *Desk) Routing() routing.Configuration { return d.store.Current() }

func (d *Desk) Matrix() [][]routing.PairStatus { return d.store.Matrix() }

func (d *Desk) PairStatus(base, quote market.Currency) routing.PairStatus {
	return d.store.Status(base, quote)
}

// Stage opens an editable copy of the routing configuration. Commit it with
// CommitStaged so the change is journaled.
func (d *Desk) Stage() *routing.Staging { return d.store.Stage() }

func (d *Desk) CommitStaged(st *routing.Staging, actor string) (routing.Configuration, audit.Event, error) {
	return d.committed(st.Commit(actor))
}

// SaveRouting replaces the whole configuration. A positive version makes
// the save conditional on nobody else having saved since.
func (d *Desk) SaveRouting(version int, active []market.Currency, modes map[market.PairKey]routing.Mode, hidden []market.Currency, actor string) (routing.Configuration, audit.Event, error) {
	if version > 0 {
		return d.committed(d.store.ReplaceIf(version, active, modes, hidden, actor))
	}
	return d.committed(d.store.Replace(active, modes, hidden, actor))
}

// ToggleRouting flips one pair and commits straight away.
func (d *Desk) ToggleRouting(base, quote market.Currency, actor string) (routing.Configuration, audit.Event, error) {
	st := d.store.Stage()
	if _, err := st.Toggle(base, quote); err != nil {
		return routing.Configuration{}, audit.Event{}, err
	}
	return d.CommitStaged(st, actor)
}

// ResetRouting makes the reference currencies the whole active set, routed
// pairwise direct. Hidden currencies and their pair settings are dropped.
func (d *Desk) ResetRouting(actor string) (routing.Configuration, audit.Event, error) {
	st := d.store.Stage()
	st.ResetTo(d.reference)
	return d.CommitStaged(st, actor)
}

func (d *Desk) committed(cfg routing.Configuration, ev audit.Event, err error) (routing.Configuration, audit.Event, error) {
	if err != nil {
		if errors.Is(err, routing.ErrStale) {
			metrics.RoutingConflicts.Inc()
		}
		d.log.WithError(err).Warn("routing save refused")
		return cfg, ev, err
	}

	metrics.RoutingVersion.Set(float64(cfg.Version))
	d.persistConfig(cfg)
	d.persistEvent(ev)

	fields := logrus.Fields{"version": cfg.Version, "user": ev.User}
	if ev.Change != nil {
		fields["pairs_changed"] = len(ev.Change.PairsChanged)
		fields["added"] = len(ev.Change.Added)
		fields["removed"] = len(ev.Change.Removed)
	}
	d.log.WithFields(fields).Info("routing configuration saved")
	return cfg, ev, nil
}
