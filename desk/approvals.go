package desk

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/hedge"
	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/positions"
	"github.com/rustyeddy/treasury/reset"
)

// EnterHedge records a manual hedge. Hedges at or over the dual auth
// threshold stay Pending until ApproveHedge.
func (d *Desk) EnterHedge(in hedge.Input) (hedge.Hedge, audit.Event, error) {
	h, err := hedge.New(in, d.threshold)
	if err != nil {
		return hedge.Hedge{}, audit.Event{}, err
	}
	if err := d.hedges.Add(h); err != nil {
		return hedge.Hedge{}, audit.Event{}, err
	}

	e := audit.Event{
		Type:        audit.HedgeEntry,
		Description: "Manual hedge entry recorded",
		User:        h.EnteredBy,
		Status:      audit.StatusCompleted,
		Details:     d.hedgeDetails(h),
	}
	if h.RequiresDualAuth {
		e.Description = "Manual hedge entry submitted for approval"
		e.Status = audit.StatusPending
	}
	e = d.record(e)

	d.log.WithFields(logrus.Fields{"hedge_id": h.ID, "amount": h.Amount, "status": h.Status}).Info("hedge entered")
	return h, e, nil
}

func (d *Desk) ApproveHedge(hedgeID, approver string) (hedge.Hedge, audit.Event, error) {
	h, err := d.hedges.Approve(hedgeID, approver)
	if err != nil {
		return hedge.Hedge{}, audit.Event{}, err
	}
	e := d.record(audit.Event{
		Type:        audit.Approval,
		Description: "Dual authorization for manual hedge",
		User:        approver,
		Status:      audit.StatusApproved,
		Details:     d.hedgeDetails(h),
	})
	return h, e, nil
}

func (d *Desk) Hedges() []hedge.Hedge { return d.hedges.All() }

func (d *Desk) hedgeDetails(h hedge.Hedge) map[string]any {
	details := map[string]any{
		"hedgeId": h.ID,
		"pair":    h.Pair.String(),
		"type":    string(h.Type),
		"amount":  h.Amount,
	}
	// omitted when the base currency has no USD quote
	if usd, err := market.ToUSD(d.rates, h.Pair.Base, h.Amount); err == nil {
		details["usdNotional"] = usd
	}
	return details
}

// RequestReset opens a reset against an existing position. The current
// position is taken from the book, not from the caller.
func (d *Desk) RequestReset(in reset.Input) (reset.Request, audit.Event, error) {
	k := positions.Key{Currency: in.Currency, LiquidityProvider: in.LiquidityProvider}
	p, ok := d.Positions()[k]
	if !ok {
		return reset.Request{}, audit.Event{}, fmt.Errorf("%w: %s with %s", ErrUnknownPosition, in.Currency, in.LiquidityProvider)
	}
	in.CurrentPosition = p.NetPosition

	r, err := d.resets.Submit(in)
	if err != nil {
		return reset.Request{}, audit.Event{}, err
	}
	e := d.record(audit.Event{
		Type:        audit.PositionReset,
		Description: "Position reset requested",
		User:        r.RequestedBy,
		Status:      audit.StatusPending,
		Details:     resetDetails(r),
	})
	return r, e, nil
}

// ApproveReset records the next approval. The second approval books the
// adjustment trade and logs the reset as completed.
func (d *Desk) ApproveReset(resetID, approver, comments string) (reset.Request, audit.Event, error) {
	r, err := d.resets.Approve(resetID, approver, comments)
	if err != nil {
		return reset.Request{}, audit.Event{}, err
	}

	level := len(r.Approvals)
	details := resetDetails(r)
	details["level"] = level
	e := d.record(audit.Event{
		Type:        audit.Approval,
		Description: fmt.Sprintf("Level %d approval for position reset", level),
		User:        approver,
		Status:      audit.StatusApproved,
		Details:     details,
	})

	if r.Status == reset.Executed {
		e = d.record(audit.Event{
			Type:        audit.PositionReset,
			Description: "Position reset executed",
			User:        approver,
			Status:      audit.StatusCompleted,
			Details:     resetDetails(r),
		})
		d.log.WithFields(logrus.Fields{"reset_id": r.ID, "trade_id": r.AdjustmentTradeID, "delta": r.Delta()}).Info("position reset executed")
	}
	return r, e, nil
}

func (d *Desk) RejectReset(resetID, approver, comments string) (reset.Request, audit.Event, error) {
	r, err := d.resets.Reject(resetID, approver, comments)
	if err != nil {
		return reset.Request{}, audit.Event{}, err
	}
	e := d.record(audit.Event{
		Type:        audit.Approval,
		Description: "Position reset rejected",
		User:        approver,
		Status:      audit.StatusRejected,
		Details:     resetDetails(r),
	})
	return r, e, nil
}

func (d *Desk) Resets(statuses ...reset.Status) []reset.Request {
	return d.resets.List(statuses...)
}

// executeReset books the adjustment that moves the position to target.
func (d *Desk) executeReset(r reset.Request) (string, error) {
	rate, err := d.rates.USDRate(r.Currency)
	if err != nil {
		return "", err
	}
	t, err := ledger.NewAdjustment(r.Currency, r.LiquidityProvider, r.Delta(), rate, r.ID)
	if err != nil {
		return "", err
	}
	d.book.Add(t)
	d.persistTrades(t)
	return t.ID, nil
}

func resetDetails(r reset.Request) map[string]any {
	return map[string]any{
		"resetId":         r.ID,
		"currency":        string(r.Currency),
		"provider":        r.LiquidityProvider,
		"currentPosition": r.CurrentPosition,
		"targetPosition":  r.TargetPosition,
		"reason":          r.Reason,
	}
}
