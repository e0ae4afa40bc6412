// Package hedge records manually entered hedges and their dual
// authorization.
package hedge

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/pkg/id"
)

var (
	ErrInvalidHedge = errors.New("invalid hedge")
	ErrNotFound     = errors.New("hedge not found")
	ErrInvalidState = errors.New("hedge is not pending")
	ErrSelfApproval = errors.New("hedge cannot be approved by the trader who entered it")
)

// DefaultDualAuthThreshold is the USD amount from which a second person
// must approve the hedge.
const DefaultDualAuthThreshold = 1_000_000

type Type string

const (
	Spot    Type = "Spot"
	Forward Type = "Forward"
	Swap    Type = "Swap"
	NDF     Type = "NDF"
	Option  Type = "Option"
)

func ParseType(s string) (Type, error) {
	for _, t := range []Type{Spot, Forward, Swap, NDF, Option} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown hedge type %q", ErrInvalidHedge, s)
}

type Status string

const (
	Pending  Status = "Pending"
	Approved Status = "Approved"
)

// Input is a hedge as a trader enters it. Amount is in USD.
type Input struct {
	Pair              market.Pair `json:"pair"`
	Type              Type        `json:"type"`
	Amount            float64     `json:"amount"`
	Rate              float64     `json:"rate"`
	LiquidityProvider string      `json:"liquidity_provider"`
	ExternalReference string      `json:"external_reference,omitempty"`
	EnteredBy         string      `json:"entered_by"`
}

type Hedge struct {
	ID                string      `json:"id"`
	Pair              market.Pair `json:"currency_pair"`
	Type              Type        `json:"type"`
	Amount            float64     `json:"amount"`
	Rate              float64     `json:"rate"`
	LiquidityProvider string      `json:"liquidity_provider"`
	ExternalReference string      `json:"external_reference,omitempty"`
	Status            Status      `json:"status"`
	RequiresDualAuth  bool        `json:"requires_dual_auth"`
	EnteredBy         string      `json:"entered_by"`
	ApprovedBy        string      `json:"approved_by,omitempty"`
	Time              time.Time   `json:"timestamp"`
}

// New validates in and builds the hedge. Hedges of threshold USD or more
// wait for a second approver; smaller ones are approved on entry.
func New(in Input, threshold float64) (Hedge, error) {
	if err := in.Pair.Base.Validate(); err != nil {
		return Hedge{}, err
	}
	if err := in.Pair.Quote.Validate(); err != nil {
		return Hedge{}, err
	}
	if in.Pair.Base == in.Pair.Quote {
		return Hedge{}, fmt.Errorf("%w: %s cannot hedge against itself", ErrInvalidHedge, in.Pair.Base)
	}
	if _, err := ParseType(string(in.Type)); err != nil {
		return Hedge{}, err
	}
	if in.Amount == 0 || math.IsNaN(in.Amount) {
		return Hedge{}, fmt.Errorf("%w: amount must be non-zero", ErrInvalidHedge)
	}
	if !(in.Rate > 0) {
		return Hedge{}, fmt.Errorf("%w: rate must be positive", ErrInvalidHedge)
	}
	if strings.TrimSpace(in.LiquidityProvider) == "" {
		return Hedge{}, fmt.Errorf("%w: liquidity provider is required", ErrInvalidHedge)
	}
	if strings.TrimSpace(in.EnteredBy) == "" {
		return Hedge{}, fmt.Errorf("%w: entered by is required", ErrInvalidHedge)
	}

	h := Hedge{
		ID:                id.New(id.Hedge),
		Pair:              in.Pair,
		Type:              in.Type,
		Amount:            in.Amount,
		Rate:              in.Rate,
		LiquidityProvider: in.LiquidityProvider,
		ExternalReference: in.ExternalReference,
		EnteredBy:         in.EnteredBy,
		RequiresDualAuth:  math.Abs(in.Amount) >= threshold,
		Status:            Approved,
		Time:              time.Now().UTC(),
	}
	if h.RequiresDualAuth {
		h.Status = Pending
	}
	return h, nil
}

// Covers reports whether h is an approved hedge on ccy with lp.
func (h Hedge) Covers(ccy market.Currency, lp string) bool {
	if h.Status != Approved || h.LiquidityProvider != lp {
		return false
	}
	return h.Pair.Base == ccy || h.Pair.Quote == ccy
}

// Register holds every hedge entered, in entry order.
type Register struct {
	mu     sync.RWMutex
	hedges map[string]*Hedge
	order  []string
}

func NewRegister() *Register {
	return &Register{hedges: map[string]*Hedge{}}
}

func (r *Register) Add(h Hedge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.hedges[h.ID]; dup {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidHedge, h.ID)
	}
	r.hedges[h.ID] = &h
	r.order = append(r.order, h.ID)
	return nil
}

// Approve gives a pending hedge its second authorization.
func (r *Register) Approve(hedgeID, approver string) (Hedge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.hedges[hedgeID]
	if !ok {
		return Hedge{}, fmt.Errorf("%w: %s", ErrNotFound, hedgeID)
	}
	if h.Status != Pending {
		return Hedge{}, fmt.Errorf("%w: %s is %s", ErrInvalidState, hedgeID, h.Status)
	}
	if strings.TrimSpace(approver) == "" {
		return Hedge{}, fmt.Errorf("%w: approver is required", ErrInvalidHedge)
	}
	if strings.EqualFold(approver, h.EnteredBy) {
		return Hedge{}, ErrSelfApproval
	}
	h.Status = Approved
	h.ApprovedBy = approver
	return *h, nil
}

func (r *Register) Get(hedgeID string) (Hedge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hedges[hedgeID]
	if !ok {
		return Hedge{}, false
	}
	return *h, true
}

// All returns hedges newest first.
func (r *Register) All() []Hedge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Hedge, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, *r.hedges[r.order[i]])
	}
	return out
}

// Covered reports whether any approved hedge covers ccy with lp.
func (r *Register) Covered(ccy market.Currency, lp string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.hedges {
		if h.Covers(ccy, lp) {
			return true
		}
	}
	return false
}

// Providers lists the liquidity providers hedges have been placed with.
func (r *Register) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, h := range r.hedges {
		if !seen[h.LiquidityProvider] {
			seen[h.LiquidityProvider] = true
			out = append(out, h.LiquidityProvider)
		}
	}
	sort.Strings(out)
	return out
}
