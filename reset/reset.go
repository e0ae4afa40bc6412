// Package reset runs the two-level approval workflow for position resets.
// A reset moves a position to a target amount once a manager and then a
// second approver have signed off.
package reset

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/pkg/id"
)

var (
	ErrInvalidRequest = errors.New("invalid reset request")
	ErrNotFound       = errors.New("reset request not found")
	ErrInvalidState   = errors.New("reset request cannot move from its current state")
	ErrSegregation    = errors.New("approver must differ from the requester and earlier approvers")
)

// MinJustification is the shortest justification a request is accepted
// with.
const MinJustification = 100

type Status string

const (
	Pending       Status = "Pending"
	FirstApproved Status = "First Approved"
	Executed      Status = "Executed"
	Rejected      Status = "Rejected"
)

var Reasons = []string{
	"Cancelled Deal Correction",
	"System Error Correction",
	"Late Trade Entry",
	"Reconciliation Adjustment",
	"Other",
}

type Approval struct {
	Level    int       `json:"level"`
	Approver string    `json:"approver"`
	Time     time.Time `json:"timestamp"`
	Comments string    `json:"comments,omitempty"`
}

// Input is a reset as requested.
type Input struct {
	Currency          market.Currency `json:"currency"`
	LiquidityProvider string          `json:"liquidity_provider"`
	CurrentPosition   float64         `json:"current_position"`
	TargetPosition    float64         `json:"target_position"`
	Reason            string          `json:"reason"`
	Justification     string          `json:"justification"`
	RequestedBy       string          `json:"requested_by"`
}

type Request struct {
	ID                string          `json:"id"`
	Currency          market.Currency `json:"currency"`
	LiquidityProvider string          `json:"liquidity_provider"`
	CurrentPosition   float64         `json:"current_position"`
	TargetPosition    float64         `json:"target_position"`
	Reason            string          `json:"reason"`
	Justification     string          `json:"justification"`
	Status            Status          `json:"status"`
	RequestedBy       string          `json:"requested_by"`
	RequestedAt       time.Time       `json:"requested_at"`
	Approvals         []Approval      `json:"approvals"`
	RejectedBy        string          `json:"rejected_by,omitempty"`
	AdjustmentTradeID string          `json:"adjustment_trade_id,omitempty"`
}

// Delta is the amount the reset books against the position.
func (r Request) Delta() float64 { return r.TargetPosition - r.CurrentPosition }

func (r Request) clone() Request {
	r.Approvals = append([]Approval(nil), r.Approvals...)
	return r
}

func (in Input) validate() error {
	if err := in.Currency.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.LiquidityProvider) == "" {
		return fmt.Errorf("%w: liquidity provider is required", ErrInvalidRequest)
	}
	if math.IsNaN(in.TargetPosition) || math.IsInf(in.TargetPosition, 0) {
		return fmt.Errorf("%w: target position must be a number", ErrInvalidRequest)
	}
	if in.TargetPosition == in.CurrentPosition {
		return fmt.Errorf("%w: target equals current position", ErrInvalidRequest)
	}
	if !validReason(in.Reason) {
		return fmt.Errorf("%w: unknown reason %q", ErrInvalidRequest, in.Reason)
	}
	if n := len(strings.TrimSpace(in.Justification)); n < MinJustification {
		return fmt.Errorf("%w: justification must be at least %d characters, got %d", ErrInvalidRequest, MinJustification, n)
	}
	if strings.TrimSpace(in.RequestedBy) == "" {
		return fmt.Errorf("%w: requested by is required", ErrInvalidRequest)
	}
	return nil
}

func validReason(s string) bool {
	for _, r := range Reasons {
		if r == s {
			return true
		}
	}
	return false
}

// Executor books the adjustment for a reset at final approval and returns
// the id of the trade it booked.
type Executor interface {
	ExecuteReset(r Request) (string, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(Request) (string, error)

func (f ExecutorFunc) ExecuteReset(r Request) (string, error) { return f(r) }

// Workflow tracks reset requests. Requests are never removed.
type Workflow struct {
	mu    sync.Mutex
	exec  Executor
	reqs  map[string]*Request
	order []string
	now   func() time.Time
}

func NewWorkflow(exec Executor) *Workflow {
	return &Workflow{
		exec: exec,
		reqs: map[string]*Request{},
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (w *Workflow) Submit(in Input) (Request, error) {
	if err := in.validate(); err != nil {
		return Request{}, err
	}

	r := &Request{
		ID:                id.New(id.Reset),
		Currency:          in.Currency,
		LiquidityProvider: in.LiquidityProvider,
		CurrentPosition:   in.CurrentPosition,
		TargetPosition:    in.TargetPosition,
		Reason:            in.Reason,
		Justification:     strings.TrimSpace(in.Justification),
		Status:            Pending,
		RequestedBy:       in.RequestedBy,
		RequestedAt:       w.now(),
		Approvals:         []Approval{},
	}

	w.mu.Lock()
	w.reqs[r.ID] = r
	w.order = append(w.order, r.ID)
	w.mu.Unlock()
	return r.clone(), nil
}

// Approve records the next approval level. Level one moves the request to
// FirstApproved; level two executes it through the Executor and moves it to
// Executed. If execution fails the request stays FirstApproved.
func (w *Workflow) Approve(resetID, approver, comments string) (Request, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, err := w.lookup(resetID)
	if err != nil {
		return Request{}, err
	}
	if err := w.checkApprover(r, approver); err != nil {
		return Request{}, err
	}

	a := Approval{Approver: approver, Time: w.now(), Comments: comments}
	switch r.Status {
	case Pending:
		a.Level = 1
		r.Approvals = append(r.Approvals, a)
		r.Status = FirstApproved

	case FirstApproved:
		a.Level = 2
		next := r.clone()
		next.Approvals = append(next.Approvals, a)
		next.Status = Executed
		if w.exec != nil {
			tradeID, err := w.exec.ExecuteReset(next)
			if err != nil {
				return Request{}, fmt.Errorf("execute reset %s: %w", r.ID, err)
			}
			next.AdjustmentTradeID = tradeID
		}
		*r = next

	default:
		return Request{}, fmt.Errorf("%w: %s is %s", ErrInvalidState, r.ID, r.Status)
	}
	return r.clone(), nil
}

// Reject closes a request that has not been executed yet.
func (w *Workflow) Reject(resetID, approver, comments string) (Request, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, err := w.lookup(resetID)
	if err != nil {
		return Request{}, err
	}
	if r.Status != Pending && r.Status != FirstApproved {
		return Request{}, fmt.Errorf("%w: %s is %s", ErrInvalidState, r.ID, r.Status)
	}
	if err := w.checkApprover(r, approver); err != nil {
		return Request{}, err
	}
	r.Status = Rejected
	r.RejectedBy = approver
	r.Approvals = append(r.Approvals, Approval{Level: len(r.Approvals) + 1, Approver: approver, Time: w.now(), Comments: comments})
	return r.clone(), nil
}

func (w *Workflow) lookup(resetID string) (*Request, error) {
	r, ok := w.reqs[resetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, resetID)
	}
	return r, nil
}

func (w *Workflow) checkApprover(r *Request, approver string) error {
	if strings.TrimSpace(approver) == "" {
		return fmt.Errorf("%w: approver is required", ErrInvalidRequest)
	}
	if strings.EqualFold(approver, r.RequestedBy) {
		return ErrSegregation
	}
	for _, a := range r.Approvals {
		if strings.EqualFold(approver, a.Approver) {
			return ErrSegregation
		}
	}
	return nil
}

func (w *Workflow) Get(resetID string) (Request, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.reqs[resetID]
	if !ok {
		return Request{}, false
	}
	return r.clone(), true
}

// List returns requests newest first, optionally narrowed to statuses.
func (w *Workflow) List(statuses ...Status) []Request {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Request, 0, len(w.order))
	for i := len(w.order) - 1; i >= 0; i-- {
		r := w.reqs[w.order[i]]
		if len(statuses) > 0 && !hasStatus(statuses, r.Status) {
			continue
		}
		out = append(out, r.clone())
	}
	return out
}

// Open lists requests still waiting on an approval.
func (w *Workflow) Open() []Request {
	return w.List(Pending, FirstApproved)
}

func hasStatus(ss []Status, s Status) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
