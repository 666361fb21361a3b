package decision

import (
	"context"
	"sync"
)

// StaticEngine returns canned decisions keyed by symbol. It is the default
// wiring for development runs and the engine of choice in orchestrator
// tests: scoring stays deterministic and every evaluation is recorded for
// verification.
type StaticEngine struct {
	mu        sync.Mutex
	decisions map[string]TradeDecision
	fallback  TradeDecision
	errs      map[string]error
	evaluated []TokenIdentity
}

// NewStaticEngine creates an engine that rejects everything it has no
// canned decision for.
func NewStaticEngine() *StaticEngine {
	return &StaticEngine{
		decisions: make(map[string]TradeDecision),
		errs:      make(map[string]error),
		fallback:  TradeDecision{Rationale: "no rule for symbol"},
	}
}

// SetDecision registers the verdict returned for a symbol.
func (e *StaticEngine) SetDecision(symbol string, d TradeDecision) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.decisions[symbol] = d
}

// SetError makes evaluation of a symbol fail.
func (e *StaticEngine) SetError(symbol string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs[symbol] = err
}

// Evaluate returns the canned decision for the candidate's symbol.
func (e *StaticEngine) Evaluate(_ context.Context, identity TokenIdentity, _ MarketFeatures) (*TradeDecision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.evaluated = append(e.evaluated, identity)

	if err, ok := e.errs[identity.Symbol]; ok {
		return nil, err
	}
	d, ok := e.decisions[identity.Symbol]
	if !ok {
		d = e.fallback
	}
	return &d, nil
}

// Evaluated returns the identities seen so far, in evaluation order.
func (e *StaticEngine) Evaluated() []TokenIdentity {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]TokenIdentity, len(e.evaluated))
	copy(out, e.evaluated)
	return out
}

var _ Engine = (*StaticEngine)(nil)
