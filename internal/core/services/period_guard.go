package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
)

// periodGuard serializes mutations per fiscal period with a keyed semaphore.
// Each period gets a one-slot channel; holding the slot is holding the lock.
// Acquisition waits at most maxWait so a stuck writer surfaces as ErrBusy
// instead of a hung request.
//
// The guard also tracks halted periods. When a write observes an
// internal-consistency failure the period is halted and every subsequent
// acquisition fails fast until an operator intervenes.
type periodGuard struct {
	mu      sync.Mutex
	slots   map[string]chan struct{}
	halted  map[string]string
	maxWait time.Duration
}

func newPeriodGuard(maxWait time.Duration) *periodGuard {
	return &periodGuard{
		slots:   make(map[string]chan struct{}),
		halted:  make(map[string]string),
		maxWait: maxWait,
	}
}

func (g *periodGuard) slot(periodID string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.slots[periodID]
	if !ok {
		ch = make(chan struct{}, 1)
		g.slots[periodID] = ch
	}
	return ch
}

// AcquirePeriodWrite takes the period's write slot, waiting up to maxWait.
// The returned release function must be called exactly once; it is safe to
// defer immediately.
func (g *periodGuard) AcquirePeriodWrite(ctx context.Context, periodID string) (func(), error) {
	if reason, halted := g.PeriodWritesHalted(periodID); halted {
		return nil, fmt.Errorf("%w: writes halted for period %s: %s", apperrors.ErrInternal, periodID, reason)
	}

	ch := g.slot(periodID)

	timer := time.NewTimer(g.maxWait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() { <-ch })
		}
		return release, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: period %s write lock not acquired within %s", apperrors.ErrBusy, periodID, g.maxWait)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: period %s write lock wait canceled: %v", apperrors.ErrBusy, periodID, ctx.Err())
	}
}

// HaltPeriodWrites blocks all further writes to the period. The first
// recorded reason wins; later failures do not overwrite it.
func (g *periodGuard) HaltPeriodWrites(periodID string, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, already := g.halted[periodID]; !already {
		g.halted[periodID] = reason
	}
}

// PeriodWritesHalted reports whether the period's writes are halted and why.
func (g *periodGuard) PeriodWritesHalted(periodID string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	reason, halted := g.halted[periodID]
	return reason, halted
}
