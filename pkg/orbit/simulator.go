package orbit

import (
	"context"
	"sync"
	"time"

	"github.com/hardsat/rad/internal/logger"
)

// stepInterval is how often the simulator advances and republishes state,
// matching the original implementation's 100ms cadence.
const stepInterval = 100 * time.Millisecond

// Snapshot is the simulator's published view of the spacecraft, read under
// a brief mutex section by service handlers. It replaces the upstream
// design's ambient STATE/RAD/BURNS globals with a single owned, lockable
// record per Design Note §9.
type Snapshot struct {
	State     State
	Radiation float64
}

// Simulator owns the spacecraft state and the burn schedule that drives it.
// A new Maneuver request is delivered over Burns and consumed at the top of
// the next propagation step, interrupting whatever orbit is in progress.
type Simulator struct {
	mu       sync.RWMutex
	snapshot Snapshot

	Burns chan []Burn
}

// New returns a simulator seeded with the default starting orbit.
func New() *Simulator {
	return &Simulator{
		snapshot: Snapshot{State: Default()},
		Burns:    make(chan []Burn, 1),
	}
}

// Snapshot returns the simulator's current published state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Flux returns the simulator's currently published radiation flux,
// satisfying executiveproc.FluxSource.
func (s *Simulator) Flux() float64 {
	return s.Snapshot().Radiation
}

// Run propagates the spacecraft until ctx is cancelled, re-initializing
// from the default orbit whenever a failure condition (burn-up, lost
// contact, fuel exhaustion) occurs, and restarting the current propagation
// segment whenever a fresh burn schedule arrives on Burns.
func (s *Simulator) Run(ctx context.Context) {
	state := Default()
	var burns []Burn

	ticker := time.NewTicker(stepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case newBurns := <-s.Burns:
			burns = newBurns
			logger.InfoCtx(ctx, "maneuver schedule updated", "burns", len(burns))
			continue
		case <-ticker.C:
		}

		next, err := Step(state, burns, stepInterval.Seconds())
		if err != nil {
			logger.WarnCtx(ctx, "orbit failure, reinitializing", "error", err)
			state = Default()
			burns = nil
			continue
		}
		state = next

		s.mu.Lock()
		s.snapshot = Snapshot{
			State:     state,
			Radiation: state.Radiation(),
		}
		s.mu.Unlock()
	}
}
