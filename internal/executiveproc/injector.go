package executiveproc

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/rmm"
	"github.com/hardsat/rad/pkg/telemetry"
)

// injectorInterval is the fault sampling cadence.
const injectorInterval = 100 * time.Millisecond

// fluxDrawCeiling is the upper bound of the uniform draw compared against
// the current radiation flux: the expected rate is ~flux/fluxDrawCeiling
// flips per tick.
const fluxDrawCeiling = 300.0

// alignment is the byte boundary fault addresses are aligned down to before
// a bit is chosen within the following 8-byte word.
const alignment = 16

// FluxSource supplies the current radiation flux driving the injector's
// fire probability. *orbit.Simulator satisfies this directly.
type FluxSource interface {
	Flux() float64
}

// Injector periodically flips a single bit inside the firmware's protected
// state region, rate-limited by the orbital simulator's current radiation
// flux. It targets a Supervisor's published region through an rmm.Mutator,
// so tests can substitute a BufferMutator, a fixed flux source, and a
// deterministic region.
type Injector struct {
	sup        *Supervisor
	flux       FluxSource
	newMutator func(pid int) rmm.Mutator
	metrics    *telemetry.Registry
}

// NewInjector builds an Injector that reads regions from sup, samples flux
// from source, and mutates through newMutator (normally rmm.ProcessMutator
// constructed per-PID; tests may substitute a fixed BufferMutator).
func NewInjector(sup *Supervisor, source FluxSource, newMutator func(pid int) rmm.Mutator, metrics *telemetry.Registry) *Injector {
	return &Injector{sup: sup, flux: source, newMutator: newMutator, metrics: metrics}
}

// Run ticks every injectorInterval until ctx is cancelled, injecting at
// most one bit flip per tick.
func (inj *Injector) Run(ctx context.Context) {
	ticker := time.NewTicker(injectorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			inj.tick(ctx)
		}
	}
}

func (inj *Injector) tick(ctx context.Context) {
	pid, addr, size, ok := inj.sup.Region()
	if !ok || size == 0 {
		return
	}

	flux := inj.flux.Flux()
	draw := rand.Float64() * fluxDrawCeiling
	if draw >= flux {
		return
	}

	span := uint64(size)
	if span < alignment {
		return
	}
	offset := (rand.Uint64() % span) &^ uint64(alignment-1)
	faultBit := rand.IntN(64)
	byteAddr := addr + uintptr(offset) + uintptr(faultBit/8)
	bitInByte := uint(faultBit % 8)

	mutator := inj.newMutator(pid)
	if err := mutator.FlipBit(byteAddr, bitInByte); err != nil {
		inj.metrics.FaultFailures.Inc()
		logger.WarnCtx(ctx, "fault injection failed", "pid", pid, "addr", byteAddr, "error", err)
		return
	}
	inj.metrics.FaultInjections.Inc()
}
