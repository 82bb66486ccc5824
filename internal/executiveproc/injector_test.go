package executiveproc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardsat/rad/internal/rmm"
	"github.com/hardsat/rad/pkg/telemetry"
)

type fixedFlux float64

func (f fixedFlux) Flux() float64 { return float64(f) }

func TestInjectorTickFlipsBitWithinRegion(t *testing.T) {
	sup := &Supervisor{}
	sup.cur = region{pid: 1234, addr: 0, size: 64}

	buf := make([]byte, 64)
	mutator := &rmm.BufferMutator{Buf: buf}

	inj := NewInjector(sup, fixedFlux(fluxDrawCeiling), func(int) rmm.Mutator { return mutator }, telemetry.New("test_injector_fire"))
	inj.tick(context.Background())

	var flips int
	for _, b := range buf {
		if b != 0 {
			flips++
		}
	}
	require.GreaterOrEqual(t, flips, 1, "a maximal flux must always fire")
}

func TestInjectorTickSkipsWithoutPublishedRegion(t *testing.T) {
	sup := &Supervisor{}
	called := false
	inj := NewInjector(sup, fixedFlux(fluxDrawCeiling), func(int) rmm.Mutator {
		called = true
		return &rmm.BufferMutator{Buf: make([]byte, 16)}
	}, telemetry.New("test_injector_skip"))
	inj.tick(context.Background())
	require.False(t, called, "injector must not mutate before a region is published")
}

func TestInjectorTickNeverFiresAtZeroFlux(t *testing.T) {
	sup := &Supervisor{}
	sup.cur = region{pid: 1, addr: 0, size: 64}
	buf := make([]byte, 64)
	mutator := &rmm.BufferMutator{Buf: buf}
	inj := NewInjector(sup, fixedFlux(0), func(int) rmm.Mutator { return mutator }, telemetry.New("test_injector_zero"))
	for i := 0; i < 20; i++ {
		inj.tick(context.Background())
	}
	for _, b := range buf {
		require.Zero(t, b)
	}
}
