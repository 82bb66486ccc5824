package executiveproc

import (
	"context"

	"github.com/hardsat/rad/internal/rmm"
	"github.com/hardsat/rad/internal/wire"
	"github.com/hardsat/rad/pkg/orbit"
	"github.com/hardsat/rad/pkg/telemetry"
)

// Config parameterises an Executive: the firmware binary to supervise, the
// ground-control listen address, and the on-disk checkpoint path.
type Config struct {
	FirmwareBinary string
	GroundAddress  string
	CheckpointPath string
}

// Executive ties together the firmware supervisor, fault injector, orbital
// simulator, ground-control TCP server, and firmware-facing service
// socket — the whole of C4.
type Executive struct {
	cfg Config

	Supervisor *Supervisor
	Injector   *Injector
	Ground     *GroundServer
	Service    *ServiceServer
	Sim        *orbit.Simulator

	Metrics *telemetry.Registry
}

// New builds an Executive from cfg, constructing a fresh orbital simulator
// and wiring every subordinate component to it.
func New(cfg Config) *Executive {
	if cfg.CheckpointPath == "" {
		cfg.CheckpointPath = wire.CheckpointPath
	}
	sim := orbit.New()
	sup := NewSupervisor(cfg.FirmwareBinary, cfg.CheckpointPath)
	metrics := telemetry.New("rad_executive")

	return &Executive{
		cfg:        cfg,
		Supervisor: sup,
		Injector:   NewInjector(sup, sim, newProcessMutator, metrics),
		Ground:     NewGroundServer(cfg.GroundAddress),
		Service:    NewServiceServer(cfg.CheckpointPath, sim),
		Sim:        sim,
		Metrics:    metrics,
	}
}

// newProcessMutator constructs the real cross-process mutator used outside
// of tests, targeting the firmware child by PID.
func newProcessMutator(pid int) rmm.Mutator {
	return &rmm.ProcessMutator{PID: pid}
}

// Run starts every subordinate goroutine and blocks until ctx is
// cancelled or one of the required listeners fails to bind.
func (e *Executive) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go e.Supervisor.Run(ctx)
	go e.Sim.Run(ctx)
	go e.Injector.Run(ctx)
	go func() { errCh <- e.Service.Run(ctx) }()
	go func() { errCh <- e.Ground.Run(ctx) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
