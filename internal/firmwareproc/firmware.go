// Package firmwareproc implements the firmware process (C3): it owns the
// protected state, runs the module execution loop, and exposes the two
// socket surfaces the executive drives it through.
package firmwareproc

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/wire"
	"github.com/hardsat/rad/pkg/protected"
	"github.com/hardsat/rad/pkg/telemetry"
)

const (
	mainLoopInterval = 500 * time.Millisecond
	reportInterval   = 10 * time.Second
	watchdogTimeout  = 10 * time.Second
	ioTimeout        = 10 * time.Second

	// watchdogExitCode is the process exit code the firmware uses when the
	// watchdog expires. The executive's supervisor does not inspect exit
	// codes; it respawns the firmware after any exit.
	watchdogExitCode = 13
)

// controlJob pairs a decoded control request with the channel its handler
// replies on, letting the control listener block per-connection while the
// main loop stays the sole mutator of state.
type controlJob struct {
	req   wire.ControlRequest
	reply chan wire.ControlResponse
}

// Firmware owns the protected state and coordinates the watchdog, control
// socket, and main loop goroutines the spec assigns to this process.
type Firmware struct {
	mu    sync.Mutex
	state *protected.State
	arena []byte

	lastKick atomic.Int64 // unix nanoseconds

	controlReqCh chan controlJob

	serviceClient *serviceClient

	metrics *telemetry.Registry
}

// New constructs a Firmware, loading state from checkpointPath if it
// exists and can be deserialized, or starting from a blank state otherwise.
// Per spec, a checkpoint that fails to deserialize is discarded rather than
// treated as fatal: the firmware re-creates a blank state and continues.
func New(checkpointPath string) *Firmware {
	state, restarted := loadOrNew(checkpointPath)

	fw := &Firmware{
		state:        state,
		arena:        protected.MarshalState(state),
		controlReqCh: make(chan controlJob, 16),
		metrics:      telemetry.New("rad_firmware"),
	}
	fw.lastKick.Store(time.Now().UnixNano())
	if restarted {
		fw.metrics.FirmwareRestarts.Inc()
	}
	return fw
}

// Metrics returns the firmware's metrics registry for mounting on a debug
// HTTP listener.
func (fw *Firmware) Metrics() *telemetry.Registry { return fw.metrics }

// loadOrNew returns the restored state and whether a checkpoint was
// actually loaded (as opposed to falling back to a blank one).
func loadOrNew(checkpointPath string) (*protected.State, bool) {
	data, err := os.ReadFile(checkpointPath)
	if err != nil {
		return protected.New(), false
	}
	state, err := protected.UnmarshalState(data)
	if err != nil {
		logger.Warn("checkpoint failed to deserialize, starting blank", "path", checkpointPath, "error", err)
		_ = os.Remove(checkpointPath)
		return protected.New(), false
	}
	if err := state.LoadCheckpoint(); err != nil {
		logger.Warn("checkpoint failed invariant restoration, starting blank", "path", checkpointPath, "error", err)
		return protected.New(), false
	}
	return state, true
}

// Run starts the watchdog, control socket listener, and main loop, and
// blocks until ctx is cancelled or the watchdog fires (which exits the
// process directly, per spec's process-suicide restart discipline).
func (fw *Firmware) Run(ctx context.Context) error {
	client, err := dialService()
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "firmwareproc: dial executive service socket", err)
	}
	fw.serviceClient = client
	defer client.Close()

	addr := uintptr(unsafe.Pointer(&fw.arena[0]))
	logger.InfoCtx(ctx, fmt.Sprintf("protected state at 0x%x-0x%x", addr, addr+uintptr(len(fw.arena))))

	listener, err := listenControl()
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "firmwareproc: listen command socket", err)
	}
	defer listener.Close()

	go fw.watchdogLoop(ctx)
	go fw.acceptControlConns(ctx, listener)

	return fw.mainLoop(ctx)
}

func (fw *Firmware) kickWatchdog() {
	fw.lastKick.Store(time.Now().UnixNano())
}

func (fw *Firmware) watchdogLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			last := time.Unix(0, fw.lastKick.Load())
			if time.Since(last) > watchdogTimeout {
				logger.ErrorCtx(ctx, "watchdog expired, terminating")
				os.Exit(watchdogExitCode)
			}
		}
	}
}
