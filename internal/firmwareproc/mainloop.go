package firmwareproc

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/wire"
	"github.com/hardsat/rad/pkg/protected"
)

// moduleMemSize is the bounded scratch region each module's VM instance
// reads and writes through its two syscalls.
const moduleMemSize = 256

// mainLoop is the firmware's single mutator of protected state: it ticks
// every mainLoopInterval, runs each enabled module, periodically scrubs and
// checkpoints, and drains control requests the command-socket goroutines
// have queued. Folding all of this onto one goroutine means state needs no
// lock beyond the one guarding the arena snapshot other goroutines never
// mutate.
func (fw *Firmware) mainLoop(ctx context.Context) error {
	ticker := time.NewTicker(mainLoopInterval)
	defer ticker.Stop()

	lastReport := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-fw.controlReqCh:
			job.reply <- fw.handleControl(ctx, job.req)
			continue
		case <-ticker.C:
		}

		fw.kickWatchdog()
		fw.runModules(ctx)

		if repaired, err := fw.state.Scrub(); err != nil {
			logger.ErrorCtx(ctx, "scrub failed", "error", err)
		} else if repaired > 0 {
			fw.metrics.FirmwareRepairs.Add(float64(repaired))
			logger.WarnCtx(ctx, "scrub repaired corrupted fields", "count", repaired)
		}

		fw.mu.Lock()
		copy(fw.arena, protected.MarshalState(fw.state))
		fw.mu.Unlock()

		if time.Since(lastReport) >= reportInterval {
			lastReport = time.Now()
			fw.logModuleSummary(ctx)
			fw.checkpoint(ctx)
		}
	}
}

// runModules executes every enabled, verified module once, demoting (and
// logging) any module whose run faults rather than letting one bad module
// stall the loop.
func (fw *Firmware) runModules(ctx context.Context) {
	for i, m := range fw.state.Modules {
		enabled, err := m.IsEnabled()
		if err != nil {
			logger.ErrorCtx(ctx, "module enabled flag unreadable", "module", i, "error", err)
			continue
		}
		if !enabled || !m.IsVerified() {
			continue
		}

		id := strconv.Itoa(i)
		fw.metrics.ModuleExecutions.WithLabelValues(id).Inc()

		mem := make([]byte, moduleMemSize)
		out, err := m.Execute(mem)
		if err != nil {
			fw.metrics.ModuleFaults.WithLabelValues(id).Inc()
			logger.WarnCtx(ctx, "module fault, disabling", "module", i, "error", err)
			m.SetEnabled(false)
			_ = fw.state.Log(nowUnix(), []byte(fmt.Sprintf("module %d fault: %v", i, err)))
			continue
		}
		if len(out) > 0 {
			_ = fw.state.Log(nowUnix(), []byte(fmt.Sprintf("module %d output: %s", i, hex.EncodeToString(out))))
		}
	}
}

// logModuleSummary logs each module's enabled/verified state and a short
// code prefix once per report tick, independent of the checkpoint push
// itself, so ground-side log scraping can see module health without
// issuing a FirmwareRequest.
func (fw *Firmware) logModuleSummary(ctx context.Context) {
	for i, m := range fw.state.Modules {
		enabled, err := m.IsEnabled()
		if err != nil {
			enabled = false
		}
		prefixLen := 8
		if len(m.Code) < prefixLen {
			prefixLen = len(m.Code)
		}
		logger.InfoCtx(ctx, "module summary",
			"module", i,
			"enabled", enabled,
			"verified", m.IsVerified(),
			"code_prefix", fmt.Sprintf("%x", m.Code[:prefixLen]),
		)
	}
}

// checkpoint asks the executive to persist the current protected state.
func (fw *Firmware) checkpoint(ctx context.Context) {
	resp, err := fw.serviceClient.Call(wire.CheckpointRequest(protected.MarshalState(fw.state)))
	if err != nil {
		logger.WarnCtx(ctx, "checkpoint request failed", "error", err)
		return
	}
	if !resp.Success {
		logger.WarnCtx(ctx, "checkpoint rejected", "reason", resp.Reason)
	}
}

// handleControl dispatches one decoded control request to its response,
// from the main loop goroutine so protected state never needs a mutex of
// its own.
func (fw *Firmware) handleControl(ctx context.Context, req wire.ControlRequest) wire.ControlResponse {
	switch {
	case req.Tag == wire.NoOp().Tag:
		return wire.Ok()

	case isFirmwareRequest(req):
		return fw.handleFirmwareRequest()

	case isEnableModule(req):
		return fw.handleEnableModule(ctx, req)

	case isUpdateModule(req):
		return fw.handleUpdateModule(ctx, req)

	case isPositionVelocity(req):
		return fw.forwardToExecutive(ctx, wire.ExecPositionVelocityRequest())

	case isKeplerianElements(req):
		return fw.forwardToExecutive(ctx, wire.ExecKeplerianElementsRequest())

	case isSensors(req):
		return fw.forwardToExecutive(ctx, wire.ExecSensorsRequest())

	case isManeuver(req):
		resp := fw.forwardToExecutive(ctx, wire.ExecManeuverRequest(req.Burns))
		return resp

	default:
		return req.ToFailure()
	}
}

func isFirmwareRequest(req wire.ControlRequest) bool  { return req.Tag == wire.FirmwareRequest().Tag }
func isEnableModule(req wire.ControlRequest) bool     { return req.Tag == wire.EnableModule(0, false).Tag }
func isUpdateModule(req wire.ControlRequest) bool     { return req.Tag == wire.UpdateModule(0, nil, [64]byte{}, false).Tag }
func isPositionVelocity(req wire.ControlRequest) bool { return req.Tag == wire.PositionVelocityRequest().Tag }
func isKeplerianElements(req wire.ControlRequest) bool {
	return req.Tag == wire.KeplerianElementsRequest().Tag
}
func isSensors(req wire.ControlRequest) bool { return req.Tag == wire.SensorsRequest().Tag }
func isManeuver(req wire.ControlRequest) bool { return req.Tag == wire.Maneuver(nil).Tag }

func (fw *Firmware) handleFirmwareRequest() wire.ControlResponse {
	repairs, err := fw.state.Repairs.Get()
	if err != nil {
		return wire.Failure(err.Error())
	}
	restarts, err := fw.state.Restarts.Get()
	if err != nil {
		return wire.Failure(err.Error())
	}

	events := make([]wire.EventSummary, 0, protected.EventLogSize)
	for _, e := range fw.state.Events {
		ts, msg, err := e.Get()
		if err != nil {
			continue
		}
		events = append(events, wire.EventSummary{Timestamp: ts, Message: msg})
	}

	modules := make([]wire.ModuleStatus, 0, protected.ModuleCount)
	for _, m := range fw.state.Modules {
		enabled, err := m.IsEnabled()
		if err != nil {
			enabled = false
		}
		modules = append(modules, wire.ModuleStatus{
			Enabled:      enabled,
			Verified:     m.IsVerified(),
			CodeChecksum: protected.ChecksumBytes(m.Code[:]),
		})
	}

	return wire.FirmwareResponse(repairs, restarts, events, modules)
}

func (fw *Firmware) handleEnableModule(ctx context.Context, req wire.ControlRequest) wire.ControlResponse {
	m, err := fw.state.ModuleAt(int(req.ModuleID))
	if err != nil {
		return wire.Failure(err.Error())
	}
	m.SetEnabled(req.EnableValue)
	logger.InfoCtx(ctx, "module enable changed", "module", req.ModuleID, "enabled", req.EnableValue)
	return wire.Ok()
}

func (fw *Firmware) handleUpdateModule(ctx context.Context, req wire.ControlRequest) wire.ControlResponse {
	m, err := fw.state.ModuleAt(int(req.ModuleID))
	if err != nil {
		return wire.Failure(err.Error())
	}
	if err := m.Update(nowUnix(), req.ModuleCode, req.ModuleSig); err != nil {
		return wire.Failure(err.Error())
	}
	m.SetEncoded(req.ModuleEnc)
	verified := m.VerifyCode()
	m.SetEnabled(verified)
	logger.InfoCtx(ctx, "module updated", "module", req.ModuleID, "verified", verified)
	if !verified {
		return wire.Failure("module: signature verification failed")
	}
	return wire.Ok()
}

// forwardToExecutive relays a request the orbital simulator owns the answer
// to, translating any transport failure into the spec's generic failure
// response rather than propagating a wire-level error back to ground.
func (fw *Firmware) forwardToExecutive(ctx context.Context, req wire.ExecutiveRequest) wire.ControlResponse {
	resp, err := fw.serviceClient.Call(req)
	if err != nil {
		logger.WarnCtx(ctx, "executive request failed", "error", err)
		return wire.Failure(faulterr.Wrap(faulterr.IO, "firmwareproc: executive request", err).Error())
	}
	return resp
}

func nowUnix() uint64 {
	return uint64(time.Now().Unix())
}
