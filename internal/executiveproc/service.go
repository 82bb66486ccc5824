package executiveproc

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/wire"
	"github.com/hardsat/rad/pkg/orbit"
)

const serviceIOTimeout = 10 * time.Second

// ServiceServer answers the firmware's requests over the Unix service
// socket: checkpoint persistence and every orbital-simulator query.
type ServiceServer struct {
	checkpointPath string
	sim            *orbit.Simulator
}

// NewServiceServer builds a ServiceServer backed by sim, persisting
// checkpoints to checkpointPath.
func NewServiceServer(checkpointPath string, sim *orbit.Simulator) *ServiceServer {
	return &ServiceServer{checkpointPath: checkpointPath, sim: sim}
}

// Run listens on wire.ServiceSocketPath until ctx is cancelled.
func (s *ServiceServer) Run(ctx context.Context) error {
	_ = os.Remove(wire.ServiceSocketPath)
	listener, err := net.Listen("unix", wire.ServiceSocketPath)
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "executiveproc: listen service socket", err)
	}
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.WarnCtx(ctx, "service socket accept failed", "error", err)
			continue
		}
		go s.serve(ctx, conn)
	}
}

func (s *ServiceServer) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(serviceIOTimeout))
		frame, err := wire.ReadFrame(conn)
		if err != nil {
			return
		}
		req, err := wire.DecodeExecutiveRequest(frame)
		if err != nil {
			logger.WarnCtx(ctx, "service socket decode failed", "error", err)
			return
		}

		resp := s.handle(ctx, req)

		_ = conn.SetWriteDeadline(time.Now().Add(serviceIOTimeout))
		if err := wire.WriteFrame(conn, wire.EncodeExecutiveResponse(resp)); err != nil {
			return
		}
	}
}

func (s *ServiceServer) handle(ctx context.Context, req wire.ExecutiveRequest) wire.ExecutiveResponse {
	switch {
	case req.Tag == wire.CheckpointRequest(nil).Tag:
		if err := writeCheckpoint(s.checkpointPath, req.CheckpointData); err != nil {
			logger.WarnCtx(ctx, "checkpoint write failed", "error", err)
			return wire.Failure(err.Error())
		}
		return wire.Ok()

	case req.Tag == wire.ExecPositionVelocityRequest().Tag:
		snap := s.sim.Snapshot()
		return wire.PositionVelocityResponse(snap.State.Position, snap.State.Velocity)

	case req.Tag == wire.ExecKeplerianElementsRequest().Tag:
		snap := s.sim.Snapshot()
		el := orbit.ToElements(snap.State)
		return wire.KeplerianElementsResponse(el.Semimajor, el.Eccentricity, el.Inclination, el.RAAN, el.ArgPerigee, el.TrueAnomaly, snap.State.ElapsedS)

	case req.Tag == wire.ExecSensorsRequest().Tag:
		snap := s.sim.Snapshot()
		return wire.SensorsResponse(snap.State.FuelMass, snap.Radiation)

	case req.Tag == wire.ExecManeuverRequest(nil).Tag:
		burns := make([]orbit.Burn, 0, len(req.Burns))
		for _, b := range req.Burns {
			burns = append(burns, orbit.Burn{
				StartSec: b.Start,
				LengthS:  b.Length,
				Thrust:   b.Thrust,
				Vector:   b.Vector,
			})
		}
		select {
		case s.sim.Burns <- burns:
		default:
			<-s.sim.Burns
			s.sim.Burns <- burns
		}
		return wire.Ok()

	default:
		return wire.Failure("executiveproc: unknown executive request")
	}
}
