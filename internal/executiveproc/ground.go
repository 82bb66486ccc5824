package executiveproc

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/wire"
)

const groundIOTimeout = 10 * time.Second

// GroundServer is the executive's TCP ground-control listener. A
// connection reaching here has already been authenticated by the proxy and
// node tiers, so Authenticate is refused here as a protocol error, Reset is
// always refused, NoOp is answered here without reaching the firmware, and
// every other request is proxied one-for-one to the firmware's command
// socket.
type GroundServer struct {
	address string
}

// NewGroundServer builds a GroundServer bound to address (normally
// ":1337").
func NewGroundServer(address string) *GroundServer {
	return &GroundServer{address: address}
}

// Run listens until ctx is cancelled.
func (g *GroundServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", g.address)
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "executiveproc: listen ground port", err)
	}
	defer listener.Close()
	logger.InfoCtx(ctx, "ground control listening", "address", g.address)

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
			logger.WarnCtx(ctx, "ground accept failed", "error", err)
			continue
		}
		connID := uuid.NewString()
		go g.serve(ctx, connID, conn)
	}
}

func (g *GroundServer) serve(ctx context.Context, connID string, ground net.Conn) {
	defer ground.Close()

	firmware, err := net.DialTimeout("unix", wire.CommandSocketPath, groundIOTimeout)
	if err != nil {
		logger.WarnCtx(ctx, "ground unable to reach firmware", "conn", connID, "error", err)
		return
	}
	defer firmware.Close()

	for {
		_ = ground.SetReadDeadline(time.Now().Add(groundIOTimeout))
		frame, err := wire.ReadFrame(ground)
		if err != nil {
			return
		}
		req, err := wire.DecodeControlRequest(frame)
		if err != nil {
			logger.WarnCtx(ctx, "ground decode failed", "conn", connID, "error", err)
			return
		}

		switch {
		case req.IsAuthenticate():
			logger.WarnCtx(ctx, "ground received authenticate past the gateway tier", "conn", connID)
			_ = writeGroundResponse(ground, wire.Failure("protocol violation: authenticate not valid at ground control"))
			return

		case req.Tag == wire.Reset().Tag:
			if err := writeGroundResponse(ground, wire.Failure("reset is not permitted")); err != nil {
				return
			}
			continue

		case req.Tag == wire.NoOp().Tag:
			if err := writeGroundResponse(ground, wire.Ok()); err != nil {
				return
			}
			continue

		case req.Tag == wire.Disconnect().Tag:
			_ = writeGroundResponse(ground, wire.Ok())
			return

		default:
			resp, err := forward(firmware, frame)
			if err != nil {
				logger.WarnCtx(ctx, "ground forward to firmware failed", "conn", connID, "error", err)
				return
			}
			if err := writeGroundResponse(ground, resp); err != nil {
				return
			}
		}
	}
}

func forward(firmware net.Conn, frame []byte) (wire.ControlResponse, error) {
	_ = firmware.SetWriteDeadline(time.Now().Add(groundIOTimeout))
	if err := wire.WriteFrame(firmware, frame); err != nil {
		return wire.ControlResponse{}, err
	}
	_ = firmware.SetReadDeadline(time.Now().Add(groundIOTimeout))
	respFrame, err := wire.ReadFrame(firmware)
	if err != nil {
		return wire.ControlResponse{}, err
	}
	return wire.DecodeControlResponse(respFrame)
}

func writeGroundResponse(conn net.Conn, resp wire.ControlResponse) error {
	_ = conn.SetWriteDeadline(time.Now().Add(groundIOTimeout))
	return wire.WriteFrame(conn, wire.EncodeControlResponse(resp))
}
