package firmwareproc

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/wire"
)

func listenControl() (net.Listener, error) {
	_ = os.Remove(wire.CommandSocketPath)
	return net.Listen("unix", wire.CommandSocketPath)
}

func (fw *Firmware) acceptControlConns(ctx context.Context, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.WarnCtx(ctx, "command socket accept failed", "error", err)
			continue
		}
		go fw.serveControlConn(ctx, conn)
	}
}

// invalidAtFirmware are the request tags the spec says must never reach the
// firmware directly: they are handled by the proxy/node or executive tiers
// upstream of the command socket.
func invalidAtFirmware(tag byte) bool {
	req := wire.ControlRequest{Tag: tag}
	return req.IsAuthenticate() || tag == wire.Reset().Tag || tag == wire.NoOp().Tag || tag == wire.Disconnect().Tag
}

func (fw *Firmware) serveControlConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(ioTimeout))
		frame, err := wire.ReadFrame(conn)
		if err != nil {
			return
		}
		req, err := wire.DecodeControlRequest(frame)
		if err != nil {
			logger.WarnCtx(ctx, "command socket decode failed", "error", err)
			return
		}

		if invalidAtFirmware(req.Tag) {
			logger.WarnCtx(ctx, "command socket received invalid request tag, dropping connection", "tag", req.Tag)
			_ = writeControlResponse(conn, faulterr.New(faulterr.ProtocolViolation, "firmwareproc: invalid request at firmware").Error(), nil)
			return
		}

		job := controlJob{req: req, reply: make(chan wire.ControlResponse, 1)}
		select {
		case fw.controlReqCh <- job:
		case <-ctx.Done():
			return
		}

		select {
		case resp := <-job.reply:
			if err := writeControlResponse(conn, "", &resp); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeControlResponse(conn net.Conn, failureReason string, resp *wire.ControlResponse) error {
	out := wire.Failure(failureReason)
	if resp != nil {
		out = *resp
	}
	_ = conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	return wire.WriteFrame(conn, wire.EncodeControlResponse(out))
}
