package firmwareproc

import (
	"net"
	"sync"
	"time"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/wire"
)

// serviceClient is a persistent Unix-domain connection to the executive's
// service socket. The spec's original three-thread design dedicates a
// separate "executive proxy" thread to this link; since the main loop is
// already the sole caller here and every round trip is short, this is
// folded into a single synchronous client the main loop calls directly,
// guarded by a mutex for clarity even though there is only ever one caller.
type serviceClient struct {
	mu   sync.Mutex
	conn net.Conn
}

func dialService() (*serviceClient, error) {
	conn, err := net.DialTimeout("unix", wire.ServiceSocketPath, ioTimeout)
	if err != nil {
		return nil, err
	}
	return &serviceClient{conn: conn}, nil
}

func (c *serviceClient) Close() error {
	return c.conn.Close()
}

// Call sends req to the executive and returns its response.
func (c *serviceClient) Call(req wire.ExecutiveRequest) (wire.ExecutiveResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	if err := wire.WriteFrame(c.conn, wire.EncodeExecutiveRequest(req)); err != nil {
		return wire.ExecutiveResponse{}, faulterr.Wrap(faulterr.IO, "firmwareproc: send executive request", err)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(ioTimeout))
	frame, err := wire.ReadFrame(c.conn)
	if err != nil {
		return wire.ExecutiveResponse{}, faulterr.Wrap(faulterr.IO, "firmwareproc: read executive response", err)
	}
	return wire.DecodeExecutiveResponse(frame)
}
