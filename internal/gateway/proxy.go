package gateway

import (
	"context"
	"net"
	"time"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/netcfg"
	"github.com/hardsat/rad/internal/wire"
)

// RunProxy listens on cfg.ServerAddress and, for every connection,
// authenticates the first frame, hash-routes it to one of cfg.Nodes, and
// splices the rest of the connection to that node.
func RunProxy(ctx context.Context, cfg *netcfg.GatewayConfig) error {
	listener, err := net.Listen("tcp", cfg.ServerAddress)
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "gateway: listen", err)
	}
	defer listener.Close()
	logger.InfoCtx(ctx, "proxy listening", "address", cfg.ServerAddress, "nodes", len(cfg.Nodes))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.WarnCtx(ctx, "proxy accept failed", "error", err)
			continue
		}
		go func() {
			if err := proxyClient(ctx, cfg, conn); err != nil {
				logger.WarnCtx(ctx, "proxy client session", "remote", conn.RemoteAddr(), "error", err)
			}
		}()
	}
}

func proxyClient(ctx context.Context, cfg *netcfg.GatewayConfig, client net.Conn) error {
	defer client.Close()

	ctx = logger.WithContext(ctx, logger.NewLogContext(remoteIP(client)))

	_ = client.SetReadDeadline(time.Now().Add(ioTimeout))
	frame, err := wire.ReadFrame(client)
	if err != nil {
		return err
	}
	req, err := wire.DecodeControlRequest(frame)
	if err != nil {
		return err
	}

	if !req.IsAuthenticate() {
		logger.WarnCtx(ctx, "proxy expected authenticate request")
		return writeResponse(client, req.ToFailure())
	}
	ctx = withRequestTag(ctx, "authenticate")

	userID, err := decodeAuthRequest(req)
	if err != nil {
		Metrics.GatewayAuthAttempts.WithLabelValues("rejected").Inc()
		logger.WarnCtx(ctx, "proxy authentication failed", "error", err)
		return writeResponse(client, wire.AuthenticateResponse(false, false))
	}

	idx := NodeIndex(userID, len(cfg.Nodes))
	ctx = withTeam(ctx, userID, idx)
	nodeAddr := cfg.Nodes[idx]
	node, err := net.DialTimeout("tcp", nodeAddr, ioTimeout)
	if err != nil {
		Metrics.GatewayAuthAttempts.WithLabelValues("unreachable").Inc()
		logger.WarnCtx(ctx, "proxy unable to reach node", "node", nodeAddr, "error", err)
		return writeResponse(client, wire.AuthenticateResponse(true, false))
	}
	defer node.Close()
	Metrics.GatewayAuthAttempts.WithLabelValues("routed").Inc()
	logger.InfoCtx(ctx, "proxy routed team to node", "node", nodeAddr)

	if err := wire.WriteFrame(node, frame); err != nil {
		return err
	}

	return Splice(client, node)
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}

func withRequestTag(ctx context.Context, tag string) context.Context {
	lc := logger.FromContext(ctx).WithRequestTag(tag)
	return logger.WithContext(ctx, lc)
}

func withTeam(ctx context.Context, teamID uint64, nodeIndex int) context.Context {
	lc := logger.FromContext(ctx).WithTeam(teamID, nodeIndex)
	return logger.WithContext(ctx, lc)
}

// decodeAuthRequest unseals req's token and resolves the team identity
// carried inside the enclosed, unverified JWT.
func decodeAuthRequest(req wire.ControlRequest) (uint64, error) {
	plain, err := Unseal(req.AuthToken, req.AuthNonce)
	if err != nil {
		return 0, err
	}
	return ExtractUserID(string(plain))
}

func writeResponse(conn net.Conn, resp wire.ControlResponse) error {
	_ = conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	return wire.WriteFrame(conn, wire.EncodeControlResponse(resp))
}
