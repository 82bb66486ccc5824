package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/docker/docker/client"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/netcfg"
	"github.com/hardsat/rad/internal/wire"
)

// authCheckTimeout bounds the external HTTP authentication call per spec §5.
const authCheckTimeout = 5 * time.Second

// RunNode listens on cfg.ServerAddress and, for every connection,
// re-authenticates the token against the external auth service, then
// ensures a per-team containerized executive is running before splicing.
func RunNode(ctx context.Context, cfg *netcfg.GatewayConfig) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "gateway: create docker client", err)
	}
	defer cli.Close()

	listener, err := net.Listen("tcp", cfg.ServerAddress)
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "gateway: listen", err)
	}
	defer listener.Close()
	logger.InfoCtx(ctx, "node listening", "address", cfg.ServerAddress, "service_image", cfg.ServiceImage)

	httpClient := &http.Client{Timeout: authCheckTimeout}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.WarnCtx(ctx, "node accept failed", "error", err)
			continue
		}
		go func() {
			if err := nodeClient(ctx, cfg, cli, httpClient, conn); err != nil {
				logger.WarnCtx(ctx, "node client session", "remote", conn.RemoteAddr(), "error", err)
			}
		}()
	}
}

func nodeClient(ctx context.Context, cfg *netcfg.GatewayConfig, cli *client.Client, httpClient *http.Client, client net.Conn) error {
	defer client.Close()

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
		logger.WarnCtx(ctx, "node expected authenticate request", "remote", client.RemoteAddr())
		return writeResponse(client, req.ToFailure())
	}

	plain, err := Unseal(req.AuthToken, req.AuthNonce)
	if err != nil {
		Metrics.GatewayAuthAttempts.WithLabelValues("rejected").Inc()
		logger.WarnCtx(ctx, "node unseal failed", "remote", client.RemoteAddr(), "error", err)
		return writeResponse(client, wire.AuthenticateResponse(false, false))
	}
	token := string(plain)

	userID, err := ExtractUserID(token)
	if err != nil {
		Metrics.GatewayAuthAttempts.WithLabelValues("rejected").Inc()
		logger.WarnCtx(ctx, "node token decode failed", "remote", client.RemoteAddr(), "error", err)
		return writeResponse(client, wire.AuthenticateResponse(false, false))
	}

	authenticated, err := checkExternalAuth(ctx, httpClient, cfg.AuthURL, token)
	if err != nil || !authenticated {
		Metrics.GatewayAuthAttempts.WithLabelValues("rejected").Inc()
		logger.InfoCtx(ctx, "node external auth rejected", "remote", client.RemoteAddr(), "user_id", userID, "error", err)
		return writeResponse(client, wire.AuthenticateResponse(false, false))
	}

	service, err := DialTeamService(ctx, cli, cfg.ServiceImage, userID)
	if err != nil {
		Metrics.GatewayAuthAttempts.WithLabelValues("unreachable").Inc()
		logger.WarnCtx(ctx, "node unable to reach team service", "user_id", userID, "error", err)
		return writeResponse(client, wire.AuthenticateResponse(true, false))
	}
	defer service.Close()
	Metrics.GatewayAuthAttempts.WithLabelValues("connected").Inc()

	if err := writeResponse(client, wire.AuthenticateResponse(true, true)); err != nil {
		return err
	}

	return Splice(client, service)
}

// checkExternalAuth performs the node's second authentication factor: a GET
// against the team matchmaking service, where any 2xx response is treated
// as authenticated.
func checkExternalAuth(ctx context.Context, httpClient *http.Client, authURL, token string) (bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, authCheckTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s", authURL, token)
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return false, faulterr.Wrap(faulterr.AuthReject, "gateway: build auth request", err)
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return false, faulterr.Wrap(faulterr.AuthReject, "gateway: external auth request", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
