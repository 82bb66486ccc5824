package gateway

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	units "github.com/docker/go-units"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/logger"
)

// Container resource limits applied to every per-team executive, matching
// the upstream challenge's isolation envelope: enough capability to let the
// sandboxed VM's syscalls and the fault injector's process_vm_* calls work,
// but bounded CPU/memory/descriptor limits so one team cannot starve a node.
const (
	containerCPUs      = 2
	containerMemoryGiB = 1
	ulimitNProc        = 256
	ulimitNoFile       = 4096
	containerPort      = "1337/tcp"
)

const (
	containerConnectRetries = 3
	containerConnectDelay   = 5 * time.Second
)

// StartContainer removes any existing container for userID's team and
// starts a fresh one from image, publishing containerPort to teamPort on
// the host. It does not wait for the service inside to become reachable;
// callers retry the connection separately.
func StartContainer(ctx context.Context, cli *client.Client, image string, userID uint64, teamPort int) error {
	name := ContainerName(userID)
	hostname := fmt.Sprintf("team-%s", name[len("dc2021q-rad-"):])

	if err := cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true}); err != nil {
		logger.InfoCtx(ctx, "no existing container to remove", "container", name, "error", err)
	}

	portBindings, exposed, err := portSpec(teamPort)
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "gateway: build port spec", err)
	}

	resp, err := cli.ContainerCreate(ctx, &container.Config{
		Image:        image,
		Hostname:     hostname,
		ExposedPorts: exposed,
	}, &container.HostConfig{
		CapAdd:       []string{"SYS_PTRACE"},
		NanoCPUs:     containerCPUs * 1_000_000_000,
		Memory:       containerMemoryGiB << 30,
		PortBindings: portBindings,
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyDisabled,
		},
		Ulimits: []*units.Ulimit{
			{Name: "nproc", Soft: ulimitNProc, Hard: ulimitNProc},
			{Name: "nofile", Soft: ulimitNoFile, Hard: ulimitNoFile},
		},
	}, nil, nil, name)
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "gateway: create container", err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return faulterr.Wrap(faulterr.IO, "gateway: start container", err)
	}
	Metrics.GatewayNodeStarts.Inc()
	logger.InfoCtx(ctx, "started team container", "container", name, "team_port", teamPort)
	return nil
}

func portSpec(teamPort int) (nat.PortMap, nat.PortSet, error) {
	port, err := nat.NewPort("tcp", "1337")
	if err != nil {
		return nil, nil, err
	}
	bindings := nat.PortMap{
		port: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: fmt.Sprintf("%d", teamPort)}},
	}
	exposed := nat.PortSet{port: struct{}{}}
	return bindings, exposed, nil
}

// DialTeamService attempts to connect to a team's executive, either
// directly (the container is already up) or by starting it and retrying a
// bounded number of times with a fixed backoff.
func DialTeamService(ctx context.Context, cli *client.Client, image string, userID uint64) (net.Conn, error) {
	teamPort := TeamPort(userID)
	serviceAddr := fmt.Sprintf("172.17.0.1:%d", teamPort)

	if conn, err := net.DialTimeout("tcp", serviceAddr, 2*time.Second); err == nil {
		return conn, nil
	}

	if err := StartContainer(ctx, cli, image, userID, teamPort); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < containerConnectRetries; attempt++ {
		time.Sleep(containerConnectDelay)
		conn, err := net.DialTimeout("tcp", serviceAddr, 2*time.Second)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, faulterr.Wrap(faulterr.NodeUnreachable, "gateway: team service unreachable after container start", lastErr)
}
