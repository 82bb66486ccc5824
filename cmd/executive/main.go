// Command executive is the C4 entrypoint: it supervises the firmware
// child process, injects radiation-driven bit flips, hosts the orbital
// simulator, and exposes the ground-control TCP port.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hardsat/rad/internal/executiveproc"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/wire"
)

const debugListenAddress = "127.0.0.1:9101"

func main() {
	firmwareBinary := flag.String("firmware", "./firmware", "path to the firmware binary to supervise")
	groundAddress := flag.String("ground_address", ":1337", "ground-control TCP listen address")
	checkpointPath := flag.String("checkpoint_path", wire.CheckpointPath, "path to the firmware checkpoint file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := executiveproc.New(executiveproc.Config{
		FirmwareBinary: *firmwareBinary,
		GroundAddress:  *groundAddress,
		CheckpointPath: *checkpointPath,
	})

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", exec.Metrics.Handler())
		if err := http.ListenAndServe(debugListenAddress, mux); err != nil {
			logger.Warn("debug metrics listener stopped", "error", err)
		}
	}()

	if err := exec.Run(ctx); err != nil {
		logger.Error("executive exited with error", "error", err)
		os.Exit(1)
	}
}
