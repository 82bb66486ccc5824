// Command firmware is the C3 entrypoint: it owns the protected state and
// runs until the watchdog or a fatal control error terminates it, relying
// on the executive to respawn it from checkpoint.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hardsat/rad/internal/firmwareproc"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/wire"
)

const debugListenAddress = "127.0.0.1:9100"

func main() {
	checkpointPath := wire.CheckpointPath
	if len(os.Args) > 1 {
		checkpointPath = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw := firmwareproc.New(checkpointPath)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", fw.Metrics().Handler())
		if err := http.ListenAndServe(debugListenAddress, mux); err != nil {
			logger.Warn("debug metrics listener stopped", "error", err)
		}
	}()

	if err := fw.Run(ctx); err != nil {
		logger.Error("firmware exited with error", "error", err)
		os.Exit(1)
	}
}
