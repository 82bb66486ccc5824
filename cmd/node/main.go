// Command node is the C5 entrypoint for node mode: it re-authenticates
// ground clients against an external service and lifecycles a per-team
// containerized executive.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hardsat/rad/internal/gateway"
	"github.com/hardsat/rad/internal/logger"
	"github.com/hardsat/rad/internal/netcfg"
)

const debugListenAddress = "127.0.0.1:9103"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "node",
		Short: "Run the per-team container lifecycle and traffic splicing node",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := netcfg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", gateway.Metrics.Handler())
				if err := http.ListenAndServe(debugListenAddress, mux); err != nil {
					logger.Warn("debug metrics listener stopped", "error", err)
				}
			}()

			return gateway.RunNode(ctx, cfg)
		},
	}
	root.Flags().StringVar(&configPath, "config_path", "node.toml", "path to the node TOML configuration file")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
