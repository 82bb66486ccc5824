// Command proxy is the C5 entrypoint for proxy mode: it authenticates
// ground clients and hash-routes them to a node.
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

const debugListenAddress = "127.0.0.1:9102"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "proxy",
		Short: "Run the ground-facing authentication and routing proxy",
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

			return gateway.RunProxy(ctx, cfg)
		},
	}
	root.Flags().StringVar(&configPath, "config_path", "proxy.toml", "path to the proxy TOML configuration file")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
