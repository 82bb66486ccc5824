package gateway

import "github.com/hardsat/rad/pkg/telemetry"

// Metrics is the gateway tier's shared counter set. Both RunProxy and
// RunNode run in the same binary family (one process per role) so a single
// package-level registry is sufficient; nothing here is per-connection
// state.
var Metrics = telemetry.New("rad_gateway")
