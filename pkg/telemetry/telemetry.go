// Package telemetry exposes the system's Prometheus counters: firmware
// repairs/restarts, executive fault-injection activity, and gateway
// authentication outcomes. Each process that wants metrics constructs a
// Registry and serves its Handler on an internal debug listener; the
// constructors never panic on double-registration so tests can build more
// than one Registry in a single process.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric this system publishes, each backed by its
// own prometheus.Registry so that firmware, executive, and gateway
// processes never collide on metric names when scraped from the same host.
type Registry struct {
	reg *prometheus.Registry

	FirmwareRepairs  prometheus.Counter
	FirmwareRestarts prometheus.Counter
	ModuleExecutions *prometheus.CounterVec
	ModuleFaults     *prometheus.CounterVec

	FaultInjections prometheus.Counter
	FaultFailures   prometheus.Counter

	GatewayAuthAttempts *prometheus.CounterVec
	GatewayNodeStarts   prometheus.Counter
}

// New builds a Registry with all metrics registered under namespace, e.g.
// "rad_firmware", "rad_executive", or "rad_gateway".
func New(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		FirmwareRepairs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrubber_repairs_total",
			Help:      "Total protected-datum shards repaired by the scrubber.",
		}),
		FirmwareRestarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoint_restarts_total",
			Help:      "Total times firmware state was reloaded from a checkpoint.",
		}),
		ModuleExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_executions_total",
			Help:      "Total sandbox module execution attempts by module id.",
		}, []string{"module_id"}),
		ModuleFaults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_faults_total",
			Help:      "Total sandbox module execution failures by module id.",
		}, []string{"module_id"}),
		FaultInjections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fault_injections_total",
			Help:      "Total bit flips injected into firmware protected state.",
		}),
		FaultFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fault_injection_failures_total",
			Help:      "Total fault-injection attempts that failed to read or write target memory.",
		}),
		GatewayAuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_auth_attempts_total",
			Help:      "Total ground-client authentication attempts by outcome.",
		}, []string{"outcome"}),
		GatewayNodeStarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_node_container_starts_total",
			Help:      "Total per-team executive containers started by a node.",
		}),
	}
}

// Handler returns an http.Handler serving this registry's metrics in the
// Prometheus exposition format, suitable for mounting on an internal debug
// listener at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
