package logger

import "log/slog"

// Standard field keys for structured logging across the ground-link proxy,
// the firmware main loop, and the orbital executive. Use these consistently
// so log aggregation and querying don't have to guess at key names.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Ground Link & Session
	// ========================================================================
	KeyClientIP     = "client_ip"     // Ground client IP address
	KeyConnectionID = "connection_id" // TCP connection identifier
	KeyRequestID    = "request_id"    // Control-request tag/sequence
	KeyRequestTag   = "request_tag"   // Decoded ControlRequest tag name
	KeyTeamID       = "team_id"       // Ground-control team identifier
	KeyNodeIndex    = "node_index"    // Which node a team's traffic is routed to

	// ========================================================================
	// Module & Firmware
	// ========================================================================
	KeyModuleID    = "module_id"
	KeyChecksum    = "checksum"
	KeyRepairs     = "repairs"
	KeyRestarts    = "restarts"
	KeyFaultAddr   = "fault_addr"
	KeyFaultBit    = "fault_bit"
	KeyGasUsed     = "gas_used"
	KeyCheckpoint  = "checkpoint_path"
	KeyContainerID = "container_id"

	// ========================================================================
	// Orbital Environment
	// ========================================================================
	KeyRadiation  = "radiation"
	KeyAltitudeKm = "altitude_km"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code
	KeySource     = "source"      // Data source: state, checkpoint, uplink
	KeyOperation  = "operation"   // Sub-operation type for complex operations
)

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// ----------------------------------------------------------------------------
// Ground Link & Session
// ----------------------------------------------------------------------------

// ClientIP returns a slog.Attr for the ground client's IP address.
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

// ConnectionID returns a slog.Attr for a TCP connection identifier.
func ConnectionID(id string) slog.Attr { return slog.String(KeyConnectionID, id) }

// RequestID returns a slog.Attr for a protocol-level request identifier.
func RequestID(id uint32) slog.Attr { return slog.Any(KeyRequestID, id) }

// RequestTag returns a slog.Attr for a decoded control request's tag name.
func RequestTag(tag string) slog.Attr { return slog.String(KeyRequestTag, tag) }

// TeamID returns a slog.Attr for the ground-control team identifier.
func TeamID(id uint64) slog.Attr { return slog.Uint64(KeyTeamID, id) }

// NodeIndex returns a slog.Attr for the node a team's traffic is routed to.
func NodeIndex(idx int) slog.Attr { return slog.Int(KeyNodeIndex, idx) }

// ----------------------------------------------------------------------------
// Module & Firmware
// ----------------------------------------------------------------------------

// ModuleID returns a slog.Attr for a sandbox module's index.
func ModuleID(id int) slog.Attr { return slog.Int(KeyModuleID, id) }

// Checksum returns a slog.Attr for a protected field's checksum, hex-encoded.
func Checksum(c uint64) slog.Attr { return slog.String(KeyChecksum, hexUint64(c)) }

// Repairs returns a slog.Attr for a scrub pass's repair count.
func Repairs(n uint64) slog.Attr { return slog.Uint64(KeyRepairs, n) }

// Restarts returns a slog.Attr for the firmware's checkpoint restart count.
func Restarts(n uint64) slog.Attr { return slog.Uint64(KeyRestarts, n) }

// FaultAddr returns a slog.Attr for the byte offset an injected fault hit.
func FaultAddr(addr uintptr) slog.Attr { return slog.String(KeyFaultAddr, "0x"+hexUint64(uint64(addr))) }

// FaultBit returns a slog.Attr for the bit position an injected fault flipped.
func FaultBit(bit int) slog.Attr { return slog.Int(KeyFaultBit, bit) }

// GasUsed returns a slog.Attr for the VM instruction budget a module consumed.
func GasUsed(gas uint64) slog.Attr { return slog.Uint64(KeyGasUsed, gas) }

// Checkpoint returns a slog.Attr for a checkpoint file's path.
func Checkpoint(path string) slog.Attr { return slog.String(KeyCheckpoint, path) }

// ContainerID returns a slog.Attr for the orchestrator container identifier
// a per-team firmware/executive pair is running in.
func ContainerID(id string) slog.Attr { return slog.String(KeyContainerID, id) }

// ----------------------------------------------------------------------------
// Orbital Environment
// ----------------------------------------------------------------------------

// Radiation returns a slog.Attr for the simulated radiation flux a tick saw.
func Radiation(flux float64) slog.Attr { return slog.Float64(KeyRadiation, flux) }

// AltitudeKm returns a slog.Attr for the simulated orbital altitude.
func AltitudeKm(km float64) slog.Attr { return slog.Float64(KeyAltitudeKm, km) }

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error, or an empty attr for a nil error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr { return slog.Int(KeyErrorCode, code) }

// Source returns a slog.Attr for a data source: state, checkpoint, uplink.
func Source(src string) slog.Attr { return slog.String(KeySource, src) }

// Operation returns a slog.Attr for a sub-operation type.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

func hexUint64(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}
