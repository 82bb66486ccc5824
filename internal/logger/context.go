package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for a single ground
// control-socket request: which team it came from, which node is handling
// it, and which control request tag it decoded to.
type LogContext struct {
	TraceID    string // OpenTelemetry trace ID
	SpanID     string // OpenTelemetry span ID
	TeamID     uint64 // Ground-control team identifier
	NodeIndex  int    // Node this team's traffic is routed to
	RequestTag string // Decoded ControlRequest tag name
	ClientIP   string // Ground client IP address (without port)
	StartTime  time.Time
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:    lc.TraceID,
		SpanID:     lc.SpanID,
		TeamID:     lc.TeamID,
		NodeIndex:  lc.NodeIndex,
		RequestTag: lc.RequestTag,
		ClientIP:   lc.ClientIP,
		StartTime:  lc.StartTime,
	}
}

// WithRequestTag returns a copy with the request tag set
func (lc *LogContext) WithRequestTag(tag string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.RequestTag = tag
	}
	return clone
}

// WithTeam returns a copy with the team and routed node set
func (lc *LogContext) WithTeam(teamID uint64, nodeIndex int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TeamID = teamID
		clone.NodeIndex = nodeIndex
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
