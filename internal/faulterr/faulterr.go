// Package faulterr defines the error taxonomy shared by the protected-state,
// firmware, executive, and gateway layers.
package faulterr

import "fmt"

// Code identifies the class of failure, independent of the wrapped message.
type Code int

const (
	// IntegrityChecksum indicates a protected datum's checksum did not match its shards.
	IntegrityChecksum Code = iota + 1
	// IntegrityUnrepairable indicates no single-shard reconstruction produced a valid checksum.
	IntegrityUnrepairable
	// EccReconstruct indicates the Reed-Solomon decoder itself failed.
	EccReconstruct
	// DataSize indicates a caller supplied a buffer of the wrong size.
	DataSize
	// ProtocolViolation indicates a wire message was invalid for its context.
	ProtocolViolation
	// ChannelSend indicates an internal channel send failed (receiver gone).
	ChannelSend
	// ChannelReceive indicates an internal channel receive failed (sender gone).
	ChannelReceive
	// LockPoison indicates a mutex was observed in a poisoned/inconsistent state.
	LockPoison
	// IO wraps a generic I/O failure.
	IO
	// Time wraps a clock-related failure.
	Time
	// VMError indicates the sandbox VM faulted.
	VMError
	// WatchdogExpired indicates the firmware watchdog was not kicked in time.
	WatchdogExpired
	// AuthReject indicates ground-client authentication failed.
	AuthReject
	// NodeUnreachable indicates a node could not route to a team's executive.
	NodeUnreachable
)

func (c Code) String() string {
	switch c {
	case IntegrityChecksum:
		return "IntegrityChecksum"
	case IntegrityUnrepairable:
		return "IntegrityUnrepairable"
	case EccReconstruct:
		return "EccReconstruct"
	case DataSize:
		return "DataSize"
	case ProtocolViolation:
		return "ProtocolViolation"
	case ChannelSend:
		return "ChannelSend"
	case ChannelReceive:
		return "ChannelReceive"
	case LockPoison:
		return "LockPoison"
	case IO:
		return "Io"
	case Time:
		return "Time"
	case VMError:
		return "VmError"
	case WatchdogExpired:
		return "WatchdogExpired"
	case AuthReject:
		return "AuthReject"
	case NodeUnreachable:
		return "NodeUnreachable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Error is the concrete error type carried through the system; every
// propagated failure names its Code so callers can branch on taxonomy
// instead of string-matching messages.
type Error struct {
	Code    Code
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// New constructs an Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs an Error that carries an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Wrapped: cause}
}

// Is reports whether err is a faulterr.Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if fe, ok := err.(*Error); ok {
			e = fe
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Code == code
}
