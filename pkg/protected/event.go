package protected

// MaxMessageSize bounds a single logged event's message payload. It must stay
// even so the message splits cleanly into two shards.
const MaxMessageSize = 64

// Event is a protected log entry: a timestamp and a fixed-size message, each
// independently erasure coded. A single corrupted shard in either field is
// repairable without losing the other.
type Event struct {
	Timestamp *U64
	Message   *Bytes
}

// NewEvent builds a freshly encoded event. message is zero-padded or
// truncated to MaxMessageSize bytes.
func NewEvent(timestamp uint64, message []byte) *Event {
	buf := make([]byte, MaxMessageSize)
	n := copy(buf, message)
	_ = n
	mb, err := NewBytes(buf)
	if err != nil {
		panic("protected: event message buffer is not even-lengthed: " + err.Error())
	}
	return &Event{
		Timestamp: NewU64(timestamp),
		Message:   mb,
	}
}

// Verify reports whether both fields pass their independent checksums.
func (e *Event) Verify() bool {
	return e.Timestamp.Verify() && e.Message.Verify()
}

// Repair repairs each field independently; a corrupted shard in one field
// does not block repair of the other.
func (e *Event) Repair() error {
	var errs []error
	if !e.Timestamp.Verify() {
		if err := e.Timestamp.Repair(); err != nil {
			errs = append(errs, err)
		}
	}
	if !e.Message.Verify() {
		if err := e.Message.Repair(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Get returns the decoded timestamp and message, repairing first if needed.
func (e *Event) Get() (uint64, []byte, error) {
	ts, err := e.Timestamp.Get()
	if err != nil {
		return 0, nil, err
	}
	msg, err := e.Message.Get()
	if err != nil {
		return 0, nil, err
	}
	return ts, msg, nil
}
