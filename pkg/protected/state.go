package protected

import "github.com/hardsat/rad/internal/faulterr"

// EventLogSize is the number of ring-buffer slots kept for logged events.
const EventLogSize = 32

// ModuleCount is the fixed number of uploadable sandbox modules.
const ModuleCount = 4

// State is the firmware's entire protected memory region: a ring buffer of
// logged events, the four sandbox modules, and bookkeeping counters. It is
// the unit the executive checkpoints and the fault injector targets.
type State struct {
	Repairs    *U64
	Restarts   *U64
	EventIndex *U64
	Events     [EventLogSize]*Event
	Modules    [ModuleCount]*Module
}

// New returns a freshly initialised, all-zero protected state.
func New() *State {
	s := &State{
		Repairs:    NewU64(0),
		Restarts:   NewU64(0),
		EventIndex: NewU64(0),
	}
	for i := range s.Events {
		s.Events[i] = NewEvent(0, nil)
	}
	for i := range s.Modules {
		s.Modules[i] = NewModule()
	}
	return s
}

// Log writes message into the next ring-buffer slot, advancing EventIndex.
func (s *State) Log(timestamp uint64, message []byte) error {
	idx, err := s.EventIndex.Get()
	if err != nil {
		return err
	}
	slot := idx % EventLogSize
	s.Events[slot] = NewEvent(timestamp, message)
	return s.EventIndex.Increment(1)
}

// Scrub verifies every protected field in the state and repairs whatever
// fails, returning the number of fields repaired. It never touches Module's
// unprotected Verified field, since nothing protects it.
func (s *State) Scrub() (int, error) {
	repaired := 0
	check := func(verify func() bool, repair func() error) error {
		if verify() {
			return nil
		}
		if err := repair(); err != nil {
			return err
		}
		repaired++
		return nil
	}

	if err := check(s.Repairs.Verify, s.Repairs.Repair); err != nil {
		return repaired, err
	}
	if err := check(s.Restarts.Verify, s.Restarts.Repair); err != nil {
		return repaired, err
	}
	if err := check(s.EventIndex.Verify, s.EventIndex.Repair); err != nil {
		return repaired, err
	}
	for _, e := range s.Events {
		if err := check(e.Verify, e.Repair); err != nil {
			return repaired, err
		}
	}
	for _, m := range s.Modules {
		alreadyOK := m.Updated.Verify() && m.Enabled.Verify() && m.Encoded.Verify()
		if alreadyOK {
			continue
		}
		if err := m.Repair(); err != nil {
			// Updated may remain corrupted even after Repair returns this
			// error; Enabled and Encoded are still attempted and counted.
			repaired++
			continue
		}
		repaired++
	}
	if repaired > 0 {
		if err := s.Repairs.Increment(uint64(repaired)); err != nil {
			return repaired, err
		}
	}
	return repaired, nil
}

// LoadCheckpoint restores bookkeeping invariants a reloaded state must hold:
// the restart counter advances, every module is forced back to disabled so
// a checkpoint can never resurrect a module that was running at the moment
// of the fault that triggered the restart, and Verified is recomputed from
// the stored signature rather than assumed.
func (s *State) LoadCheckpoint() error {
	if err := s.Restarts.Increment(1); err != nil {
		return err
	}
	for _, m := range s.Modules {
		m.VerifyCode()
		m.SetEnabled(false)
	}
	return nil
}

// ModuleAt returns the module at the given index, bounds-checked.
func (s *State) ModuleAt(index int) (*Module, error) {
	if index < 0 || index >= ModuleCount {
		return nil, faulterr.New(faulterr.DataSize, "state: module index out of range")
	}
	return s.Modules[index], nil
}
