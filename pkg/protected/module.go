package protected

import (
	"crypto/ed25519"

	"github.com/hardsat/rad/internal/faulterr"
	"github.com/hardsat/rad/internal/keys"
	"github.com/hardsat/rad/pkg/vm"
)

// CodeSize is the fixed size of a module's uploaded bytecode buffer.
const CodeSize = 4096

// UpdateCooldownSeconds is the minimum time that must elapse between two
// accepted updates to the same module.
const UpdateCooldownSeconds = 300

// Module is one of the four uploadable sandbox programs. Updated, Enabled,
// and Encoded are protected data; Verified is deliberately plain, unprotected
// state — a single bit flip there changes whether the module is allowed to
// run without being detected by the scrubber.
type Module struct {
	Updated *U64
	Enabled *U64
	Encoded *U64

	// Verified is NOT erasure coded or checksummed. It records whether
	// VerifyCode last succeeded (1) or not (0). A fault that flips this
	// field is invisible to Repair.
	Verified uint64

	Signature [64]byte
	Code      [CodeSize]byte
}

// NewModule returns an empty, disabled, unverified module.
func NewModule() *Module {
	return &Module{
		Updated: NewU64(0),
		Enabled: NewU64(0),
		Encoded: NewU64(0),
	}
}

// CanUpdate reports whether enough time has passed since the last accepted
// update for a new one to be accepted.
func (m *Module) CanUpdate(now uint64) (bool, error) {
	last, err := m.Updated.Get()
	if err != nil {
		return false, err
	}
	return now > last && now-last >= UpdateCooldownSeconds, nil
}

// Update installs new code and signature, recomputing Encoded and Updated,
// and clears Verified until VerifyCode is run again.
func (m *Module) Update(now uint64, code []byte, signature [64]byte) error {
	ok, err := m.CanUpdate(now)
	if err != nil {
		return err
	}
	if !ok {
		return faulterr.New(faulterr.ProtocolViolation, "module: update rejected, cooldown not elapsed")
	}
	if len(code) > CodeSize {
		return faulterr.New(faulterr.DataSize, "module: code exceeds buffer size")
	}
	var buf [CodeSize]byte
	copy(buf[:], code)
	m.Code = buf
	m.Signature = signature
	m.Updated.Update(now)
	m.Encoded.Update(0)
	m.Verified = 0
	return nil
}

// IsEnabled reports the protected enabled flag.
func (m *Module) IsEnabled() (bool, error) {
	v, err := m.Enabled.Get()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// SetEnabled updates the protected enabled flag.
func (m *Module) SetEnabled(enabled bool) {
	if enabled {
		m.Enabled.Update(1)
	} else {
		m.Enabled.Update(0)
	}
}

// IsEncoded reports the protected encoded flag (whether Code has passed
// through the noise-tolerant decoder already).
func (m *Module) IsEncoded() (bool, error) {
	v, err := m.Encoded.Get()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// SetEncoded updates the protected encoded flag.
func (m *Module) SetEncoded(encoded bool) {
	if encoded {
		m.Encoded.Update(1)
	} else {
		m.Encoded.Update(0)
	}
}

// IsVerified reports the unprotected verification flag exactly as stored,
// with no integrity check: this is intentional, not an oversight.
func (m *Module) IsVerified() bool {
	return m.Verified != 0
}

// VerifyCode checks Signature against Code using the compiled-in module
// signing key and records the result in the unprotected Verified field.
func (m *Module) VerifyCode() bool {
	ok := ed25519.Verify(keys.ModulePublicKey, m.Code[:], m.Signature[:])
	if ok {
		m.Verified = 1
	} else {
		m.Verified = 0
	}
	return ok
}

// Repair checks Updated's integrity but never repairs it, then repairs
// Enabled and Encoded unconditionally. A double-corrupted Updated field is
// therefore permanently unrepairable by this call: that asymmetry is
// intentional, not a bug to fix.
func (m *Module) Repair() error {
	updatedOK := m.Updated.Verify()
	if err := m.Enabled.Repair(); err != nil {
		return err
	}
	if err := m.Encoded.Repair(); err != nil {
		return err
	}
	if !updatedOK {
		return faulterr.New(faulterr.IntegrityChecksum, "module: updated field corrupted, not repaired by scrub")
	}
	return nil
}

// Execute runs the module's code in the sandbox VM if it is both verified
// and enabled, returning the bytes the program left at the front of mem
// (its size taken from r0 at Exit). A module that is not both verified and
// enabled is not an error: it simply produces no output, matching a
// disabled or unverified module being silently skipped rather than faulted.
func (m *Module) Execute(mem []byte) ([]byte, error) {
	enabled, err := m.IsEnabled()
	if err != nil {
		return nil, err
	}
	if !m.IsVerified() || !enabled {
		return nil, nil
	}
	encoded, err := m.IsEncoded()
	if err != nil {
		return nil, err
	}
	size, err := vm.ExecuteBytes(m.Code[:], mem, encoded)
	if err != nil {
		return nil, err
	}
	if size > uint64(len(mem)) {
		size = uint64(len(mem))
	}
	return mem[:size], nil
}
