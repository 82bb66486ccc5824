package wire

import "github.com/hardsat/rad/internal/faulterr"

// Burn describes a single finite-duration thrust maneuver, scheduled to
// begin Start seconds into the mission and lasting Length seconds.
type Burn struct {
	Start   uint64
	Length  uint8
	Thrust  float64
	Vector  [3]float64
}

func (b *Burn) encode(e *encoder) {
	e.u64(b.Start)
	e.u8(b.Length)
	e.f64(b.Thrust)
	e.f64(b.Vector[0])
	e.f64(b.Vector[1])
	e.f64(b.Vector[2])
}

func decodeBurn(d *decoder) (Burn, error) {
	var b Burn
	var err error
	if b.Start, err = d.u64(); err != nil {
		return b, err
	}
	lenByte, err := d.byte()
	if err != nil {
		return b, err
	}
	b.Length = lenByte
	if b.Thrust, err = d.f64(); err != nil {
		return b, err
	}
	for i := range b.Vector {
		if b.Vector[i], err = d.f64(); err != nil {
			return b, err
		}
	}
	return b, nil
}

func encodeBurns(e *encoder, burns []Burn) {
	e.u64(uint64(len(burns)))
	for i := range burns {
		burns[i].encode(e)
	}
}

func decodeBurns(d *decoder) ([]Burn, error) {
	n, err := d.u64()
	if err != nil {
		return nil, err
	}
	burns := make([]Burn, 0, n)
	for i := uint64(0); i < n; i++ {
		b, err := decodeBurn(d)
		if err != nil {
			return nil, err
		}
		burns = append(burns, b)
	}
	return burns, nil
}

// Control request tags, sent from a ground client or the executive's proxy
// to the firmware's command socket.
const (
	tagCtlNoOp = iota + 1
	tagCtlAuthenticate
	tagCtlReset
	tagCtlFirmware
	tagCtlPositionVelocity
	tagCtlKeplerianElements
	tagCtlSensors
	tagCtlEnableModule
	tagCtlUpdateModule
	tagCtlManeuver
	tagCtlDisconnect
)

// ControlRequest is a tagged union of every request the control channel
// accepts. Exactly one of the typed fields is meaningful, selected by Tag.
type ControlRequest struct {
	Tag byte

	AuthToken   []byte
	AuthNonce   []byte
	ModuleID    uint8
	ModuleCode  []byte
	ModuleSig   [64]byte
	ModuleEnc   bool
	EnableValue bool
	Burns       []Burn
}

func NoOp() ControlRequest    { return ControlRequest{Tag: tagCtlNoOp} }
func Reset() ControlRequest   { return ControlRequest{Tag: tagCtlReset} }
func FirmwareRequest() ControlRequest { return ControlRequest{Tag: tagCtlFirmware} }
func Disconnect() ControlRequest { return ControlRequest{Tag: tagCtlDisconnect} }
func PositionVelocityRequest() ControlRequest {
	return ControlRequest{Tag: tagCtlPositionVelocity}
}
func KeplerianElementsRequest() ControlRequest {
	return ControlRequest{Tag: tagCtlKeplerianElements}
}
func SensorsRequest() ControlRequest { return ControlRequest{Tag: tagCtlSensors} }

func Authenticate(token, nonce []byte) ControlRequest {
	return ControlRequest{Tag: tagCtlAuthenticate, AuthToken: token, AuthNonce: nonce}
}

// IsAuthenticate reports whether req is an Authenticate request, the only
// request the proxy tier is allowed to see as a connection's first frame.
func (req ControlRequest) IsAuthenticate() bool { return req.Tag == tagCtlAuthenticate }

func EnableModule(id uint8, enable bool) ControlRequest {
	return ControlRequest{Tag: tagCtlEnableModule, ModuleID: id, EnableValue: enable}
}

func UpdateModule(id uint8, code []byte, sig [64]byte, encoded bool) ControlRequest {
	return ControlRequest{Tag: tagCtlUpdateModule, ModuleID: id, ModuleCode: code, ModuleSig: sig, ModuleEnc: encoded}
}

func Maneuver(burns []Burn) ControlRequest {
	return ControlRequest{Tag: tagCtlManeuver, Burns: burns}
}

// EncodeControlRequest serialises req into its wire representation.
func EncodeControlRequest(req ControlRequest) []byte {
	e := &encoder{}
	e.byte(req.Tag)
	switch req.Tag {
	case tagCtlAuthenticate:
		e.bytes(req.AuthToken)
		e.bytes(req.AuthNonce)
	case tagCtlEnableModule:
		e.u8(req.ModuleID)
		e.bool(req.EnableValue)
	case tagCtlUpdateModule:
		e.u8(req.ModuleID)
		e.bytes(req.ModuleCode)
		e.fixed(req.ModuleSig[:])
		e.bool(req.ModuleEnc)
	case tagCtlManeuver:
		encodeBurns(e, req.Burns)
	}
	return e.buf.Bytes()
}

// DecodeControlRequest parses a control request frame.
func DecodeControlRequest(data []byte) (ControlRequest, error) {
	d := newDecoder(data)
	tag, err := d.byte()
	if err != nil {
		return ControlRequest{}, err
	}
	req := ControlRequest{Tag: tag}
	switch tag {
	case tagCtlNoOp, tagCtlReset, tagCtlFirmware, tagCtlPositionVelocity, tagCtlKeplerianElements, tagCtlSensors, tagCtlDisconnect:
	case tagCtlAuthenticate:
		if req.AuthToken, err = d.bytes(); err != nil {
			return req, err
		}
		if req.AuthNonce, err = d.bytes(); err != nil {
			return req, err
		}
	case tagCtlEnableModule:
		if req.ModuleID, err = d.byte(); err != nil {
			return req, err
		}
		if req.EnableValue, err = d.bool(); err != nil {
			return req, err
		}
	case tagCtlUpdateModule:
		if req.ModuleID, err = d.byte(); err != nil {
			return req, err
		}
		if req.ModuleCode, err = d.bytes(); err != nil {
			return req, err
		}
		sig, err := d.fixed(64)
		if err != nil {
			return req, err
		}
		copy(req.ModuleSig[:], sig)
		if req.ModuleEnc, err = d.bool(); err != nil {
			return req, err
		}
	case tagCtlManeuver:
		if req.Burns, err = decodeBurns(d); err != nil {
			return req, err
		}
	default:
		return req, faulterr.New(faulterr.ProtocolViolation, "wire: unknown control request tag")
	}
	return req, nil
}

// Control response tags.
const (
	tagRespOk = iota + 1
	tagRespFailure
	tagRespAuthenticate
	tagRespFirmware
	tagRespPositionVelocity
	tagRespKeplerianElements
	tagRespSensors
	tagRespCustom
)

// ModuleStatus summarises one of the four sandbox modules for a Firmware
// response: whether it is currently runnable and whether its signature was
// last found valid, plus a checksum of its code buffer so ground control can
// detect an in-place tamper without downloading the whole 4096-byte body.
type ModuleStatus struct {
	Enabled       bool
	Verified      bool
	CodeChecksum  uint64
}

// EventSummary is one ring-buffer slot rendered for a Firmware response.
type EventSummary struct {
	Timestamp uint64
	Message   []byte
}

// ControlResponse is a tagged union mirroring ControlRequest's shape, plus a
// Custom variant carrying an opaque byte payload.
type ControlResponse struct {
	Tag     byte
	Success bool
	Reason  string

	Repairs  uint64
	Restarts uint64
	Events   []EventSummary
	Modules  []ModuleStatus

	Position [3]float64
	Velocity [3]float64

	Semimajor   float64
	Eccentricity float64
	Inclination float64
	Raan        float64
	ArgPerigee  float64
	TrueAnomaly float64
	Dt          float64

	Fuel      float64
	Radiation float64

	Authenticated bool
	Connected     bool

	Data []byte
}

func Ok() ControlResponse { return ControlResponse{Tag: tagRespOk, Success: true} }
func Failure(reason string) ControlResponse {
	return ControlResponse{Tag: tagRespFailure, Success: false, Reason: reason}
}
func Custom(data []byte) ControlResponse {
	return ControlResponse{Tag: tagRespCustom, Success: true, Data: data}
}
func FirmwareResponse(repairs, restarts uint64, events []EventSummary, modules []ModuleStatus) ControlResponse {
	return ControlResponse{Tag: tagRespFirmware, Success: true, Repairs: repairs, Restarts: restarts, Events: events, Modules: modules}
}

// PositionVelocityResponse reports the spacecraft's Cartesian state.
func PositionVelocityResponse(position, velocity [3]float64) ControlResponse {
	return ControlResponse{Tag: tagRespPositionVelocity, Success: true, Position: position, Velocity: velocity}
}

// KeplerianElementsResponse reports the classical orbital element sextuple
// plus the elapsed mission time the elements were derived at.
func KeplerianElementsResponse(semimajor, eccentricity, inclination, raan, argPerigee, trueAnomaly, dt float64) ControlResponse {
	return ControlResponse{
		Tag: tagRespKeplerianElements, Success: true,
		Semimajor: semimajor, Eccentricity: eccentricity, Inclination: inclination,
		Raan: raan, ArgPerigee: argPerigee, TrueAnomaly: trueAnomaly, Dt: dt,
	}
}

// SensorsResponse reports remaining fuel mass and the current radiation flux.
func SensorsResponse(fuel, radiation float64) ControlResponse {
	return ControlResponse{Tag: tagRespSensors, Success: true, Fuel: fuel, Radiation: radiation}
}

// AuthenticateResponse reports the outcome of a gateway-tier authentication
// attempt: whether the token itself was accepted, and separately whether a
// backing executive connection was established.
func AuthenticateResponse(authenticated, connected bool) ControlResponse {
	return ControlResponse{Tag: tagRespAuthenticate, Success: authenticated, Authenticated: authenticated, Connected: connected}
}

// ToFailure maps any control request to the canonical failure response the
// proxy/node/firmware tiers return when a request can't be honored: zeroed
// payload, success=false.
func (req ControlRequest) ToFailure() ControlResponse {
	return Failure("")
}

// EncodeControlResponse serialises resp into its wire representation.
func EncodeControlResponse(resp ControlResponse) []byte {
	e := &encoder{}
	e.byte(resp.Tag)
	switch resp.Tag {
	case tagRespFailure:
		e.str(resp.Reason)
	case tagRespAuthenticate:
		e.bool(resp.Authenticated)
		e.bool(resp.Connected)
	case tagRespFirmware:
		e.u64(resp.Repairs)
		e.u64(resp.Restarts)
		e.u64(uint64(len(resp.Events)))
		for _, ev := range resp.Events {
			e.u64(ev.Timestamp)
			e.bytes(ev.Message)
		}
		e.u64(uint64(len(resp.Modules)))
		for _, m := range resp.Modules {
			e.bool(m.Enabled)
			e.bool(m.Verified)
			e.u64(m.CodeChecksum)
		}
	case tagRespPositionVelocity:
		for _, v := range resp.Position {
			e.f64(v)
		}
		for _, v := range resp.Velocity {
			e.f64(v)
		}
	case tagRespKeplerianElements:
		e.f64(resp.Semimajor)
		e.f64(resp.Eccentricity)
		e.f64(resp.Inclination)
		e.f64(resp.Raan)
		e.f64(resp.ArgPerigee)
		e.f64(resp.TrueAnomaly)
		e.f64(resp.Dt)
	case tagRespSensors:
		e.f64(resp.Fuel)
		e.f64(resp.Radiation)
	case tagRespCustom:
		e.bytes(resp.Data)
	}
	return e.buf.Bytes()
}

// DecodeControlResponse parses a control response frame.
func DecodeControlResponse(data []byte) (ControlResponse, error) {
	d := newDecoder(data)
	tag, err := d.byte()
	if err != nil {
		return ControlResponse{}, err
	}
	resp := ControlResponse{Tag: tag, Success: tag != tagRespFailure}
	switch tag {
	case tagRespOk:
	case tagRespFailure:
		if resp.Reason, err = d.str(); err != nil {
			return resp, err
		}
	case tagRespAuthenticate:
		if resp.Authenticated, err = d.bool(); err != nil {
			return resp, err
		}
		if resp.Connected, err = d.bool(); err != nil {
			return resp, err
		}
		resp.Success = resp.Authenticated
	case tagRespFirmware:
		if resp.Repairs, err = d.u64(); err != nil {
			return resp, err
		}
		if resp.Restarts, err = d.u64(); err != nil {
			return resp, err
		}
		nEvents, err := d.u64()
		if err != nil {
			return resp, err
		}
		resp.Events = make([]EventSummary, 0, nEvents)
		for i := uint64(0); i < nEvents; i++ {
			ts, err := d.u64()
			if err != nil {
				return resp, err
			}
			msg, err := d.bytes()
			if err != nil {
				return resp, err
			}
			resp.Events = append(resp.Events, EventSummary{Timestamp: ts, Message: msg})
		}
		nModules, err := d.u64()
		if err != nil {
			return resp, err
		}
		resp.Modules = make([]ModuleStatus, 0, nModules)
		for i := uint64(0); i < nModules; i++ {
			enabled, err := d.bool()
			if err != nil {
				return resp, err
			}
			verified, err := d.bool()
			if err != nil {
				return resp, err
			}
			checksum, err := d.u64()
			if err != nil {
				return resp, err
			}
			resp.Modules = append(resp.Modules, ModuleStatus{Enabled: enabled, Verified: verified, CodeChecksum: checksum})
		}
	case tagRespPositionVelocity:
		for i := range resp.Position {
			if resp.Position[i], err = d.f64(); err != nil {
				return resp, err
			}
		}
		for i := range resp.Velocity {
			if resp.Velocity[i], err = d.f64(); err != nil {
				return resp, err
			}
		}
	case tagRespKeplerianElements:
		vals := []*float64{&resp.Semimajor, &resp.Eccentricity, &resp.Inclination, &resp.Raan, &resp.ArgPerigee, &resp.TrueAnomaly, &resp.Dt}
		for _, v := range vals {
			if *v, err = d.f64(); err != nil {
				return resp, err
			}
		}
	case tagRespSensors:
		if resp.Fuel, err = d.f64(); err != nil {
			return resp, err
		}
		if resp.Radiation, err = d.f64(); err != nil {
			return resp, err
		}
	case tagRespCustom:
		if resp.Data, err = d.bytes(); err != nil {
			return resp, err
		}
	default:
		return resp, faulterr.New(faulterr.ProtocolViolation, "wire: unknown control response tag")
	}
	return resp, nil
}

// ToFailure returns the canonical failure response carrying reason, the one a
// handler returns when it refuses to act on a request.
func ToFailure(reason string) ControlResponse { return Failure(reason) }

// Executive request/response tags, used on the executive's own Unix service
// socket between the firmware process and the executive's orbital
// simulator.
const (
	tagExecCheckpoint = iota + 1
	tagExecPositionVelocity
	tagExecKeplerianElements
	tagExecSensors
	tagExecManeuver
)

// ExecutiveRequest is a tagged union of requests the firmware sends to the
// executive's service socket.
type ExecutiveRequest struct {
	Tag            byte
	CheckpointData []byte
	Burns          []Burn
}

func CheckpointRequest(state []byte) ExecutiveRequest {
	return ExecutiveRequest{Tag: tagExecCheckpoint, CheckpointData: state}
}
func ExecPositionVelocityRequest() ExecutiveRequest {
	return ExecutiveRequest{Tag: tagExecPositionVelocity}
}
func ExecKeplerianElementsRequest() ExecutiveRequest {
	return ExecutiveRequest{Tag: tagExecKeplerianElements}
}
func ExecSensorsRequest() ExecutiveRequest { return ExecutiveRequest{Tag: tagExecSensors} }
func ExecManeuverRequest(burns []Burn) ExecutiveRequest {
	return ExecutiveRequest{Tag: tagExecManeuver, Burns: burns}
}

// EncodeExecutiveRequest serialises req into its wire representation.
func EncodeExecutiveRequest(req ExecutiveRequest) []byte {
	e := &encoder{}
	e.byte(req.Tag)
	switch req.Tag {
	case tagExecCheckpoint:
		e.bytes(req.CheckpointData)
	case tagExecManeuver:
		encodeBurns(e, req.Burns)
	}
	return e.buf.Bytes()
}

// DecodeExecutiveRequest parses an executive request frame.
func DecodeExecutiveRequest(data []byte) (ExecutiveRequest, error) {
	d := newDecoder(data)
	tag, err := d.byte()
	if err != nil {
		return ExecutiveRequest{}, err
	}
	req := ExecutiveRequest{Tag: tag}
	switch tag {
	case tagExecPositionVelocity, tagExecKeplerianElements, tagExecSensors:
	case tagExecCheckpoint:
		if req.CheckpointData, err = d.bytes(); err != nil {
			return req, err
		}
	case tagExecManeuver:
		if req.Burns, err = decodeBurns(d); err != nil {
			return req, err
		}
	default:
		return req, faulterr.New(faulterr.ProtocolViolation, "wire: unknown executive request tag")
	}
	return req, nil
}

// ExecutiveResponse mirrors ControlResponse's shape for the executive's
// service socket; the same struct and codec are reused since the payload
// vocabulary is identical.
type ExecutiveResponse = ControlResponse

func EncodeExecutiveResponse(resp ExecutiveResponse) []byte { return EncodeControlResponse(resp) }
func DecodeExecutiveResponse(data []byte) (ExecutiveResponse, error) {
	return DecodeControlResponse(data)
}
