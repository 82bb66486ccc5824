package orbit

import (
	"math"

	"github.com/hardsat/rad/internal/faulterr"
)

// muEarth is the Earth gravitational parameter (km^3/s^2), the only central
// body this simulator accounts for.
const muEarth = 398600.4418

// earthRadiusKm is subtracted from the orbital radius to report altitude
// above the surface rather than distance from the planet's center.
const earthRadiusKm = 6371.0

// Burn is a scheduled finite-duration thrust maneuver, mirroring the ground
// protocol's Burn so the simulator can consume wire.Burn values directly.
type Burn struct {
	StartSec uint64
	LengthS  uint8
	Thrust   float64
	Vector   [3]float64
}

// Vector3 is a Cartesian triple used for both position (km) and velocity
// (km/s).
type Vector3 = [3]float64

// Elements is the classical Keplerian sextuple describing an orbit's shape
// and orientation.
type Elements struct {
	Semimajor    float64
	Eccentricity float64
	Inclination  float64
	RAAN         float64
	ArgPerigee   float64
	TrueAnomaly  float64
}

// State is the spacecraft's full physical state at one simulated instant.
type State struct {
	Position Vector3
	Velocity Vector3
	DryMass  float64
	FuelMass float64
	ElapsedS float64
}

// Failure sentinel errors mirror the original simulator's BOOM / LOST
// CONTACT / FUEL EXHAUSTED conditions; each forces a re-initialization of
// the orbit from the default starting point.
var (
	ErrBurnedUp      = faulterr.New(faulterr.IO, "orbit: BOOM (altitude below minimum)")
	ErrLostContact   = faulterr.New(faulterr.IO, "orbit: LOST CONTACT (altitude above maximum)")
	ErrFuelExhausted = faulterr.New(faulterr.IO, "orbit: FUEL EXHAUSTED")
)

const (
	minAltitudeKm = 50.0
	maxAltitudeKm = 300000.0

	defaultDryMassKg = 100.0
	defaultFuelKg    = 20.0

	thrustNewtons = 1000.0
	ispSeconds    = 300.0
	gravityAccel  = 9.80665 / 1000.0 // km/s^2, for Tsiolkovsky mass flow
)

// Default returns the mission's default starting orbit: a near-circular
// orbit at 16384 km altitude, chosen in the original challenge to sit just
// above the inner radiation belt.
func Default() State {
	altitude := 16384.0
	radius := earthRadiusKm + altitude
	speed := math.Sqrt(muEarth / radius)
	return State{
		Position: Vector3{radius, 0, 0},
		Velocity: Vector3{0, speed, 0},
		DryMass:  defaultDryMassKg,
		FuelMass: defaultFuelKg,
	}
}

// Altitude returns the state's altitude above the Earth's surface in km.
func (s State) Altitude() float64 {
	return norm(s.Position) - earthRadiusKm
}

// GeodeticLatitude returns an approximate geodetic latitude in degrees,
// derived from the position vector's declination above the equatorial
// plane. This is adequate for driving the radiation model; it is not a
// WGS-84 geodetic conversion.
func (s State) GeodeticLatitude() float64 {
	r := norm(s.Position)
	if r == 0 {
		return 0
	}
	return math.Asin(s.Position[2]/r) * 180 / math.Pi
}

// Radiation returns the flux at the state's current position.
func (s State) Radiation() float64 {
	return ComputeRadiation(s.GeodeticLatitude(), s.Altitude())
}

// ActiveBurn returns the scheduled burn covering elapsed time t, if any.
func ActiveBurn(burns []Burn, t float64) (Burn, bool) {
	for _, b := range burns {
		start := float64(b.StartSec)
		end := start + float64(b.LengthS)
		if t >= start && t < end {
			return b, true
		}
	}
	return Burn{}, false
}

// Step advances the state by dt seconds under two-body gravity plus any
// active finite burn from the schedule, using a fixed-step RK4 integrator.
// It returns a failure sentinel if the resulting state violates a mission
// boundary.
func Step(s State, burns []Burn, dt float64) (State, error) {
	accelThrust := func(t float64, fuelMass float64) Vector3 {
		b, active := ActiveBurn(burns, t)
		if !active || fuelMass <= 0 {
			return Vector3{}
		}
		mag := thrustNewtons * b.Thrust / 1000.0 / (defaultDryMassKg + fuelMass) // km/s^2
		return Vector3{mag * b.Vector[0], mag * b.Vector[1], mag * b.Vector[2]}
	}

	deriv := func(t float64, pos, vel Vector3, fuelMass float64) (Vector3, Vector3) {
		r := norm(pos)
		grav := scale(pos, -muEarth/(r*r*r))
		thrust := accelThrust(t, fuelMass)
		return vel, add(grav, thrust)
	}

	t0 := s.ElapsedS
	p0, v0 := s.Position, s.Velocity

	k1p, k1v := deriv(t0, p0, v0, s.FuelMass)
	k2p, k2v := deriv(t0+dt/2, add(p0, scale(k1p, dt/2)), add(v0, scale(k1v, dt/2)), s.FuelMass)
	k3p, k3v := deriv(t0+dt/2, add(p0, scale(k2p, dt/2)), add(v0, scale(k2v, dt/2)), s.FuelMass)
	k4p, k4v := deriv(t0+dt, add(p0, scale(k3p, dt)), add(v0, scale(k3v, dt)), s.FuelMass)

	next := s
	next.Position = add(p0, scale(add(add(k1p, scale(k2p, 2)), add(scale(k3p, 2), k4p)), dt/6))
	next.Velocity = add(v0, scale(add(add(k1v, scale(k2v, 2)), add(scale(k3v, 2), k4v)), dt/6))
	next.ElapsedS = t0 + dt

	if _, active := ActiveBurn(burns, t0); active && next.FuelMass > 0 {
		thrustMag := thrustNewtons / 1000.0
		massFlow := thrustMag / (ispSeconds * gravityAccel)
		next.FuelMass -= massFlow * dt
		if next.FuelMass < 0 {
			next.FuelMass = 0
		}
	}

	switch {
	case next.Altitude() < minAltitudeKm:
		return next, ErrBurnedUp
	case next.Altitude() > maxAltitudeKm:
		return next, ErrLostContact
	case next.FuelMass <= 0:
		return next, ErrFuelExhausted
	}
	return next, nil
}

// ToElements derives the classical Keplerian sextuple from a Cartesian
// state, using the standard vis-viva and angular-momentum relations.
func ToElements(s State) Elements {
	r := s.Position
	v := s.Velocity
	rNorm := norm(r)
	vNorm := norm(v)

	h := cross(r, v)
	hNorm := norm(h)

	nVec := cross(Vector3{0, 0, 1}, h)
	nNorm := norm(nVec)

	eVec := scale(sub(scale(r, vNorm*vNorm-muEarth/rNorm), scale(v, dot(r, v))), 1/muEarth)
	ecc := norm(eVec)

	energy := vNorm*vNorm/2 - muEarth/rNorm
	var sma float64
	if math.Abs(energy) > 1e-12 {
		sma = -muEarth / (2 * energy)
	}

	inc := math.Acos(clamp(h[2]/hNorm, -1, 1))

	var raan float64
	if nNorm > 1e-9 {
		raan = math.Acos(clamp(nVec[0]/nNorm, -1, 1))
		if nVec[1] < 0 {
			raan = 2*math.Pi - raan
		}
	}

	var aop float64
	if nNorm > 1e-9 && ecc > 1e-9 {
		aop = math.Acos(clamp(dot(nVec, eVec)/(nNorm*ecc), -1, 1))
		if eVec[2] < 0 {
			aop = 2*math.Pi - aop
		}
	}

	var ta float64
	if ecc > 1e-9 {
		ta = math.Acos(clamp(dot(eVec, r)/(ecc*rNorm), -1, 1))
		if dot(r, v) < 0 {
			ta = 2*math.Pi - ta
		}
	}

	toDeg := 180 / math.Pi
	return Elements{
		Semimajor:    sma,
		Eccentricity: ecc,
		Inclination:  inc * toDeg,
		RAAN:         raan * toDeg,
		ArgPerigee:   aop * toDeg,
		TrueAnomaly:  ta * toDeg,
	}
}

func norm(v Vector3) float64 { return math.Sqrt(dot(v, v)) }
func dot(a, b Vector3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func add(a, b Vector3) Vector3 { return Vector3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub(a, b Vector3) Vector3 { return Vector3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func scale(a Vector3, k float64) Vector3 { return Vector3{a[0] * k, a[1] * k, a[2] * k} }
func cross(a, b Vector3) Vector3 {
	return Vector3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
