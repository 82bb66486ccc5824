// Package orbit drives the executive's external orbital simulator: a
// two-body propagator with finite burns, enough to produce the
// position/velocity/Keplerian telemetry and radiation flux the firmware's
// Sensors and Maneuver requests contract for. It deliberately does not model
// third-body perturbations or high-fidelity astrodynamics.
package orbit

import "math"

// Empirical constants of the geodetic radiation-belt model this challenge
// uses in place of a real space-weather feed.
const (
	latCoeff       = 0.000996678
	latBaseline    = 0.812625
	latOffset      = 0.2
	altLowScale    = 0.689631
	altLowExp      = 0.00164673
	altHighScale   = 363028.0
	altHighExp     = 0.00164673
	altLowCeiling  = 4000.0
	altHighCeiling = 8000.0
)

// ComputeRadiation returns the scalar flux level at a geodetic latitude (deg)
// and altitude (km), combining a latitude-dependent belt-intensity factor
// with an altitude-dependent profile. It is zero outside the simulated belt
// (altitude at or above altHighCeiling, or latitude far enough from the
// equator that the latitude factor clamps to zero).
func ComputeRadiation(latitudeDeg, altitudeKm float64) float64 {
	lLevel := latBaseline - latCoeff*latitudeDeg*latitudeDeg + latOffset
	if lLevel > 1 {
		lLevel = 1
	} else if lLevel < 0 {
		lLevel = 0
	}

	var aLevel float64
	switch {
	case altitudeKm < altLowCeiling:
		aLevel = altLowScale * math.Exp(altLowExp*altitudeKm)
	case altitudeKm < altHighCeiling:
		aLevel = altHighScale * math.Exp(-altHighExp*altitudeKm)
	default:
		aLevel = 0
	}
	if aLevel < 0 {
		aLevel = 0
	}

	return lLevel * aLevel
}
