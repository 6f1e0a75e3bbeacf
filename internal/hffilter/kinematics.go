package hffilter

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// energy returns the relativistic energy of a momentum p with assigned
// mass m: E^2 = p^2 + m^2.
func energy(p r3.Vec, m float64) float64 {
	return math.Sqrt(r3.Norm2(p) + m*m)
}

// InvariantMass computes the invariant mass of N track momenta under an
// ordered mass-hypothesis tuple. Momenta and masses pair up by index.
func InvariantMass(momenta []r3.Vec, masses []float64) float64 {
	if len(momenta) != len(masses) {
		panic("hffilter: momenta/masses length mismatch")
	}
	var eSum float64
	var pSum r3.Vec
	for i, p := range momenta {
		eSum += energy(p, masses[i])
		pSum = r3.Add(pSum, p)
	}
	m2 := eSum*eSum - r3.Norm2(pSum)
	if m2 < 0 {
		// numeric jitter around zero for massless back-to-back input
		return 0
	}
	return math.Sqrt(m2)
}

// PairMass is InvariantMass for the two-prong case without slice
// plumbing on the hot path.
func PairMass(p1, p2 r3.Vec, m1, m2 float64) float64 {
	e := energy(p1, m1) + energy(p2, m2)
	pSum := r3.Add(p1, p2)
	m2sum := e*e - r3.Norm2(pSum)
	if m2sum < 0 {
		return 0
	}
	return math.Sqrt(m2sum)
}

// TripletMass is InvariantMass for the three-prong case.
func TripletMass(p1, p2, p3 r3.Vec, m1, m2, m3 float64) float64 {
	e := energy(p1, m1) + energy(p2, m2) + energy(p3, m3)
	pSum := r3.Add(r3.Add(p1, p2), p3)
	m2sum := e*e - r3.Norm2(pSum)
	if m2sum < 0 {
		return 0
	}
	return math.Sqrt(m2sum)
}

// Pt returns the transverse component of a momentum vector.
func Pt(p r3.Vec) float64 {
	return math.Hypot(p.X, p.Y)
}
