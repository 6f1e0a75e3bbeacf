package hffilter

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// RelativeMomentum computes k*, half the magnitude of the relative
// three-momentum of a (proton, charm-candidate) pair in their two-body
// center-of-mass frame. The track takes the proton mass hypothesis.
func RelativeMomentum(trackP, candP r3.Vec, candMass float64) float64 {
	e1 := energy(trackP, MassProton)
	e2 := energy(candP, candMass)

	eTot := e1 + e2
	pTot := r3.Add(trackP, candP)

	// velocity of the pair system; boosting by -beta reaches the CM frame
	beta := r3.Scale(1/eTot, pTot)
	b2 := r3.Norm2(beta)
	if b2 == 0 {
		return 0.5 * r3.Norm(r3.Sub(trackP, candP))
	}
	gamma := 1 / math.Sqrt(1-b2)

	p1CM := boostToCM(trackP, e1, beta, b2, gamma)
	p2CM := boostToCM(candP, e2, beta, b2, gamma)

	return 0.5 * r3.Norm(r3.Sub(p1CM, p2CM))
}

// boostToCM applies the pure Lorentz boost with velocity -beta to the
// spatial part of the four-vector (e, p):
// p' = p + [(gamma-1) (beta.p)/|beta|^2 - gamma e] beta.
func boostToCM(p r3.Vec, e float64, beta r3.Vec, b2, gamma float64) r3.Vec {
	bp := r3.Dot(beta, p)
	coeff := (gamma-1)*bp/b2 - gamma*e
	return r3.Add(p, r3.Scale(coeff, beta))
}
