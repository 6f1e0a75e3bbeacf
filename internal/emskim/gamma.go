// Package emskim implements the electromagnetic-probe skims: converted
// photon (V0) selection, calorimeter cluster skimming, and Dalitz-pair
// electron tagging. Selections are cut-based; each records staged QA so
// the rejection point of every candidate is visible.
package emskim

import "math"

// Photon conversion acceptance.
const (
	maxGammaAbsEta = 0.8
	minV0Radius    = 0.0
	maxV0Radius    = 180.0
	// Armenteros-Podolanski ellipse semi-axes for photon conversions.
	apAlphaMax = 0.95
	apQtMax    = 0.05

	maxAbsPsiPair = 0.1
	minGammaCosPA = 0.85
)

// GammaConversion is one V0 photon-conversion candidate as delivered by
// the reconstruction framework.
type GammaConversion struct {
	Eta      float64 `json:"eta"`
	Pt       float64 `json:"pt"`
	V0Radius float64 `json:"v0_radius"` // conversion point radius (cm)
	Alpha    float64 `json:"alpha"`     // Armenteros longitudinal asymmetry
	QtArm    float64 `json:"qtarm"`     // Armenteros transverse momentum
	PsiPair  float64 `json:"psi_pair"`  // pair opening angle in the bending plane
	CosPA    float64 `json:"cospa"`     // pointing-angle cosine w.r.t. the primary vertex
}

// GammaSelStep indexes the staged selection counter: the accepted-input
// slot, one slot per rejecting cut, and the accepted-output slot.
type GammaSelStep int

const (
	GammaStepIn GammaSelStep = iota
	GammaStepEta
	GammaStepRadius
	GammaStepArmenteros
	GammaStepPsiPair
	GammaStepCosPA
	GammaStepAccepted
	NumGammaSteps
)

// SelectGamma applies the converted-photon selection. Order matters for
// QA: the step counter records the first failing cut only.
func SelectGamma(g *GammaConversion, qa *QARecorder) bool {
	qa.gammaStep(GammaStepIn)
	qa.gammaBefore(g)

	if math.Abs(g.Eta) > maxGammaAbsEta {
		qa.gammaStep(GammaStepEta)
		return false
	}
	if g.V0Radius < minV0Radius || g.V0Radius > maxV0Radius {
		qa.gammaStep(GammaStepRadius)
		return false
	}

	// photon conversions populate a narrow ellipse at the bottom of the
	// Armenteros-Podolanski plot
	a := g.Alpha / apAlphaMax
	q := g.QtArm / apQtMax
	if a*a+q*q >= 1 {
		qa.gammaStep(GammaStepArmenteros)
		return false
	}

	if math.Abs(g.PsiPair) > maxAbsPsiPair {
		qa.gammaStep(GammaStepPsiPair)
		return false
	}
	if g.CosPA < minGammaCosPA {
		qa.gammaStep(GammaStepCosPA)
		return false
	}

	qa.gammaStep(GammaStepAccepted)
	qa.gammaAfter(g)
	return true
}
