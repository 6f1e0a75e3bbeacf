// Package hffilter implements the heavy-flavor candidate selection and
// classification engine: per-track PID selections with optional
// post-calibration, multi-track bitmask preselection for charm decay
// hypotheses, invariant-mass window tagging, BDT-score origin
// classification, femtoscopy kinematics, and independent-candidate
// counting for event retention decisions.
package hffilter

// CharmParticle identifies a charm-hadron decay channel hypothesis.
type CharmParticle int

const (
	CharmDzero CharmParticle = iota // D0 -> K pi
	CharmDplus                      // D+ -> K pi pi
	CharmDs                         // Ds -> K K pi
	CharmLc                         // Lc -> p K pi
	CharmXic                        // Xic -> p K pi
	NumCharmParticles
)

var charmNames = [NumCharmParticles]string{"D0", "Dplus", "Ds", "Lc", "Xic"}

func (c CharmParticle) String() string {
	if c < 0 || c >= NumCharmParticles {
		return "unknown"
	}
	return charmNames[c]
}

// PDGCode returns the PDG Monte Carlo numbering for the charm hadron.
func (c CharmParticle) PDGCode() int {
	return [NumCharmParticles]int{421, 411, 431, 4122, 4232}[c]
}

// BeautyParticle identifies a beauty-hadron construction hypothesis.
type BeautyParticle int

const (
	BeautyBplus BeautyParticle = iota
	BeautyB0toDStar
	BeautyB0
	BeautyBs
	BeautyLb
	BeautyXib
	NumBeautyParticles
)

var beautyNames = [NumBeautyParticles]string{"Bplus", "B0toDStar", "B0", "Bs", "Lb", "Xib"}

func (b BeautyParticle) String() string {
	if b < 0 || b >= NumBeautyParticles {
		return "unknown"
	}
	return beautyNames[b]
}

// PIDSpecies identifies the particle hypothesis for a PID measurement.
type PIDSpecies int

const (
	SpeciesElectron PIDSpecies = iota
	SpeciesKaon
	SpeciesPion
	SpeciesProton
)

func (s PIDSpecies) String() string {
	switch s {
	case SpeciesElectron:
		return "electron"
	case SpeciesKaon:
		return "kaon"
	case SpeciesPion:
		return "pion"
	case SpeciesProton:
		return "proton"
	}
	return "unknown"
}

// PDG reference masses in GeV/c^2.
const (
	MassElectron = 0.000510998950
	MassPion     = 0.13957039
	MassKaon     = 0.493677
	MassProton   = 0.93827208816
	MassPhi      = 1.019461
	MassDzero    = 1.86484
	MassDplus    = 1.86966
	MassDs       = 1.96835
	MassLc       = 2.28646
	MassXic      = 2.46771
	MassDstar    = 2.01026
	MassBplus    = 5.27934
	MassB0       = 5.27965
	MassBs       = 5.36688
	MassLb       = 5.61960
	MassXib      = 5.79700
)

// ReferenceMass returns the PDG mass of the charm hadron hypothesis.
func (c CharmParticle) ReferenceMass() float64 {
	return [NumCharmParticles]float64{MassDzero, MassDplus, MassDs, MassLc, MassXic}[c]
}
