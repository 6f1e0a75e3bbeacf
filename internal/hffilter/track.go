package hffilter

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Track is one reconstructed track as delivered by the framework.
// The engine only reads it; ownership stays with the caller.
type Track struct {
	P      r3.Vec  `json:"p"` // momentum (GeV/c)
	Pt     float64 `json:"pt"`
	Eta    float64 `json:"eta"`
	Charge int8    `json:"charge"`

	// Impact parameters relative to the primary vertex (cm).
	DCAXY float64 `json:"dcaxy"`
	DCAZ  float64 `json:"dcaz"`

	// PID deviations (Nsigma) per species hypothesis.
	TPCNSigmaEl float32 `json:"tpc_nsigma_el"`
	TPCNSigmaKa float32 `json:"tpc_nsigma_ka"`
	TPCNSigmaPi float32 `json:"tpc_nsigma_pi"`
	TPCNSigmaPr float32 `json:"tpc_nsigma_pr"`
	TOFNSigmaEl float32 `json:"tof_nsigma_el"`
	TOFNSigmaKa float32 `json:"tof_nsigma_ka"`
	TOFNSigmaPi float32 `json:"tof_nsigma_pi"`
	TOFNSigmaPr float32 `json:"tof_nsigma_pr"`

	// TPC calibration observables.
	TPCNClsFound  float64 `json:"tpc_ncls_found"`  // number of found TPC clusters
	TPCInnerParam float64 `json:"tpc_inner_param"` // momentum at the TPC inner wall (GeV/c)

	HasTOF        bool `json:"has_tof"`         // a TOF measurement is associated
	IsGlobalTrack bool `json:"is_global_track"` // passed the global track-quality selection
}

// Momentum returns the magnitude of the track momentum.
func (t *Track) Momentum() float64 {
	return r3.Norm(t.P)
}

// tpcNSigma returns the raw TPC deviation for the species hypothesis.
// Unknown species is a programming error.
func (t *Track) tpcNSigma(species PIDSpecies) float32 {
	switch species {
	case SpeciesElectron:
		return t.TPCNSigmaEl
	case SpeciesKaon:
		return t.TPCNSigmaKa
	case SpeciesPion:
		return t.TPCNSigmaPi
	case SpeciesProton:
		return t.TPCNSigmaPr
	}
	panic("hffilter: unknown PID species " + species.String())
}

// FindPtBin returns the index of the pT bin containing pt, or -1 when pt
// falls outside the binning. edges must be ascending bin boundaries.
func FindPtBin(edges []float64, pt float64) int {
	if len(edges) < 2 || pt < edges[0] || math.IsNaN(pt) {
		return -1
	}
	for i := 1; i < len(edges); i++ {
		if pt < edges[i] {
			return i - 1
		}
	}
	return -1
}
