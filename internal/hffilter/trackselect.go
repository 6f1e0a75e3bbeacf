package hffilter

import "math"

// Kinematic acceptance shared by all single-track selections.
const maxTrackAbsEta = 0.8

// maxDCAZ is the longitudinal impact-parameter acceptance for beauty
// bachelor tracks (cm).
const maxDCAZ = 2.0

// BeautyTrackSel is the tri-state result of the beauty bachelor
// selection.
type BeautyTrackSel int8

const (
	BeautyTrackRejected BeautyTrackSel = iota
	BeautyTrackSoftPion
	BeautyTrackRegular
)

func (s BeautyTrackSel) String() string {
	switch s {
	case BeautyTrackSoftPion:
		return "softPion"
	case BeautyTrackRegular:
		return "regular"
	}
	return "rejected"
}

// BeautyTrackCuts configures the bachelor-track selection. DCAXYMin and
// DCAXYMax hold one window per pT bin (len = len(PtBins)-1).
type BeautyTrackCuts struct {
	PtBins        []float64 // ascending bin edges
	DCAXYMin      []float64 // minimum |DCAxy| per bin
	DCAXYMax      []float64 // maximum |DCAxy| per bin
	PtMinSoftPion float64
	PtMinBachelor float64
}

// SelectTrackForBeauty applies the bachelor-track cuts. Passing tracks
// below PtMinBachelor are soft-pion candidates only.
func SelectTrackForBeauty(track *Track, cuts *BeautyTrackCuts) BeautyTrackSel {
	bin := FindPtBin(cuts.PtBins, track.Pt)
	if bin == -1 {
		return BeautyTrackRejected
	}

	// soft pions are held to the same floor as everything else here;
	// the dedicated threshold below separates the two classes
	if track.Pt < cuts.PtMinSoftPion {
		return BeautyTrackRejected
	}

	if math.Abs(track.Eta) > maxTrackAbsEta {
		return BeautyTrackRejected
	}

	if math.Abs(track.DCAZ) > maxDCAZ {
		return BeautyTrackRejected
	}

	dcaXY := math.Abs(track.DCAXY)
	if dcaXY < cuts.DCAXYMin[bin] || dcaXY > cuts.DCAXYMax[bin] {
		return BeautyTrackRejected
	}

	if track.Pt < cuts.PtMinBachelor {
		return BeautyTrackSoftPion
	}
	return BeautyTrackRegular
}

// FemtoProtonCuts configures the proton selection for femtoscopy pairs.
type FemtoProtonCuts struct {
	MinPt     float64
	MaxNSigma float64
	// OnlyTOF selects |NsigmaTOF| as the combined deviation instead of
	// the TPC/TOF quadrature sum.
	OnlyTOF bool
}

// SelectProtonForFemto applies the femtoscopy proton selection. The
// combined PID deviation is either TOF-only or the quadrature sum of
// TPC and TOF, per cuts.OnlyTOF. QA fills are recorded at QAFull.
func SelectProtonForFemto(track *Track, cuts *FemtoProtonCuts, calib *PIDCalib, qa *QARecorder) bool {
	if track.Pt < cuts.MinPt {
		return false
	}
	if math.Abs(track.Eta) > maxTrackAbsEta {
		return false
	}
	if !track.IsGlobalTrack {
		return false
	}

	nsTPC := float64(calib.tpcNSigma(track, SpeciesProton))
	nsTOF := float64(track.TOFNSigmaPr)

	var nSigma float64
	if cuts.OnlyTOF {
		nSigma = math.Abs(nsTOF)
	} else {
		nSigma = math.Hypot(nsTPC, nsTOF)
	}
	if nSigma > cuts.MaxNSigma {
		return false
	}

	if qa != nil && qa.Level >= QAFull {
		p := track.Momentum()
		qa.ProtonTPC.Fill(p, nsTPC)
		qa.ProtonTOF.Fill(p, nsTOF)
	}
	return true
}

// TwoStagePIDCuts is a TPC gate plus a TOF gate that only applies when
// the track carries a TOF measurement.
type TwoStagePIDCuts struct {
	MaxNSigmaTPC float64
	MaxNSigmaTOF float64
}

// selectTwoStage runs the shared TPC-then-TOF pattern for one species.
// A missing TOF measurement is not constraining.
func selectTwoStage(track *Track, species PIDSpecies, tofNSigma float32, cuts *TwoStagePIDCuts, calib *PIDCalib) bool {
	nsTPC := calib.tpcNSigma(track, species)
	if math.Abs(float64(nsTPC)) > cuts.MaxNSigmaTPC {
		return false
	}
	if track.HasTOF && math.Abs(float64(tofNSigma)) > cuts.MaxNSigmaTOF {
		return false
	}
	return true
}

// SelectProtonForBaryon applies the proton selection used when building
// charm-baryon (Lc, Xic) candidates.
func SelectProtonForBaryon(track *Track, cuts *TwoStagePIDCuts, calib *PIDCalib) bool {
	return selectTwoStage(track, SpeciesProton, track.TOFNSigmaPr, cuts, calib)
}

// SelectKaonFor3Prong applies the kaon selection used for the
// opposite-charge track of 3-prong charm candidates.
func SelectKaonFor3Prong(track *Track, cuts *TwoStagePIDCuts, calib *PIDCalib) bool {
	return selectTwoStage(track, SpeciesKaon, track.TOFNSigmaKa, cuts, calib)
}
