package hffilter

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// phiMassWindow is the K-K proximity window to the phi resonance used
// when preselecting Ds candidates (GeV/c^2).
const phiMassWindow = 0.02

// PreselectDplus tags a 3-prong combination as a D+ -> K pi pi
// candidate when the opposite-charge track passes the kaon selection.
// No invariant mass enters at this stage.
func PreselectDplus(oppTrack *Track, kaonCuts *TwoStagePIDCuts, calib *PIDCalib) SelBits {
	var sel SelBits
	if !SelectKaonFor3Prong(oppTrack, kaonCuts, calib) {
		return sel
	}
	return sel.With(BitDplusKPiPi)
}

// PreselectDs tags a 3-prong combination as a Ds -> K K pi candidate.
// The opposite-charge track must pass the kaon selection, and each
// same-charge track paired with it must sit near the phi resonance
// under the K-K mass hypothesis: BitDsKKPi for the first pair,
// BitDsPiKK for the second.
func PreselectDs(pSameFirst, pSameSecond, pOpp r3.Vec, oppTrack *Track, kaonCuts *TwoStagePIDCuts, calib *PIDCalib) SelBits {
	var sel SelBits
	if !SelectKaonFor3Prong(oppTrack, kaonCuts, calib) {
		return sel
	}

	mKKFirst := PairMass(pSameFirst, pOpp, MassKaon, MassKaon)
	mKKSecond := PairMass(pSameSecond, pOpp, MassKaon, MassKaon)

	if math.Abs(mKKFirst-MassPhi) < phiMassWindow {
		sel = sel.With(BitDsKKPi)
	}
	if math.Abs(mKKSecond-MassPhi) < phiMassWindow {
		sel = sel.With(BitDsPiKK)
	}
	return sel
}

// PreselectCharmBaryon tags a 3-prong combination as a Lc/Xic -> p K pi
// candidate. The opposite-charge track must pass the kaon selection;
// each same-charge track is tested independently as the proton:
// BitBaryonPKPi for the first, BitBaryonPiKP for the second.
func PreselectCharmBaryon(sameFirst, sameSecond, oppTrack *Track, protonCuts, kaonCuts *TwoStagePIDCuts, calib *PIDCalib) SelBits {
	var sel SelBits
	if !SelectKaonFor3Prong(oppTrack, kaonCuts, calib) {
		return sel
	}

	if SelectProtonForBaryon(sameFirst, protonCuts, calib) {
		sel = sel.With(BitBaryonPKPi)
	}
	if SelectProtonForBaryon(sameSecond, protonCuts, calib) {
		sel = sel.With(BitBaryonPiKP)
	}
	return sel
}

// PreselectDzero tags an opposite-sign pair as a D0 and/or D0bar
// candidate. BitDzero requires positive-as-pion plus negative-as-kaon,
// BitDzeroBar the reverse; each leg needs a TPC pass and, when TOF
// exists, a TOF pass against the same thresholds.
func PreselectDzero(posTrack, negTrack *Track, cuts *TwoStagePIDCuts, calib *PIDCalib) SelBits {
	var sel SelBits

	posPi := dzeroLegOK(posTrack, SpeciesPion, posTrack.TOFNSigmaPi, cuts, calib)
	posKa := dzeroLegOK(posTrack, SpeciesKaon, posTrack.TOFNSigmaKa, cuts, calib)
	negPi := dzeroLegOK(negTrack, SpeciesPion, negTrack.TOFNSigmaPi, cuts, calib)
	negKa := dzeroLegOK(negTrack, SpeciesKaon, negTrack.TOFNSigmaKa, cuts, calib)

	if posPi && negKa {
		sel = sel.With(BitDzero)
	}
	if negPi && posKa {
		sel = sel.With(BitDzeroBar)
	}
	return sel
}

func dzeroLegOK(track *Track, species PIDSpecies, tofNSigma float32, cuts *TwoStagePIDCuts, calib *PIDCalib) bool {
	nsTPC := calib.tpcNSigma(track, species)
	if math.Abs(float64(nsTPC)) > cuts.MaxNSigmaTPC {
		return false
	}
	if track.HasTOF && math.Abs(float64(tofNSigma)) > cuts.MaxNSigmaTOF {
		return false
	}
	return true
}
