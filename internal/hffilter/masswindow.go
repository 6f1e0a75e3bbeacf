package hffilter

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// The mass-window taggers refine the bits proposed by preselection:
// for each inherited hypothesis bit the candidate invariant mass is
// computed under that hypothesis and the bit survives only within
// |m - m_PDG| < delta. A tagger never sets a bit preselection did not
// propose. The QA histogram is filled for every tested hypothesis,
// pass or fail.

// TagDzeroMass refines BitDzero (pi K) and BitDzeroBar (K pi) for an
// opposite-sign pair with transverse momentum ptD.
func TagDzeroMass(pPos, pNeg r3.Vec, ptD float64, selected SelBits, delta float64, qa *QARecorder) SelBits {
	var out SelBits
	h := qa.massHist(CharmDzero)

	if selected.Has(BitDzero) {
		m := PairMass(pPos, pNeg, MassPion, MassKaon)
		h.Fill(ptD, m)
		if math.Abs(m-MassDzero) < delta {
			out = out.With(BitDzero)
		}
	}
	if selected.Has(BitDzeroBar) {
		m := PairMass(pPos, pNeg, MassKaon, MassPion)
		h.Fill(ptD, m)
		if math.Abs(m-MassDzero) < delta {
			out = out.With(BitDzeroBar)
		}
	}
	return out
}

// TagDplusMass is the single-hypothesis D+ -> K pi pi window: the two
// same-charge tracks take the pion mass, the opposite-charge track the
// kaon mass. Pass or reject, no bit narrowing.
func TagDplusMass(pSameFirst, pSameSecond, pOpp r3.Vec, ptD float64, delta float64, qa *QARecorder) SelBits {
	m := TripletMass(pSameFirst, pSameSecond, pOpp, MassPion, MassPion, MassKaon)
	qa.massHist(CharmDplus).Fill(ptD, m)

	if math.Abs(m-MassDplus) > delta {
		return 0
	}
	return BitDplusKPiPi
}

// TagDsMass refines BitDsKKPi and BitDsPiKK for a 3-prong candidate.
// The hypothesis ordering is (sameFirst, opp, sameSecond).
func TagDsMass(pSameFirst, pSameSecond, pOpp r3.Vec, ptD float64, selected SelBits, delta float64, qa *QARecorder) SelBits {
	var out SelBits
	h := qa.massHist(CharmDs)

	if selected.Has(BitDsKKPi) {
		m := TripletMass(pSameFirst, pOpp, pSameSecond, MassKaon, MassKaon, MassPion)
		h.Fill(ptD, m)
		if math.Abs(m-MassDs) < delta {
			out = out.With(BitDsKKPi)
		}
	}
	if selected.Has(BitDsPiKK) {
		m := TripletMass(pSameFirst, pOpp, pSameSecond, MassPion, MassKaon, MassKaon)
		h.Fill(ptD, m)
		if math.Abs(m-MassDs) < delta {
			out = out.With(BitDsPiKK)
		}
	}
	return out
}

// tagBaryonMass is the shared Lc/Xic window against refMass.
func tagBaryonMass(channel CharmParticle, refMass float64, pSameFirst, pSameSecond, pOpp r3.Vec, ptCand float64, selected SelBits, delta float64, qa *QARecorder) SelBits {
	var out SelBits
	h := qa.massHist(channel)

	if selected.Has(BitBaryonPKPi) {
		m := TripletMass(pSameFirst, pOpp, pSameSecond, MassProton, MassKaon, MassPion)
		h.Fill(ptCand, m)
		if math.Abs(m-refMass) < delta {
			out = out.With(BitBaryonPKPi)
		}
	}
	if selected.Has(BitBaryonPiKP) {
		m := TripletMass(pSameFirst, pOpp, pSameSecond, MassPion, MassKaon, MassProton)
		h.Fill(ptCand, m)
		if math.Abs(m-refMass) < delta {
			out = out.With(BitBaryonPiKP)
		}
	}
	return out
}

// TagLcMass refines BitBaryonPKPi and BitBaryonPiKP against the Lc mass.
func TagLcMass(pSameFirst, pSameSecond, pOpp r3.Vec, ptLc float64, selected SelBits, delta float64, qa *QARecorder) SelBits {
	return tagBaryonMass(CharmLc, MassLc, pSameFirst, pSameSecond, pOpp, ptLc, selected, delta, qa)
}

// TagXicMass refines BitBaryonPKPi and BitBaryonPiKP against the Xic mass.
func TagXicMass(pSameFirst, pSameSecond, pOpp r3.Vec, ptXic float64, selected SelBits, delta float64, qa *QARecorder) SelBits {
	return tagBaryonMass(CharmXic, MassXic, pSameFirst, pSameSecond, pOpp, ptXic, selected, delta, qa)
}
