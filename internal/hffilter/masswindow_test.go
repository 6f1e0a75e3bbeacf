package hffilter

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// dzeroPair returns back-to-back momenta reconstructing the D0 mass
// under the (pi, K) hypothesis.
func dzeroPair() (r3.Vec, r3.Vec) {
	// solve E_pi + E_K = m_D0 for a common momentum magnitude:
	// p^2 = [m^2 - (m_pi + m_K)^2][m^2 - (m_pi - m_K)^2] / (4 m^2)
	m2 := MassDzero * MassDzero
	sum := MassPion + MassKaon
	diff := MassPion - MassKaon
	p := math.Sqrt((m2 - sum*sum) * (m2 - diff*diff) / (4 * m2))
	return r3.Vec{X: p}, r3.Vec{X: -p}
}

func TestTagDzeroMass_WindowAndNarrowing(t *testing.T) {
	pPos, pNeg := dzeroPair()

	// both hypotheses proposed; with back-to-back momenta the (pi, K)
	// and (K, pi) orderings give the same mass, so both survive a
	// window that contains it
	sel := TagDzeroMass(pPos, pNeg, 0, BitDzero|BitDzeroBar, 0.04, nil)
	if !sel.Has(BitDzero | BitDzeroBar) {
		t.Errorf("sel = %b, want both bits inside the window", sel)
	}

	// a tight window rejects everything
	sel = TagDzeroMass(r3.Vec{X: 5}, r3.Vec{X: 4}, 0, BitDzero|BitDzeroBar, 1e-6, nil)
	if !sel.Empty() {
		t.Errorf("sel = %b, want empty outside the window", sel)
	}
}

func TestTagDzeroMass_NeverSetsUnproposedBits(t *testing.T) {
	pPos, pNeg := dzeroPair()

	// enormous window: any proposed bit would survive, so the output
	// is exactly the input proposal
	for _, proposed := range []SelBits{0, BitDzero, BitDzeroBar, BitDzero | BitDzeroBar} {
		got := TagDzeroMass(pPos, pNeg, 0, proposed, 100, nil)
		if got != proposed {
			t.Errorf("proposed %b: got %b, want the proposal back", proposed, got)
		}
		if got&^proposed != 0 {
			t.Errorf("tagger set bits %b beyond the proposal %b", got, proposed)
		}
	}
}

func TestTagDplusMass(t *testing.T) {
	p1 := r3.Vec{X: 0.4}
	p2 := r3.Vec{X: -0.3, Y: 0.2}
	pK := r3.Vec{X: -0.1, Y: -0.2}

	m := TripletMass(p1, p2, pK, MassPion, MassPion, MassKaon)
	delta := math.Abs(m-MassDplus) + 0.01

	if sel := TagDplusMass(p1, p2, pK, 0, delta, nil); !sel.Has(BitDplusKPiPi) {
		t.Error("in-window D+ should pass")
	}
	if sel := TagDplusMass(p1, p2, pK, 0, 1e-9, nil); !sel.Empty() {
		t.Error("out-of-window D+ should be rejected")
	}
}

func TestTagDsMass_RefinesPerBit(t *testing.T) {
	p1 := r3.Vec{X: 0.5}
	p2 := r3.Vec{X: -0.2, Y: 0.3}
	pK := r3.Vec{Y: -0.4}

	// window wide enough for both orderings: only proposed bits return
	got := TagDsMass(p1, p2, pK, 0, BitDsKKPi, 100, nil)
	if got != BitDsKKPi {
		t.Errorf("got %b, want only the proposed BitDsKKPi", got)
	}
}

func TestTagBaryonMass_QAFillsEveryTestedHypothesis(t *testing.T) {
	qa := NewQARecorder(QAMass)
	p1 := r3.Vec{X: 1.2}
	p2 := r3.Vec{X: -0.8, Y: 0.4}
	pK := r3.Vec{Y: -0.5}

	// masses land far outside the tight window: bits are cleared, but
	// the QA histogram is filled for both tested hypotheses; the pt
	// value must sit inside the QA axis to be counted
	mPKPi := TripletMass(p1, pK, p2, MassProton, MassKaon, MassPion)
	sel := TagLcMass(p1, p2, pK, 5, BitBaryonPKPi|BitBaryonPiKP, 1e-9, qa)
	if !sel.Empty() {
		t.Fatalf("sel = %b, want empty", sel)
	}
	h := qa.MassVsPt[CharmLc]
	inRange := 0
	if mPKPi >= h.Y.Min && mPKPi < h.Y.Max {
		inRange++
	}
	mPiKP := TripletMass(p1, pK, p2, MassPion, MassKaon, MassProton)
	if mPiKP >= h.Y.Min && mPiKP < h.Y.Max {
		inRange++
	}
	if int(h.N) != inRange {
		t.Errorf("QA entries = %d, want %d (fills happen pass or fail)", h.N, inRange)
	}
}

func TestTagXicMass_UsesXicReference(t *testing.T) {
	p1 := r3.Vec{X: 0.6}
	p2 := r3.Vec{X: -0.4, Y: 0.3}
	pK := r3.Vec{Y: -0.2}

	m := TripletMass(p1, pK, p2, MassProton, MassKaon, MassPion)
	deltaLc := math.Abs(m - MassLc)
	deltaXic := math.Abs(m - MassXic)
	// a window between the two reference distances separates the taggers
	mid := (math.Min(deltaLc, deltaXic) + math.Max(deltaLc, deltaXic)) / 2

	selLc := TagLcMass(p1, p2, pK, 0, BitBaryonPKPi, mid, nil)
	selXic := TagXicMass(p1, p2, pK, 0, BitBaryonPKPi, mid, nil)
	if selLc == selXic {
		t.Errorf("Lc and Xic taggers agreed (%b) for a mass between the references", selLc)
	}
}
