package hffilter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hadron-data/hfskim/internal/monitoring"
)

// stubScorer implements Scorer with a canned response.
type stubScorer struct {
	scores [3]float32
	err    error
	calls  int
}

func (s *stubScorer) Predict(features []float32) ([3]float32, error) {
	s.calls++
	return s.scores, s.err
}

func testCuts() *SelectionCuts {
	cuts := &SelectionCuts{
		Beauty: BeautyTrackCuts{
			PtBins:        []float64{0, 1, 2, 5, 1000},
			DCAXYMin:      []float64{0.002, 0.002, 0.002, 0.002},
			DCAXYMax:      []float64{1, 1, 1, 1},
			PtMinSoftPion: 0.1,
			PtMinBachelor: 0.5,
		},
		FemtoProton:     FemtoProtonCuts{MinPt: 0.5, MaxNSigma: 3},
		ProtonBaryon:    TwoStagePIDCuts{MaxNSigmaTPC: 3, MaxNSigmaTOF: 3},
		Kaon3Prong:      TwoStagePIDCuts{MaxNSigmaTPC: 3, MaxNSigmaTOF: 3},
		DzeroPID:        TwoStagePIDCuts{MaxNSigmaTPC: 3, MaxNSigmaTOF: 3},
		DeltaMassCharm:  0.04,
		DeltaMassBeauty: 0.3,
	}
	for p := CharmParticle(0); p < NumCharmParticles; p++ {
		cuts.BDT[p] = ScoreThresholds{Background: 0.5, Prompt: 0.5, NonPrompt: 0.5}
	}
	return cuts
}

// dzeroTrack builds a PID-clean track with the given momentum.
func dzeroTrack(p r3.Vec) Track {
	return Track{P: p, Pt: Pt(p)}
}

func dzeroEvent() *Event {
	pPos, pNeg := dzeroPair()
	return &Event{
		ID:        7,
		Tracks:    []Track{dzeroTrack(pPos), dzeroTrack(pNeg)},
		TwoProngs: []TwoProng{{Pos: 0, Neg: 1}},
	}
}

func TestSkimmer_DzeroCandidate(t *testing.T) {
	t.Parallel()

	t.Run("in-window candidate survives with both hypotheses", func(t *testing.T) {
		s := NewSkimmer(testCuts(), nil, nil, nil)
		res := s.Process(dzeroEvent())

		require.Len(t, res.TwoProngs, 1)
		row := res.TwoProngs[0]
		assert.True(t, row.Sel.Has(BitDzero|BitDzeroBar))
		assert.InDelta(t, MassDzero, row.MassDzero, 1e-6)
		assert.InDelta(t, MassDzero, row.MassDzeroBar, 1e-6)
		assert.False(t, row.Scored, "no scorer configured")
		assert.Equal(t, 1, res.NumIndependent)
		assert.True(t, res.Keep())
	})

	t.Run("PID-incompatible pair is dropped before mass", func(t *testing.T) {
		ev := dzeroEvent()
		ev.Tracks[0].TPCNSigmaPi = 9
		ev.Tracks[0].TPCNSigmaKa = 9

		s := NewSkimmer(testCuts(), nil, nil, nil)
		res := s.Process(ev)
		assert.Empty(t, res.TwoProngs)
		assert.Zero(t, res.NumIndependent)
		assert.False(t, res.Keep())
	})

	t.Run("mass QA filled for tested hypotheses", func(t *testing.T) {
		qa := NewQARecorder(QAMass)
		s := NewSkimmer(testCuts(), nil, qa, nil)
		s.Process(dzeroEvent())
		assert.EqualValues(t, 2, qa.MassVsPt[CharmDzero].N)
	})
}

func TestSkimmer_Scoring(t *testing.T) {
	t.Run("prompt candidate keeps its origin bit", func(t *testing.T) {
		scorer := &stubScorer{scores: [3]float32{0.1, 0.9, 0.1}}
		s := NewSkimmer(testCuts(), nil, nil, map[CharmParticle]Scorer{CharmDzero: scorer})
		res := s.Process(dzeroEvent())

		require.Len(t, res.TwoProngs, 1)
		row := res.TwoProngs[0]
		assert.True(t, row.Scored)
		assert.True(t, row.Origin.Has(BitPrompt))
		assert.False(t, row.Origin.Has(BitNonPrompt))
		assert.Equal(t, 1, scorer.calls)
	})

	t.Run("background-like candidate is rejected", func(t *testing.T) {
		scorer := &stubScorer{scores: [3]float32{0.9, 0.9, 0.9}}
		s := NewSkimmer(testCuts(), nil, nil, map[CharmParticle]Scorer{CharmDzero: scorer})
		res := s.Process(dzeroEvent())
		assert.Empty(t, res.TwoProngs)
	})

	t.Run("inference error falls back to the sentinel and rejects", func(t *testing.T) {
		prev := monitoring.Logf
		monitoring.SetLogger(nil)
		defer monitoring.SetLogger(prev)

		scorer := &stubScorer{err: errors.New("malformed output tensor")}
		s := NewSkimmer(testCuts(), nil, nil, map[CharmParticle]Scorer{CharmDzero: scorer})
		res := s.Process(dzeroEvent())
		assert.Empty(t, res.TwoProngs, "sentinel scores must fail classification")
	})
}

func TestSkimmer_ThreeProng(t *testing.T) {
	t.Parallel()

	// a generous mass window isolates the PID plumbing from kinematics
	cuts := testCuts()
	cuts.DeltaMassCharm = 100

	ev := &Event{
		ID: 11,
		Tracks: []Track{
			{P: r3.Vec{X: 0.4}, Pt: 0.4, TPCNSigmaPr: 1},                                  // same-charge, proton-like
			{P: r3.Vec{X: -0.3, Y: 0.2}, Pt: Pt(r3.Vec{X: -0.3, Y: 0.2}), TPCNSigmaPr: 9}, // same-charge, not a proton
			{P: r3.Vec{Y: -0.4}, Pt: 0.4, TPCNSigmaKa: 1},                                 // opposite, kaon-like
		},
		ThreeProngs: []ThreeProng{{SameFirst: 0, SameSecond: 1, Opp: 2}},
	}

	s := NewSkimmer(cuts, nil, nil, nil)
	res := s.Process(ev)

	require.Len(t, res.ThreeProngs, 1)
	row := res.ThreeProngs[0]
	assert.True(t, row.Channel[CharmDplus].Has(BitDplusKPiPi))
	assert.True(t, row.Channel[CharmLc].Has(BitBaryonPKPi), "first same-charge track is proton-like")
	assert.False(t, row.Channel[CharmLc].Has(BitBaryonPiKP), "second same-charge track is not")
	assert.Positive(t, row.MassDplus)
	assert.Positive(t, row.MassLcPKPi)
	assert.Equal(t, 1, res.NumIndependent)
}

func TestSkimmer_FemtoPairing(t *testing.T) {
	t.Parallel()

	t.Run("selected proton pairs with the candidate", func(t *testing.T) {
		ev := dzeroEvent()
		// a clean femto proton alongside the D0 daughters
		proton := Track{P: r3.Vec{Y: 1}, Pt: 1, IsGlobalTrack: true, TPCNSigmaPr: 1, TOFNSigmaPr: 1}
		ev.Tracks = append(ev.Tracks, proton)

		s := NewSkimmer(testCuts(), nil, nil, nil)
		res := s.Process(ev)

		require.Len(t, res.Femto, 1)
		pair := res.Femto[0]
		assert.Equal(t, 2, pair.ProtonIdx)
		assert.Equal(t, CharmDzero, pair.Channel)
		assert.Positive(t, pair.KStar)
	})

	t.Run("daughters never pair with their own candidate", func(t *testing.T) {
		ev := dzeroEvent()
		// make both daughters pass the femto proton selection on their own
		for i := range ev.Tracks {
			ev.Tracks[i].IsGlobalTrack = true
		}

		s := NewSkimmer(testCuts(), nil, nil, nil)
		res := s.Process(ev)

		require.Len(t, res.TwoProngs, 1)
		assert.Empty(t, res.Femto)
	})
}

func TestSkimmer_IndependentCandidateDecision(t *testing.T) {
	t.Parallel()

	pPos, pNeg := dzeroPair()
	ev := &Event{
		ID: 3,
		Tracks: []Track{
			dzeroTrack(pPos), dzeroTrack(pNeg),
			dzeroTrack(pPos), dzeroTrack(pNeg),
		},
		TwoProngs: []TwoProng{{Pos: 0, Neg: 1}, {Pos: 2, Neg: 3}},
	}

	s := NewSkimmer(testCuts(), nil, nil, nil)
	res := s.Process(ev)
	require.Len(t, res.TwoProngs, 2)
	assert.Equal(t, AtLeastTwoIndependent, res.NumIndependent)

	// sharing the negative track collapses the decision to zero
	ev.TwoProngs = []TwoProng{{Pos: 0, Neg: 1}, {Pos: 2, Neg: 1}}
	res = s.Process(ev)
	require.Len(t, res.TwoProngs, 2)
	assert.Equal(t, 0, res.NumIndependent)
}
