package hffilter

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hadron-data/hfskim/internal/monitoring"
)

// SelectionCuts bundles every threshold the per-event skim needs.
// Cuts are read-only for the duration of a processing run and safe to
// share across events.
type SelectionCuts struct {
	Beauty       BeautyTrackCuts
	FemtoProton  FemtoProtonCuts
	ProtonBaryon TwoStagePIDCuts
	Kaon3Prong   TwoStagePIDCuts
	DzeroPID     TwoStagePIDCuts

	// DeltaMassCharm is the half-width of the invariant-mass window
	// around the PDG mass for charm hypotheses.
	DeltaMassCharm float64
	// DeltaMassBeauty is the window half-width for beauty-hadron
	// combinations built from a charm candidate plus a bachelor track.
	DeltaMassBeauty float64

	BDT [NumCharmParticles]ScoreThresholds
}

// TwoProng references an opposite-sign track pair by index into the
// event's track slice.
type TwoProng struct {
	Pos int `json:"pos"`
	Neg int `json:"neg"`
}

// ThreeProng references a 3-track combination: two same-charge tracks
// and the opposite-charge one.
type ThreeProng struct {
	SameFirst  int `json:"same_first"`
	SameSecond int `json:"same_second"`
	Opp        int `json:"opp"`
}

// Event is one collision's worth of input: the track list plus the
// combinatorial candidates formed by the reconstruction framework.
type Event struct {
	ID          int64        `json:"id"`
	Tracks      []Track      `json:"tracks"`
	TwoProngs   []TwoProng   `json:"two_prongs"`
	ThreeProngs []ThreeProng `json:"three_prongs"`
}

// TwoProngRow is the skim output for one surviving D0 candidate.
type TwoProngRow struct {
	Pos, Neg        int
	Pt              float64
	Sel             SelBits
	Origin          OriginBits
	MassDzero       float64 // pi-K hypothesis, 0 when not tagged
	MassDzeroBar    float64 // K-pi hypothesis, 0 when not tagged
	Scores          [3]float32
	Scored          bool
	BeautyBachelors int // regular bachelor tracks forming an in-window B+
}

// ThreeProngRow is the skim output for one surviving 3-prong candidate.
// Channel bits are kept per charm hypothesis; a candidate may carry
// several simultaneously.
type ThreeProngRow struct {
	SameFirst, SameSecond, Opp int
	Pt                         float64
	Channel                    [NumCharmParticles]SelBits
	Origin                     [NumCharmParticles]OriginBits
	MassDplus                  float64
	MassDsKKPi, MassDsPiKK     float64
	MassLcPKPi, MassLcPiKP     float64
	MassXicPKPi, MassXicPiKP   float64
	DeltaMassKKFirst           float64
	DeltaMassKKSecond          float64
}

// FemtoRow pairs a selected proton with a surviving charm candidate.
type FemtoRow struct {
	ProtonIdx int
	Channel   CharmParticle
	KStar     float64
	NSigmaTPC float32
	NSigmaTOF float32
	ProtonPt  float64
}

// EventResult is the per-event skim outcome.
type EventResult struct {
	EventID int64
	// NumIndependent is 0, 1, or AtLeastTwoIndependent.
	NumIndependent int
	TwoProngs      []TwoProngRow
	ThreeProngs    []ThreeProngRow
	Femto          []FemtoRow
}

// Keep reports whether the event retains at least one candidate.
func (r *EventResult) Keep() bool {
	return len(r.TwoProngs) > 0 || len(r.ThreeProngs) > 0
}

// Skimmer runs the full selection chain over events. It holds only
// read-only configuration plus a per-event arena, so one Skimmer per
// worker is the intended concurrency model.
type Skimmer struct {
	Cuts   *SelectionCuts
	Calib  *PIDCalib
	QA     *QARecorder
	Scorer map[CharmParticle]Scorer // optional, nil entries skip scoring

	arena *EventArena
}

// NewSkimmer builds a Skimmer. Cuts must already be validated.
func NewSkimmer(cuts *SelectionCuts, calib *PIDCalib, qa *QARecorder, scorers map[CharmParticle]Scorer) *Skimmer {
	return &Skimmer{
		Cuts:   cuts,
		Calib:  calib,
		QA:     qa,
		Scorer: scorers,
		arena:  NewEventArena(64),
	}
}

// Process runs the selection chain for one event: single-track
// classification, hypothesis preselection, mass-window tagging, BDT
// origin classification, femtoscopy pairing, and the independent-
// candidate retention decision.
func (s *Skimmer) Process(ev *Event) *EventResult {
	s.arena.Reset(len(ev.Tracks))
	res := &EventResult{EventID: ev.ID}

	for _, tp := range ev.TwoProngs {
		if row, ok := s.processTwoProng(ev, tp); ok {
			res.TwoProngs = append(res.TwoProngs, row)
			s.arena.AddCandidate(int64(tp.Pos), int64(tp.Neg))
			s.femtoPairs(ev, res, CharmDzero, r3.Add(ev.Tracks[tp.Pos].P, ev.Tracks[tp.Neg].P), tp.Pos, tp.Neg)
		}
	}

	for _, tp := range ev.ThreeProngs {
		if row, ok := s.processThreeProng(ev, tp); ok {
			res.ThreeProngs = append(res.ThreeProngs, row)
			s.arena.AddCandidate(int64(tp.SameFirst), int64(tp.SameSecond), int64(tp.Opp))
			pCand := r3.Add(r3.Add(ev.Tracks[tp.SameFirst].P, ev.Tracks[tp.SameSecond].P), ev.Tracks[tp.Opp].P)
			for c := CharmDplus; c < NumCharmParticles; c++ {
				if !row.Channel[c].Empty() {
					s.femtoPairs(ev, res, c, pCand, tp.SameFirst, tp.SameSecond, tp.Opp)
				}
			}
		}
	}

	res.NumIndependent = s.arena.IndependentCount()
	return res
}

func (s *Skimmer) processTwoProng(ev *Event, tp TwoProng) (TwoProngRow, bool) {
	pos := &ev.Tracks[tp.Pos]
	neg := &ev.Tracks[tp.Neg]

	pre := PreselectDzero(pos, neg, &s.Cuts.DzeroPID, s.Calib)
	if pre.Empty() {
		return TwoProngRow{}, false
	}

	pD := r3.Add(pos.P, neg.P)
	ptD := Pt(pD)

	sel := TagDzeroMass(pos.P, neg.P, ptD, pre, s.Cuts.DeltaMassCharm, s.QA)
	if sel.Empty() {
		return TwoProngRow{}, false
	}

	row := TwoProngRow{Pos: tp.Pos, Neg: tp.Neg, Pt: ptD, Sel: sel}
	if sel.Has(BitDzero) {
		row.MassDzero = PairMass(pos.P, neg.P, MassPion, MassKaon)
	}
	if sel.Has(BitDzeroBar) {
		row.MassDzeroBar = PairMass(pos.P, neg.P, MassKaon, MassPion)
	}

	if scorer := s.Scorer[CharmDzero]; scorer != nil {
		scores, err := scorer.Predict(s.featuresTwoProng(pos, neg, ptD))
		if err != nil {
			monitoring.Logf("inference failed for D0 candidate (event %d): %v", ev.ID, err)
			scores = SentinelScores()
		}
		row.Scores = scores
		row.Scored = true
		row.Origin = ClassifyScores(scores[:], s.Cuts.BDT[CharmDzero])
		if row.Origin.Empty() {
			return TwoProngRow{}, false
		}
	}

	row.BeautyBachelors = s.countBeautyPartners(ev, pD, tp.Pos, tp.Neg)
	return row, true
}

func (s *Skimmer) processThreeProng(ev *Event, tp ThreeProng) (ThreeProngRow, bool) {
	first := &ev.Tracks[tp.SameFirst]
	second := &ev.Tracks[tp.SameSecond]
	opp := &ev.Tracks[tp.Opp]

	pCand := r3.Add(r3.Add(first.P, second.P), opp.P)
	ptCand := Pt(pCand)

	row := ThreeProngRow{SameFirst: tp.SameFirst, SameSecond: tp.SameSecond, Opp: tp.Opp, Pt: ptCand}

	if pre := PreselectDplus(opp, &s.Cuts.Kaon3Prong, s.Calib); !pre.Empty() {
		row.Channel[CharmDplus] = TagDplusMass(first.P, second.P, opp.P, ptCand, s.Cuts.DeltaMassCharm, s.QA)
		if !row.Channel[CharmDplus].Empty() {
			row.MassDplus = TripletMass(first.P, second.P, opp.P, MassPion, MassPion, MassKaon)
		}
	}

	if pre := PreselectDs(first.P, second.P, opp.P, opp, &s.Cuts.Kaon3Prong, s.Calib); !pre.Empty() {
		row.DeltaMassKKFirst = math.Abs(PairMass(first.P, opp.P, MassKaon, MassKaon) - MassPhi)
		row.DeltaMassKKSecond = math.Abs(PairMass(second.P, opp.P, MassKaon, MassKaon) - MassPhi)
		sel := TagDsMass(first.P, second.P, opp.P, ptCand, pre, s.Cuts.DeltaMassCharm, s.QA)
		row.Channel[CharmDs] = sel
		if sel.Has(BitDsKKPi) {
			row.MassDsKKPi = TripletMass(first.P, opp.P, second.P, MassKaon, MassKaon, MassPion)
		}
		if sel.Has(BitDsPiKK) {
			row.MassDsPiKK = TripletMass(first.P, opp.P, second.P, MassPion, MassKaon, MassKaon)
		}
	}

	if pre := PreselectCharmBaryon(first, second, opp, &s.Cuts.ProtonBaryon, &s.Cuts.Kaon3Prong, s.Calib); !pre.Empty() {
		selLc := TagLcMass(first.P, second.P, opp.P, ptCand, pre, s.Cuts.DeltaMassCharm, s.QA)
		selXic := TagXicMass(first.P, second.P, opp.P, ptCand, pre, s.Cuts.DeltaMassCharm, s.QA)
		row.Channel[CharmLc] = selLc
		row.Channel[CharmXic] = selXic
		if selLc.Has(BitBaryonPKPi) {
			row.MassLcPKPi = TripletMass(first.P, opp.P, second.P, MassProton, MassKaon, MassPion)
		}
		if selLc.Has(BitBaryonPiKP) {
			row.MassLcPiKP = TripletMass(first.P, opp.P, second.P, MassPion, MassKaon, MassProton)
		}
		if selXic.Has(BitBaryonPKPi) {
			row.MassXicPKPi = TripletMass(first.P, opp.P, second.P, MassProton, MassKaon, MassPion)
		}
		if selXic.Has(BitBaryonPiKP) {
			row.MassXicPiKP = TripletMass(first.P, opp.P, second.P, MassPion, MassKaon, MassProton)
		}
	}

	selected := false
	for c := CharmDplus; c < NumCharmParticles; c++ {
		if row.Channel[c].Empty() {
			continue
		}
		selected = true
		if scorer := s.Scorer[c]; scorer != nil {
			scores, err := scorer.Predict(s.featuresThreeProng(first, second, opp, ptCand, &row))
			if err != nil {
				monitoring.Logf("inference failed for %s candidate (event %d): %v", c, ev.ID, err)
				scores = SentinelScores()
			}
			row.Origin[c] = ClassifyScores(scores[:], s.Cuts.BDT[c])
			if row.Origin[c].Empty() {
				row.Channel[c] = 0
			}
		}
	}
	if !selected {
		return ThreeProngRow{}, false
	}
	// scoring may have cleared every channel
	anyLeft := false
	for c := CharmDplus; c < NumCharmParticles; c++ {
		if !row.Channel[c].Empty() {
			anyLeft = true
			break
		}
	}
	return row, anyLeft
}

// femtoPairs pairs every selected femto proton with the candidate and
// records k* in the pair rest frame. Daughter tracks are excluded.
func (s *Skimmer) femtoPairs(ev *Event, res *EventResult, channel CharmParticle, pCand r3.Vec, daughters ...int) {
	for i := range ev.Tracks {
		if isDaughter(i, daughters) {
			continue
		}
		tr := &ev.Tracks[i]
		if !s.arena.FemtoProton(i, tr, &s.Cuts.FemtoProton, s.Calib, s.QA) {
			continue
		}
		res.Femto = append(res.Femto, FemtoRow{
			ProtonIdx: i,
			Channel:   channel,
			KStar:     RelativeMomentum(tr.P, pCand, channel.ReferenceMass()),
			NSigmaTPC: tr.TPCNSigmaPr,
			NSigmaTOF: tr.TOFNSigmaPr,
			ProtonPt:  tr.Pt,
		})
	}
}

// countBeautyPartners counts bachelor tracks that combine with the D0
// candidate into an in-window B+ mass. Soft pions are tracked through
// the same selection but do not enter the B+ combination.
func (s *Skimmer) countBeautyPartners(ev *Event, pD r3.Vec, daughters ...int) int {
	n := 0
	for i := range ev.Tracks {
		if isDaughter(i, daughters) {
			continue
		}
		tr := &ev.Tracks[i]
		if s.arena.BeautySel(i, tr, &s.Cuts.Beauty) != BeautyTrackRegular {
			continue
		}
		mB := PairMass(pD, tr.P, MassDzero, MassPion)
		if math.Abs(mB-MassBplus) < s.Cuts.DeltaMassBeauty {
			n++
		}
	}
	return n
}

func isDaughter(idx int, daughters []int) bool {
	for _, d := range daughters {
		if d == idx {
			return true
		}
	}
	return false
}

// featuresTwoProng assembles the model input for a 2-prong candidate.
// Order matches the training export for the D0 model.
func (s *Skimmer) featuresTwoProng(pos, neg *Track, ptD float64) []float32 {
	return []float32{
		float32(ptD),
		float32(pos.Pt), float32(pos.DCAXY), float32(pos.DCAZ),
		pos.TPCNSigmaPi, pos.TPCNSigmaKa, pos.TOFNSigmaPi, pos.TOFNSigmaKa,
		float32(neg.Pt), float32(neg.DCAXY), float32(neg.DCAZ),
		neg.TPCNSigmaPi, neg.TPCNSigmaKa, neg.TOFNSigmaPi, neg.TOFNSigmaKa,
	}
}

// featuresThreeProng assembles the model input for a 3-prong candidate.
func (s *Skimmer) featuresThreeProng(first, second, opp *Track, ptCand float64, row *ThreeProngRow) []float32 {
	out := make([]float32, 0, 32)
	out = append(out, float32(ptCand), float32(row.DeltaMassKKFirst), float32(row.DeltaMassKKSecond))
	for _, tr := range []*Track{first, second, opp} {
		out = append(out,
			float32(tr.Pt), float32(tr.DCAXY), float32(tr.DCAZ),
			tr.TPCNSigmaPi, tr.TPCNSigmaKa, tr.TPCNSigmaPr,
			tr.TOFNSigmaPi, tr.TOFNSigmaKa, tr.TOFNSigmaPr,
		)
	}
	return out
}
