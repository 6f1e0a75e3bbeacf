package hffilter

// Sentinel returned by CountIndependentCandidates when at least two
// candidates in the event share no daughter track. The exact count
// beyond two is not distinguished: retention policy only needs the
// ternary 0/1/>=2 decision.
const AtLeastTwoIndependent = 2

// CountIndependentCandidates inspects the per-candidate daughter-track
// index sets of one event. With fewer than two candidates it returns
// the count as-is. Otherwise it computes, per candidate, how many other
// candidates it shares no index with; if that maximum is zero every
// candidate overlaps every other and the result is 0, else the result
// is AtLeastTwoIndependent.
func CountIndependentCandidates(indices [][]int64) int {
	if len(indices) < 2 {
		return len(indices)
	}

	maxIndependent := 0
	for i := range indices {
		nIndependent := 0
		for j := range indices {
			if i == j {
				continue
			}
			if !shareIndex(indices[i], indices[j]) {
				nIndependent++
			}
		}
		if nIndependent > maxIndependent {
			maxIndependent = nIndependent
		}
	}

	if maxIndependent == 0 {
		return 0
	}
	return AtLeastTwoIndependent
}

// shareIndex reports whether the two index sets intersect. Daughter
// sets hold two or three entries, so the quadratic scan beats any form
// of hashing here.
func shareIndex(a, b []int64) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// EventArena is per-event scratch storage sized to the event's track
// count. It caches single-track classification results so a track
// shared by many combinations is classified once, and it accumulates
// candidate daughter index sets for the retention decision. Reset
// reuses the backing storage instead of reallocating.
type EventArena struct {
	beautySel   []int8 // -1 unknown, else BeautyTrackSel
	femtoProton []int8 // -1 unknown, 0 fail, 1 pass

	sets  [][]int64
	nSets int
}

// NewEventArena returns an arena pre-sized for events of about
// nTracks tracks.
func NewEventArena(nTracks int) *EventArena {
	a := &EventArena{}
	a.Reset(nTracks)
	return a
}

// Reset prepares the arena for an event with nTracks tracks, growing
// the backing slices only when the event is larger than any before.
func (a *EventArena) Reset(nTracks int) {
	if cap(a.beautySel) < nTracks {
		a.beautySel = make([]int8, nTracks)
		a.femtoProton = make([]int8, nTracks)
	}
	a.beautySel = a.beautySel[:nTracks]
	a.femtoProton = a.femtoProton[:nTracks]
	for i := range a.beautySel {
		a.beautySel[i] = -1
		a.femtoProton[i] = -1
	}
	a.nSets = 0
}

// BeautySel returns the cached beauty bachelor selection for the track
// at index idx, computing it on first use.
func (a *EventArena) BeautySel(idx int, track *Track, cuts *BeautyTrackCuts) BeautyTrackSel {
	if a.beautySel[idx] < 0 {
		a.beautySel[idx] = int8(SelectTrackForBeauty(track, cuts))
	}
	return BeautyTrackSel(a.beautySel[idx])
}

// FemtoProton returns the cached femtoscopy proton selection for the
// track at index idx, computing it on first use.
func (a *EventArena) FemtoProton(idx int, track *Track, cuts *FemtoProtonCuts, calib *PIDCalib, qa *QARecorder) bool {
	if a.femtoProton[idx] < 0 {
		if SelectProtonForFemto(track, cuts, calib, qa) {
			a.femtoProton[idx] = 1
		} else {
			a.femtoProton[idx] = 0
		}
	}
	return a.femtoProton[idx] == 1
}

// AddCandidate records the daughter-track indices of one selected
// candidate.
func (a *EventArena) AddCandidate(daughters ...int64) {
	if a.nSets < len(a.sets) {
		a.sets[a.nSets] = append(a.sets[a.nSets][:0], daughters...)
	} else {
		a.sets = append(a.sets, append([]int64(nil), daughters...))
	}
	a.nSets++
}

// NumCandidates returns how many candidates were recorded for the
// current event.
func (a *EventArena) NumCandidates() int { return a.nSets }

// IndependentCount runs CountIndependentCandidates over the recorded
// sets.
func (a *EventArena) IndependentCount() int {
	return CountIndependentCandidates(a.sets[:a.nSets])
}
