package hffilter

import "testing"

func TestCountIndependentCandidates(t *testing.T) {
	cases := []struct {
		name    string
		indices [][]int64
		want    int
	}{
		{"empty event", nil, 0},
		{"single candidate", [][]int64{{1, 2}}, 1},
		{"two sharing a track", [][]int64{{1, 2}, {1, 3}}, 0},
		{"two disjoint", [][]int64{{1, 2}, {3, 4}}, 2},
		{"three all overlapping", [][]int64{{1, 2}, {2, 3}, {3, 1}}, 0},
		{"overlap chain with one independent pair", [][]int64{{1, 2}, {2, 3}, {4, 5}}, 2},
		{"three prong disjoint from two prong", [][]int64{{1, 2, 3}, {4, 5}}, 2},
	}
	for _, c := range cases {
		if got := CountIndependentCandidates(c.indices); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestEventArena_CandidateSets(t *testing.T) {
	a := NewEventArena(8)
	a.AddCandidate(1, 2)
	a.AddCandidate(3, 4)
	if got := a.IndependentCount(); got != AtLeastTwoIndependent {
		t.Errorf("IndependentCount = %d, want %d", got, AtLeastTwoIndependent)
	}

	// reset must drop the recorded sets but keep reusing storage
	a.Reset(8)
	if got := a.NumCandidates(); got != 0 {
		t.Errorf("NumCandidates after Reset = %d, want 0", got)
	}
	a.AddCandidate(1, 2)
	if got := a.IndependentCount(); got != 1 {
		t.Errorf("IndependentCount = %d, want 1", got)
	}
}

func TestEventArena_CachesTrackSelections(t *testing.T) {
	cuts := beautyCuts()
	a := NewEventArena(2)
	tr := Track{Pt: 1.5, Eta: 0.3, DCAXY: 0.05, DCAZ: 0.1}

	if got := a.BeautySel(0, &tr, cuts); got != BeautyTrackRegular {
		t.Fatalf("BeautySel = %v, want regular", got)
	}
	// mutate the track: the cached result must win, proving the cut is
	// evaluated once per track per event
	tr.Pt = 0.01
	if got := a.BeautySel(0, &tr, cuts); got != BeautyTrackRegular {
		t.Errorf("BeautySel after mutation = %v, want cached regular", got)
	}

	// a reset clears the cache
	a.Reset(2)
	if got := a.BeautySel(0, &tr, cuts); got != BeautyTrackRejected {
		t.Errorf("BeautySel after Reset = %v, want rejected", got)
	}
}

func TestEventArena_GrowsForLargerEvents(t *testing.T) {
	a := NewEventArena(2)
	a.Reset(100)
	tr := Track{Pt: 1, Eta: 0, IsGlobalTrack: true, TPCNSigmaPr: 1, TOFNSigmaPr: 1}
	cuts := &FemtoProtonCuts{MinPt: 0.5, MaxNSigma: 3}
	if !a.FemtoProton(99, &tr, cuts, nil, nil) {
		t.Error("arena did not grow to the new event size")
	}
}
