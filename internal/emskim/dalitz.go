package emskim

import (
	"math"

	"github.com/hadron-data/hfskim/internal/hffilter"
)

// maxDalitzCutSets bounds the parallel cut definitions so per-track
// selections fit one byte, matching the skim table column.
const maxDalitzCutSets = 8

// DalitzTrackCuts is the single-electron selection for one cut set.
type DalitzTrackCuts struct {
	MinPIN          float64 // TPC inner momentum floor (GeV/c)
	MaxAbsEta       float64
	TPCNSigmaElLow  float64 // signed window on the TPC electron deviation
	TPCNSigmaElHigh float64
}

// DalitzPairCuts is the pair-level selection for one cut set.
type DalitzPairCuts struct {
	// MaxMassEE keeps only low-mass e+e- pairs; Dalitz decays and
	// conversions sit well below typical resonance masses.
	MaxMassEE float64
}

// DalitzCutSet pairs a track cut with the pair cut applied to
// candidates built from two tracks passing it. Cut sets share bit
// positions between the per-track filter map and the output tag.
type DalitzCutSet struct {
	Name  string
	Track DalitzTrackCuts
	Pair  DalitzPairCuts
}

// DalitzSelector tags electrons from Dalitz decays: per-track cut
// bitmaps first, then opposite-sign pairing where a pair passing cut
// set i sets bit i on both tracks.
type DalitzSelector struct {
	Sets []DalitzCutSet
}

// NewDalitzSelector builds a selector; more than maxDalitzCutSets cut
// sets is a configuration error handled at Validate time, so the excess
// is simply truncated here.
func NewDalitzSelector(sets []DalitzCutSet) *DalitzSelector {
	if len(sets) > maxDalitzCutSets {
		sets = sets[:maxDalitzCutSets]
	}
	return &DalitzSelector{Sets: sets}
}

// trackFilterMap evaluates every cut set against one track.
func (s *DalitzSelector) trackFilterMap(tr *hffilter.Track) uint8 {
	var m uint8
	for i, set := range s.Sets {
		c := set.Track
		if tr.TPCInnerParam < c.MinPIN {
			continue
		}
		if math.Abs(tr.Eta) > c.MaxAbsEta {
			continue
		}
		ns := float64(tr.TPCNSigmaEl)
		if ns < c.TPCNSigmaElLow || ns > c.TPCNSigmaElHigh {
			continue
		}
		m |= 1 << i
	}
	return m
}

// Tag runs the Dalitz selection over one event's tracks and returns the
// per-track tag bitmaps, index-aligned with the input. A pair
// contributes to cut set i only when both tracks pass its track cut,
// the charges are opposite, and the e+e- invariant mass passes its pair
// cut; both tracks then carry bit i.
func (s *DalitzSelector) Tag(tracks []hffilter.Track, qa *QARecorder) []uint8 {
	tags := make([]uint8, len(tracks))
	if len(s.Sets) == 0 {
		return tags
	}

	filter := make([]uint8, len(tracks))
	for i := range tracks {
		filter[i] = s.trackFilterMap(&tracks[i])
	}

	for i := range tracks {
		if filter[i] == 0 {
			continue
		}
		for j := i + 1; j < len(tracks); j++ {
			if tracks[i].Charge*tracks[j].Charge > 0 {
				continue
			}
			both := filter[i] & filter[j]
			if both == 0 {
				continue
			}

			mEE := hffilter.PairMass(tracks[i].P, tracks[j].P, hffilter.MassElectron, hffilter.MassElectron)
			for k, set := range s.Sets {
				bit := uint8(1) << k
				if both&bit == 0 {
					continue
				}
				if mEE > set.Pair.MaxMassEE {
					continue
				}
				tags[i] |= bit
				tags[j] |= bit
				qa.dalitzPair(k, mEE)
			}
		}
	}
	return tags
}
