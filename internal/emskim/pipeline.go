package emskim

import "github.com/hadron-data/hfskim/internal/hffilter"

// Skimmer runs the electromagnetic selections over events. Like the
// charm skimmer it holds only read-only configuration, so one instance
// is safe to share sequentially across events.
type Skimmer struct {
	Cluster ClusterCuts
	Dalitz  *DalitzSelector
	QA      *QARecorder
}

// NewSkimmer builds a Skimmer. A nil Dalitz selector disables the
// electron-pair tagging.
func NewSkimmer(cluster ClusterCuts, dalitz *DalitzSelector, qa *QARecorder) *Skimmer {
	return &Skimmer{Cluster: cluster, Dalitz: dalitz, QA: qa}
}

// GammaRow is one accepted photon conversion.
type GammaRow struct {
	V0Idx int
	Pt    float64
	Eta   float64
}

// ClusterRow is one accepted calorimeter cluster, reduced to the fields
// downstream photon analyses read.
type ClusterRow struct {
	Energy float64
	Eta    float64
	Phi    float64
}

// DalitzRow carries the cut-set bitmap for one tagged electron track.
type DalitzRow struct {
	TrackIdx int
	Bits     uint8
}

// Result is the per-event electromagnetic skim outcome.
type Result struct {
	EventID  int64
	Gammas   []GammaRow
	Clusters []ClusterRow
	Dalitz   []DalitzRow
}

// Empty reports whether the event produced no electromagnetic rows.
func (r *Result) Empty() bool {
	return len(r.Gammas) == 0 && len(r.Clusters) == 0 && len(r.Dalitz) == 0
}

// Process applies the photon, cluster, and Dalitz selections to one
// event. Tracks are shared with the charm skim; only tracks carrying at
// least one Dalitz tag produce a row.
func (s *Skimmer) Process(eventID int64, gammas []GammaConversion, clusters []CaloCluster, tracks []hffilter.Track) *Result {
	res := &Result{EventID: eventID}

	for i := range gammas {
		g := &gammas[i]
		if SelectGamma(g, s.QA) {
			res.Gammas = append(res.Gammas, GammaRow{V0Idx: i, Pt: g.Pt, Eta: g.Eta})
		}
	}

	for i := range clusters {
		c := &clusters[i]
		if SelectCluster(c, &s.Cluster, s.QA) {
			res.Clusters = append(res.Clusters, ClusterRow{Energy: c.Energy, Eta: c.Eta, Phi: c.Phi})
		}
	}

	if s.Dalitz != nil {
		for i, bits := range s.Dalitz.Tag(tracks, s.QA) {
			if bits != 0 {
				res.Dalitz = append(res.Dalitz, DalitzRow{TrackIdx: i, Bits: bits})
			}
		}
	}

	return res
}
