package emskim

// CaloCluster is one calorimeter cluster as delivered by the
// reconstruction framework.
type CaloCluster struct {
	Energy float64 `json:"energy"` // cluster energy (GeV)
	Eta    float64 `json:"eta"`
	Phi    float64 `json:"phi"`
	Time   float64 `json:"time"` // cluster time (ns)
	M02    float64 `json:"m02"`  // long axis of the shower shape
}

// ClusterCuts configures the photon cluster skim.
type ClusterCuts struct {
	MinTime float64
	MaxTime float64
	MinM02  float64
	MaxM02  float64
}

// ClusterSelStep indexes the cluster filter counter.
type ClusterSelStep int

const (
	ClusterStepIn ClusterSelStep = iota
	ClusterStepTime
	ClusterStepM02
	ClusterStepAccepted
	NumClusterSteps
)

// SelectCluster applies the cluster time and shower-shape cuts.
func SelectCluster(c *CaloCluster, cuts *ClusterCuts, qa *QARecorder) bool {
	qa.clusterStep(ClusterStepIn)
	qa.clusterEnergyIn(c.Energy)

	if c.Time < cuts.MinTime || c.Time > cuts.MaxTime {
		qa.clusterStep(ClusterStepTime)
		return false
	}
	if c.M02 < cuts.MinM02 || c.M02 > cuts.MaxM02 {
		qa.clusterStep(ClusterStepM02)
		return false
	}

	qa.clusterStep(ClusterStepAccepted)
	qa.clusterEnergyOut(c.Energy)
	return true
}
