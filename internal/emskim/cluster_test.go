package emskim

import (
	"testing"

	"github.com/hadron-data/hfskim/internal/hffilter"
)

func clusterCuts() ClusterCuts {
	return ClusterCuts{MinTime: -200, MaxTime: 200, MinM02: 0, MaxM02: 1}
}

func TestSelectCluster(t *testing.T) {
	cuts := clusterCuts()
	good := CaloCluster{Energy: 5, Eta: 0.2, Phi: 1.5, Time: 10, M02: 0.4}

	cases := []struct {
		name   string
		mutate func(*CaloCluster)
		want   bool
	}{
		{"in-time narrow cluster", func(c *CaloCluster) {}, true},
		{"too early", func(c *CaloCluster) { c.Time = -300 }, false},
		{"too late", func(c *CaloCluster) { c.Time = 250 }, false},
		{"elongated shower", func(c *CaloCluster) { c.M02 = 1.5 }, false},
		{"on the time edge", func(c *CaloCluster) { c.Time = 200 }, true},
	}
	for _, c := range cases {
		cl := good
		c.mutate(&cl)
		if got := SelectCluster(&cl, &cuts, nil); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSelectCluster_FilterCounterAndEnergy(t *testing.T) {
	cuts := clusterCuts()
	qa := NewQARecorder(hffilter.QAMass)

	good := CaloCluster{Energy: 5, Time: 10, M02: 0.4}
	late := CaloCluster{Energy: 8, Time: 400, M02: 0.4}
	wide := CaloCluster{Energy: 3, Time: 10, M02: 2}

	SelectCluster(&good, &cuts, qa)
	SelectCluster(&late, &cuts, qa)
	SelectCluster(&wide, &cuts, qa)

	if got := qa.ClusterSteps.Counts[ClusterStepIn]; got != 3 {
		t.Errorf("input slot = %d, want 3", got)
	}
	if got := qa.ClusterSteps.Counts[ClusterStepTime]; got != 1 {
		t.Errorf("time slot = %d, want 1", got)
	}
	if got := qa.ClusterSteps.Counts[ClusterStepM02]; got != 1 {
		t.Errorf("m02 slot = %d, want 1", got)
	}
	if got := qa.ClusterSteps.Counts[ClusterStepAccepted]; got != 1 {
		t.Errorf("accepted slot = %d, want 1", got)
	}

	// every cluster fills the input spectrum, only survivors the output
	if qa.ClusterEnergyIn.N != 3 || qa.ClusterEnergyOut.N != 1 {
		t.Errorf("energy fills = (%d, %d), want (3, 1)", qa.ClusterEnergyIn.N, qa.ClusterEnergyOut.N)
	}
}
