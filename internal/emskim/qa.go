package emskim

import "github.com/hadron-data/hfskim/internal/hffilter"

// QA axes for the electromagnetic skims.
var (
	etaAxis    = hffilter.AxisSpec{Bins: 40, Min: -2, Max: 2}
	energyAxis = hffilter.AxisSpec{Bins: 200, Min: 0, Max: 100}
	alphaAxis  = hffilter.AxisSpec{Bins: 100, Min: -1, Max: 1}
	qtAxis     = hffilter.AxisSpec{Bins: 100, Min: 0, Max: 0.25}
	massEEAxis = hffilter.AxisSpec{Bins: 100, Min: 0, Max: 0.5}
	dalitzAxis = hffilter.AxisSpec{Bins: maxDalitzCutSets, Min: 0, Max: maxDalitzCutSets}
)

// QARecorder holds the diagnostic histograms for the electromagnetic
// skims. A nil recorder disables all QA; the gamma before/after and
// Armenteros fills additionally require QAFull, matching the staged
// fills of the selection.
type QARecorder struct {
	Level hffilter.QALevel

	GammaSteps        *hffilter.Hist1D
	GammaEtaBefore    *hffilter.Hist1D
	GammaEtaAfter     *hffilter.Hist1D
	GammaArmPodBefore *hffilter.Hist2D
	GammaArmPodAfter  *hffilter.Hist2D

	ClusterSteps     *hffilter.Hist1D
	ClusterEnergyIn  *hffilter.Hist1D
	ClusterEnergyOut *hffilter.Hist1D

	DalitzStats  *hffilter.Hist1D
	DalitzMassEE *hffilter.Hist2D // cut-set slot vs pair mass
}

// NewQARecorder creates the histogram set for the given level.
func NewQARecorder(level hffilter.QALevel) *QARecorder {
	qa := &QARecorder{Level: level}
	if level >= hffilter.QAMass {
		qa.GammaSteps = hffilter.NewHist1D("gammaSelSteps", hffilter.AxisSpec{Bins: int(NumGammaSteps), Min: 0, Max: float64(NumGammaSteps)})
		qa.ClusterSteps = hffilter.NewHist1D("clusterFilter", hffilter.AxisSpec{Bins: int(NumClusterSteps), Min: 0, Max: float64(NumClusterSteps)})
		qa.ClusterEnergyIn = hffilter.NewHist1D("clusterEnergyIn", energyAxis)
		qa.ClusterEnergyOut = hffilter.NewHist1D("clusterEnergyOut", energyAxis)
		qa.DalitzStats = hffilter.NewHist1D("dalitzPairStats", dalitzAxis)
		qa.DalitzMassEE = hffilter.NewHist2D("dalitzMassEE", dalitzAxis, massEEAxis)
	}
	if level >= hffilter.QAFull {
		qa.GammaEtaBefore = hffilter.NewHist1D("gammaEtaBefore", etaAxis)
		qa.GammaEtaAfter = hffilter.NewHist1D("gammaEtaAfter", etaAxis)
		qa.GammaArmPodBefore = hffilter.NewHist2D("gammaArmPodBefore", alphaAxis, qtAxis)
		qa.GammaArmPodAfter = hffilter.NewHist2D("gammaArmPodAfter", alphaAxis, qtAxis)
	}
	return qa
}

// Histograms returns every allocated histogram for persistence. The
// two dimensionalities are returned separately since their storage
// differs.
func (qa *QARecorder) Histograms() ([]*hffilter.Hist1D, []*hffilter.Hist2D) {
	if qa == nil {
		return nil, nil
	}
	h1 := []*hffilter.Hist1D{
		qa.GammaSteps, qa.GammaEtaBefore, qa.GammaEtaAfter,
		qa.ClusterSteps, qa.ClusterEnergyIn, qa.ClusterEnergyOut,
		qa.DalitzStats,
	}
	h2 := []*hffilter.Hist2D{qa.GammaArmPodBefore, qa.GammaArmPodAfter, qa.DalitzMassEE}
	return h1, h2
}

func (qa *QARecorder) gammaStep(step GammaSelStep) {
	if qa == nil {
		return
	}
	qa.GammaSteps.Fill(float64(step))
}

func (qa *QARecorder) gammaBefore(g *GammaConversion) {
	if qa == nil || qa.Level < hffilter.QAFull {
		return
	}
	qa.GammaEtaBefore.Fill(g.Eta)
	qa.GammaArmPodBefore.Fill(g.Alpha, g.QtArm)
}

func (qa *QARecorder) gammaAfter(g *GammaConversion) {
	if qa == nil || qa.Level < hffilter.QAFull {
		return
	}
	qa.GammaEtaAfter.Fill(g.Eta)
	qa.GammaArmPodAfter.Fill(g.Alpha, g.QtArm)
}

func (qa *QARecorder) clusterStep(step ClusterSelStep) {
	if qa == nil {
		return
	}
	qa.ClusterSteps.Fill(float64(step))
}

func (qa *QARecorder) clusterEnergyIn(e float64) {
	if qa == nil {
		return
	}
	qa.ClusterEnergyIn.Fill(e)
}

func (qa *QARecorder) clusterEnergyOut(e float64) {
	if qa == nil {
		return
	}
	qa.ClusterEnergyOut.Fill(e)
}

func (qa *QARecorder) dalitzPair(cutSet int, massEE float64) {
	if qa == nil {
		return
	}
	qa.DalitzStats.Fill(float64(cutSet))
	qa.DalitzMassEE.Fill(float64(cutSet), massEE)
}
