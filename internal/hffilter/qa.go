package hffilter

// AxisSpec describes one uniformly binned histogram axis.
type AxisSpec struct {
	Bins int
	Min  float64
	Max  float64
}

// Standard QA axes.
var (
	PtAxis     = AxisSpec{50, 0, 50}
	MomAxis    = AxisSpec{50, 0, 10}
	KstarAxis  = AxisSpec{100, 0, 1}
	NSigmaAxis = AxisSpec{100, -10, 10}
	BDTAxis    = AxisSpec{100, 0, 1}
)

// MassAxes gives the invariant-mass QA axis per charm channel.
var MassAxes = [NumCharmParticles]AxisSpec{
	{100, 1.65, 2.05}, // D0
	{100, 1.65, 2.05}, // D+
	{100, 1.75, 2.15}, // Ds
	{100, 2.05, 2.45}, // Lc
	{100, 2.25, 2.65}, // Xic
}

// Hist1D is a fixed-binning 1-D counts accumulator with the same
// contract as Hist2D: counts only, out-of-range entries dropped, nil
// receiver ignores fills.
type Hist1D struct {
	Name   string
	X      AxisSpec
	Counts []uint64
	N      uint64
}

// NewHist1D allocates a named 1-D histogram.
func NewHist1D(name string, x AxisSpec) *Hist1D {
	return &Hist1D{Name: name, X: x, Counts: make([]uint64, x.Bins)}
}

// Fill records one entry.
func (h *Hist1D) Fill(x float64) {
	if h == nil {
		return
	}
	i := h.X.bin(x)
	if i < 0 {
		return
	}
	h.Counts[i]++
	h.N++
}

// Hist2D is a fixed-binning 2-D counts accumulator. Rendering and
// persistence are the caller's concern; the engine only fills counts.
// Entries outside the axis ranges are dropped.
type Hist2D struct {
	Name   string
	X, Y   AxisSpec
	Counts []uint64 // len = X.Bins * Y.Bins, x-major
	N      uint64   // total accepted entries
}

// NewHist2D allocates a named 2-D histogram.
func NewHist2D(name string, x, y AxisSpec) *Hist2D {
	return &Hist2D{Name: name, X: x, Y: y, Counts: make([]uint64, x.Bins*y.Bins)}
}

func (a AxisSpec) bin(v float64) int {
	if v < a.Min || v >= a.Max {
		return -1
	}
	return int(float64(a.Bins) * (v - a.Min) / (a.Max - a.Min))
}

// Fill records one (x, y) entry. A nil histogram ignores fills so QA can
// be disabled without branching at every call site.
func (h *Hist2D) Fill(x, y float64) {
	if h == nil {
		return
	}
	i, j := h.X.bin(x), h.Y.bin(y)
	if i < 0 || j < 0 {
		return
	}
	h.Counts[i*h.Y.Bins+j]++
	h.N++
}

// QALevel controls which diagnostic fills are active.
type QALevel int

const (
	QAOff  QALevel = 0
	QAMass QALevel = 1 // invariant-mass spectra only
	QAFull QALevel = 2 // mass spectra plus PID fills
)

// QARecorder holds the engine's diagnostic histograms. A nil recorder
// disables all QA.
type QARecorder struct {
	Level QALevel

	ProtonTPC *Hist2D // momentum vs NsigmaTPC for femto protons
	ProtonTOF *Hist2D // momentum vs NsigmaTOF for femto protons

	MassVsPt [NumCharmParticles]*Hist2D
}

// NewQARecorder creates the histogram set for the given level. Levels
// below QAMass return a recorder with no allocated histograms.
func NewQARecorder(level QALevel) *QARecorder {
	qa := &QARecorder{Level: level}
	if level >= QAMass {
		for c := CharmParticle(0); c < NumCharmParticles; c++ {
			qa.MassVsPt[c] = NewHist2D("massVsPt"+c.String(), PtAxis, MassAxes[c])
		}
	}
	if level >= QAFull {
		qa.ProtonTPC = NewHist2D("protonTPCPID", MomAxis, NSigmaAxis)
		qa.ProtonTOF = NewHist2D("protonTOFPID", MomAxis, NSigmaAxis)
	}
	return qa
}

// massHist returns the mass QA histogram for the channel, or nil when
// mass QA is off.
func (qa *QARecorder) massHist(c CharmParticle) *Hist2D {
	if qa == nil || qa.Level < QAMass {
		return nil
	}
	return qa.MassVsPt[c]
}
