package hffilter

// CalibAxis is one uniformly binned axis of a calibration table.
type CalibAxis struct {
	Bins int     `json:"bins"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// FindBin returns the zero-based bin index containing x, clamped into
// [0, Bins-1]. Detector edge effects routinely put tracks outside the
// calibrated range; the nearest valid bin is used rather than failing.
func (a CalibAxis) FindBin(x float64) int {
	if a.Bins <= 1 {
		return 0
	}
	bin := int(float64(a.Bins) * (x - a.Min) / (a.Max - a.Min))
	if bin < 0 {
		return 0
	}
	if bin >= a.Bins {
		return a.Bins - 1
	}
	return bin
}

// CalibTable is a 3-D lookup table of calibration values with axes
// (TPC cluster count, TPC inner momentum, pseudorapidity). Values are
// stored in a flat slice indexed cluster-major.
type CalibTable struct {
	NCls   CalibAxis `json:"ncls"`
	Pin    CalibAxis `json:"pin"`
	Eta    CalibAxis `json:"eta"`
	Values []float32 `json:"values"` // len = NCls.Bins * Pin.Bins * Eta.Bins
}

// idx flattens (cluster, momentum, eta) bin indices.
func (t *CalibTable) idx(i, j, k int) int {
	return (i*t.Pin.Bins+j)*t.Eta.Bins + k
}

// At returns the table value at the given bin indices.
func (t *CalibTable) At(i, j, k int) float32 {
	return t.Values[t.idx(i, j, k)]
}

// Lookup locates the clamped 3-D bin for the track observables and
// returns the stored value.
func (t *CalibTable) Lookup(nCls, pIn, eta float64) float32 {
	return t.At(t.NCls.FindBin(nCls), t.Pin.FindBin(pIn), t.Eta.FindBin(eta))
}

// Valid reports whether the value slice matches the declared binning.
func (t *CalibTable) Valid() bool {
	return t != nil && len(t.Values) == t.NCls.Bins*t.Pin.Bins*t.Eta.Bins
}

// PIDCalib bundles the post-calibration tables for one processing run.
// Tables are immutable once loaded and safe for concurrent reads. A nil
// PIDCalib, or Enabled=false, leaves raw deviations untouched.
type PIDCalib struct {
	Enabled bool

	ProtonMean  *CalibTable
	ProtonSigma *CalibTable
	PionMean    *CalibTable
	PionSigma   *CalibTable
}

// tables returns the (mean, sigma) pair for the species. Kaon
// corrections reuse the pion tables: no dedicated kaon calibration is
// produced and the pion map is the accepted approximation.
func (c *PIDCalib) tables(species PIDSpecies) (*CalibTable, *CalibTable) {
	switch species {
	case SpeciesProton:
		return c.ProtonMean, c.ProtonSigma
	case SpeciesPion, SpeciesKaon, SpeciesElectron:
		return c.PionMean, c.PionSigma
	}
	panic("hffilter: unknown PID species " + species.String())
}

// CorrectedNSigma returns the bias-corrected TPC deviation for the
// species: (raw - mean) / sigma read at the track's clamped 3-D bin.
func CorrectedNSigma(mean, sigma *CalibTable, track *Track, species PIDSpecies) float32 {
	raw := track.tpcNSigma(species)
	m := mean.Lookup(track.TPCNClsFound, track.TPCInnerParam, track.Eta)
	w := sigma.Lookup(track.TPCNClsFound, track.TPCInnerParam, track.Eta)
	return (raw - m) / w
}

// tpcNSigma returns the TPC deviation for the species, post-calibrated
// when calibration is enabled.
func (c *PIDCalib) tpcNSigma(track *Track, species PIDSpecies) float32 {
	if c == nil || !c.Enabled {
		return track.tpcNSigma(species)
	}
	mean, sigma := c.tables(species)
	return CorrectedNSigma(mean, sigma, track, species)
}
