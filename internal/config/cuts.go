// Package config loads the selection cuts and thresholds for a skim
// run from JSON. Fields omitted from the file keep their defaults, so
// partial configs are safe; getters provide the fallback values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hadron-data/hfskim/internal/emskim"
	"github.com/hadron-data/hfskim/internal/hffilter"
)

// CutsConfig is the root configuration for the selection engine. All
// fields are optional in the JSON file.
type CutsConfig struct {
	// Beauty bachelor track cuts
	PtMinSoftPion       *float64  `json:"pt_min_soft_pion,omitempty"`
	PtMinBeautyBachelor *float64  `json:"pt_min_beauty_bachelor,omitempty"`
	PtBinsTrack         []float64 `json:"pt_bins_track,omitempty"`
	DCAXYMinTrack       []float64 `json:"dcaxy_min_track,omitempty"`
	DCAXYMaxTrack       []float64 `json:"dcaxy_max_track,omitempty"`

	// Femtoscopy proton cuts
	FemtoMinProtonPt     *float64 `json:"femto_min_proton_pt,omitempty"`
	FemtoMaxNSigmaProton *float64 `json:"femto_max_nsigma_proton,omitempty"`
	FemtoProtonOnlyTOF   *bool    `json:"femto_proton_only_tof,omitempty"`

	// PID Nsigma thresholds
	NSigmaTPCProtonBaryon *float64 `json:"nsigma_tpc_proton_baryon,omitempty"`
	NSigmaTOFProtonBaryon *float64 `json:"nsigma_tof_proton_baryon,omitempty"`
	NSigmaTPCKaon3Prong   *float64 `json:"nsigma_tpc_kaon_3prong,omitempty"`
	NSigmaTOFKaon3Prong   *float64 `json:"nsigma_tof_kaon_3prong,omitempty"`
	NSigmaTPCPiKaDzero    *float64 `json:"nsigma_tpc_pika_dzero,omitempty"`
	NSigmaTOFPiKaDzero    *float64 `json:"nsigma_tof_pika_dzero,omitempty"`

	// Invariant-mass windows
	DeltaMassCharm  *float64 `json:"delta_mass_charm,omitempty"`
	DeltaMassBeauty *float64 `json:"delta_mass_beauty,omitempty"`

	// BDT score thresholds keyed by charm particle name (D0, Dplus,
	// Ds, Lc, Xic). Absent particles use the defaults.
	BDT map[string]hffilter.ScoreThresholds `json:"bdt,omitempty"`

	// Calorimeter cluster skim windows
	ClusterMinTime *float64 `json:"cluster_min_time,omitempty"`
	ClusterMaxTime *float64 `json:"cluster_max_time,omitempty"`
	ClusterMinM02  *float64 `json:"cluster_min_m02,omitempty"`
	ClusterMaxM02  *float64 `json:"cluster_max_m02,omitempty"`

	// Dalitz electron cut sets, at most 8. Absent means a single
	// default set; an explicit empty list disables the tagging.
	DalitzSets []DalitzSetConfig `json:"dalitz_sets,omitempty"`

	// PID post-calibration toggle
	ComputeTPCPostCalib *bool `json:"compute_tpc_post_calib,omitempty"`

	// QA level: 0 off, 1 mass spectra, 2 full
	QALevel *int `json:"qa_level,omitempty"`
}

// DalitzSetConfig is one named Dalitz cut set: single-electron track
// cuts plus the pair mass ceiling.
type DalitzSetConfig struct {
	Name            string   `json:"name"`
	MinPIN          *float64 `json:"min_pin,omitempty"`
	MaxAbsEta       *float64 `json:"max_abs_eta,omitempty"`
	TPCNSigmaElLow  *float64 `json:"tpc_nsigma_el_low,omitempty"`
	TPCNSigmaElHigh *float64 `json:"tpc_nsigma_el_high,omitempty"`
	MaxMassEE       *float64 `json:"max_mass_ee,omitempty"`
}

// maxConfigSize bounds the config file read (1MB).
const maxConfigSize = 1 << 20

// Load reads and validates a CutsConfig from a JSON file.
func Load(path string) (*CutsConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &CutsConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration. Mismatched cut-list lengths are a
// caller bug and must abort the run before any event is processed.
func (c *CutsConfig) Validate() error {
	bins := c.GetPtBinsTrack()
	if len(bins) < 2 {
		return fmt.Errorf("pt_bins_track needs at least 2 edges, got %d", len(bins))
	}
	if !sort.Float64sAreSorted(bins) {
		return fmt.Errorf("pt_bins_track edges must be ascending")
	}
	nBins := len(bins) - 1
	if n := len(c.GetDCAXYMinTrack()); n != nBins {
		return fmt.Errorf("dcaxy_min_track has %d entries for %d pt bins", n, nBins)
	}
	if n := len(c.GetDCAXYMaxTrack()); n != nBins {
		return fmt.Errorf("dcaxy_max_track has %d entries for %d pt bins", n, nBins)
	}

	for name := range c.BDT {
		if !knownCharmName(name) {
			return fmt.Errorf("bdt thresholds reference unknown particle %q", name)
		}
	}

	if d := c.GetDeltaMassCharm(); d <= 0 {
		return fmt.Errorf("delta_mass_charm must be positive, got %f", d)
	}
	if d := c.GetDeltaMassBeauty(); d <= 0 {
		return fmt.Errorf("delta_mass_beauty must be positive, got %f", d)
	}

	if min, max := c.GetClusterMinTime(), c.GetClusterMaxTime(); min >= max {
		return fmt.Errorf("cluster time window [%f, %f] is empty", min, max)
	}
	if min, max := c.GetClusterMinM02(), c.GetClusterMaxM02(); min >= max {
		return fmt.Errorf("cluster m02 window [%f, %f] is empty", min, max)
	}
	if n := len(c.DalitzSets); n > 8 {
		return fmt.Errorf("at most 8 dalitz cut sets fit the tag byte, got %d", n)
	}
	return nil
}

func knownCharmName(name string) bool {
	for c := hffilter.CharmParticle(0); c < hffilter.NumCharmParticles; c++ {
		if c.String() == name {
			return true
		}
	}
	return false
}

func (c *CutsConfig) GetPtMinSoftPion() float64 {
	if c.PtMinSoftPion == nil {
		return 0.1
	}
	return *c.PtMinSoftPion
}

func (c *CutsConfig) GetPtMinBeautyBachelor() float64 {
	if c.PtMinBeautyBachelor == nil {
		return 0.5
	}
	return *c.PtMinBeautyBachelor
}

func (c *CutsConfig) GetPtBinsTrack() []float64 {
	if c.PtBinsTrack == nil {
		return []float64{0, 0.5, 1, 1.5, 2, 3, 1000}
	}
	return c.PtBinsTrack
}

func (c *CutsConfig) GetDCAXYMinTrack() []float64 {
	if c.DCAXYMinTrack == nil {
		return []float64{0.0025, 0.0025, 0.0025, 0.0025, 0.0025, 0.0025}
	}
	return c.DCAXYMinTrack
}

func (c *CutsConfig) GetDCAXYMaxTrack() []float64 {
	if c.DCAXYMaxTrack == nil {
		return []float64{1.0, 1.0, 1.0, 1.0, 1.0, 1.0}
	}
	return c.DCAXYMaxTrack
}

func (c *CutsConfig) GetFemtoMinProtonPt() float64 {
	if c.FemtoMinProtonPt == nil {
		return 0.5
	}
	return *c.FemtoMinProtonPt
}

func (c *CutsConfig) GetFemtoMaxNSigmaProton() float64 {
	if c.FemtoMaxNSigmaProton == nil {
		return 3.0
	}
	return *c.FemtoMaxNSigmaProton
}

func (c *CutsConfig) GetFemtoProtonOnlyTOF() bool {
	if c.FemtoProtonOnlyTOF == nil {
		return false
	}
	return *c.FemtoProtonOnlyTOF
}

func (c *CutsConfig) getNSigma(p *float64) float64 {
	if p == nil {
		return 3.0
	}
	return *p
}

func (c *CutsConfig) GetDeltaMassCharm() float64 {
	if c.DeltaMassCharm == nil {
		return 0.04
	}
	return *c.DeltaMassCharm
}

func (c *CutsConfig) GetDeltaMassBeauty() float64 {
	if c.DeltaMassBeauty == nil {
		return 0.3
	}
	return *c.DeltaMassBeauty
}

func (c *CutsConfig) GetClusterMinTime() float64 {
	if c.ClusterMinTime == nil {
		return -200 // ns
	}
	return *c.ClusterMinTime
}

func (c *CutsConfig) GetClusterMaxTime() float64 {
	if c.ClusterMaxTime == nil {
		return 200
	}
	return *c.ClusterMaxTime
}

func (c *CutsConfig) GetClusterMinM02() float64 {
	if c.ClusterMinM02 == nil {
		return 0
	}
	return *c.ClusterMinM02
}

func (c *CutsConfig) GetClusterMaxM02() float64 {
	if c.ClusterMaxM02 == nil {
		return 1
	}
	return *c.ClusterMaxM02
}

func (c *CutsConfig) GetComputeTPCPostCalib() bool {
	if c.ComputeTPCPostCalib == nil {
		return false
	}
	return *c.ComputeTPCPostCalib
}

func (c *CutsConfig) GetQALevel() hffilter.QALevel {
	if c.QALevel == nil {
		return hffilter.QAOff
	}
	return hffilter.QALevel(*c.QALevel)
}

// GetBDT returns the score thresholds for the charm particle, falling
// back to a background cut of 1 (accept all) and prompt/non-prompt cuts
// of 0 (tag all) when unset, so a run without tuned thresholds keeps
// every scored candidate.
func (c *CutsConfig) GetBDT(p hffilter.CharmParticle) hffilter.ScoreThresholds {
	if thr, ok := c.BDT[p.String()]; ok {
		return thr
	}
	return hffilter.ScoreThresholds{Background: 1, Prompt: 0, NonPrompt: 0}
}

// SelectionCuts materializes the validated configuration into the
// engine's cut bundle.
func (c *CutsConfig) SelectionCuts() *hffilter.SelectionCuts {
	cuts := &hffilter.SelectionCuts{
		Beauty: hffilter.BeautyTrackCuts{
			PtBins:        c.GetPtBinsTrack(),
			DCAXYMin:      c.GetDCAXYMinTrack(),
			DCAXYMax:      c.GetDCAXYMaxTrack(),
			PtMinSoftPion: c.GetPtMinSoftPion(),
			PtMinBachelor: c.GetPtMinBeautyBachelor(),
		},
		FemtoProton: hffilter.FemtoProtonCuts{
			MinPt:     c.GetFemtoMinProtonPt(),
			MaxNSigma: c.GetFemtoMaxNSigmaProton(),
			OnlyTOF:   c.GetFemtoProtonOnlyTOF(),
		},
		ProtonBaryon: hffilter.TwoStagePIDCuts{
			MaxNSigmaTPC: c.getNSigma(c.NSigmaTPCProtonBaryon),
			MaxNSigmaTOF: c.getNSigma(c.NSigmaTOFProtonBaryon),
		},
		Kaon3Prong: hffilter.TwoStagePIDCuts{
			MaxNSigmaTPC: c.getNSigma(c.NSigmaTPCKaon3Prong),
			MaxNSigmaTOF: c.getNSigma(c.NSigmaTOFKaon3Prong),
		},
		DzeroPID: hffilter.TwoStagePIDCuts{
			MaxNSigmaTPC: c.getNSigma(c.NSigmaTPCPiKaDzero),
			MaxNSigmaTOF: c.getNSigma(c.NSigmaTOFPiKaDzero),
		},
		DeltaMassCharm:  c.GetDeltaMassCharm(),
		DeltaMassBeauty: c.GetDeltaMassBeauty(),
	}
	for p := hffilter.CharmParticle(0); p < hffilter.NumCharmParticles; p++ {
		cuts.BDT[p] = c.GetBDT(p)
	}
	return cuts
}

// ClusterCuts materializes the calorimeter skim windows.
func (c *CutsConfig) ClusterCuts() emskim.ClusterCuts {
	return emskim.ClusterCuts{
		MinTime: c.GetClusterMinTime(),
		MaxTime: c.GetClusterMaxTime(),
		MinM02:  c.GetClusterMinM02(),
		MaxM02:  c.GetClusterMaxM02(),
	}
}

// DalitzSelector materializes the configured Dalitz cut sets. When the
// config carries none, a single permissive electron set is used.
func (c *CutsConfig) DalitzSelector() *emskim.DalitzSelector {
	if c.DalitzSets == nil {
		return emskim.NewDalitzSelector([]emskim.DalitzCutSet{defaultDalitzSet()})
	}

	sets := make([]emskim.DalitzCutSet, 0, len(c.DalitzSets))
	for _, sc := range c.DalitzSets {
		set := defaultDalitzSet()
		set.Name = sc.Name
		if sc.MinPIN != nil {
			set.Track.MinPIN = *sc.MinPIN
		}
		if sc.MaxAbsEta != nil {
			set.Track.MaxAbsEta = *sc.MaxAbsEta
		}
		if sc.TPCNSigmaElLow != nil {
			set.Track.TPCNSigmaElLow = *sc.TPCNSigmaElLow
		}
		if sc.TPCNSigmaElHigh != nil {
			set.Track.TPCNSigmaElHigh = *sc.TPCNSigmaElHigh
		}
		if sc.MaxMassEE != nil {
			set.Pair.MaxMassEE = *sc.MaxMassEE
		}
		sets = append(sets, set)
	}
	return emskim.NewDalitzSelector(sets)
}

func defaultDalitzSet() emskim.DalitzCutSet {
	return emskim.DalitzCutSet{
		Name: "electron",
		Track: emskim.DalitzTrackCuts{
			MinPIN:          0.1,
			MaxAbsEta:       0.9,
			TPCNSigmaElLow:  -3,
			TPCNSigmaElHigh: 3,
		},
		Pair: emskim.DalitzPairCuts{MaxMassEE: 0.15},
	}
}
