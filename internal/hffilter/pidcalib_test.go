package hffilter

import (
	"math"
	"testing"
)

// uniformTable builds a calibration table filled with a constant value.
func uniformTable(v float32) *CalibTable {
	t := &CalibTable{
		NCls: CalibAxis{Bins: 4, Min: 60, Max: 160},
		Pin:  CalibAxis{Bins: 5, Min: 0, Max: 5},
		Eta:  CalibAxis{Bins: 3, Min: -0.9, Max: 0.9},
	}
	t.Values = make([]float32, 4*5*3)
	for i := range t.Values {
		t.Values[i] = v
	}
	return t
}

func TestCalibAxisFindBin_Clamps(t *testing.T) {
	a := CalibAxis{Bins: 10, Min: 0, Max: 10}

	cases := []struct {
		x    float64
		want int
	}{
		{-100, 0},
		{-0.001, 0},
		{0, 0},
		{3.5, 3},
		{9.999, 9},
		{10, 9},
		{1e9, 9},
	}
	for _, c := range cases {
		if got := a.FindBin(c.x); got != c.want {
			t.Errorf("FindBin(%v) = %d, want %d", c.x, got, c.want)
		}
	}
}

func TestCalibTableLookup_NeverOutOfRange(t *testing.T) {
	table := uniformTable(0)
	// mark every cell with its flat index so we can detect which bin a
	// lookup landed in
	for i := range table.Values {
		table.Values[i] = float32(i)
	}

	extremes := []struct{ ncls, pin, eta float64 }{
		{-1e6, -1e6, -1e6},
		{1e6, 1e6, 1e6},
		{0, 100, -50},
		{1e6, -1, 0},
	}
	for _, e := range extremes {
		v := table.Lookup(e.ncls, e.pin, e.eta)
		if int(v) < 0 || int(v) >= len(table.Values) {
			t.Errorf("Lookup(%v) landed outside the table: %v", e, v)
		}
	}
}

func TestCorrectedNSigma(t *testing.T) {
	mean := uniformTable(0.5)
	sigma := uniformTable(2.0)
	track := &Track{TPCNSigmaPr: 3.5, TPCNClsFound: 100, TPCInnerParam: 1.2, Eta: 0.1}

	got := CorrectedNSigma(mean, sigma, track, SpeciesProton)
	want := float32((3.5 - 0.5) / 2.0)
	if math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("CorrectedNSigma = %v, want %v", got, want)
	}
}

func TestPIDCalib_KaonUsesPionTables(t *testing.T) {
	calib := &PIDCalib{
		Enabled:     true,
		ProtonMean:  uniformTable(10),
		ProtonSigma: uniformTable(1),
		PionMean:    uniformTable(1),
		PionSigma:   uniformTable(2),
	}
	track := &Track{TPCNSigmaKa: 5, TPCNClsFound: 100, TPCInnerParam: 1, Eta: 0}

	got := calib.tpcNSigma(track, SpeciesKaon)
	want := float32((5.0 - 1.0) / 2.0) // pion tables, kaon raw Nsigma
	if got != want {
		t.Errorf("kaon corrected Nsigma = %v, want %v (pion tables)", got, want)
	}
}

func TestPIDCalib_DisabledPassesRawValue(t *testing.T) {
	track := &Track{TPCNSigmaPi: 1.25}

	var nilCalib *PIDCalib
	if got := nilCalib.tpcNSigma(track, SpeciesPion); got != 1.25 {
		t.Errorf("nil calib = %v, want raw 1.25", got)
	}
	disabled := &PIDCalib{Enabled: false}
	if got := disabled.tpcNSigma(track, SpeciesPion); got != 1.25 {
		t.Errorf("disabled calib = %v, want raw 1.25", got)
	}
}

func TestCorrectedNSigma_UnknownSpeciesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown species")
		}
	}()
	track := &Track{}
	track.tpcNSigma(PIDSpecies(42))
}
