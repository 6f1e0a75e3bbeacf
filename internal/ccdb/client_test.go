package ccdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hadron-data/hfskim/internal/hffilter"
	"github.com/hadron-data/hfskim/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func testTable(value float32) *hffilter.CalibTable {
	return &hffilter.CalibTable{
		NCls:   hffilter.CalibAxis{Bins: 2, Min: 60, Max: 160},
		Pin:    hffilter.CalibAxis{Bins: 2, Min: 0, Max: 10},
		Eta:    hffilter.CalibAxis{Bins: 2, Min: -1, Max: 1},
		Values: []float32{value, value, value, value, value, value, value, value},
	}
}

func calibHandler(t *testing.T, protonValue, pionValue float32) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var mean float32
		switch {
		case strings.Contains(r.URL.Path, "Proton"):
			mean = protonValue
		case strings.Contains(r.URL.Path, "Pion"):
			mean = pionValue
		default:
			http.NotFound(w, r)
			return
		}
		payload := map[string]*hffilter.CalibTable{
			"mean":  testTable(mean),
			"sigma": testTable(1),
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode payload: %v", err)
		}
	}
}

func TestFetchPIDCalib(t *testing.T) {
	srv := httptest.NewServer(calibHandler(t, 0.5, -0.25))
	defer srv.Close()

	calib, err := NewClient(srv.URL).FetchPIDCalib(context.Background(), "Analysis/PIDCalib", 1700000000000)
	if err != nil {
		t.Fatalf("FetchPIDCalib: %v", err)
	}
	if !calib.Enabled {
		t.Error("fetched calibration should be enabled")
	}
	if got := calib.ProtonMean.Lookup(100, 1, 0); got != 0.5 {
		t.Errorf("proton mean = %v, want 0.5", got)
	}
	if got := calib.PionMean.Lookup(100, 1, 0); got != -0.25 {
		t.Errorf("pion mean = %v, want -0.25", got)
	}
	if got := calib.PionSigma.Lookup(100, 1, 0); got != 1 {
		t.Errorf("pion sigma = %v, want 1", got)
	}
}

func TestFetchPIDCalib_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "object not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchPIDCalib(context.Background(), "Analysis/PIDCalib", 1)
	if err == nil {
		t.Fatal("expected an error on 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry the status: %v", err)
	}
}

func TestFetchPIDCalib_InconsistentBinning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bad := testTable(0)
		bad.Values = bad.Values[:3] // does not match the declared binning
		payload := map[string]*hffilter.CalibTable{"mean": bad, "sigma": testTable(1)}
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchPIDCalib(context.Background(), "Analysis/PIDCalib", 1)
	if err == nil {
		t.Fatal("expected a binning consistency error")
	}
}

func TestFetchModel(t *testing.T) {
	const blob = "onnx-model-bytes"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(blob))
	}))
	defer srv.Close()

	destDir := filepath.Join(t.TempDir(), "models")
	path, err := NewClient(srv.URL).FetchModel(context.Background(), "Analysis/Model_D0", 42, destDir)
	if err != nil {
		t.Fatalf("FetchModel: %v", err)
	}
	if want := filepath.Join(destDir, "Model_D0_42.onnx"); path != want {
		t.Errorf("model path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read model: %v", err)
	}
	if string(data) != blob {
		t.Errorf("model content = %q, want %q", data, blob)
	}
}

func TestFetchModel_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewClient(srv.URL).FetchModel(ctx, "Analysis/Model_D0", 1, t.TempDir()); err == nil {
		t.Fatal("expected a context error")
	}
}
