// Command hfskim runs the heavy-flavor and electromagnetic skims over a
// stream of events: it loads cuts and optional PID post-calibration and
// BDT models, runs the selection engines per event, and writes surviving
// candidates plus the event retention decision to a sqlite skim file.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hadron-data/hfskim/internal/ccdb"
	"github.com/hadron-data/hfskim/internal/config"
	"github.com/hadron-data/hfskim/internal/emskim"
	"github.com/hadron-data/hfskim/internal/hffilter"
	"github.com/hadron-data/hfskim/internal/monitoring"
	"github.com/hadron-data/hfskim/internal/onnxscore"
	"github.com/hadron-data/hfskim/internal/skimdb"
	"github.com/hadron-data/hfskim/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to cuts config JSON (defaults used when empty)")
	eventsPath = flag.String("events", "-", "Event stream: JSONL file, or - for stdin")
	outPath    = flag.String("out", "skim.db", "Output sqlite file")

	ccdbURL   = flag.String("ccdb", "", "Condition-database base URL (empty disables remote objects)")
	calibPath = flag.String("calib-path", "Analysis/PID/TPCPostCalib", "Calibration object path in the condition database")
	modelPath = flag.String("model-path", "Analysis/ML/HFTrigger", "Model blob base path in the condition database")
	timestamp = flag.Int64("timestamp", 0, "Condition-database timestamp (0 disables remote objects)")
	modelsDir = flag.String("models-dir", "models", "Directory for fetched model files")

	localModelDzero = flag.String("model-d0", "", "Local ONNX model for D0 scoring (overrides remote)")
	onnxLibrary     = flag.String("onnx-lib", "", "Path to the onnxruntime shared library")
	qaLevel         = flag.Int("qa", -1, "QA level override: 0 off, 1 mass, 2 full (-1 uses config)")
	showVersion     = flag.Bool("version", false, "Print version and exit")
)

// numFeatures2P is the D0 model input length produced by the engine's
// feature builder.
const numFeatures2P = 15

// eventRecord is one JSONL input line: the charm-skim event plus the
// electromagnetic candidates sharing its track list.
type eventRecord struct {
	hffilter.Event
	Gammas   []emskim.GammaConversion `json:"gammas,omitempty"`
	Clusters []emskim.CaloCluster     `json:"clusters,omitempty"`
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if err := run(context.Background()); err != nil {
		log.Fatalf("hfskim: %v", err)
	}
}

func run(ctx context.Context) error {
	monitoring.Logf("starting %s", version.String())
	cfg := &config.CutsConfig{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.GetQALevel()
	if *qaLevel >= 0 {
		level = hffilter.QALevel(*qaLevel)
	}
	qa := hffilter.NewQARecorder(level)

	calib, err := loadCalib(ctx, cfg)
	if err != nil {
		return err
	}

	scorers, closeScorers, err := loadScorers(ctx)
	if err != nil {
		return err
	}
	defer closeScorers()

	cfgJSON, _ := json.Marshal(cfg)
	db, err := skimdb.New(*outPath, string(cfgJSON))
	if err != nil {
		return err
	}
	defer db.Close()

	skimmer := hffilter.NewSkimmer(cfg.SelectionCuts(), calib, qa, scorers)
	emQA := emskim.NewQARecorder(level)
	emSkimmer := emskim.NewSkimmer(cfg.ClusterCuts(), cfg.DalitzSelector(), emQA)

	in, err := openEvents(*eventsPath)
	if err != nil {
		return err
	}
	defer in.Close()

	nEvents, nKept := 0, 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1<<20), 64<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if err := json.Unmarshal(line, &ev); err != nil {
			monitoring.Logf("skipping malformed event record: %v", err)
			continue
		}
		res := skimmer.Process(&ev.Event)
		if err := db.WriteEventResult(res); err != nil {
			return err
		}
		emRes := emSkimmer.Process(ev.ID, ev.Gammas, ev.Clusters, ev.Tracks)
		if !emRes.Empty() {
			if err := db.WriteEMResult(emRes); err != nil {
				return err
			}
		}
		nEvents++
		if res.Keep() {
			nKept++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read events: %w", err)
	}

	if err := db.WriteQA(qa); err != nil {
		return err
	}
	if err := db.WriteEMQA(emQA); err != nil {
		return err
	}
	monitoring.Logf("skim complete: %d events processed, %d kept (run %s)", nEvents, nKept, db.RunID)
	return nil
}

// loadCalib fetches PID post-calibration tables when enabled. A config
// that requests post-calibration without a reachable condition database
// is a startup error, not something to limp past.
func loadCalib(ctx context.Context, cfg *config.CutsConfig) (*hffilter.PIDCalib, error) {
	if !cfg.GetComputeTPCPostCalib() {
		return nil, nil
	}
	if *ccdbURL == "" || *timestamp <= 0 {
		return nil, fmt.Errorf("compute_tpc_post_calib requires -ccdb and -timestamp")
	}
	client := ccdb.NewClient(*ccdbURL)
	return client.FetchPIDCalib(ctx, *calibPath, *timestamp)
}

// loadScorers assembles the per-channel scorer map. Model-load failure
// is fatal; running without any model simply skips origin
// classification.
func loadScorers(ctx context.Context) (map[hffilter.CharmParticle]hffilter.Scorer, func(), error) {
	scorers := make(map[hffilter.CharmParticle]hffilter.Scorer)
	var sessions []*onnxscore.Session
	closeAll := func() {
		for _, s := range sessions {
			s.Close()
		}
	}

	path := *localModelDzero
	if path == "" && *ccdbURL != "" && *timestamp > 0 {
		client := ccdb.NewClient(*ccdbURL)
		fetched, err := client.FetchModel(ctx, *modelPath+"/"+hffilter.CharmDzero.String(), *timestamp, *modelsDir)
		if err != nil {
			return nil, closeAll, err
		}
		path = fetched
	}
	if path == "" {
		return scorers, closeAll, nil
	}

	session, err := onnxscore.Load(path, onnxscore.Options{
		LibraryPath: *onnxLibrary,
		NumInputs:   numFeatures2P,
	})
	if err != nil {
		return nil, closeAll, err
	}
	sessions = append(sessions, session)
	scorers[hffilter.CharmDzero] = session
	return scorers, closeAll, nil
}

func openEvents(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events: %w", err)
	}
	return f, nil
}
