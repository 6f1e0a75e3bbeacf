// Package skimdb persists skim output to sqlite: run metadata, per-event
// retention decisions, surviving candidates, femtoscopy pairs, and the
// electromagnetic skim rows.
package skimdb

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hadron-data/hfskim/internal/emskim"
	"github.com/hadron-data/hfskim/internal/hffilter"
	"github.com/hadron-data/hfskim/internal/monitoring"
)

//go:embed schema.sql
var schemaSQL string

// SkimDB wraps the sqlite handle for one output file.
type SkimDB struct {
	*sql.DB
	RunID string
}

// New opens (or creates) the skim database at path, applies the schema,
// and registers a fresh run keyed by a new UUID.
func New(path, configJSON string) (*SkimDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	runID := uuid.NewString()
	if _, err := db.Exec(`INSERT INTO runs (run_id, config_json) VALUES (?, ?)`, runID, configJSON); err != nil {
		db.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}

	monitoring.Logf("initialized skim database %s (run %s)", path, runID)
	return &SkimDB{DB: db, RunID: runID}, nil
}

// WriteEventResult stores one event's decision and all its rows in a
// single transaction.
func (db *SkimDB) WriteEventResult(res *hffilter.EventResult) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	kept := 0
	if res.Keep() {
		kept = 1
	}
	if _, err := tx.Exec(
		`INSERT INTO events (run_id, event_id, num_independent, kept) VALUES (?, ?, ?, ?)`,
		db.RunID, res.EventID, res.NumIndependent, kept); err != nil {
		return fmt.Errorf("insert event %d: %w", res.EventID, err)
	}

	for i := range res.TwoProngs {
		if err := insertTwoProng(tx, db.RunID, res.EventID, &res.TwoProngs[i]); err != nil {
			return err
		}
	}
	for i := range res.ThreeProngs {
		if err := insertThreeProng(tx, db.RunID, res.EventID, &res.ThreeProngs[i]); err != nil {
			return err
		}
	}
	for i := range res.Femto {
		if err := insertFemto(tx, db.RunID, res.EventID, &res.Femto[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertTwoProng(tx *sql.Tx, runID string, eventID int64, row *hffilter.TwoProngRow) error {
	var bkg, prompt, nonprompt interface{}
	if row.Scored {
		bkg, prompt, nonprompt = row.Scores[0], row.Scores[1], row.Scores[2]
	}
	_, err := tx.Exec(`INSERT INTO cand_2prong
		(run_id, event_id, pos_idx, neg_idx, pt, sel_bits, origin_bits,
		 mass_d0, mass_d0bar, score_bkg, score_prompt, score_nonprompt, beauty_bachelors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, eventID, row.Pos, row.Neg, row.Pt, int(row.Sel), int(row.Origin),
		row.MassDzero, row.MassDzeroBar, bkg, prompt, nonprompt, row.BeautyBachelors)
	if err != nil {
		return fmt.Errorf("insert 2-prong candidate: %w", err)
	}
	return nil
}

func insertThreeProng(tx *sql.Tx, runID string, eventID int64, row *hffilter.ThreeProngRow) error {
	_, err := tx.Exec(`INSERT INTO cand_3prong
		(run_id, event_id, first_idx, second_idx, opp_idx, pt,
		 sel_dplus, sel_ds, sel_lc, sel_xic,
		 mass_dplus, mass_ds_kkpi, mass_ds_pikk,
		 mass_lc_pkpi, mass_lc_pikp, mass_xic_pkpi, mass_xic_pikp,
		 dmass_kk_first, dmass_kk_second)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, eventID, row.SameFirst, row.SameSecond, row.Opp, row.Pt,
		int(row.Channel[hffilter.CharmDplus]), int(row.Channel[hffilter.CharmDs]),
		int(row.Channel[hffilter.CharmLc]), int(row.Channel[hffilter.CharmXic]),
		row.MassDplus, row.MassDsKKPi, row.MassDsPiKK,
		row.MassLcPKPi, row.MassLcPiKP, row.MassXicPKPi, row.MassXicPiKP,
		row.DeltaMassKKFirst, row.DeltaMassKKSecond)
	if err != nil {
		return fmt.Errorf("insert 3-prong candidate: %w", err)
	}
	return nil
}

func insertFemto(tx *sql.Tx, runID string, eventID int64, row *hffilter.FemtoRow) error {
	_, err := tx.Exec(`INSERT INTO femto_pairs
		(run_id, event_id, proton_idx, channel, kstar, nsigma_tpc, nsigma_tof, proton_pt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, eventID, row.ProtonIdx, row.Channel.String(), row.KStar,
		row.NSigmaTPC, row.NSigmaTOF, row.ProtonPt)
	if err != nil {
		return fmt.Errorf("insert femto pair: %w", err)
	}
	return nil
}

// WriteEMResult stores one event's electromagnetic skim rows in a
// single transaction.
func (db *SkimDB) WriteEMResult(res *emskim.Result) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, g := range res.Gammas {
		if _, err := tx.Exec(`INSERT INTO gammas (run_id, event_id, v0_idx, pt, eta) VALUES (?, ?, ?, ?, ?)`,
			db.RunID, res.EventID, g.V0Idx, g.Pt, g.Eta); err != nil {
			return fmt.Errorf("insert gamma: %w", err)
		}
	}
	for _, c := range res.Clusters {
		if _, err := tx.Exec(`INSERT INTO calo_clusters (run_id, event_id, energy, eta, phi) VALUES (?, ?, ?, ?, ?)`,
			db.RunID, res.EventID, c.Energy, c.Eta, c.Phi); err != nil {
			return fmt.Errorf("insert cluster: %w", err)
		}
	}
	for _, d := range res.Dalitz {
		if _, err := tx.Exec(`INSERT INTO dalitz_tracks (run_id, event_id, track_idx, bits) VALUES (?, ?, ?, ?)`,
			db.RunID, res.EventID, d.TrackIdx, d.Bits); err != nil {
			return fmt.Errorf("insert dalitz track: %w", err)
		}
	}

	return tx.Commit()
}

// WriteQA persists histogram counts for the run so downstream tooling
// can render them. Stored as JSON-ish rows would overreach; a compact
// counts table keeps the engine render-free.
func (db *SkimDB) WriteQA(qa *hffilter.QARecorder) error {
	if qa == nil || qa.Level == hffilter.QAOff {
		return nil
	}

	hists := []*hffilter.Hist2D{qa.ProtonTPC, qa.ProtonTOF}
	for _, h := range qa.MassVsPt {
		hists = append(hists, h)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, h := range hists {
		if err := insertHist2D(tx, db.RunID, h); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// WriteEMQA persists the electromagnetic QA histograms alongside the
// charm ones; names are distinct so they share the table.
func (db *SkimDB) WriteEMQA(qa *emskim.QARecorder) error {
	if qa == nil || qa.Level == hffilter.QAOff {
		return nil
	}

	h1, h2 := qa.Histograms()
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, h := range h1 {
		if err := insertHist1D(tx, db.RunID, h); err != nil {
			return err
		}
	}
	for _, h := range h2 {
		if err := insertHist2D(tx, db.RunID, h); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertHist1D(tx *sql.Tx, runID string, h *hffilter.Hist1D) error {
	if h == nil {
		return nil
	}
	for i, n := range h.Counts {
		if n == 0 {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO qa_hist (run_id, name, xbin, ybin, count) VALUES (?, ?, ?, NULL, ?)`,
			runID, h.Name, i, n); err != nil {
			return fmt.Errorf("insert qa counts for %s: %w", h.Name, err)
		}
	}
	return nil
}

func insertHist2D(tx *sql.Tx, runID string, h *hffilter.Hist2D) error {
	if h == nil {
		return nil
	}
	for i := 0; i < h.X.Bins; i++ {
		for j := 0; j < h.Y.Bins; j++ {
			n := h.Counts[i*h.Y.Bins+j]
			if n == 0 {
				continue
			}
			if _, err := tx.Exec(`INSERT INTO qa_hist (run_id, name, xbin, ybin, count) VALUES (?, ?, ?, ?, ?)`,
				runID, h.Name, i, j, n); err != nil {
				return fmt.Errorf("insert qa counts for %s: %w", h.Name, err)
			}
		}
	}
	return nil
}
