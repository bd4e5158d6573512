package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Corpus.Source != "file" {
		t.Errorf("expected default corpus source file, got %q", cfg.Corpus.Source)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Engine.TopK != 5 {
		t.Errorf("expected default top-K 5, got %d", cfg.Engine.TopK)
	}
	if cfg.Engine.PredictWorkers != 8 {
		t.Errorf("expected default worker pool 8, got %d", cfg.Engine.PredictWorkers)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RANKING_TOP_K", "3")
	t.Setenv("CONFIDENCE_BASE_OBSERVED", "0.9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port override, got %q", cfg.Server.Port)
	}
	if cfg.Engine.TopK != 3 {
		t.Errorf("expected top-K override, got %d", cfg.Engine.TopK)
	}
	if cfg.Calibration.BaseObserved != 0.9 {
		t.Errorf("expected calibration override, got %g", cfg.Calibration.BaseObserved)
	}
}

func TestLoadRejectsInvalidSource(t *testing.T) {
	t.Setenv("CORPUS_SOURCE", "ftp")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown corpus source")
	}
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("CORPUS_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error when postgres source has no database URL")
	}
}

func TestDefaultCalibrationConstants(t *testing.T) {
	cal := DefaultCalibration()
	if cal.BaseObserved != 0.85 || cal.BaseExtrapolated != 0.55 {
		t.Errorf("unexpected confidence bases: %+v", cal)
	}
	if cal.ConfidenceFloor != 0.4 || cal.CoveragePenalty != 0.85 {
		t.Errorf("unexpected floor/penalty: %+v", cal)
	}
	if cal.RiskLowCV != 0.15 || cal.RiskHighCV != 0.35 {
		t.Errorf("unexpected risk thresholds: %+v", cal)
	}
	if cal.DensitySaturation != 5 {
		t.Errorf("unexpected density saturation: %d", cal.DensitySaturation)
	}
}
