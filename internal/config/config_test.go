package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Recognition.Tolerance != 0.6 {
		t.Errorf("expected default tolerance 0.6, got %f", cfg.Recognition.Tolerance)
	}
	if cfg.Auth.URL != "http://localhost:8082" {
		t.Errorf("unexpected default auth URL: %s", cfg.Auth.URL)
	}
	if cfg.Auth.Timeout != 5*time.Second {
		t.Errorf("expected 5s auth timeout, got %v", cfg.Auth.Timeout)
	}
	if cfg.Embedding.Dim != 128 {
		t.Errorf("expected default embedding dim 128, got %d", cfg.Embedding.Dim)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FACEAUTH_PORT", "8090")
	t.Setenv("FACE_TOLERANCE", "0.45")
	t.Setenv("AUTH_API_TIMEOUT", "2s")
	t.Setenv("FACES_DIR", "/var/lib/faceauth/faces")

	cfg := Load()

	if cfg.Server.Port != 8090 {
		t.Errorf("expected port 8090, got %d", cfg.Server.Port)
	}
	if cfg.Recognition.Tolerance != 0.45 {
		t.Errorf("expected tolerance 0.45, got %f", cfg.Recognition.Tolerance)
	}
	if cfg.Auth.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", cfg.Auth.Timeout)
	}
	if cfg.Storage.FacesDir != "/var/lib/faceauth/faces" {
		t.Errorf("unexpected faces dir: %s", cfg.Storage.FacesDir)
	}
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("FACEAUTH_PORT", "not-a-number")
	t.Setenv("FACE_TOLERANCE", "-1")

	cfg := Load()

	if cfg.Server.Port != 5000 {
		t.Errorf("expected fallback port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Recognition.Tolerance != 0.6 {
		t.Errorf("expected fallback tolerance 0.6, got %f", cfg.Recognition.Tolerance)
	}
}

func TestTuningFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	content := []byte("detector:\n  min_size: 100\n  quality_threshold: 7.5\nface_recog:\n  tolerance: 0.5\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing tuning file: %v", err)
	}
	t.Setenv("FACEAUTH_CONFIG", path)

	cfg := Load()

	if cfg.Detector.MinSize != 100 {
		t.Errorf("expected min_size 100, got %d", cfg.Detector.MinSize)
	}
	if cfg.Detector.QualityThreshold != 7.5 {
		t.Errorf("expected quality_threshold 7.5, got %f", cfg.Detector.QualityThreshold)
	}
	if cfg.Recognition.Tolerance != 0.5 {
		t.Errorf("expected tolerance 0.5, got %f", cfg.Recognition.Tolerance)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Detector.MaxSize != 1000 {
		t.Errorf("expected max_size default 1000, got %d", cfg.Detector.MaxSize)
	}
}

func TestTuningFileBrokenPanics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("detector: [not a mapping"), 0o644); err != nil {
		t.Fatalf("writing tuning file: %v", err)
	}
	t.Setenv("FACEAUTH_CONFIG", path)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for broken tuning file")
		}
	}()
	Load()
}
