package cmd

import (
	"errors"
	"fmt"

	"github.com/dwe-corp/facial-auth/internal/authapi"
	"github.com/dwe-corp/facial-auth/internal/config"
	"github.com/dwe-corp/facial-auth/internal/detect"
	"github.com/dwe-corp/facial-auth/internal/embed"
	"github.com/dwe-corp/facial-auth/internal/faces"
	"github.com/dwe-corp/facial-auth/internal/registry"
)

// loadRegistry loads the enrolled-face registry from disk. A corrupt
// encodings file is a refusal to start, never a silent empty registry.
func loadRegistry(cfg *config.Config) (*registry.Registry, *registry.Store, error) {
	store := registry.NewStore(cfg.Storage.EncodingsPath)
	reg, err := store.Load()
	if err != nil {
		if errors.Is(err, registry.ErrCorruptStore) {
			return nil, nil, fmt.Errorf("refusing to start with corrupt encodings file %s: %w",
				cfg.Storage.EncodingsPath, err)
		}
		return nil, nil, fmt.Errorf("loading encodings: %w", err)
	}
	return reg, store, nil
}

func detectorParams(cfg *config.Config) detect.Params {
	return detect.Params{
		MinSize:          cfg.Detector.MinSize,
		MaxSize:          cfg.Detector.MaxSize,
		ShiftFactor:      cfg.Detector.ShiftFactor,
		ScaleFactor:      cfg.Detector.ScaleFactor,
		QualityThreshold: cfg.Detector.QualityThreshold,
	}
}

// buildService wires the full face pipeline: cascade detector, embedding
// server client and auth service resolver.
func buildService(cfg *config.Config) (*faces.Service, error) {
	reg, store, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	detector, err := detect.New(cfg.Detector.CascadePath, detectorParams(cfg))
	if err != nil {
		return nil, fmt.Errorf("loading face cascade: %w", err)
	}

	resolver, err := authapi.NewClient(cfg.Auth.URL, cfg.Auth.Timeout)
	if err != nil {
		return nil, fmt.Errorf("creating auth client: %w", err)
	}

	embedder := embed.NewClient(cfg.Embedding.URL, cfg.Embedding.Timeout)

	return faces.NewService(reg, store, detector, embedder, resolver,
		cfg.Storage.FacesDir, cfg.Recognition.Tolerance), nil
}

// buildRegistryService wires a service without the image pipeline, so
// registry-only commands (users, delete) work even when the cascade file or
// embedding server is unavailable.
func buildRegistryService(cfg *config.Config) (*faces.Service, error) {
	reg, store, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	resolver, err := authapi.NewClient(cfg.Auth.URL, cfg.Auth.Timeout)
	if err != nil {
		return nil, fmt.Errorf("creating auth client: %w", err)
	}

	return faces.NewService(reg, store, nil, nil, resolver,
		cfg.Storage.FacesDir, cfg.Recognition.Tolerance), nil
}
