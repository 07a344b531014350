package cmd

import (
	"fmt"
	"net/http"
	"time"

	"steam-library/core/config"
	"steam-library/core/logger"
	"steam-library/core/reconcile"
	"steam-library/feature/activity"
	"steam-library/feature/family"
	"steam-library/feature/installed"
	"steam-library/feature/owned"

	"go.uber.org/zap"
)

// bootstrap loads configuration and builds the logger every command
// starts from.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// buildEngine wires the reconciliation engine's sources from the loaded
// configuration.
func buildEngine(cfg *config.Config, l *zap.Logger) (*reconcile.Engine, *installed.Scanner) {
	// An unset primary account defaults to the installation's most
	// recently logged-in user.
	if cfg.Steam.SteamID == 0 {
		if u, err := cfg.Steam.MostRecentUser(); err == nil {
			cfg.Steam.SteamID = u.SteamID
			l.Info("using most recent local account",
				zap.Uint64("steamid", u.SteamID),
				zap.String("account", u.AccountName))
		}
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	scanner := installed.NewScanner(cfg.Steam, l)
	enricher := activity.NewEnricher(cfg.Steam, l)
	fetcher := owned.NewFetcher(httpClient, l)

	var familySource reconcile.FamilySource
	if cfg.Steam.AccessToken != "" {
		familySource = family.NewResolver(httpClient, cfg.Steam.AccessToken, cfg.Steam.SteamID, l)
	}

	settings, dropped := cfg.Steam.Settings()
	for _, spec := range dropped {
		l.Warn("dropping malformed additional account", zap.String("spec", spec))
	}

	engine := reconcile.New(scanner, enricher, fetcher, familySource, settings, l)
	return engine, scanner
}
