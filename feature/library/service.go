package library

import (
	"context"

	"steam-library/core/reconcile"

	"go.uber.org/zap"
)

// Service runs reconciliations for the HTTP surface.
type Service struct {
	engine    *reconcile.Engine
	installed reconcile.InstalledSource
	logger    *zap.Logger
}

// NewService creates a new library service.
func NewService(engine *reconcile.Engine, installed reconcile.InstalledSource, logger *zap.Logger) *Service {
	return &Service{engine: engine, installed: installed, logger: logger}
}

// Reconcile performs a full reconciliation run.
func (s *Service) Reconcile(ctx context.Context) reconcile.Result {
	return s.engine.Run(ctx)
}

// Installed scans the local installation only.
func (s *Service) Installed(ctx context.Context) ([]reconcile.GameRecord, error) {
	return s.installed.Scan(ctx)
}
