package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/safecity/backend/internal/domain"
)

// SafetyService serves area scores, route suggestions and the crime heatmap
// from a report snapshot. It never fails a request because storage is down.
type SafetyService struct {
	snapshot    *ReportSnapshot
	clusterer   *AreaClusterer
	advisor     *RouteAdvisor
	recentLimit int
	logger      *zap.Logger
}

// NewSafetyService creates a new safety service
func NewSafetyService(
	snapshot *ReportSnapshot,
	clusterer *AreaClusterer,
	advisor *RouteAdvisor,
	recentLimit int,
	logger *zap.Logger,
) *SafetyService {
	if recentLimit <= 0 {
		recentLimit = domain.DefaultRecentLimit
	}
	return &SafetyService{
		snapshot:    snapshot,
		clusterer:   clusterer,
		advisor:     advisor,
		recentLimit: recentLimit,
		logger:      logger,
	}
}

// GetAreas clusters every stored report into scored areas
func (s *SafetyService) GetAreas(ctx context.Context) []domain.Area {
	snap := s.snapshot.All(ctx)
	areas := s.clusterer.Areas(snap.Reports)

	s.logger.Debug("computed safety areas",
		zap.Int("reports", len(snap.Reports)),
		zap.Int("areas", len(areas)),
		zap.Bool("degraded", snap.Degraded))

	return areas
}

// SuggestRoutes resolves the request endpoints and scores three route variants
// against the most recent reports
func (s *SafetyService) SuggestRoutes(ctx context.Context, req domain.RouteRequest) domain.RouteResponse {
	start, end, warnings := ResolveEndpoints(req)
	if len(warnings) > 0 {
		s.logger.Info("route endpoints fell back to defaults",
			zap.String("start_label", req.StartLocation),
			zap.String("end_label", req.EndLocation),
			zap.Strings("warnings", warnings))
	}

	snap := s.snapshot.Recent(ctx, s.recentLimit)
	resp := s.advisor.SuggestRoutes(start, end, snap.Reports)
	resp.UsedFallback = len(warnings) > 0
	if snap.Degraded {
		warnings = append(warnings, "crime reports unavailable: routes scored without crime data")
	}
	resp.Warnings = warnings

	return resp
}

// GetHeatmap returns crime density per grid cell
func (s *SafetyService) GetHeatmap(ctx context.Context) domain.HeatmapResponse {
	snap := s.snapshot.All(ctx)
	grid := NewCrimeGrid(snap.Reports, DefaultCellSize)

	return domain.HeatmapResponse{
		Points:      grid.Heatmap(),
		CellSize:    DefaultCellSize,
		ReportCount: grid.Total(),
		Degraded:    snap.Degraded,
	}
}

// Health checks storage connectivity
func (s *SafetyService) Health(ctx context.Context) error {
	return s.snapshot.Health(ctx)
}
