package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/safecity/backend/internal/domain"
)

func newTestSafetyService(repo domain.CrimeRepository, scoring domain.RouteScoring) *SafetyService {
	snapshot := NewReportSnapshot(repo, 0, zap.NewNop())
	return NewSafetyService(snapshot, NewAreaClusterer(), NewRouteAdvisor(scoring), 0, zap.NewNop())
}

func TestSafetyService_GetAreasRepositoryDown(t *testing.T) {
	svc := newTestSafetyService(&stubRepository{err: errors.New("down")}, domain.ScoringFixed)

	areas := svc.GetAreas(context.Background())
	if areas == nil || len(areas) != 0 {
		t.Errorf("expected empty areas, got %#v", areas)
	}
}

func TestSafetyService_SuggestRoutesFallbacks(t *testing.T) {
	svc := newTestSafetyService(&stubRepository{err: errors.New("down")}, domain.ScoringFixed)

	resp := svc.SuggestRoutes(context.Background(), domain.RouteRequest{StartLocation: "Home", EndLocation: "Work"})
	if len(resp.Routes) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(resp.Routes))
	}
	if !resp.UsedFallback {
		t.Error("expected usedFallback when no coordinates are given")
	}
	// two unresolved endpoints plus missing crime data
	if len(resp.Warnings) != 3 {
		t.Errorf("warnings = %v, want 3", resp.Warnings)
	}
	if resp.Analysis != "Analyzed 0 crime reports to suggest safer routes" {
		t.Errorf("analysis = %q", resp.Analysis)
	}
}

func TestSafetyService_SuggestRoutesWithCoordinates(t *testing.T) {
	repo := &stubRepository{reports: []domain.CrimeReport{report("1", 22.5726, 88.3639)}}
	svc := newTestSafetyService(repo, domain.ScoringCorridor)

	resp := svc.SuggestRoutes(context.Background(), domain.RouteRequest{
		StartLocation: "Esplanade",
		EndLocation:   "Dum Dum",
		StartCoords:   coords(22.5726, 88.3639),
		EndCoords:     coords(22.6420, 88.4312),
	})
	if resp.UsedFallback || len(resp.Warnings) != 0 {
		t.Errorf("unexpected fallback: %+v", resp)
	}
	if resp.Routes[0].CrimeCount != 1 {
		t.Errorf("safest corridor count = %d, want 1", resp.Routes[0].CrimeCount)
	}
}

func TestSafetyService_GetHeatmap(t *testing.T) {
	repo := &stubRepository{reports: []domain.CrimeReport{
		report("1", 22.505, 88.305),
		report("2", 22.505, 88.305),
	}}
	svc := newTestSafetyService(repo, domain.ScoringFixed)

	hm := svc.GetHeatmap(context.Background())
	if hm.ReportCount != 2 || len(hm.Points) != 1 || hm.Degraded {
		t.Errorf("unexpected heatmap %+v", hm)
	}
}
