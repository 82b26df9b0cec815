package postgres

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/safecity/backend/internal/domain"
)

// MockRepository implements domain.CrimeRepository in memory for testing/demo mode
type MockRepository struct {
	mu      sync.RWMutex
	reports []domain.CrimeReport
}

// NewMockRepository creates a repository seeded with demo reports around Kolkata
func NewMockRepository() *MockRepository {
	return NewMockRepositoryWith(seedReports(time.Now()))
}

// NewMockRepositoryWith creates a repository holding the given reports in insertion order
func NewMockRepositoryWith(reports []domain.CrimeReport) *MockRepository {
	stored := make([]domain.CrimeReport, len(reports))
	copy(stored, reports)
	return &MockRepository{reports: stored}
}

// Add appends a report, assigning an id when it has none
func (r *MockRepository) Add(report domain.CrimeReport) domain.CrimeReport {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	r.mu.Lock()
	r.reports = append(r.reports, report)
	r.mu.Unlock()
	return report
}

// AllReports returns a copy of every report, oldest first
func (r *MockRepository) AllReports(ctx context.Context) ([]domain.CrimeReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CrimeReport, len(r.reports))
	copy(out, r.reports)
	return out, nil
}

// RecentReports returns up to limit reports, newest first
func (r *MockRepository) RecentReports(ctx context.Context, limit int) ([]domain.CrimeReport, error) {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := min(limit, len(r.reports))
	out := make([]domain.CrimeReport, 0, n)
	for i := len(r.reports) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.reports[i])
	}
	return out, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

// seedReports generates demo reports clustered around Kolkata hotspots
func seedReports(now time.Time) []domain.CrimeReport {
	rng := rand.New(rand.NewSource(42))

	hotspots := []struct {
		lat, lon float64
		name     string
		count    int
	}{
		{22.5839, 88.3425, "Howrah Station", 18}, // Transit hub
		{22.5553, 88.3516, "Park Street", 12},    // Nightlife
		{22.5678, 88.3710, "Sealdah", 9},         // Transit hub
		{22.5867, 88.4171, "Salt Lake", 4},       // Residential
		{22.6420, 88.4312, "Dum Dum", 6},         // Airport road
		{22.7700, 88.3786, "Barrackpore", 3},     // Suburban
	}
	crimeTypes := []string{"Theft", "Assault", "Robbery", "Harassment", "Vandalism", "Burglary", "Fraud"}

	total := 0
	for _, spot := range hotspots {
		total += spot.count
	}

	reports := make([]domain.CrimeReport, 0, total)
	created := now.Add(-time.Duration(total) * time.Hour)
	for _, spot := range hotspots {
		for i := 0; i < spot.count; i++ {
			// Random offset within ~400m of the hotspot
			latOffset := (rng.Float64() - 0.5) * 0.007
			lonOffset := (rng.Float64() - 0.5) * 0.007

			reports = append(reports, domain.CrimeReport{
				ID:        uuid.NewString(),
				CrimeType: crimeTypes[rng.Intn(len(crimeTypes))],
				Latitude:  spot.lat + latOffset,
				Longitude: spot.lon + lonOffset,
				CreatedAt: created,
			})
			created = created.Add(time.Hour)
		}
	}

	return reports
}
