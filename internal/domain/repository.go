package domain

import (
	"context"
)

// DefaultRecentLimit caps reports fetched for route analysis
const DefaultRecentLimit = 100

// CrimeRepository defines read access to stored crime reports.
// The domain defines the interface; storage packages implement it.
type CrimeRepository interface {
	// AllReports returns every report with coordinates, oldest first
	AllReports(ctx context.Context) ([]CrimeReport, error)

	// RecentReports returns the most recent reports, newest first
	RecentReports(ctx context.Context, limit int) ([]CrimeReport, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
