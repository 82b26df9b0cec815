package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/safecity/backend/internal/domain"
)

// CrimeRepository implements domain.CrimeRepository on the crime_reports table
type CrimeRepository struct {
	pool *pgxpool.Pool
}

// NewCrimeRepository creates a new PostgreSQL repository
func NewCrimeRepository(pool *pgxpool.Pool) *CrimeRepository {
	return &CrimeRepository{pool: pool}
}

// AllReports returns every report with coordinates in insertion order
func (r *CrimeRepository) AllReports(ctx context.Context) ([]domain.CrimeReport, error) {
	query := `
		SELECT id::text, crime_type, latitude, longitude, created_at
		FROM crime_reports
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query crime reports: %w", err)
	}

	return scanReports(rows)
}

// RecentReports returns the newest reports with coordinates
func (r *CrimeRepository) RecentReports(ctx context.Context, limit int) ([]domain.CrimeReport, error) {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}

	query := `
		SELECT id::text, crime_type, latitude, longitude, created_at
		FROM crime_reports
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query recent crime reports: %w", err)
	}

	return scanReports(rows)
}

// Health checks database connectivity
func (r *CrimeRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

func scanReports(rows pgx.Rows) ([]domain.CrimeReport, error) {
	defer rows.Close()

	results := make([]domain.CrimeReport, 0)
	for rows.Next() {
		var c domain.CrimeReport
		if err := rows.Scan(&c.ID, &c.CrimeType, &c.Latitude, &c.Longitude, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan crime report row: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read crime report rows: %w", err)
	}

	return results, nil
}
