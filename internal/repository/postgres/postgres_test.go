package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestCrimeRepository(t *testing.T) {
	// This test requires DATABASE_URL with the crime_reports table
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	defer pool.Close()

	repo := NewCrimeRepository(pool)
	if err := repo.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}

	all, err := repo.AllReports(ctx)
	if err != nil {
		t.Fatalf("AllReports: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.Before(all[i-1].CreatedAt) {
			t.Fatalf("AllReports not ordered oldest first at %d", i)
		}
	}

	recent, err := repo.RecentReports(ctx, 5)
	if err != nil {
		t.Fatalf("RecentReports: %v", err)
	}
	if len(recent) > 5 {
		t.Errorf("expected at most 5 reports, got %d", len(recent))
	}
	t.Logf("crime_reports: %d total, %d recent", len(all), len(recent))
}
