package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/safecity/backend/internal/domain"
)

// Snapshot is a read of the crime-report table.
// Degraded is set when the repository failed and the reports are stale or empty.
type Snapshot struct {
	Reports   []domain.CrimeReport
	FetchedAt time.Time
	Degraded  bool
}

// ReportSnapshot memoises the full report list for a short TTL and never
// returns repository errors to callers: a failed fetch yields the last good
// snapshot, or no reports at all.
type ReportSnapshot struct {
	repo   domain.CrimeRepository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	reports   []domain.CrimeReport
	fetchedAt time.Time
	loaded    bool
}

// NewReportSnapshot creates a snapshot cache; ttl <= 0 fetches on every call
func NewReportSnapshot(repo domain.CrimeRepository, ttl time.Duration, logger *zap.Logger) *ReportSnapshot {
	return &ReportSnapshot{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// All returns every stored report, served from cache while fresh
func (s *ReportSnapshot) All(ctx context.Context) Snapshot {
	if snap, ok := s.cached(); ok {
		return snap
	}

	v, _, _ := s.group.Do("all", func() (interface{}, error) {
		if err := s.Refresh(ctx); err != nil {
			return s.fallback(), nil
		}
		snap, _ := s.current()
		return snap, nil
	})
	return v.(Snapshot)
}

// Recent returns the most recent reports, uncached.
// On failure it returns an empty degraded snapshot.
func (s *ReportSnapshot) Recent(ctx context.Context, limit int) Snapshot {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	reports, err := s.repo.RecentReports(ctx, limit)
	if err != nil {
		s.logger.Warn("crime reports unavailable, continuing without them",
			zap.Int("limit", limit), zap.Error(err))
		return Snapshot{Reports: []domain.CrimeReport{}, FetchedAt: s.now(), Degraded: true}
	}
	return Snapshot{Reports: reports, FetchedAt: s.now()}
}

// Refresh reloads the full report list from the repository
func (s *ReportSnapshot) Refresh(ctx context.Context) error {
	start := s.now()
	reports, err := s.repo.AllReports(ctx)
	if err != nil {
		s.logger.Warn("crime report snapshot refresh failed", zap.Error(err))
		return fmt.Errorf("snapshot: failed to load reports: %w", err)
	}

	s.mu.Lock()
	s.reports = reports
	s.fetchedAt = s.now()
	s.loaded = true
	s.mu.Unlock()

	s.logger.Debug("crime report snapshot refreshed",
		zap.Int("reports", len(reports)),
		zap.Duration("took", s.now().Sub(start)))
	return nil
}

// Health checks the underlying repository
func (s *ReportSnapshot) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

func (s *ReportSnapshot) cached() (Snapshot, bool) {
	if s.ttl <= 0 {
		return Snapshot{}, false
	}
	snap, loaded := s.current()
	if !loaded || s.now().Sub(snap.FetchedAt) >= s.ttl {
		return Snapshot{}, false
	}
	return snap, true
}

func (s *ReportSnapshot) current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Reports: s.reports, FetchedAt: s.fetchedAt}, s.loaded
}

func (s *ReportSnapshot) fallback() Snapshot {
	snap, loaded := s.current()
	if !loaded {
		return Snapshot{Reports: []domain.CrimeReport{}, FetchedAt: s.now(), Degraded: true}
	}
	snap.Degraded = true
	return snap
}
