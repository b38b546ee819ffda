package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/neomorfeo/listiq/internal/domain"
)

// StatisticsService serves audit statistics with an optional cache-aside
// layer. The audit log stays the source of truth: any cache error is
// treated as a miss and the statistics are recomputed from recorded
// entries.
type StatisticsService struct {
	audit domain.AuditRepository
	cache domain.KVStore
	ttl   time.Duration
}

// NewStatisticsService creates a statistics reader. A nil cache disables
// caching entirely.
func NewStatisticsService(audit domain.AuditRepository, cache domain.KVStore, ttl time.Duration) *StatisticsService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatisticsService{audit: audit, cache: cache, ttl: ttl}
}

// Statistics returns aggregate audit figures for the filter, cache-aside.
func (s *StatisticsService) Statistics(ctx context.Context, filter domain.StatisticsFilter) (domain.Statistics, error) {
	key := statsKey(filter)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var stats domain.Statistics
			if err := json.Unmarshal([]byte(raw), &stats); err == nil {
				return stats, nil
			}
		}
	}

	stats, err := s.audit.Statistics(ctx, filter)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("computing audit statistics: %w", err)
	}

	if s.cache != nil {
		raw, err := json.Marshal(stats)
		if err == nil {
			if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
				// Best effort: a failed cache write costs a recompute next time.
				slog.WarnContext(ctx, "caching audit statistics failed", "error", err)
			}
		}
	}

	return stats, nil
}

func statsKey(f domain.StatisticsFilter) string {
	since, until := "", ""
	if f.Since != nil {
		since = f.Since.UTC().Format(time.RFC3339)
	}
	if f.Until != nil {
		until = f.Until.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("listiq:audit:stats:%s:%s:%s:%s:%s", f.UnitID, f.ActorID, f.Action, since, until)
}
