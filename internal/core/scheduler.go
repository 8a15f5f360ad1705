package core

// scheduler.go runs audit retention in the background. It purges entries
// older than the retention window once on start and then every interval,
// logging failures without stopping.

import (
	"context"
	"log/slog"
	"time"
)

// AuditRetention configures StartAuditRetention. Zero values use defaults.
type AuditRetention struct {
	Days     int           // Entries older than this are purged (default 90)
	Interval time.Duration // How often to purge (default 24h)
}

const (
	DefaultAuditRetentionDays = 90
	DefaultAuditPurgeInterval = 24 * time.Hour
)

// StartAuditRetention blocks until ctx is cancelled. It does nothing when
// no audit store is configured.
func (s *Service) StartAuditRetention(ctx context.Context, cfg AuditRetention) {
	if s.audit == nil {
		return
	}
	if cfg.Days <= 0 {
		cfg.Days = DefaultAuditRetentionDays
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultAuditPurgeInterval
	}

	slog.Info("audit retention started", "retention_days", cfg.Days, "interval", cfg.Interval)
	s.purgeAudit(ctx, cfg.Days)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit retention stopped")
			return
		case <-ticker.C:
			s.purgeAudit(ctx, cfg.Days)
		}
	}
}

func (s *Service) purgeAudit(ctx context.Context, days int) {
	start := time.Now()
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	purged, err := s.audit.PurgeAuditEntries(ctx, cutoff)
	if err != nil {
		slog.Error("audit purge failed", "error", err)
		return
	}
	slog.Info("purged audit entries",
		"entries_purged", purged,
		"cutoff", cutoff,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
