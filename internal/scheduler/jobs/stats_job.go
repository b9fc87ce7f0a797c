package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"doflin-hub/internal/metrics"
	"doflin-hub/internal/service"
)

type StatsJob struct {
	statsService *service.StatsService
	logger       *zap.Logger
}

func NewStatsJob(statsService *service.StatsService, logger *zap.Logger) *StatsJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StatsJob{
		statsService: statsService,
		logger:       logger,
	}
}

// RefreshRemainingGauges copies the remaining-by-rarity counts into the
// Prometheus gauges so scrapes never hit the database.
func (j *StatsJob) RefreshRemainingGauges() {
	if j == nil || j.statsService == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := j.statsService.RemainingByRarity(ctx)
	if err != nil {
		j.logger.Warn("refresh remaining gauges failed", zap.Error(err))
		return
	}

	for tier, count := range snapshot.Remaining {
		metrics.SetRemaining(tier, count)
	}
}
