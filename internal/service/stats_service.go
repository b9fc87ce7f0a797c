package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"doflin-hub/internal/model"
	"doflin-hub/internal/rarity"
)

// RemainingSnapshot is a point-in-time view of unredeemed inventory. It is
// read without locks and may lag concurrent redemptions by a few rows.
type RemainingSnapshot struct {
	Remaining map[model.Rarity]int
	Total     int
}

type StatsService struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewStatsService(pool *pgxpool.Pool, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{pool: pool, logger: logger}
}

// RemainingByRarity counts pack items whose owning code is still unused
// and active, grouped by rarity. Every registry tier appears in the
// result, zero-filled; the registry decides which tiers exist, not the
// query result set.
func (s *StatsService) RemainingByRarity(ctx context.Context) (*RemainingSnapshot, error) {
	if s.pool == nil {
		return nil, errors.New("database pool is nil")
	}

	rows, err := s.pool.Query(
		ctx,
		`SELECT d.rareza, COUNT(*)
		   FROM codigos_bolsa_items i
		   JOIN codigos_bolsa c ON c.id = i.codigo_bolsa_id
		   JOIN doflins d ON d.id = i.doflin_id
		  WHERE c.usado = FALSE
		    AND c.status = 'active'
		  GROUP BY d.rareza`,
	)
	if err != nil {
		return nil, fmt.Errorf("query remaining by rarity: %w", err)
	}
	defer rows.Close()

	remaining := make(map[model.Rarity]int, len(rarity.Order))
	for _, tier := range rarity.Order {
		remaining[tier] = 0
	}

	for rows.Next() {
		var tier model.Rarity
		var count int
		if scanErr := rows.Scan(&tier, &count); scanErr != nil {
			return nil, scanErr
		}
		if !rarity.Valid(tier) {
			s.logger.Warn("unknown rarity in inventory", zap.String("rarity", string(tier)))
			continue
		}
		remaining[tier] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, count := range remaining {
		total += count
	}

	return &RemainingSnapshot{Remaining: remaining, Total: total}, nil
}
