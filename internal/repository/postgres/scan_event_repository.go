package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"doflin-hub/internal/model"
	"doflin-hub/internal/repository"
)

const (
	codeInputMaxLen = 32
	userAgentMaxLen = 255
)

type scanEventRepository struct {
	pool *pgxpool.Pool
}

func NewScanEventRepository(pool *pgxpool.Pool) repository.ScanEventRepository {
	return &scanEventRepository{pool: pool}
}

var _ repository.ScanEventRepository = (*scanEventRepository)(nil)

func (r *scanEventRepository) Create(ctx context.Context, event *model.ScanEvent) error {
	if r.pool == nil {
		return errors.New("database pool is nil")
	}
	if event == nil {
		return errors.New("scan event is nil")
	}
	if !event.EventType.Valid() {
		return errors.New("unknown scan event type")
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	codeInput := event.CodeInput
	if codeInput == "" {
		codeInput = "N/A"
	}
	codeInput = truncate(codeInput, codeInputMaxLen)
	userAgent := event.UserAgent
	if userAgent == "" {
		userAgent = "unknown"
	}
	userAgent = truncate(userAgent, userAgentMaxLen)

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO scan_events (
			codigo_input, codigo_bolsa_id, event_type, ip_hash, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		codeInput,
		event.BagCodeID,
		event.EventType,
		event.IPHash,
		userAgent,
		event.CreatedAt,
	)
	return err
}
