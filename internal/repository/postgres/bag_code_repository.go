package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doflin-hub/internal/model"
	"doflin-hub/internal/repository"
)

type bagCodeRepository struct {
	pool *pgxpool.Pool
}

func NewBagCodeRepository(pool *pgxpool.Pool) repository.BagCodeRepository {
	return &bagCodeRepository{pool: pool}
}

var _ repository.BagCodeRepository = (*bagCodeRepository)(nil)

const bagCodeColumns = `
	id,
	codigo,
	pack_size,
	doflin_id,
	usado,
	fecha_activacion,
	scan_count,
	last_scanned_at,
	status,
	created_at,
	updated_at
`

func (r *bagCodeRepository) FindByCode(ctx context.Context, code string) (*model.BagCode, error) {
	query := `SELECT ` + bagCodeColumns + ` FROM codigos_bolsa WHERE codigo = $1`
	bagCode, err := scanBagCode(r.pool.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return bagCode, nil
}

// Create inserts the code row and its item rows in one transaction so a
// partially seeded pack never becomes visible.
func (r *bagCodeRepository) Create(ctx context.Context, bagCode *model.BagCode, items []*model.BagCodeItem) error {
	now := time.Now().UTC()
	if bagCode.CreatedAt.IsZero() {
		bagCode.CreatedAt = now
	}
	if bagCode.UpdatedAt.IsZero() {
		bagCode.UpdatedAt = now
	}
	if bagCode.Status == "" {
		bagCode.Status = model.BagCodeStatusActive
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(
		ctx,
		`INSERT INTO codigos_bolsa (
			codigo, pack_size, doflin_id, usado, fecha_activacion,
			scan_count, last_scanned_at, status, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)
		RETURNING id`,
		bagCode.Code,
		bagCode.PackSize,
		bagCode.DoflinID,
		bagCode.Used,
		bagCode.ActivationDate,
		bagCode.ScanCount,
		bagCode.LastScannedAt,
		bagCode.Status,
		bagCode.CreatedAt,
		bagCode.UpdatedAt,
	).Scan(&bagCode.ID)
	if err != nil {
		return err
	}

	if len(items) > 0 {
		batch := &pgx.Batch{}
		for _, item := range items {
			item.BagCodeID = bagCode.ID
			if item.CreatedAt.IsZero() {
				item.CreatedAt = now
			}
			batch.Queue(
				`INSERT INTO codigos_bolsa_items (codigo_bolsa_id, doflin_id, posicion, created_at)
				 VALUES ($1, $2, $3, $4)`,
				item.BagCodeID,
				item.DoflinID,
				item.Position,
				item.CreatedAt,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range items {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return err
			}
		}
		if err := results.Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func scanBagCode(src rowScanner) (*model.BagCode, error) {
	bagCode := &model.BagCode{}
	err := src.Scan(
		&bagCode.ID,
		&bagCode.Code,
		&bagCode.PackSize,
		&bagCode.DoflinID,
		&bagCode.Used,
		&bagCode.ActivationDate,
		&bagCode.ScanCount,
		&bagCode.LastScannedAt,
		&bagCode.Status,
		&bagCode.CreatedAt,
		&bagCode.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bagCode, nil
}
