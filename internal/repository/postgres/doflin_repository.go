package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"doflin-hub/internal/model"
	"doflin-hub/internal/repository"
)

type doflinRepository struct {
	pool *pgxpool.Pool
}

func NewDoflinRepository(pool *pgxpool.Pool) repository.DoflinRepository {
	return &doflinRepository{pool: pool}
}

var _ repository.DoflinRepository = (*doflinRepository)(nil)

const doflinColumns = `
	id,
	nombre,
	modelo_base,
	variante,
	slug,
	serie,
	numero_coleccion,
	rareza,
	probabilidad,
	imagen_url,
	silueta_url,
	activo,
	created_at,
	updated_at
`

func (r *doflinRepository) ListActive(ctx context.Context) ([]*model.Doflin, error) {
	query := `SELECT ` + doflinColumns + `
	   FROM doflins
	  WHERE activo = TRUE
	  ORDER BY serie, numero_coleccion, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.Doflin, 0, 32)
	for rows.Next() {
		item, scanErr := scanDoflin(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *doflinRepository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doflins WHERE activo = TRUE`).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *doflinRepository) Create(ctx context.Context, doflin *model.Doflin) error {
	now := time.Now().UTC()
	if doflin.CreatedAt.IsZero() {
		doflin.CreatedAt = now
	}
	if doflin.UpdatedAt.IsZero() {
		doflin.UpdatedAt = now
	}

	query := `
		INSERT INTO doflins (
			nombre, modelo_base, variante, slug, serie,
			numero_coleccion, rareza, probabilidad, imagen_url, silueta_url,
			activo, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13
		)
		RETURNING id
	`

	return r.pool.QueryRow(
		ctx,
		query,
		doflin.Name,
		doflin.BaseModel,
		doflin.VariantName,
		doflin.Slug,
		doflin.Series,
		doflin.CollectionNumber,
		doflin.Rarity,
		doflin.Probability,
		doflin.ImageURL,
		doflin.SilhouetteURL,
		doflin.Active,
		doflin.CreatedAt,
		doflin.UpdatedAt,
	).Scan(&doflin.ID)
}

func scanDoflin(src rowScanner) (*model.Doflin, error) {
	doflin := &model.Doflin{}
	err := src.Scan(
		&doflin.ID,
		&doflin.Name,
		&doflin.BaseModel,
		&doflin.VariantName,
		&doflin.Slug,
		&doflin.Series,
		&doflin.CollectionNumber,
		&doflin.Rarity,
		&doflin.Probability,
		&doflin.ImageURL,
		&doflin.SilhouetteURL,
		&doflin.Active,
		&doflin.CreatedAt,
		&doflin.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return doflin, nil
}
