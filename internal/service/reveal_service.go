package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"doflin-hub/internal/metrics"
	"doflin-hub/internal/model"
	"doflin-hub/internal/rarity"
	"doflin-hub/internal/repository"
)

var (
	ErrInvalidCodeFormat = errors.New("invalid code format")
	ErrCodeNotFound      = errors.New("code not found")
	ErrCodeBlocked       = errors.New("code blocked")
	ErrNoItemsAssigned   = errors.New("no doflins assigned to code")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)

// NormalizeCode trims and uppercases a raw scanned code and validates it
// against the printed-code format.
func NormalizeCode(raw string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if !codePattern.MatchString(normalized) {
		return "", ErrInvalidCodeFormat
	}
	return normalized, nil
}

type RevealInput struct {
	Code      string
	IPHash    string
	UserAgent string
}

type RevealItem struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	BaseModel        string       `json:"baseModel"`
	VariantName      string       `json:"variantName"`
	Series           string       `json:"series"`
	CollectionNumber int          `json:"collectionNumber"`
	TotalCollection  int64        `json:"totalCollection"`
	Rarity           model.Rarity `json:"rarity"`
	Probability      int          `json:"probability"`
	ImageURL         string       `json:"imageUrl"`
	SilhouetteURL    string       `json:"silhouetteUrl"`
}

type RevealResult struct {
	Code          string
	PackSize      int
	FirstScan     bool
	Doflins       []RevealItem
	HighestRarity model.Rarity
	UsedAt        time.Time
	ScanCount     int
}

type RevealService struct {
	scanEventRepo repository.ScanEventRepository
	pool          *pgxpool.Pool
	logger        *zap.Logger
}

func NewRevealService(
	scanEventRepo repository.ScanEventRepository,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) *RevealService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RevealService{
		scanEventRepo: scanEventRepo,
		pool:          pool,
		logger:        logger,
	}
}

// Reveal redeems a scanned code and returns the pack contents. The code
// row lock, counter update, item resolution and the scan/reveal_success
// audit rows all live in one transaction; two concurrent scans of the
// same code can never both observe FirstScan, and no increment is lost.
func (s *RevealService) Reveal(ctx context.Context, input RevealInput) (*RevealResult, error) {
	normalized, err := NormalizeCode(input.Code)
	if err != nil {
		s.LogScanEvent(ctx, model.ScanEventInvalid, input.Code, input.IPHash, input.UserAgent, nil)
		return nil, err
	}

	if s.pool == nil {
		return nil, fmt.Errorf("%w: database pool is nil", ErrStoreUnavailable)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	record, err := s.findByCodeForUpdateTx(ctx, tx, normalized)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			s.LogScanEvent(ctx, model.ScanEventInvalid, normalized, input.IPHash, input.UserAgent, nil)
		}
		return nil, err
	}

	if record.Status == model.BagCodeStatusBlocked {
		// The scan happened even though redemption is refused.
		s.LogScanEvent(ctx, model.ScanEventScan, normalized, input.IPHash, input.UserAgent, &record.ID)
		return nil, ErrCodeBlocked
	}

	now := time.Now().UTC()
	firstScan := !record.Used

	if _, err := tx.Exec(
		ctx,
		`UPDATE codigos_bolsa
		    SET usado = TRUE,
		        fecha_activacion = COALESCE(fecha_activacion, $2),
		        scan_count = scan_count + 1,
		        last_scanned_at = $2,
		        updated_at = $2
		  WHERE id = $1`,
		record.ID,
		now,
	); err != nil {
		return nil, fmt.Errorf("update code row: %w", err)
	}

	var scanCount int
	var activationDate time.Time
	if err := tx.QueryRow(
		ctx,
		`SELECT scan_count, fecha_activacion FROM codigos_bolsa WHERE id = $1`,
		record.ID,
	).Scan(&scanCount, &activationDate); err != nil {
		return nil, fmt.Errorf("re-read code counters: %w", err)
	}

	var totalCollection int64
	if err := tx.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM doflins WHERE activo = TRUE`,
	).Scan(&totalCollection); err != nil {
		return nil, fmt.Errorf("count active doflins: %w", err)
	}

	items, err := s.resolveItemsTx(ctx, tx, record, totalCollection)
	if err != nil {
		return nil, err
	}

	rarities := make([]model.Rarity, 0, len(items))
	for _, item := range items {
		rarities = append(rarities, item.Rarity)
	}
	highestRarity := rarity.Highest(rarities)

	packSize := normalizePackSize(record.PackSize, len(items))

	if err := s.logScanEventTx(ctx, tx, model.ScanEventScan, normalized, input.IPHash, input.UserAgent, &record.ID); err != nil {
		return nil, fmt.Errorf("write scan event: %w", err)
	}
	if err := s.logScanEventTx(ctx, tx, model.ScanEventRevealSuccess, normalized, input.IPHash, input.UserAgent, &record.ID); err != nil {
		return nil, fmt.Errorf("write reveal_success event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reveal: %w", err)
	}

	metrics.IncScanEvent(model.ScanEventScan)
	metrics.IncScanEvent(model.ScanEventRevealSuccess)

	return &RevealResult{
		Code:          record.Code,
		PackSize:      packSize,
		FirstScan:     firstScan,
		Doflins:       items,
		HighestRarity: highestRarity,
		UsedAt:        activationDate,
		ScanCount:     scanCount,
	}, nil
}

// LogScanEvent writes an audit event outside any transaction. Best effort:
// failures are logged and swallowed so telemetry never fails a request.
func (s *RevealService) LogScanEvent(
	ctx context.Context,
	eventType model.ScanEventType,
	codeInput string,
	ipHash string,
	userAgent string,
	bagCodeID *int64,
) {
	if s.scanEventRepo == nil {
		return
	}

	err := s.scanEventRepo.Create(ctx, &model.ScanEvent{
		CodeInput: codeInput,
		BagCodeID: bagCodeID,
		EventType: eventType,
		IPHash:    ipHash,
		UserAgent: userAgent,
	})
	if err != nil {
		s.logger.Warn("write scan event failed",
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
		return
	}
	metrics.IncScanEvent(eventType)
}

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

func (s *RevealService) findByCodeForUpdateTx(ctx context.Context, tx pgx.Tx, code string) (*model.BagCode, error) {
	record := &model.BagCode{}
	err := tx.QueryRow(
		ctx,
		`SELECT `+bagCodeColumns+` FROM codigos_bolsa WHERE codigo = $1 FOR UPDATE`,
		code,
	).Scan(
		&record.ID,
		&record.Code,
		&record.PackSize,
		&record.DoflinID,
		&record.Used,
		&record.ActivationDate,
		&record.ScanCount,
		&record.LastScannedAt,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("find code: %w", err)
	}
	return record, nil
}

const revealItemColumns = `
	d.id,
	d.nombre,
	d.modelo_base,
	d.variante,
	d.serie,
	d.numero_coleccion,
	d.rareza,
	d.probabilidad,
	d.imagen_url,
	d.silueta_url
`

// resolveItemsTx fetches the pack contents ordered by position. Codes
// created before the multi-item schema have no item rows and fall back to
// the direct doflin reference; callers never see the schema difference.
func (s *RevealService) resolveItemsTx(
	ctx context.Context,
	tx pgx.Tx,
	record *model.BagCode,
	totalCollection int64,
) ([]RevealItem, error) {
	rows, err := tx.Query(
		ctx,
		`SELECT `+revealItemColumns+`
		   FROM codigos_bolsa_items i
		   JOIN doflins d ON d.id = i.doflin_id
		  WHERE i.codigo_bolsa_id = $1
		  ORDER BY i.posicion`,
		record.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query code items: %w", err)
	}
	defer rows.Close()

	items := make([]RevealItem, 0, 5)
	for rows.Next() {
		item, scanErr := scanRevealItem(rows, totalCollection)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(items) > 0 {
		return items, nil
	}

	item, err := scanRevealItem(tx.QueryRow(
		ctx,
		`SELECT `+revealItemColumns+` FROM doflins d WHERE d.id = $1`,
		record.DoflinID,
	), totalCollection)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoItemsAssigned
		}
		return nil, fmt.Errorf("query legacy doflin: %w", err)
	}
	return []RevealItem{item}, nil
}

func scanRevealItem(src interface{ Scan(dest ...any) error }, totalCollection int64) (RevealItem, error) {
	item := RevealItem{TotalCollection: totalCollection}
	err := src.Scan(
		&item.ID,
		&item.Name,
		&item.BaseModel,
		&item.VariantName,
		&item.Series,
		&item.CollectionNumber,
		&item.Rarity,
		&item.Probability,
		&item.ImageURL,
		&item.SilhouetteURL,
	)
	if err != nil {
		return RevealItem{}, err
	}
	return item, nil
}

func (s *RevealService) logScanEventTx(
	ctx context.Context,
	tx pgx.Tx,
	eventType model.ScanEventType,
	codeInput string,
	ipHash string,
	userAgent string,
	bagCodeID *int64,
) error {
	if codeInput == "" {
		codeInput = "N/A"
	}
	codeInput = truncate(codeInput, codeInputMaxLen)
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		userAgent = "unknown"
	}
	userAgent = truncate(userAgent, 255)

	_, err := tx.Exec(
		ctx,
		`INSERT INTO scan_events (
			codigo_input, codigo_bolsa_id, event_type, ip_hash, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		codeInput,
		bagCodeID,
		eventType,
		ipHash,
		userAgent,
		time.Now().UTC(),
	)
	return err
}

// normalizePackSize trusts the stored pack size when it is one of the
// declared multi-pack values and otherwise derives it from the resolved
// item count, covering legacy rows whose declared size never matched.
func normalizePackSize(stored, resolved int) int {
	if stored == 3 || stored == 5 {
		return stored
	}
	switch resolved {
	case 5:
		return 5
	case 3:
		return 3
	default:
		return 1
	}
}
