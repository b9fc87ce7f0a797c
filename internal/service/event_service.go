package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"doflin-hub/internal/metrics"
	"doflin-hub/internal/model"
	"doflin-hub/internal/repository"
)

var ErrInvalidEventInput = errors.New("invalid event input")

const codeInputMaxLen = 32

type PurchaseIntentInput struct {
	Code      string
	DoflinID  *int64
	DoflinIDs []int64
	IPHash    string
	UserAgent string
}

type TrackEventInput struct {
	EventType model.ScanEventType
	Source    string
	CodeInput string
	IPHash    string
	UserAgent string
}

// EventService records telemetry outside the redemption transaction:
// purchase-intent clicks and UI interaction events.
type EventService struct {
	scanEventRepo repository.ScanEventRepository
	bagCodeRepo   repository.BagCodeRepository
	logger        *zap.Logger
}

func NewEventService(
	scanEventRepo repository.ScanEventRepository,
	bagCodeRepo repository.BagCodeRepository,
	logger *zap.Logger,
) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EventService{
		scanEventRepo: scanEventRepo,
		bagCodeRepo:   bagCodeRepo,
		logger:        logger,
	}
}

// LogPurchaseIntent writes a purchase_intent event. When the payload
// carries a known code the event links to its row; unknown or absent
// codes still produce an event keyed by the referenced doflin.
func (s *EventService) LogPurchaseIntent(ctx context.Context, input PurchaseIntentInput) error {
	if s.scanEventRepo == nil {
		return errors.New("scan event repository is nil")
	}

	normalizedCode := strings.ToUpper(strings.TrimSpace(input.Code))

	var bagCodeID *int64
	if normalizedCode != "" && s.bagCodeRepo != nil {
		record, err := s.bagCodeRepo.FindByCode(ctx, normalizedCode)
		switch {
		case err == nil:
			bagCodeID = &record.ID
		case errors.Is(err, repository.ErrNotFound):
			// Intent on an unknown code is still worth recording.
		default:
			return fmt.Errorf("resolve code for purchase intent: %w", err)
		}
	}

	codeInput := normalizedCode
	if codeInput == "" {
		codeInput = fmt.Sprintf("DOFLIN-%s", purchaseIntentItemRef(input))
	}

	if err := s.scanEventRepo.Create(ctx, &model.ScanEvent{
		CodeInput: truncate(codeInput, codeInputMaxLen),
		BagCodeID: bagCodeID,
		EventType: model.ScanEventPurchaseIntent,
		IPHash:    input.IPHash,
		UserAgent: input.UserAgent,
	}); err != nil {
		return err
	}

	metrics.IncScanEvent(model.ScanEventPurchaseIntent)
	return nil
}

// TrackUXEvent records one of the UI telemetry event variants.
func (s *EventService) TrackUXEvent(ctx context.Context, input TrackEventInput) error {
	if s.scanEventRepo == nil {
		return errors.New("scan event repository is nil")
	}
	if !isUXEventType(input.EventType) {
		return ErrInvalidEventInput
	}

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = "reveal_ui"
	}

	codeInput := strings.TrimSpace(input.CodeInput)
	if codeInput == "" {
		codeInput = fmt.Sprintf(
			"%s:%s",
			truncate(strings.ToUpper(string(input.EventType)), 12),
			truncate(strings.ToUpper(source), 16),
		)
	}

	if err := s.scanEventRepo.Create(ctx, &model.ScanEvent{
		CodeInput: truncate(codeInput, codeInputMaxLen),
		EventType: input.EventType,
		IPHash:    input.IPHash,
		UserAgent: input.UserAgent,
	}); err != nil {
		return err
	}

	metrics.IncScanEvent(input.EventType)
	return nil
}

func isUXEventType(t model.ScanEventType) bool {
	switch t {
	case model.ScanEventUniverseSwitch, model.ScanEventFilterApply,
		model.ScanEventCardOpen, model.ScanEventView3D:
		return true
	}
	return false
}

func purchaseIntentItemRef(input PurchaseIntentInput) string {
	if input.DoflinID != nil {
		return fmt.Sprintf("%d", *input.DoflinID)
	}
	if len(input.DoflinIDs) > 0 {
		return fmt.Sprintf("%d", input.DoflinIDs[0])
	}
	return "NA"
}

// truncate cuts value to at most max bytes without splitting a rune, so
// the result is always valid UTF-8 for the database.
func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}
