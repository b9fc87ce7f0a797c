package repository

import (
	"context"
	"errors"

	"doflin-hub/internal/model"
)

var ErrNotFound = errors.New("record not found")

type DoflinRepository interface {
	ListActive(ctx context.Context) ([]*model.Doflin, error)
	CountActive(ctx context.Context) (int64, error)
	Create(ctx context.Context, doflin *model.Doflin) error
}

type BagCodeRepository interface {
	FindByCode(ctx context.Context, code string) (*model.BagCode, error)
	Create(ctx context.Context, bagCode *model.BagCode, items []*model.BagCodeItem) error
}

// ScanEventRepository is the standalone, best-effort audit sink: callers
// swallow failures so telemetry never fails a request. Event writes that
// must roll back with the reveal transaction are issued on the transaction
// handle inside the service instead.
type ScanEventRepository interface {
	Create(ctx context.Context, event *model.ScanEvent) error
}
