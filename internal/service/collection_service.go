package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"doflin-hub/internal/model"
	"doflin-hub/internal/repository"
)

type CollectionService struct {
	doflinRepo repository.DoflinRepository
	logger     *zap.Logger
}

func NewCollectionService(doflinRepo repository.DoflinRepository, logger *zap.Logger) *CollectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionService{doflinRepo: doflinRepo, logger: logger}
}

// ListActive returns the active catalog ordered by series and collection
// number.
func (s *CollectionService) ListActive(ctx context.Context) ([]*model.Doflin, error) {
	if s.doflinRepo == nil {
		return nil, errors.New("doflin repository is nil")
	}
	return s.doflinRepo.ListActive(ctx)
}
