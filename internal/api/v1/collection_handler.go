package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doflin-hub/internal/api/response"
	"doflin-hub/internal/catalog"
	"doflin-hub/internal/model"
	"doflin-hub/internal/service"
)

type CollectionHandler struct {
	collectionService *service.CollectionService
	logger            *zap.Logger
}

func NewCollectionHandler(collectionService *service.CollectionService, logger *zap.Logger) *CollectionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionHandler{collectionService: collectionService, logger: logger}
}

func RegisterCollectionRoutes(group *gin.RouterGroup, collectionService *service.CollectionService, logger *zap.Logger) {
	if collectionService == nil {
		return
	}

	handler := NewCollectionHandler(collectionService, logger)
	group.GET("/collection", handler.List)
}

// List serves the active catalog, falling back to the embedded seed table
// when the store is down so the collection page keeps rendering.
func (h *CollectionHandler) List(c *gin.Context) {
	items, err := h.collectionService.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Warn("collection unavailable, serving fallback", zap.Error(err))

		fallback := catalog.Fallback()
		c.Header("Cache-Control", "public, max-age=30")
		response.OK(c, gin.H{
			"doflins": fallback,
			"total":   len(fallback),
			"source":  "fallback",
			"message": "Colección cargada en modo respaldo temporal.",
		})
		return
	}

	doflins := make([]model.Doflin, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		doflins = append(doflins, *item)
	}

	c.Header("Cache-Control", "public, max-age=60")
	response.OK(c, gin.H{
		"doflins": doflins,
		"total":   len(doflins),
	})
}
