package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doflin-hub/internal/api/response"
	"doflin-hub/internal/catalog"
	"doflin-hub/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
	logger       *zap.Logger
}

func NewStatsHandler(statsService *service.StatsService, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{statsService: statsService, logger: logger}
}

func RegisterStatsRoutes(group *gin.RouterGroup, statsService *service.StatsService, logger *zap.Logger) {
	if statsService == nil {
		return
	}

	handler := NewStatsHandler(statsService, logger)
	group.GET("/stats/remaining", handler.Remaining)
}

// Remaining always answers 200. When the store is unreachable it serves
// the static fallback table with a source marker and a shorter cache
// lifetime so clients retry the live path soon.
func (h *StatsHandler) Remaining(c *gin.Context) {
	snapshot, err := h.statsService.RemainingByRarity(c.Request.Context())
	if err != nil {
		h.logger.Warn("remaining stats unavailable, serving fallback", zap.Error(err))

		remaining, total := catalog.FallbackRemaining()
		c.Header("Cache-Control", "public, max-age=15")
		response.OK(c, gin.H{
			"remaining":      remaining,
			"totalRemaining": total,
			"source":         "fallback",
			"message":        "Estadísticas cargadas en modo respaldo temporal.",
		})
		return
	}

	c.Header("Cache-Control", "public, max-age=30")
	response.OK(c, gin.H{
		"remaining":      snapshot.Remaining,
		"totalRemaining": snapshot.Total,
	})
}
