package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"doflin-hub/internal/api/response"
	"doflin-hub/internal/metrics"
	"doflin-hub/internal/model"
	"doflin-hub/internal/ratelimit"
	"doflin-hub/internal/service"
	"doflin-hub/pkg/request"
)

type RevealHandler struct {
	revealService *service.RevealService
	limiter       ratelimit.Limiter
	limit         int
	window        time.Duration
}

func NewRevealHandler(
	revealService *service.RevealService,
	limiter ratelimit.Limiter,
	limit int,
	window time.Duration,
) *RevealHandler {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return &RevealHandler{
		revealService: revealService,
		limiter:       limiter,
		limit:         limit,
		window:        window,
	}
}

func RegisterRevealRoutes(
	group *gin.RouterGroup,
	revealService *service.RevealService,
	limiter ratelimit.Limiter,
	limit int,
	window time.Duration,
) {
	if revealService == nil {
		return
	}

	handler := NewRevealHandler(revealService, limiter, limit, window)
	group.GET("/reveal", handler.Reveal)
}

// Reveal calls the governor directly instead of going through
// middleware.RateLimit so a denial can be audited as a rate_limited scan
// event with the attempted code attached.
func (h *RevealHandler) Reveal(c *gin.Context) {
	rawCode := c.Query("code")
	ipHash := request.HashIP(c.ClientIP())
	userAgent := request.UserAgentOrDefault(c.Request.UserAgent())

	if h.limiter != nil {
		result := h.limiter.Check("reveal:"+c.ClientIP(), h.limit, h.window, time.Now())
		if !result.Allowed {
			metrics.RateLimitedTotal.Inc()
			metrics.IncReveal("rate_limited")
			h.revealService.LogScanEvent(
				c.Request.Context(),
				model.ScanEventRateLimited,
				rawCode,
				ipHash,
				userAgent,
				nil,
			)
			response.FailRetryAfter(
				c,
				http.StatusTooManyRequests,
				response.CodeRateLimited,
				"Has alcanzado el límite temporal de intentos. Intenta de nuevo en un minuto.",
				result.RetryAfter,
			)
			return
		}
	}

	result, err := h.revealService.Reveal(c.Request.Context(), service.RevealInput{
		Code:      rawCode,
		IPHash:    ipHash,
		UserAgent: userAgent,
	})
	if err != nil {
		handleRevealError(c, err)
		return
	}

	metrics.IncReveal("success")
	if result.FirstScan {
		metrics.RevealFirstScans.Inc()
	}

	c.Header("Cache-Control", "no-store")
	response.OK(c, gin.H{
		"code":          result.Code,
		"packSize":      result.PackSize,
		"firstScan":     result.FirstScan,
		"doflins":       result.Doflins,
		"highestRarity": result.HighestRarity,
		"usedAt":        result.UsedAt.UTC().Format(time.RFC3339),
		"scanCount":     result.ScanCount,
	})
}

func handleRevealError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCodeFormat):
		metrics.IncReveal("invalid_format")
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidFormat,
			"El código debe tener entre 6 y 12 caracteres alfanuméricos.")
	case errors.Is(err, service.ErrCodeNotFound):
		metrics.IncReveal("not_found")
		response.Fail(c, http.StatusNotFound, response.CodeNotFound,
			"Código no encontrado.")
	case errors.Is(err, service.ErrCodeBlocked):
		metrics.IncReveal("blocked")
		response.Fail(c, http.StatusGone, response.CodeBlocked,
			"Código bloqueado.")
	case errors.Is(err, service.ErrStoreUnavailable):
		metrics.IncReveal("store_unavailable")
		response.Fail(c, http.StatusServiceUnavailable, response.CodeInternal,
			"Servicio temporalmente no disponible.")
	default:
		metrics.IncReveal("internal_error")
		response.Fail(c, http.StatusInternalServerError, response.CodeInternal,
			"No fue posible procesar el reveal en este momento.")
	}
}
