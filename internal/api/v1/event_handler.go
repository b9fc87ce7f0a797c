package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"doflin-hub/internal/api/middleware"
	"doflin-hub/internal/api/response"
	inputsanitize "doflin-hub/internal/api/sanitize"
	"doflin-hub/internal/model"
	"doflin-hub/internal/ratelimit"
	"doflin-hub/internal/service"
	"doflin-hub/pkg/request"
)

type EventHandler struct {
	eventService *service.EventService
}

type purchaseIntentRequest struct {
	Code      string  `json:"code"`
	DoflinID  *int64  `json:"doflinId"`
	DoflinIDs []int64 `json:"doflinIds"`
}

type trackEventRequest struct {
	EventType string `json:"eventType" binding:"required"`
	Source    string `json:"source"`
	CodeInput string `json:"codeInput"`
}

func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func RegisterEventRoutes(group *gin.RouterGroup, eventService *service.EventService, limiter ratelimit.Limiter) {
	if eventService == nil {
		return
	}

	handler := NewEventHandler(eventService)
	events := group.Group("/events")
	events.Use(middleware.RateLimit(limiter, "events", 30, time.Minute))

	events.POST("/purchase-intent", handler.PurchaseIntent)
	events.POST("/track", handler.Track)
}

func (h *EventHandler) PurchaseIntent(c *gin.Context) {
	var req purchaseIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidPayload, "payload inválido")
		return
	}

	err := h.eventService.LogPurchaseIntent(c.Request.Context(), service.PurchaseIntentInput{
		Code:      inputsanitize.Text(req.Code),
		DoflinID:  req.DoflinID,
		DoflinIDs: req.DoflinIDs,
		IPHash:    request.HashIP(c.ClientIP()),
		UserAgent: request.UserAgentOrDefault(c.Request.UserAgent()),
	})
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.CodeInternal,
			"No fue posible registrar el evento.")
		return
	}

	response.OK(c, gin.H{"recorded": true})
}

func (h *EventHandler) Track(c *gin.Context) {
	var req trackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidPayload, "payload inválido")
		return
	}

	err := h.eventService.TrackUXEvent(c.Request.Context(), service.TrackEventInput{
		EventType: model.ScanEventType(inputsanitize.Text(req.EventType)),
		Source:    inputsanitize.Text(req.Source),
		CodeInput: inputsanitize.Text(req.CodeInput),
		IPHash:    request.HashIP(c.ClientIP()),
		UserAgent: request.UserAgentOrDefault(c.Request.UserAgent()),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidEventInput) {
			response.Fail(c, http.StatusBadRequest, response.CodeInvalidPayload,
				"Tipo de evento no soportado.")
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.CodeInternal,
			"No fue posible registrar el evento.")
		return
	}

	response.OK(c, gin.H{"recorded": true})
}
