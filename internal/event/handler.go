// File: internal/event/handler.go
package event

import (
	"errors"

	"riverrevive_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for event handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new event handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for event operations. Organizing an
// event (create, update, cancel, complete) is for collectors and admins;
// browsing, joining and leaving is open to every authorized profile.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, organizerMW gin.HandlerFunc) {
	eventGroup := router.Group("/events")
	eventGroup.Use(authMW)
	{
		eventGroup.GET("", h.searchEvents)
		eventGroup.GET("/:id", h.getEventByID)
		eventGroup.POST("/:id/join", h.joinEvent)
		eventGroup.POST("/:id/leave", h.leaveEvent)

		organizerGroup := eventGroup.Group("")
		organizerGroup.Use(organizerMW)
		{
			organizerGroup.POST("", h.createEvent)
			organizerGroup.PATCH("/:id", h.updateEvent)
			organizerGroup.POST("/:id/cancel", h.cancelEvent)
			organizerGroup.POST("/:id/complete", h.completeEvent)
		}
	}
}

func (h *Handler) createEvent(c *gin.Context) {
	organizerID := common.GetUserIDFromContext(c)
	if organizerID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Profile identifier missing."))
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Event creation: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	ev, err := h.service.CreateEvent(c.Request.Context(), organizerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Event scheduled successfully.", ToEventResponse(ev))
}

func (h *Handler) searchEvents(c *gin.Context) {
	var query EventSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid search parameters."))
		return
	}

	events, pagination, err := h.service.SearchEvents(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, ToEventResponse(&events[i]))
	}
	common.RespondPaginated(c, "Events retrieved successfully.", responses, pagination)
}

func (h *Handler) getEventByID(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	ev, err := h.service.GetEventByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Event retrieved successfully.", ToEventResponse(ev))
}

func (h *Handler) updateEvent(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	organizerID := common.GetUserIDFromContext(c)

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	ev, err := h.service.UpdateEvent(c.Request.Context(), id, organizerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Event updated successfully.", ToEventResponse(ev))
}

func (h *Handler) joinEvent(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	profileID := common.GetUserIDFromContext(c)
	ev, err := h.service.JoinEvent(c.Request.Context(), id, profileID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Registered for event successfully.", ToEventResponse(ev))
}

func (h *Handler) leaveEvent(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	profileID := common.GetUserIDFromContext(c)
	ev, err := h.service.LeaveEvent(c.Request.Context(), id, profileID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Left event successfully.", ToEventResponse(ev))
}

func (h *Handler) cancelEvent(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	organizerID := common.GetUserIDFromContext(c)
	ev, err := h.service.CancelEvent(c.Request.Context(), id, organizerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Event cancelled.", ToEventResponse(ev))
}

func (h *Handler) completeEvent(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	organizerID := common.GetUserIDFromContext(c)

	var req CompleteEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	ev, err := h.service.CompleteEvent(c.Request.Context(), id, organizerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Event completed successfully.", ToEventResponse(ev))
}

func (h *Handler) parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	paramID := c.Param("id")
	id, err := uuid.Parse(paramID)
	if err != nil {
		h.logger.Warn("Invalid event ID format in URL parameter", zap.String("paramID", paramID), zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid event ID format."))
		return uuid.Nil, false
	}
	return id, true
}
