// File: internal/waterquality/handler.go
package waterquality

import (
	"errors"

	"riverrevive_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for water quality handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new water quality handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the water quality routes. Reads are open to every
// authorized profile; station management and reading submission are for
// collectors and admins.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, recorderMW gin.HandlerFunc) {
	wqGroup := router.Group("/water-quality")
	wqGroup.Use(authMW)
	{
		wqGroup.GET("/stations", h.listStations)
		wqGroup.GET("/stations/:station_id/latest", h.getLatestReading)
		wqGroup.GET("/stations/:station_id/history", h.getReadingHistory)

		recorderGroup := wqGroup.Group("")
		recorderGroup.Use(recorderMW)
		{
			recorderGroup.POST("/stations", h.createStation)
			recorderGroup.POST("/stations/:station_id/readings", h.recordReading)
		}
	}
}

func (h *Handler) createStation(c *gin.Context) {
	var req CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	st, err := h.service.CreateStation(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Station created successfully.", ToStationResponse(st))
}

func (h *Handler) listStations(c *gin.Context) {
	stations, err := h.service.ListStations(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	responses := make([]StationResponse, 0, len(stations))
	for i := range stations {
		responses = append(responses, ToStationResponse(&stations[i]))
	}
	common.RespondOK(c, "Stations retrieved successfully.", responses)
}

func (h *Handler) recordReading(c *gin.Context) {
	stationID, ok := h.parseStationID(c)
	if !ok {
		return
	}
	recordedByID := common.GetUserIDFromContext(c)

	var req CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Reading submission: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	reading, err := h.service.RecordReading(c.Request.Context(), stationID, recordedByID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Reading recorded successfully.", ToReadingResponse(reading))
}

func (h *Handler) getLatestReading(c *gin.Context) {
	stationID, ok := h.parseStationID(c)
	if !ok {
		return
	}
	reading, err := h.service.GetLatestReading(c.Request.Context(), stationID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Latest reading retrieved successfully.", ToReadingResponse(reading))
}

func (h *Handler) getReadingHistory(c *gin.Context) {
	stationID, ok := h.parseStationID(c)
	if !ok {
		return
	}
	page, pageSize := common.GetPaginationParams(c)

	readings, pagination, err := h.service.GetReadingHistory(c.Request.Context(), stationID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	responses := make([]ReadingResponse, 0, len(readings))
	for i := range readings {
		responses = append(responses, ToReadingResponse(&readings[i]))
	}
	common.RespondPaginated(c, "Reading history retrieved successfully.", responses, pagination)
}

func (h *Handler) parseStationID(c *gin.Context) (uuid.UUID, bool) {
	paramID := c.Param("station_id")
	id, err := uuid.Parse(paramID)
	if err != nil {
		h.logger.Warn("Invalid station ID format in URL parameter", zap.String("paramID", paramID), zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid station ID format."))
		return uuid.Nil, false
	}
	return id, true
}
