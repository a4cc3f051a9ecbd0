// File: internal/flood/handler.go
package flood

import (
	"errors"

	"riverrevive_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for flood handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new flood handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the flood forecast routes. Forecast reads are open
// to every authorized profile; station management and level submission are
// admin operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	floodGroup := router.Group("/flood")
	floodGroup.Use(authMW)
	{
		floodGroup.GET("/stations", h.listStations)
		floodGroup.GET("/forecast", h.getAllForecasts)
		floodGroup.GET("/forecast/:station_slug", h.getForecast)

		adminGroup := floodGroup.Group("")
		adminGroup.Use(adminMW)
		{
			adminGroup.POST("/stations", h.createStation)
			adminGroup.POST("/stations/:station_id/levels", h.recordLevel)
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

func (h *Handler) recordLevel(c *gin.Context) {
	paramID := c.Param("station_id")
	stationID, err := uuid.Parse(paramID)
	if err != nil {
		h.logger.Warn("Invalid station ID format in URL parameter", zap.String("paramID", paramID), zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid station ID format."))
		return
	}
	recordedByID := common.GetUserIDFromContext(c)

	var req CreateLevelReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	forecast, err := h.service.RecordLevel(c.Request.Context(), stationID, recordedByID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Level recorded successfully.", forecast)
}

func (h *Handler) getForecast(c *gin.Context) {
	stationSlug := c.Param("station_slug")
	forecast, err := h.service.GetForecast(c.Request.Context(), stationSlug)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Forecast retrieved successfully.", forecast)
}

func (h *Handler) getAllForecasts(c *gin.Context) {
	forecasts, err := h.service.GetAllForecasts(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Forecasts retrieved successfully.", forecasts)
}
