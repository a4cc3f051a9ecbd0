// File: internal/report/handler.go
package report

import (
	"errors"
	"strings"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/filestorage"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for report handlers.
type Handler struct {
	service Service
	storage *filestorage.Service
	logger  *zap.Logger
}

// NewHandler creates a new report handler.
func NewHandler(service Service, storage *filestorage.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		storage: storage,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for report operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, collectorMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	reportGroup := router.Group("/reports")
	reportGroup.Use(authMW)
	{
		reportGroup.POST("", h.createReport)
		reportGroup.GET("", h.searchReports)
		reportGroup.GET("/my", h.getMyReports)
		reportGroup.GET("/:id", h.getReportByID)
		reportGroup.PATCH("/:id", h.updateReport)
		reportGroup.DELETE("/:id", h.deleteReport)
		reportGroup.POST("/:id/photo", h.uploadPhoto)

		collectorGroup := reportGroup.Group("")
		collectorGroup.Use(collectorMW)
		{
			collectorGroup.GET("/assigned", h.getAssignedReports)
			collectorGroup.PATCH("/:id/status", h.updateReportStatus)
		}

		adminGroup := reportGroup.Group("")
		adminGroup.Use(adminMW)
		{
			adminGroup.POST("/:id/assign", h.assignCollector)
		}
	}
}

func (h *Handler) createReport(c *gin.Context) {
	reporterID := common.GetUserIDFromContext(c)
	if reporterID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Profile identifier missing."))
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Report creation: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	rep, err := h.service.CreateReport(c.Request.Context(), reporterID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Report submitted successfully.", ToReportResponse(rep))
}

func (h *Handler) searchReports(c *gin.Context) {
	var query ReportSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid search parameters."))
		return
	}

	reports, pagination, err := h.service.SearchReports(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Reports retrieved successfully.", toReportResponses(reports), pagination)
}

func (h *Handler) getMyReports(c *gin.Context) {
	reporterID := common.GetUserIDFromContext(c)
	var query ReportSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid search parameters."))
		return
	}

	reports, pagination, err := h.service.GetReporterReports(c.Request.Context(), reporterID, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Your reports retrieved successfully.", toReportResponses(reports), pagination)
}

func (h *Handler) getAssignedReports(c *gin.Context) {
	collectorID := common.GetUserIDFromContext(c)
	var query ReportSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid search parameters."))
		return
	}

	reports, pagination, err := h.service.GetCollectorReports(c.Request.Context(), collectorID, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Assigned reports retrieved successfully.", toReportResponses(reports), pagination)
}

func (h *Handler) getReportByID(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	rep, err := h.service.GetReportByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Report retrieved successfully.", ToReportResponse(rep))
}

func (h *Handler) updateReport(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	reporterID := common.GetUserIDFromContext(c)

	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	rep, err := h.service.UpdateReport(c.Request.Context(), id, reporterID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Report updated successfully.", ToReportResponse(rep))
}

func (h *Handler) deleteReport(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	reporterID := common.GetUserIDFromContext(c)
	if err := h.service.DeleteReport(c.Request.Context(), id, reporterID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// uploadPhoto stores a multipart image for a pending report and records its
// public URL. An earlier photo for the same report is removed from disk.
func (h *Handler) uploadPhoto(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	reporterID := common.GetUserIDFromContext(c)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("A 'photo' form file is required."))
		return
	}

	relativePath, err := h.storage.SavePhoto(fileHeader, "reports")
	if err != nil {
		h.logger.Warn("Failed to store report photo", zap.Error(err), zap.String("reportID", id.String()))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	photoURL := "/uploads/" + relativePath

	rep, previousURL, err := h.service.AttachPhoto(c.Request.Context(), id, reporterID, photoURL)
	if err != nil {
		// The report update failed, so the freshly stored file is orphaned.
		if cleanupErr := h.storage.DeleteFile(relativePath); cleanupErr != nil {
			h.logger.Warn("Failed to remove orphaned report photo", zap.Error(cleanupErr))
		}
		common.RespondWithError(c, err)
		return
	}

	if previousURL != "" {
		if old, found := strings.CutPrefix(previousURL, "/uploads/"); found {
			if deleteErr := h.storage.DeleteFile(old); deleteErr != nil {
				h.logger.Warn("Failed to delete replaced report photo", zap.Error(deleteErr), zap.String("photoURL", previousURL))
			}
		}
	}

	common.RespondOK(c, "Report photo uploaded successfully.", ToReportResponse(rep))
}

func (h *Handler) updateReportStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req AdminUpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	actorRole := common.GetUserRoleFromContext(c)
	rep, err := h.service.UpdateReportStatus(c.Request.Context(), id, actorRole, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Report status updated successfully.", ToReportResponse(rep))
}

func (h *Handler) assignCollector(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req AssignCollectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	rep, err := h.service.AssignCollector(c.Request.Context(), id, req.CollectorID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Collector assigned successfully.", ToReportResponse(rep))
}

func (h *Handler) parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	paramID := c.Param("id")
	id, err := uuid.Parse(paramID)
	if err != nil {
		h.logger.Warn("Invalid report ID format in URL parameter", zap.String("paramID", paramID), zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid report ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func toReportResponses(reports []Report) []ReportResponse {
	responses := make([]ReportResponse, 0, len(reports))
	for i := range reports {
		responses = append(responses, ToReportResponse(&reports[i]))
	}
	return responses
}
