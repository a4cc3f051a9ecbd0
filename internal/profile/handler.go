// File: internal/profile/handler.go
package profile

import (
	"errors"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for profile handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new profile handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for profile operations. All profile
// routes require an authorized session; the approval queue and decision
// endpoints additionally require the admin role.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	profileGroup := router.Group("/profiles")
	profileGroup.Use(authMW)
	{
		profileGroup.GET("/me", h.getMe)
		profileGroup.PATCH("/me", h.updateMe)
		profileGroup.GET("/:id", h.getProfileByID)

		adminGroup := profileGroup.Group("")
		adminGroup.Use(adminMW)
		{
			adminGroup.GET("/pending", h.listPending)
			adminGroup.POST("/:id/approve", h.approve)
			adminGroup.POST("/:id/reject", h.reject)
		}
	}
}

func (h *Handler) getMe(c *gin.Context) {
	profileID := common.GetUserIDFromContext(c)
	if profileID == uuid.Nil {
		h.logger.Error("Profile ID not found in context for /me", zap.String("path", c.Request.URL.Path))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Profile identifier missing."))
		return
	}
	prof, err := h.service.GetByID(c.Request.Context(), profileID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved successfully.", shared.ToProfileResponse(prof))
}

func (h *Handler) updateMe(c *gin.Context) {
	profileID := common.GetUserIDFromContext(c)
	if profileID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Profile identifier missing."))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Profile update: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	prof, err := h.service.UpdateOwnProfile(c.Request.Context(), profileID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated successfully.", shared.ToProfileResponse(prof))
}

func (h *Handler) getProfileByID(c *gin.Context) {
	paramID := c.Param("id")
	profileIDToFetch, err := uuid.Parse(paramID)
	if err != nil {
		h.logger.Warn("Invalid profile ID format in URL parameter", zap.String("paramID", paramID), zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid profile ID format."))
		return
	}
	requestingID := common.GetUserIDFromContext(c)
	requestingRole := common.GetUserRoleFromContext(c)
	if requestingRole != common.RoleAdmin && requestingID != profileIDToFetch {
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You are not authorized to view this profile."))
		return
	}
	prof, err := h.service.GetByID(c.Request.Context(), profileIDToFetch)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved successfully.", shared.ToProfileResponse(prof))
}

func (h *Handler) listPending(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	profiles, pagination, err := h.service.ListPending(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]shared.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, shared.ToProfileResponse(&profiles[i]))
	}
	common.RespondPaginated(c, "Pending profiles retrieved successfully.", responses, pagination)
}

func (h *Handler) decisionTarget(c *gin.Context) (uuid.UUID, bool) {
	paramID := c.Param("id")
	id, err := uuid.Parse(paramID)
	if err != nil {
		h.logger.Warn("Invalid profile ID format for approval decision", zap.String("paramID", paramID), zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid profile ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) approve(c *gin.Context) {
	id, ok := h.decisionTarget(c)
	if !ok {
		return
	}
	prof, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile approved successfully.", shared.ToProfileResponse(prof))
}

func (h *Handler) reject(c *gin.Context) {
	id, ok := h.decisionTarget(c)
	if !ok {
		return
	}
	prof, err := h.service.Reject(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile rejected.", shared.ToProfileResponse(prof))
}
