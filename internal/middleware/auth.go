// File: internal/middleware/auth.go
package middleware

import (
	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/gate"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware creates a Gin middleware that verifies the bearer token
// against the identity provider and derives the gate state for the caller.
// Only an Authorized state passes: a valid token whose profile is still
// pending (or rejected) is refused with an approval error, and a fetch
// failure is refused without defaulting to any role.
func AuthMiddleware(gateService *gate.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken := common.GetTokenFromContext(c)
		if idToken == "" {
			logger.Debug("Authorization header missing or malformed")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			// c.Abort() is handled by RespondWithError's AbortWithStatusJSON
			return
		}

		token, state, err := gateService.Resolve(c.Request.Context(), idToken)
		if err != nil {
			logger.Warn("Token resolution failed", zap.Error(err))
			common.RespondWithError(c, err)
			return
		}

		switch state.Kind {
		case gate.KindAuthorized:
			// fall through to context population below
		case gate.KindAwaitingApproval:
			common.RespondWithError(c, common.ErrApprovalPending)
			return
		default:
			common.RespondWithError(c, common.ErrForbidden.WithDetails("Profile could not be resolved for this session."))
			return
		}

		c.Set(common.UserIDKey, state.Profile.ID)
		c.Set(common.UserRoleKey, state.Profile.Role)
		c.Set(common.ProviderUIDKey, token.UID)
		if state.Profile.Email != nil {
			c.Set(common.UserEmailKey, *state.Profile.Email)
		}

		logger.Debug("Session authorized",
			zap.String("profileID", state.Profile.ID.String()),
			zap.String("role", state.Profile.Role),
		)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware to check if the authenticated user has one of the required roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := common.GetUserRoleFromContext(c)
		if userRole == "" {
			// This should not happen if AuthMiddleware ran successfully
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User role not found in context."))
			return
		}

		isAllowed := false
		for _, role := range allowedRoles {
			if userRole == role {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
			return
		}
		c.Next()
	}
}
