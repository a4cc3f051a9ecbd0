// File: internal/gate/handler.go
package gate

import (
	"errors"
	"io"
	"time"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for session and auth handlers.
type Handler struct {
	service  *Service
	profiles shared.ProfileService
	cfg      *config.Config
	logger   *zap.Logger
}

// NewHandler creates a new gate handler.
func NewHandler(service *Service, profiles shared.ProfileService, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
	}
}

// RegisterRoutes sets up the auth and session routes. None of them use the
// auth middleware: they are exactly the endpoints a not-yet-authorized
// client must be able to reach.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", h.signUp)
		authGroup.POST("/login", h.signIn)
		authGroup.POST("/logout", h.signOut)
		authGroup.GET("/session", h.session)
		authGroup.GET("/session/stream", h.sessionStream)
	}
}

func (h *Handler) signUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Signup: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	profile, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Account created. Awaiting approval.", gin.H{
		"profile": shared.ToProfileResponse(profile),
		"state":   Derive(profile, nil),
	})
}

func (h *Handler) signIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	result, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	response := gin.H{
		"state": result.State,
		"token": gin.H{
			"id_token":      result.Session.IDToken,
			"refresh_token": result.Session.RefreshToken,
			"expires_at":    result.Session.ExpiresAt,
		},
	}
	if result.State.Profile != nil {
		response["profile"] = shared.ToProfileResponse(result.State.Profile)
	}
	common.RespondOK(c, "Signed in successfully.", response)
}

func (h *Handler) signOut(c *gin.Context) {
	idToken := common.GetTokenFromContext(c)
	if idToken == "" {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization token required."))
		return
	}
	if err := h.service.SignOut(c.Request.Context(), idToken); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Signed out successfully.", gin.H{"state": Unauthenticated()})
}

// session derives the application state for the caller's bearer token. With
// no token at all the state is simply Unauthenticated, not an error.
func (h *Handler) session(c *gin.Context) {
	idToken := common.GetTokenFromContext(c)
	if idToken == "" {
		common.RespondOK(c, "Session state.", gin.H{"state": Unauthenticated()})
		return
	}

	_, state, err := h.service.Resolve(c.Request.Context(), idToken)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	response := gin.H{"state": state}
	if state.Profile != nil {
		response["profile"] = shared.ToProfileResponse(state.Profile)
	}
	common.RespondOK(c, "Session state.", response)
}

// sessionStream holds the connection open and pushes state transitions as
// server-sent events, so a client stuck at AwaitingApproval sees the flip to
// Authorized without polling.
func (h *Handler) sessionStream(c *gin.Context) {
	idToken := common.GetTokenFromContext(c)
	if idToken == "" {
		idToken = c.Query("token")
	}
	if idToken == "" {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization token required."))
		return
	}

	token, _, err := h.service.Resolve(c.Request.Context(), idToken)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	g := NewGate(h.profiles, h.cfg, h.logger)
	ctx := c.Request.Context()
	go g.Run(ctx)
	g.SetSession(token)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case state, ok := <-g.States():
			if !ok {
				return false
			}
			payload := gin.H{"state": state.Kind}
			if state.Role != "" {
				payload["role"] = state.Role
			}
			if state.Reason != "" {
				payload["reason"] = state.Reason
			}
			c.SSEvent("session", payload)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})
}
