// File: internal/gate/service.go
package gate

import (
	"context"
	"errors"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/identity"
	"riverrevive_backend/internal/shared"

	"go.uber.org/zap"
)

// SignUpRequest carries signup credentials plus the initial profile fields.
type SignUpRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Role         string `json:"role" binding:"required,oneof=citizen collector admin"`
	FullName     string `json:"full_name" binding:"required,min=2,max=100"`
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// SignInRequest carries login credentials.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SessionResult is the outcome of a successful sign-in: the provider session
// tokens plus the derived application state.
type SessionResult struct {
	Session *identity.Session
	State   State
}

// Service implements the session actions. Distinct from Gate: the Service is
// stateless per call, while a Gate tracks one session over time.
type Service struct {
	identity identity.Client
	profiles shared.ProfileService
	cfg      *config.Config
	logger   *zap.Logger
}

// NewService creates a new gate service.
func NewService(identityClient identity.Client, profiles shared.ProfileService, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		identity: identityClient,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
	}
}

// SignUp creates the identity, then the matching profile row. A profile
// create failure after identity creation succeeded surfaces as a distinct
// error: the identity exists and needs remediation, not a retry of signup.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*shared.Profile, error) {
	metadata := map[string]string{
		identity.MetadataFullName: req.FullName,
		identity.MetadataRole:     req.Role,
	}
	ident, err := s.identity.SignUp(ctx, req.Email, req.Password, metadata)
	if err != nil {
		if errors.Is(err, identity.ErrEmailAlreadyInUse) {
			return nil, common.ErrConflict.WithDetails("An account with this email already exists.")
		}
		s.logger.Error("Identity signup failed", zap.Error(err), zap.String("email", req.Email))
		return nil, common.ErrInternalServer.WithDetails("Could not create account.")
	}

	profile, err := s.profiles.CreateForSignup(ctx, ident, req.Role, shared.SignupFields{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Location:     req.Location,
		Organization: req.Organization,
	})
	if err != nil {
		// The identity was created; the orphan resolves itself on first
		// login via the lazy-create path, but the caller must know this
		// was not a credential problem.
		s.logger.Error("Profile creation failed after identity signup",
			zap.Error(err), zap.String("providerUID", ident.UID))
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, apiErr
		}
		return nil, common.ErrProfileCreateFailed.WithDetails(err.Error())
	}

	s.logger.Info("Signup completed",
		zap.String("providerUID", ident.UID), zap.String("role", req.Role))
	return profile, nil
}

// SignIn authenticates against the identity provider and resolves the
// profile. Success here never fabricates authorization: the returned state
// is Authorized only when the fetched profile confirms approval.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*SessionResult, error) {
	session, err := s.identity.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error("Identity sign-in failed", zap.Error(err), zap.String("email", req.Email))
		return nil, common.ErrInternalServer.WithDetails("Could not sign in.")
	}

	token := &identity.Token{UID: session.UID, Email: session.Email}
	profile, created, err := s.profiles.GetOrCreateFromToken(ctx, token)
	if err != nil {
		// The credentials were valid; the profile side failed. Report the
		// gate state rather than an auth error.
		return &SessionResult{Session: session, State: Derive(nil, err)}, nil
	}
	if created {
		s.logger.Info("Profile lazily created at sign-in", zap.String("providerUID", session.UID))
	}
	return &SessionResult{Session: session, State: Derive(profile, nil)}, nil
}

// SignOut revokes the session identified by the bearer token.
func (s *Service) SignOut(ctx context.Context, idToken string) error {
	token, err := s.identity.VerifyToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return common.ErrUnauthorized.WithDetails("Invalid or expired token.")
		}
		return common.ErrInternalServer.WithDetails(err.Error())
	}
	if err := s.identity.SignOut(ctx, token.UID); err != nil {
		s.logger.Error("Session revocation failed", zap.Error(err), zap.String("providerUID", token.UID))
		return common.ErrInternalServer.WithDetails("Could not sign out.")
	}
	return nil
}

// Resolve verifies a bearer token and derives the application state for it.
// Used by the session endpoints and the auth middleware.
func (s *Service) Resolve(ctx context.Context, idToken string) (*identity.Token, State, error) {
	token, err := s.identity.VerifyToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) || errors.Is(err, identity.ErrUserNotFound) {
			return nil, Unauthenticated(), common.ErrUnauthorized.WithDetails("Invalid or expired token.")
		}
		return nil, Unauthenticated(), common.ErrInternalServer.WithDetails(err.Error())
	}

	profile, _, err := s.profiles.GetOrCreateFromToken(ctx, token)
	if err != nil {
		return token, Derive(nil, err), nil
	}
	return token, Derive(profile, nil), nil
}
