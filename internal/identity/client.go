// File: internal/identity/client.go

// Package identity abstracts the external identity provider. The rest of the
// application only ever sees the Client interface; the concrete provider is
// selected by configuration and injected, never reached through globals.
package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"riverrevive_backend/internal/config"
)

// Metadata keys set at signup time and surfaced back through token claims.
const (
	MetadataFullName = "full_name"
	MetadataRole     = "role"
)

// Sentinel errors mapped by callers onto API error kinds.
var (
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrEmailAlreadyInUse  = errors.New("identity: email already in use")
	ErrInvalidToken       = errors.New("identity: invalid or expired token")
	ErrUserNotFound       = errors.New("identity: user not found")
)

// Identity is the provider's record of an authenticated principal.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Metadata      map[string]string
}

// Session is the result of a successful credential sign-in.
type Session struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Token is a verified bearer token presented on a request.
type Token struct {
	UID           string
	Email         string
	EmailVerified bool
	Metadata      map[string]string
}

// Client is the identity provider contract consumed by the Gate and the auth
// middleware.
type Client interface {
	// SignUp creates a new identity with the given credentials and metadata.
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Identity, error)
	// SignInWithPassword authenticates credentials and returns a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// VerifyToken validates a bearer token and returns its claims.
	VerifyToken(ctx context.Context, idToken string) (*Token, error)
	// SignOut revokes all sessions for the given identity.
	SignOut(ctx context.Context, uid string) error
}

// NewClient constructs the identity client selected by configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) (Client, error) {
	switch cfg.IdentityProvider {
	case config.IdentityProviderMemory:
		return NewMemoryClient(logger.Named("MemoryIdentity")), nil
	default:
		return NewFirebaseClient(cfg, logger.Named("FirebaseIdentity"))
	}
}
