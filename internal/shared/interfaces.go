// File: internal/shared/interfaces.go
package shared

import (
	"context"
	"time"

	"github.com/google/uuid"

	"riverrevive_backend/internal/identity"
)

// Profile statuses. Status is the authoritative approval signal; the Approved
// flag is written in the same UPDATE and must never disagree with it.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Profile is the application-owned record extending an identity with role and
// approval metadata.
type Profile struct {
	ID           uuid.UUID
	ProviderUID  string
	Email        *string
	FullName     *string
	Role         string
	Phone        *string
	Location     *string
	Organization *string
	Approved     bool
	Status       string
	Points       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// IsAuthorized reports whether the profile has passed the approval gate.
// Both signals must agree; a profile with approved=true but status=pending is
// not authorized.
func (p *Profile) IsAuthorized() bool {
	return p.Approved && p.Status == StatusApproved
}

// SignupFields carries the optional profile fields collected at signup.
type SignupFields struct {
	FullName     string
	Phone        string
	Location     string
	Organization string
}

// ProfileService defines the profile operations needed by the gate and the
// auth middleware.
type ProfileService interface {
	// GetOrCreateFromToken resolves the profile for a verified token, lazily
	// creating one (pending, unapproved under the manual policy) when no row
	// exists yet. Concurrent calls for the same identity yield one row.
	GetOrCreateFromToken(ctx context.Context, token *identity.Token) (profile *Profile, wasCreated bool, err error)
	// CreateForSignup creates the profile row for a freshly signed-up identity.
	CreateForSignup(ctx context.Context, ident *identity.Identity, role string, fields SignupFields) (*Profile, error)
	// GetByProviderUID fetches the profile for an identity provider UID.
	GetByProviderUID(ctx context.Context, providerUID string) (*Profile, error)
	// GetByID fetches a profile by its local ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
}
