// File: internal/gate/state.go
package gate

import (
	"riverrevive_backend/internal/shared"
)

// Kind identifies one of the five application states a session can be in.
type Kind string

const (
	KindUnauthenticated  Kind = "unauthenticated"
	KindFetchingProfile  Kind = "fetching_profile"
	KindProfileMissing   Kind = "profile_missing"
	KindAwaitingApproval Kind = "awaiting_approval"
	KindAuthorized       Kind = "authorized"
)

// State is the derived application state exposed to clients. Role is set
// only when Kind is KindAuthorized; Profile is set whenever a profile row
// was resolved; Reason carries the failure detail for KindProfileMissing.
type State struct {
	Kind    Kind            `json:"state"`
	Role    string          `json:"role,omitempty"`
	Profile *shared.Profile `json:"-"`
	Reason  string          `json:"reason,omitempty"`
}

// Unauthenticated is the state carried by every session without an identity.
func Unauthenticated() State {
	return State{Kind: KindUnauthenticated}
}

// FetchingProfile is the state while a profile fetch is in flight.
func FetchingProfile() State {
	return State{Kind: KindFetchingProfile}
}

// Derive computes the post-fetch state for an authenticated identity. A
// fetch error never defaults to a role: it always yields ProfileMissing.
// Authorization requires both the approved flag and the approved status,
// written atomically by the approval workflow, so a disagreement between
// them keeps the session at AwaitingApproval.
func Derive(profile *shared.Profile, fetchErr error) State {
	if fetchErr != nil {
		return State{Kind: KindProfileMissing, Reason: fetchErr.Error()}
	}
	if profile == nil {
		return State{Kind: KindProfileMissing, Reason: "profile record not found"}
	}
	if profile.IsAuthorized() {
		return State{Kind: KindAuthorized, Role: profile.Role, Profile: profile}
	}
	return State{Kind: KindAwaitingApproval, Profile: profile}
}
