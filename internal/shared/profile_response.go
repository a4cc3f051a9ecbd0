// File: internal/shared/profile_response.go
package shared

import (
	"time"

	"github.com/google/uuid"
)

// ProfileResponse defines the structure for profile data sent in API responses.
type ProfileResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        *string    `json:"email,omitempty"`
	FullName     *string    `json:"full_name,omitempty"`
	Role         string     `json:"role"`
	Phone        *string    `json:"phone,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Organization *string    `json:"organization,omitempty"`
	Approved     bool       `json:"approved"`
	Status       string     `json:"status"`
	Points       int        `json:"points"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// ToProfileResponse converts a shared.Profile to a ProfileResponse DTO.
func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		ID:           p.ID,
		Email:        p.Email,
		FullName:     p.FullName,
		Role:         p.Role,
		Phone:        p.Phone,
		Location:     p.Location,
		Organization: p.Organization,
		Approved:     p.Approved,
		Status:       p.Status,
		Points:       p.Points,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		LastLoginAt:  p.LastLoginAt,
	}
}
