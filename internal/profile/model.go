// File: internal/profile/model.go
package profile

import (
	"time"

	"riverrevive_backend/internal/common" // For BaseModel

	"riverrevive_backend/internal/shared"
)

// Profile represents the profile model in the database. Exactly one row
// exists per identity; the unique index on ProviderUID is what makes
// concurrent first-login creates collapse to a single row.
type Profile struct {
	common.BaseModel         // Embeds ID, CreatedAt, UpdatedAt
	ProviderUID      string  `gorm:"type:varchar(128);not null;uniqueIndex:idx_profiles_provider_uid"`
	Email            *string `gorm:"type:varchar(255);index"`
	FullName         *string `gorm:"type:varchar(150)"`
	Role             string  `gorm:"type:varchar(50);not null;default:'citizen'"`
	Phone            *string `gorm:"type:varchar(50)"`
	Location         *string `gorm:"type:varchar(255)"`
	Organization     *string `gorm:"type:varchar(255)"`
	Approved         bool    `gorm:"not null;default:false"`
	Status           string  `gorm:"type:varchar(20);not null;default:'pending'"`
	Points           int     `gorm:"not null;default:0"`
	LastLoginAt      *time.Time
}

// TableName specifies the table name for the Profile model.
func (Profile) TableName() string {
	return "profiles"
}

// DBToShared converts a GORM profile.Profile model to a shared.Profile DTO.
func DBToShared(dbProfile *Profile) *shared.Profile {
	if dbProfile == nil {
		return nil
	}
	return &shared.Profile{
		ID:           dbProfile.ID,
		ProviderUID:  dbProfile.ProviderUID,
		Email:        dbProfile.Email,
		FullName:     dbProfile.FullName,
		Role:         dbProfile.Role,
		Phone:        dbProfile.Phone,
		Location:     dbProfile.Location,
		Organization: dbProfile.Organization,
		Approved:     dbProfile.Approved,
		Status:       dbProfile.Status,
		Points:       dbProfile.Points,
		CreatedAt:    dbProfile.CreatedAt,
		UpdatedAt:    dbProfile.UpdatedAt,
		LastLoginAt:  dbProfile.LastLoginAt,
	}
}

// --- DTOs (Data Transfer Objects) for API requests/responses ---

// UpdateProfileRequest defines the fields a user may change on their own
// profile. Role and approval fields are admin-only and intentionally absent.
type UpdateProfileRequest struct {
	FullName     *string `json:"full_name,omitempty" binding:"omitempty,max=150"`
	Phone        *string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Location     *string `json:"location,omitempty" binding:"omitempty,max=255"`
	Organization *string `json:"organization,omitempty" binding:"omitempty,max=255"`
}

// ApplyUpdateRequest mutates an existing GORM model from an update request.
func ApplyUpdateRequest(req *UpdateProfileRequest, dbProfile *Profile) {
	if req == nil || dbProfile == nil {
		return
	}
	if req.FullName != nil {
		dbProfile.FullName = req.FullName
	}
	if req.Phone != nil {
		dbProfile.Phone = req.Phone
	}
	if req.Location != nil {
		dbProfile.Location = req.Location
	}
	if req.Organization != nil {
		dbProfile.Organization = req.Organization
	}
	dbProfile.UpdatedAt = time.Now()
}
