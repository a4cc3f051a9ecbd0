// File: internal/event/model.go
package event

import (
	"time"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// --- Main Event Model ---
type EventStatus string

const (
	StatusScheduled EventStatus = "scheduled"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// Event is a scheduled cleanup on a stretch of the river. Volunteers join up
// to Capacity; on completion the organizer records the collected waste
// breakdown and every volunteer is credited points.
type Event struct {
	common.BaseModel
	OrganizerID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title       string         `gorm:"type:varchar(255);not null"`
	Description *string        `gorm:"type:text"`
	Address     *string        `gorm:"type:varchar(255)"`
	Latitude    *float64       `gorm:"type:decimal(10,8)"`
	Longitude   *float64       `gorm:"type:decimal(11,8)"`
	StartsAt    time.Time      `gorm:"not null;index"`
	DurationMin int            `gorm:"not null;default:120"`
	Capacity    int            `gorm:"not null"`
	Status      EventStatus    `gorm:"type:varchar(50);not null;default:'scheduled'"`
	VolunteerIDs pq.StringArray `gorm:"type:text[]"`
	ReportIDs    pq.StringArray `gorm:"type:text[]"`
	ReminderSent bool           `gorm:"not null;default:false"`

	// Waste collected, recorded at completion, in kilograms.
	PlasticKG float64 `gorm:"not null;default:0"`
	OrganicKG float64 `gorm:"not null;default:0"`
	MetalKG   float64 `gorm:"not null;default:0"`
	OtherKG   float64 `gorm:"not null;default:0"`
}

func (Event) TableName() string {
	return "events"
}

// TotalWasteKG returns the summed waste breakdown.
func (e *Event) TotalWasteKG() float64 {
	return e.PlasticKG + e.OrganicKG + e.MetalKG + e.OtherKG
}

// HasVolunteer reports whether the profile already joined.
func (e *Event) HasVolunteer(profileID uuid.UUID) bool {
	id := profileID.String()
	for _, v := range e.VolunteerIDs {
		if v == id {
			return true
		}
	}
	return false
}

// --- DTOs for API ---
type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required,min=5,max=255"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	Address     *string    `json:"address,omitempty" binding:"omitempty,max=255"`
	Latitude    *float64   `json:"latitude,omitempty" binding:"omitempty,latitude"`
	Longitude   *float64   `json:"longitude,omitempty" binding:"omitempty,longitude"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	DurationMin *int       `json:"duration_min,omitempty" binding:"omitempty,gt=0,lte=1440"`
	Capacity    *int       `json:"capacity,omitempty" binding:"omitempty,gt=0,lte=1000"`
	ReportIDs   []uuid.UUID `json:"report_ids,omitempty"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" binding:"omitempty,min=5,max=255"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	Address     *string    `json:"address,omitempty" binding:"omitempty,max=255"`
	Latitude    *float64   `json:"latitude,omitempty" binding:"omitempty,latitude"`
	Longitude   *float64   `json:"longitude,omitempty" binding:"omitempty,longitude"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	DurationMin *int       `json:"duration_min,omitempty" binding:"omitempty,gt=0,lte=1440"`
	Capacity    *int       `json:"capacity,omitempty" binding:"omitempty,gt=0,lte=1000"`
}

// CompleteEventRequest records the waste breakdown at completion.
type CompleteEventRequest struct {
	PlasticKG float64 `json:"plastic_kg" binding:"gte=0"`
	OrganicKG float64 `json:"organic_kg" binding:"gte=0"`
	MetalKG   float64 `json:"metal_kg" binding:"gte=0"`
	OtherKG   float64 `json:"other_kg" binding:"gte=0"`
}

type EventSearchQuery struct {
	common.PaginationQuery
	Status      string `form:"status"`
	OrganizerID string `form:"organizer_id"`
	Upcoming    bool   `form:"upcoming"`
}

type EventResponse struct {
	ID           uuid.UUID   `json:"id"`
	OrganizerID  uuid.UUID   `json:"organizer_id"`
	Title        string      `json:"title"`
	Description  *string     `json:"description,omitempty"`
	Address      *string     `json:"address,omitempty"`
	Latitude     *float64    `json:"latitude,omitempty"`
	Longitude    *float64    `json:"longitude,omitempty"`
	StartsAt     time.Time   `json:"starts_at"`
	DurationMin  int         `json:"duration_min"`
	Capacity     int         `json:"capacity"`
	Status       EventStatus `json:"status"`
	VolunteerIDs []string    `json:"volunteer_ids"`
	ReportIDs    []string    `json:"report_ids,omitempty"`
	SpotsLeft    int         `json:"spots_left"`
	PlasticKG    float64     `json:"plastic_kg"`
	OrganicKG    float64     `json:"organic_kg"`
	MetalKG      float64     `json:"metal_kg"`
	OtherKG      float64     `json:"other_kg"`
	TotalWasteKG float64     `json:"total_waste_kg"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func ToEventResponse(e *Event) EventResponse {
	spotsLeft := e.Capacity - len(e.VolunteerIDs)
	if spotsLeft < 0 {
		spotsLeft = 0
	}
	return EventResponse{
		ID:           e.ID,
		OrganizerID:  e.OrganizerID,
		Title:        e.Title,
		Description:  e.Description,
		Address:      e.Address,
		Latitude:     e.Latitude,
		Longitude:    e.Longitude,
		StartsAt:     e.StartsAt,
		DurationMin:  e.DurationMin,
		Capacity:     e.Capacity,
		Status:       e.Status,
		VolunteerIDs: e.VolunteerIDs,
		ReportIDs:    e.ReportIDs,
		SpotsLeft:    spotsLeft,
		PlasticKG:    e.PlasticKG,
		OrganicKG:    e.OrganicKG,
		MetalKG:      e.MetalKG,
		OtherKG:      e.OtherKG,
		TotalWasteKG: e.TotalWasteKG(),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
