// File: internal/report/model.go
package report

import (
	"time"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/shared"

	"github.com/google/uuid"
)

// --- Main Report Model ---
type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusApproved   ReportStatus = "approved"
	StatusInProgress ReportStatus = "in-progress"
	StatusCompleted  ReportStatus = "completed"
	StatusRejected   ReportStatus = "rejected"
)

type Density string

const (
	DensityLow    Density = "low"
	DensityMedium Density = "medium"
	DensityHigh   Density = "high"
)

// GarbageType values accepted for a waste report.
const (
	GarbagePlastic = "plastic"
	GarbageOrganic = "organic"
	GarbageMetal   = "metal"
	GarbageMixed   = "mixed"
	GarbageOther   = "other"
)

// Report is a citizen-submitted waste sighting on the river. It moves
// pending -> approved -> in-progress -> completed under admin and collector
// actions; rejected is a terminal state.
type Report struct {
	common.BaseModel
	ReporterID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	CollectorID *uuid.UUID   `gorm:"type:uuid;index"`
	GarbageType string       `gorm:"type:varchar(50);not null"`
	Density     Density      `gorm:"type:varchar(20);not null"`
	Description *string      `gorm:"type:text"`
	PhotoURL    *string      `gorm:"type:text"`
	Address     *string      `gorm:"type:varchar(255)"`
	Latitude    float64      `gorm:"type:decimal(10,8);not null"`
	Longitude   float64      `gorm:"type:decimal(11,8);not null"`
	Status      ReportStatus `gorm:"type:varchar(50);not null;default:'pending'"`
	AdminNotes  *string      `gorm:"type:text"`
	ResolvedAt  *time.Time
}

func (Report) TableName() string {
	return "reports"
}

// --- DTOs for API ---
type CreateReportRequest struct {
	GarbageType string   `json:"garbage_type" binding:"required,oneof=plastic organic metal mixed other"`
	Density     Density  `json:"density" binding:"required,oneof=low medium high"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=2000"`
	PhotoURL    *string  `json:"photo_url,omitempty" binding:"omitempty,url,max=2048"`
	Address     *string  `json:"address,omitempty" binding:"omitempty,max=255"`
	Latitude    *float64 `json:"latitude" binding:"required,latitude"`
	Longitude   *float64 `json:"longitude" binding:"required,longitude"`
}

type UpdateReportRequest struct {
	GarbageType *string  `json:"garbage_type,omitempty" binding:"omitempty,oneof=plastic organic metal mixed other"`
	Density     *Density `json:"density,omitempty" binding:"omitempty,oneof=low medium high"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=2000"`
	PhotoURL    *string  `json:"photo_url,omitempty" binding:"omitempty,url,max=2048"`
	Address     *string  `json:"address,omitempty" binding:"omitempty,max=255"`
}

type AdminUpdateReportStatusRequest struct {
	Status     ReportStatus `json:"status" binding:"required,oneof=pending approved in-progress completed rejected"`
	AdminNotes *string      `json:"admin_notes,omitempty" binding:"omitempty,max=2000"`
}

type AssignCollectorRequest struct {
	CollectorID uuid.UUID `json:"collector_id" binding:"required"`
}

type ReportSearchQuery struct {
	common.PaginationQuery
	SearchTerm  string   `form:"q"`
	Status      string   `form:"status"`
	GarbageType string   `form:"garbage_type"`
	Density     string   `form:"density"`
	ReporterID  *string  `form:"reporter_id"`
	CollectorID *string  `form:"collector_id"`
	Latitude    *float64 `form:"lat"`
	Longitude   *float64 `form:"lon"`
	SortBy      string   `form:"sort_by"`
	SortOrder   string   `form:"sort_order"`
}

type ReportResponse struct {
	ID          uuid.UUID               `json:"id"`
	ReporterID  uuid.UUID               `json:"reporter_id"`
	Reporter    *shared.ProfileResponse `json:"reporter,omitempty"`
	CollectorID *uuid.UUID              `json:"collector_id,omitempty"`
	GarbageType string                  `json:"garbage_type"`
	Density     Density                 `json:"density"`
	Description *string                 `json:"description,omitempty"`
	PhotoURL    *string                 `json:"photo_url,omitempty"`
	Address     *string                 `json:"address,omitempty"`
	Latitude    float64                 `json:"latitude"`
	Longitude   float64                 `json:"longitude"`
	Status      ReportStatus            `json:"status"`
	AdminNotes  *string                 `json:"admin_notes,omitempty"`
	ResolvedAt  *time.Time              `json:"resolved_at,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func ToReportResponse(r *Report) ReportResponse {
	return ReportResponse{
		ID:          r.ID,
		ReporterID:  r.ReporterID,
		CollectorID: r.CollectorID,
		GarbageType: r.GarbageType,
		Density:     r.Density,
		Description: r.Description,
		PhotoURL:    r.PhotoURL,
		Address:     r.Address,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Status:      r.Status,
		AdminNotes:  r.AdminNotes,
		ResolvedAt:  r.ResolvedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// validStatusTransitions is the allowed workflow graph.
var validStatusTransitions = map[ReportStatus][]ReportStatus{
	StatusPending:    {StatusApproved, StatusRejected},
	StatusApproved:   {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusRejected:   {},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to ReportStatus) bool {
	for _, next := range validStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
