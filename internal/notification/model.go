// File: internal/notification/model.go
package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type defines the kind of notification.
type Type string

const (
	ProfileApproved Type = "profile_approved"
	ProfileRejected Type = "profile_rejected"
	ReportApproved  Type = "report_approved"
	EventScheduled  Type = "event_scheduled"
	EventReminder   Type = "event_reminder"
	EventAssignment Type = "event_assignment"
	EventCompleted  Type = "event_completed"
	PointsEarned    Type = "points_earned"
)

// Notification represents a user notification. Notifications are immutable
// once created; only the read flag changes.
type Notification struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ProfileID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_notification_profile_read" json:"profile_id"`
	Type            Type       `gorm:"type:varchar(100);not null" json:"type"`
	Message         string     `gorm:"type:text;not null" json:"message"`
	RelatedReportID *uuid.UUID `gorm:"type:uuid" json:"related_report_id,omitempty"`
	RelatedEventID  *uuid.UUID `gorm:"type:uuid" json:"related_event_id,omitempty"`
	IsRead          bool       `gorm:"not null;default:false;index:idx_notification_profile_read" json:"is_read"`
	CreatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate generates the row ID application-side.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
