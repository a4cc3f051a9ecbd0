// File: internal/event/repository.go
package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for event data operations.
type Repository interface {
	Create(ctx context.Context, ev *Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)
	Update(ctx context.Context, ev *Event) error
	Search(ctx context.Context, query EventSearchQuery) ([]Event, *common.Pagination, error)
	FindUpcomingWithoutReminder(ctx context.Context, from, until time.Time) ([]Event, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM event repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new event into the database.
func (r *gormRepository) Create(ctx context.Context, ev *Event) error {
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// FindByID retrieves an event by its ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var ev Event
	err := r.db.WithContext(ctx).First(&ev, "events.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Event not found.")
		}
		return nil, err
	}
	return &ev, nil
}

// Update saves the full event record.
func (r *gormRepository) Update(ctx context.Context, ev *Event) error {
	if err := r.db.WithContext(ctx).Save(ev).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// Search retrieves events based on query parameters.
func (r *gormRepository) Search(ctx context.Context, queryParams EventSearchQuery) ([]Event, *common.Pagination, error) {
	var events []Event
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Event{})

	if queryParams.Status != "" {
		dbQuery = dbQuery.Where("events.status = ?", queryParams.Status)
	}
	if queryParams.OrganizerID != "" {
		if organizerID, err := uuid.Parse(queryParams.OrganizerID); err == nil {
			dbQuery = dbQuery.Where("events.organizer_id = ?", organizerID)
		}
	}
	if queryParams.Upcoming {
		dbQuery = dbQuery.Where("events.starts_at > ? AND events.status = ?", time.Now(), StatusScheduled)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count events: %w", err)
	}

	pagination := common.NewPagination(totalItems, queryParams.Page, queryParams.PageSize)
	dbQuery = dbQuery.Order("events.starts_at ASC").
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Limit(pagination.PageSize)

	if err := dbQuery.Find(&events).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to search events: %w", err)
	}

	return events, pagination, nil
}

// FindUpcomingWithoutReminder retrieves scheduled events starting within the
// window that have not had their reminder sent yet.
func (r *gormRepository) FindUpcomingWithoutReminder(ctx context.Context, from, until time.Time) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Where("starts_at > ? AND starts_at <= ? AND status = ? AND reminder_sent = ?",
			from, until, StatusScheduled, false).
		Find(&events).Error
	return events, err
}

// MarkReminderSent flags an event so the reminder job does not repeat it.
func (r *gormRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Update("reminder_sent", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Event not found.")
	}
	return nil
}
