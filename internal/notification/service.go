// File: internal/notification/service.go
package notification

import (
	"context"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for notification business logic.
type Service interface {
	Notify(ctx context.Context, profileID uuid.UUID, notifType Type, message string, reportID, eventID *uuid.UUID) error
	GetNotificationsForProfile(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	MarkNotificationAsRead(ctx context.Context, notificationID, profileID uuid.UUID) error
	MarkAllProfileNotificationsAsRead(ctx context.Context, profileID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, profileID uuid.UUID) (int64, error)
}

type serviceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ Service = (*serviceImplementation)(nil)

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &serviceImplementation{repo: repo, logger: logger}
}

// Notify creates a notification for a profile. Failures are returned to the
// caller, who typically logs and continues: a lost notification must never
// abort the domain operation that triggered it.
func (s *serviceImplementation) Notify(ctx context.Context, profileID uuid.UUID, notifType Type, message string, reportID, eventID *uuid.UUID) error {
	n := &Notification{
		ID:              uuid.New(),
		ProfileID:       profileID,
		Type:            notifType,
		Message:         message,
		RelatedReportID: reportID,
		RelatedEventID:  eventID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.Error(err),
			zap.String("profileID", profileID.String()),
			zap.String("type", string(notifType)))
		return err
	}
	return nil
}

func (s *serviceImplementation) GetNotificationsForProfile(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	return s.repo.GetByProfileID(ctx, profileID, page, pageSize)
}

func (s *serviceImplementation) MarkNotificationAsRead(ctx context.Context, notificationID, profileID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, profileID)
}

func (s *serviceImplementation) MarkAllProfileNotificationsAsRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, profileID)
}

func (s *serviceImplementation) UnreadCount(ctx context.Context, profileID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, profileID)
}
