// File: internal/notification/service_test.go
package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"riverrevive_backend/internal/common"
)

// MockNotificationRepository is a mock type for notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByProfileID(ctx context.Context, profileID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	args := m.Called(ctx, profileID, page, pageSize)
	var notifications []Notification
	if args.Get(0) != nil {
		notifications = args.Get(0).([]Notification)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return notifications, pagination, args.Error(2)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, notificationID uuid.UUID, profileID uuid.UUID) (*Notification, error) {
	args := m.Called(ctx, notificationID, profileID)
	var n *Notification
	if args.Get(0) != nil {
		n = args.Get(0).(*Notification)
	}
	return n, args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, profileID uuid.UUID) error {
	args := m.Called(ctx, notificationID, profileID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, profileID uuid.UUID) (int64, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(int64), args.Error(1)
}

func TestNotify_CreatesNotificationWithLinks(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	service := NewService(mockRepo, zap.NewNop())

	profileID := uuid.New()
	reportID := uuid.New()

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *Notification) bool {
		return n.ProfileID == profileID &&
			n.Type == ReportApproved &&
			n.Message == "Your report was approved." &&
			n.RelatedReportID != nil && *n.RelatedReportID == reportID &&
			n.RelatedEventID == nil &&
			n.ID != uuid.Nil &&
			!n.IsRead
	})).Return(nil).Once()

	err := service.Notify(context.Background(), profileID, ReportApproved, "Your report was approved.", &reportID, nil)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestNotify_SurfacesRepositoryError(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	service := NewService(mockRepo, zap.NewNop())

	repoErr := errors.New("insert failed")
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(repoErr).Once()

	err := service.Notify(context.Background(), uuid.New(), PointsEarned, "You earned points.", nil, nil)
	assert.ErrorIs(t, err, repoErr)
	mockRepo.AssertExpectations(t)
}

func TestMarkNotificationAsRead_PassesOwnership(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	service := NewService(mockRepo, zap.NewNop())

	notificationID := uuid.New()
	profileID := uuid.New()
	mockRepo.On("MarkAsRead", mock.Anything, notificationID, profileID).Return(nil).Once()

	err := service.MarkNotificationAsRead(context.Background(), notificationID, profileID)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestMarkAllProfileNotificationsAsRead_ReturnsCount(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	service := NewService(mockRepo, zap.NewNop())

	profileID := uuid.New()
	mockRepo.On("MarkAllAsRead", mock.Anything, profileID).Return(int64(3), nil).Once()

	count, err := service.MarkAllProfileNotificationsAsRead(context.Background(), profileID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	mockRepo.AssertExpectations(t)
}

func TestUnreadCount(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	service := NewService(mockRepo, zap.NewNop())

	profileID := uuid.New()
	mockRepo.On("CountUnread", mock.Anything, profileID).Return(int64(7), nil).Once()

	count, err := service.UnreadCount(context.Background(), profileID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	mockRepo.AssertExpectations(t)
}
