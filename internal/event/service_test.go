// File: internal/event/service_test.go
package event

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/notification"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeNotifier struct {
	calls []fakeNotifyCall
}

type fakeNotifyCall struct {
	profileID uuid.UUID
	notifType notification.Type
	eventID   *uuid.UUID
}

func (n *fakeNotifier) Notify(_ context.Context, profileID uuid.UUID, notifType notification.Type, _ string, _, eventID *uuid.UUID) error {
	n.calls = append(n.calls, fakeNotifyCall{profileID: profileID, notifType: notifType, eventID: eventID})
	return nil
}

func (n *fakeNotifier) GetNotificationsForProfile(context.Context, uuid.UUID, int, int) ([]notification.Notification, *common.Pagination, error) {
	return nil, nil, nil
}

func (n *fakeNotifier) MarkNotificationAsRead(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (n *fakeNotifier) MarkAllProfileNotificationsAsRead(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (n *fakeNotifier) UnreadCount(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

var _ notification.Service = (*fakeNotifier)(nil)

func setupReminderService(t *testing.T) (Service, Repository, *fakeNotifier) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Event{}))

	repo := NewGORMRepository(db)
	notifier := &fakeNotifier{}
	// The reminder path only touches the repository and the notifier.
	svc := NewService(repo, nil, nil, notifier, &config.Config{}, zap.NewNop())
	return svc, repo, notifier
}

func seedEvent(t *testing.T, repo Repository, startsAt time.Time, status EventStatus, reminderSent bool, volunteers ...uuid.UUID) *Event {
	t.Helper()

	ids := make(pq.StringArray, 0, len(volunteers))
	for _, v := range volunteers {
		ids = append(ids, v.String())
	}
	ev := &Event{
		OrganizerID:  uuid.New(),
		Title:        "Riverbank sweep",
		StartsAt:     startsAt,
		DurationMin:  120,
		Capacity:     10,
		Status:       status,
		VolunteerIDs: ids,
		ReminderSent: reminderSent,
	}
	require.NoError(t, repo.Create(context.Background(), ev))
	return ev
}

func TestSendUpcomingReminders_NotifiesVolunteersOnce(t *testing.T) {
	svc, repo, notifier := setupReminderService(t)
	ctx := context.Background()

	volunteerA := uuid.New()
	volunteerB := uuid.New()
	upcoming := seedEvent(t, repo, time.Now().Add(12*time.Hour), StatusScheduled, false, volunteerA, volunteerB)

	reminded, err := svc.SendUpcomingReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, reminded)

	require.Len(t, notifier.calls, 2)
	for _, call := range notifier.calls {
		assert.Equal(t, notification.EventReminder, call.notifType)
		require.NotNil(t, call.eventID)
		assert.Equal(t, upcoming.ID, *call.eventID)
	}

	// The event is now flagged; a second run stays quiet.
	reminded, err = svc.SendUpcomingReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, reminded)
	assert.Len(t, notifier.calls, 2)
}

func TestSendUpcomingReminders_SkipsEventsOutsideWindow(t *testing.T) {
	svc, repo, notifier := setupReminderService(t)
	ctx := context.Background()

	seedEvent(t, repo, time.Now().Add(48*time.Hour), StatusScheduled, false, uuid.New())
	seedEvent(t, repo, time.Now().Add(-1*time.Hour), StatusScheduled, false, uuid.New())

	reminded, err := svc.SendUpcomingReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, reminded)
	assert.Empty(t, notifier.calls)
}

func TestSendUpcomingReminders_SkipsCancelledAndAlreadyReminded(t *testing.T) {
	svc, repo, notifier := setupReminderService(t)
	ctx := context.Background()

	seedEvent(t, repo, time.Now().Add(6*time.Hour), StatusCancelled, false, uuid.New())
	seedEvent(t, repo, time.Now().Add(6*time.Hour), StatusScheduled, true, uuid.New())

	reminded, err := svc.SendUpcomingReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, reminded)
	assert.Empty(t, notifier.calls)
}
