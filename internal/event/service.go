// File: internal/event/service.go
package event

import (
	"context"
	"fmt"
	"time"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/notification"
	"riverrevive_backend/internal/profile"
	"riverrevive_backend/internal/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for event-related business logic.
type Service interface {
	CreateEvent(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, organizerID uuid.UUID, req UpdateEventRequest) (*Event, error)
	SearchEvents(ctx context.Context, query EventSearchQuery) ([]Event, *common.Pagination, error)

	JoinEvent(ctx context.Context, id uuid.UUID, profileID uuid.UUID) (*Event, error)
	LeaveEvent(ctx context.Context, id uuid.UUID, profileID uuid.UUID) (*Event, error)
	CancelEvent(ctx context.Context, id uuid.UUID, organizerID uuid.UUID) (*Event, error)
	CompleteEvent(ctx context.Context, id uuid.UUID, organizerID uuid.UUID, req CompleteEventRequest) (*Event, error)

	// Jobs related (called by the reminder cron)
	SendUpcomingReminders(ctx context.Context, window time.Duration) (int, error)
}

// ServiceImplementation implements the event Service interface.
type ServiceImplementation struct {
	repo                Repository
	reportService       report.Service
	profileService      profile.Service
	notificationService notification.Service
	cfg                 *config.Config
	logger              *zap.Logger
}

// NewService creates a new event service.
func NewService(
	repo Repository,
	reportService report.Service,
	profileService profile.Service,
	notificationService notification.Service,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &ServiceImplementation{
		repo:                repo,
		reportService:       reportService,
		profileService:      profileService,
		notificationService: notificationService,
		cfg:                 cfg,
		logger:              logger,
	}
}

// CreateEvent handles the business logic for scheduling a cleanup event. Any
// linked reports must exist and be approved for cleanup.
func (s *ServiceImplementation) CreateEvent(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*Event, error) {
	if req.StartsAt.Before(time.Now()) {
		return nil, common.ErrBadRequest.WithDetails("Events must be scheduled in the future.")
	}

	capacity := s.cfg.DefaultEventCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	duration := 120
	if req.DurationMin != nil {
		duration = *req.DurationMin
	}

	reportIDs := make([]string, 0, len(req.ReportIDs))
	for _, reportID := range req.ReportIDs {
		rep, err := s.reportService.GetReportByID(ctx, reportID)
		if err != nil {
			return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Report %s not found.", reportID))
		}
		if rep.Status != report.StatusApproved && rep.Status != report.StatusInProgress {
			return nil, common.ErrBadRequest.WithDetails(
				fmt.Sprintf("Report %s is not ready for cleanup (status %s).", reportID, rep.Status))
		}
		reportIDs = append(reportIDs, reportID.String())
	}

	ev := &Event{
		OrganizerID: organizerID,
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		StartsAt:    req.StartsAt,
		DurationMin: duration,
		Capacity:    capacity,
		Status:      StatusScheduled,
		ReportIDs:   reportIDs,
	}

	if err := s.repo.Create(ctx, ev); err != nil {
		s.logger.Error("Failed to create event", zap.Error(err), zap.String("organizerID", organizerID.String()))
		return nil, err
	}

	s.logger.Info("Event scheduled",
		zap.String("eventID", ev.ID.String()),
		zap.Time("startsAt", ev.StartsAt),
		zap.Int("capacity", ev.Capacity))
	return ev, nil
}

// GetEventByID fetches a single event.
func (s *ServiceImplementation) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateEvent applies an organizer's edit to a scheduled event.
func (s *ServiceImplementation) UpdateEvent(ctx context.Context, id uuid.UUID, organizerID uuid.UUID, req UpdateEventRequest) (*Event, error) {
	ev, err := s.ownedScheduledEvent(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		ev.Title = *req.Title
	}
	if req.Description != nil {
		ev.Description = req.Description
	}
	if req.Address != nil {
		ev.Address = req.Address
	}
	if req.Latitude != nil {
		ev.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		ev.Longitude = req.Longitude
	}
	if req.StartsAt != nil {
		if req.StartsAt.Before(time.Now()) {
			return nil, common.ErrBadRequest.WithDetails("Events must be scheduled in the future.")
		}
		ev.StartsAt = *req.StartsAt
		// Reschedule resets the reminder so volunteers hear about the new time.
		ev.ReminderSent = false
	}
	if req.DurationMin != nil {
		ev.DurationMin = *req.DurationMin
	}
	if req.Capacity != nil {
		if *req.Capacity < len(ev.VolunteerIDs) {
			return nil, common.ErrBadRequest.WithDetails("Capacity cannot be below the current volunteer count.")
		}
		ev.Capacity = *req.Capacity
	}

	if err := s.repo.Update(ctx, ev); err != nil {
		s.logger.Error("Failed to update event", zap.Error(err), zap.String("eventID", id.String()))
		return nil, err
	}
	return ev, nil
}

// SearchEvents runs a filtered event query.
func (s *ServiceImplementation) SearchEvents(ctx context.Context, query EventSearchQuery) ([]Event, *common.Pagination, error) {
	return s.repo.Search(ctx, query)
}

// JoinEvent registers a volunteer for a scheduled event, bounded by capacity.
func (s *ServiceImplementation) JoinEvent(ctx context.Context, id uuid.UUID, profileID uuid.UUID) (*Event, error) {
	ev, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusScheduled {
		return nil, common.ErrBadRequest.WithDetails("Only scheduled events can be joined.")
	}
	if ev.HasVolunteer(profileID) {
		return nil, common.ErrConflict.WithDetails("You have already joined this event.")
	}
	if len(ev.VolunteerIDs) >= ev.Capacity {
		return nil, common.ErrConflict.WithDetails("This event is already at capacity.")
	}

	ev.VolunteerIDs = append(ev.VolunteerIDs, profileID.String())
	if err := s.repo.Update(ctx, ev); err != nil {
		s.logger.Error("Failed to register volunteer", zap.Error(err), zap.String("eventID", id.String()))
		return nil, err
	}

	message := fmt.Sprintf("You are registered for %q on %s.", ev.Title, ev.StartsAt.Format("Jan 2, 3:04 PM"))
	if err := s.notificationService.Notify(ctx, profileID, notification.EventScheduled, message, nil, &ev.ID); err != nil {
		s.logger.Warn("Join notification failed", zap.Error(err), zap.String("eventID", id.String()))
	}
	return ev, nil
}

// LeaveEvent removes a volunteer from a scheduled event.
func (s *ServiceImplementation) LeaveEvent(ctx context.Context, id uuid.UUID, profileID uuid.UUID) (*Event, error) {
	ev, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusScheduled {
		return nil, common.ErrBadRequest.WithDetails("Only scheduled events can be left.")
	}
	if !ev.HasVolunteer(profileID) {
		return nil, common.ErrBadRequest.WithDetails("You are not registered for this event.")
	}

	idStr := profileID.String()
	remaining := make([]string, 0, len(ev.VolunteerIDs)-1)
	for _, v := range ev.VolunteerIDs {
		if v != idStr {
			remaining = append(remaining, v)
		}
	}
	ev.VolunteerIDs = remaining

	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// CancelEvent cancels a scheduled event and notifies registered volunteers.
func (s *ServiceImplementation) CancelEvent(ctx context.Context, id uuid.UUID, organizerID uuid.UUID) (*Event, error) {
	ev, err := s.ownedScheduledEvent(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}

	ev.Status = StatusCancelled
	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("The cleanup event %q has been cancelled.", ev.Title)
	s.notifyVolunteers(ctx, ev, notification.EventScheduled, message)
	s.logger.Info("Event cancelled", zap.String("eventID", id.String()))
	return ev, nil
}

// CompleteEvent records the waste breakdown, closes the event, completes any
// linked in-progress reports, and credits every volunteer.
func (s *ServiceImplementation) CompleteEvent(ctx context.Context, id uuid.UUID, organizerID uuid.UUID, req CompleteEventRequest) (*Event, error) {
	ev, err := s.ownedScheduledEvent(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}

	ev.Status = StatusCompleted
	ev.PlasticKG = req.PlasticKG
	ev.OrganicKG = req.OrganicKG
	ev.MetalKG = req.MetalKG
	ev.OtherKG = req.OtherKG

	if err := s.repo.Update(ctx, ev); err != nil {
		s.logger.Error("Failed to complete event", zap.Error(err), zap.String("eventID", id.String()))
		return nil, err
	}

	for _, reportIDStr := range ev.ReportIDs {
		reportID, parseErr := uuid.Parse(reportIDStr)
		if parseErr != nil {
			continue
		}
		// The workflow graph has no approved->completed edge, so a report
		// that was never picked up by a collector steps through in-progress.
		if rep, getErr := s.reportService.GetReportByID(ctx, reportID); getErr == nil && rep.Status == report.StatusApproved {
			if _, err := s.reportService.UpdateReportStatus(ctx, reportID, common.RoleAdmin, report.AdminUpdateReportStatusRequest{
				Status: report.StatusInProgress,
			}); err != nil {
				s.logger.Warn("Could not move linked report to in-progress",
					zap.Error(err), zap.String("eventID", id.String()), zap.String("reportID", reportIDStr))
			}
		}
		if _, err := s.reportService.UpdateReportStatus(ctx, reportID, common.RoleAdmin, report.AdminUpdateReportStatusRequest{
			Status: report.StatusCompleted,
		}); err != nil {
			// A report may already be completed or rejected; log and move on.
			s.logger.Warn("Could not complete linked report",
				zap.Error(err), zap.String("eventID", id.String()), zap.String("reportID", reportIDStr))
		}
	}

	points := s.cfg.VolunteerEventPoints
	for _, volunteerIDStr := range ev.VolunteerIDs {
		volunteerID, parseErr := uuid.Parse(volunteerIDStr)
		if parseErr != nil {
			continue
		}
		if err := s.profileService.AwardPoints(ctx, volunteerID, points, fmt.Sprintf("volunteered at %q", ev.Title)); err != nil {
			s.logger.Warn("Failed to award volunteer points",
				zap.Error(err), zap.String("eventID", id.String()), zap.String("volunteerID", volunteerIDStr))
		}
	}

	message := fmt.Sprintf("The cleanup event %q is complete. %.1f kg of waste collected!", ev.Title, ev.TotalWasteKG())
	s.notifyVolunteers(ctx, ev, notification.EventCompleted, message)

	s.logger.Info("Event completed",
		zap.String("eventID", id.String()),
		zap.Float64("totalWasteKG", ev.TotalWasteKG()),
		zap.Int("volunteers", len(ev.VolunteerIDs)))
	return ev, nil
}

// SendUpcomingReminders notifies volunteers of events starting within the
// window. Returns the number of events reminded.
func (s *ServiceImplementation) SendUpcomingReminders(ctx context.Context, window time.Duration) (int, error) {
	now := time.Now()
	events, err := s.repo.FindUpcomingWithoutReminder(ctx, now, now.Add(window))
	if err != nil {
		return 0, fmt.Errorf("failed to find upcoming events: %w", err)
	}

	reminded := 0
	for i := range events {
		ev := &events[i]
		message := fmt.Sprintf("Reminder: %q starts at %s.", ev.Title, ev.StartsAt.Format("Jan 2, 3:04 PM"))
		s.notifyVolunteers(ctx, ev, notification.EventReminder, message)
		if err := s.repo.MarkReminderSent(ctx, ev.ID); err != nil {
			s.logger.Error("Failed to mark reminder sent", zap.Error(err), zap.String("eventID", ev.ID.String()))
			continue
		}
		reminded++
	}
	return reminded, nil
}

func (s *ServiceImplementation) ownedScheduledEvent(ctx context.Context, id uuid.UUID, organizerID uuid.UUID) (*Event, error) {
	ev, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != organizerID {
		return nil, common.ErrForbidden.WithDetails("Only the organizer can modify this event.")
	}
	if ev.Status != StatusScheduled {
		return nil, common.ErrBadRequest.WithDetails("Only scheduled events can be modified.")
	}
	return ev, nil
}

func (s *ServiceImplementation) notifyVolunteers(ctx context.Context, ev *Event, notifType notification.Type, message string) {
	for _, volunteerIDStr := range ev.VolunteerIDs {
		volunteerID, err := uuid.Parse(volunteerIDStr)
		if err != nil {
			continue
		}
		if err := s.notificationService.Notify(ctx, volunteerID, notifType, message, nil, &ev.ID); err != nil {
			s.logger.Warn("Volunteer notification failed",
				zap.Error(err), zap.String("eventID", ev.ID.String()), zap.String("volunteerID", volunteerIDStr))
		}
	}
}
