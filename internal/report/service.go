// File: internal/report/service.go
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/notification"
	"riverrevive_backend/internal/profile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for report-related business logic.
type Service interface {
	CreateReport(ctx context.Context, reporterID uuid.UUID, req CreateReportRequest) (*Report, error)
	GetReportByID(ctx context.Context, id uuid.UUID) (*Report, error)
	UpdateReport(ctx context.Context, id uuid.UUID, reporterID uuid.UUID, req UpdateReportRequest) (*Report, error)
	DeleteReport(ctx context.Context, id uuid.UUID, reporterID uuid.UUID) error
	SearchReports(ctx context.Context, query ReportSearchQuery) ([]Report, *common.Pagination, error)
	GetReporterReports(ctx context.Context, reporterID uuid.UUID, query ReportSearchQuery) ([]Report, *common.Pagination, error)
	GetCollectorReports(ctx context.Context, collectorID uuid.UUID, query ReportSearchQuery) ([]Report, *common.Pagination, error)

	// AttachPhoto records the stored photo URL on a reporter's own pending
	// report, returning the previous URL so the handler can clean up the old
	// file.
	AttachPhoto(ctx context.Context, id uuid.UUID, reporterID uuid.UUID, photoURL string) (*Report, string, error)

	// Admin and collector workflow
	UpdateReportStatus(ctx context.Context, id uuid.UUID, actorRole string, req AdminUpdateReportStatusRequest) (*Report, error)
	AssignCollector(ctx context.Context, id uuid.UUID, collectorID uuid.UUID) (*Report, error)
}

// ServiceImplementation implements the report Service interface.
type ServiceImplementation struct {
	repo                Repository
	profileService      profile.Service
	notificationService notification.Service
	indexer             Indexer
	cfg                 *config.Config
	logger              *zap.Logger
}

// NewService creates a new report service.
func NewService(
	repo Repository,
	profileService profile.Service,
	notificationService notification.Service,
	indexer Indexer,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &ServiceImplementation{
		repo:                repo,
		profileService:      profileService,
		notificationService: notificationService,
		indexer:             indexer,
		cfg:                 cfg,
		logger:              logger,
	}
}

// CreateReport handles the business logic for submitting a waste report.
func (s *ServiceImplementation) CreateReport(ctx context.Context, reporterID uuid.UUID, req CreateReportRequest) (*Report, error) {
	rep := &Report{
		ReporterID:  reporterID,
		GarbageType: strings.ToLower(req.GarbageType),
		Density:     req.Density,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		Address:     req.Address,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Status:      StatusPending,
	}

	if err := s.repo.Create(ctx, rep); err != nil {
		s.logger.Error("Failed to create report", zap.Error(err), zap.String("reporterID", reporterID.String()))
		return nil, err
	}

	s.indexReport(ctx, rep)
	s.logger.Info("Report created",
		zap.String("reportID", rep.ID.String()),
		zap.String("garbageType", rep.GarbageType),
		zap.String("density", string(rep.Density)))
	return rep, nil
}

// GetReportByID fetches a single report.
func (s *ServiceImplementation) GetReportByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateReport applies a reporter's edit. Only pending reports are editable:
// once a report enters the workflow it is owned by the cleanup crew.
func (s *ServiceImplementation) UpdateReport(ctx context.Context, id uuid.UUID, reporterID uuid.UUID, req UpdateReportRequest) (*Report, error) {
	rep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.ReporterID != reporterID {
		return nil, common.ErrForbidden.WithDetails("You can only edit your own reports.")
	}
	if rep.Status != StatusPending {
		return nil, common.ErrBadRequest.WithDetails("Only pending reports can be edited.")
	}

	if req.GarbageType != nil {
		rep.GarbageType = strings.ToLower(*req.GarbageType)
	}
	if req.Density != nil {
		rep.Density = *req.Density
	}
	if req.Description != nil {
		rep.Description = req.Description
	}
	if req.PhotoURL != nil {
		rep.PhotoURL = req.PhotoURL
	}
	if req.Address != nil {
		rep.Address = req.Address
	}

	if err := s.repo.Update(ctx, rep); err != nil {
		s.logger.Error("Failed to update report", zap.Error(err), zap.String("reportID", id.String()))
		return nil, err
	}
	s.indexReport(ctx, rep)
	return rep, nil
}

// AttachPhoto records the stored photo URL on a reporter's own pending report.
func (s *ServiceImplementation) AttachPhoto(ctx context.Context, id uuid.UUID, reporterID uuid.UUID, photoURL string) (*Report, string, error) {
	rep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if rep.ReporterID != reporterID {
		return nil, "", common.ErrForbidden.WithDetails("You can only attach photos to your own reports.")
	}
	if rep.Status != StatusPending {
		return nil, "", common.ErrBadRequest.WithDetails("Photos can only be attached to pending reports.")
	}

	previousURL := ""
	if rep.PhotoURL != nil {
		previousURL = *rep.PhotoURL
	}
	rep.PhotoURL = &photoURL

	if err := s.repo.Update(ctx, rep); err != nil {
		s.logger.Error("Failed to attach photo to report", zap.Error(err), zap.String("reportID", id.String()))
		return nil, "", err
	}
	s.indexReport(ctx, rep)
	return rep, previousURL, nil
}

// DeleteReport removes a reporter's own pending report.
func (s *ServiceImplementation) DeleteReport(ctx context.Context, id uuid.UUID, reporterID uuid.UUID) error {
	rep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rep.Status != StatusPending {
		return common.ErrBadRequest.WithDetails("Only pending reports can be deleted.")
	}
	if err := s.repo.Delete(ctx, id, reporterID); err != nil {
		return err
	}
	s.removeFromIndex(ctx, id)
	return nil
}

// SearchReports runs a filtered report query.
func (s *ServiceImplementation) SearchReports(ctx context.Context, query ReportSearchQuery) ([]Report, *common.Pagination, error) {
	return s.repo.Search(ctx, query)
}

// GetReporterReports returns reports submitted by the given profile.
func (s *ServiceImplementation) GetReporterReports(ctx context.Context, reporterID uuid.UUID, query ReportSearchQuery) ([]Report, *common.Pagination, error) {
	idStr := reporterID.String()
	query.ReporterID = &idStr
	return s.repo.Search(ctx, query)
}

// GetCollectorReports returns reports assigned to the given collector.
func (s *ServiceImplementation) GetCollectorReports(ctx context.Context, collectorID uuid.UUID, query ReportSearchQuery) ([]Report, *common.Pagination, error) {
	idStr := collectorID.String()
	query.CollectorID = &idStr
	return s.repo.Search(ctx, query)
}

// UpdateReportStatus moves a report through the workflow. Collectors may only
// move their assigned reports forward (in-progress, completed); any other
// transition requires the admin role. Completing a report awards the reporter
// the configured points.
func (s *ServiceImplementation) UpdateReportStatus(ctx context.Context, id uuid.UUID, actorRole string, req AdminUpdateReportStatusRequest) (*Report, error) {
	rep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(rep.Status, req.Status) {
		return nil, common.ErrBadRequest.WithDetails(
			fmt.Sprintf("Cannot move a report from %q to %q.", rep.Status, req.Status))
	}
	if actorRole != common.RoleAdmin {
		if req.Status != StatusInProgress && req.Status != StatusCompleted {
			return nil, common.ErrForbidden.WithDetails("Only administrators can make this status change.")
		}
	}

	var resolvedAt *time.Time
	if req.Status == StatusCompleted {
		now := time.Now()
		resolvedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.AdminNotes, resolvedAt); err != nil {
		s.logger.Error("Failed to update report status",
			zap.Error(err), zap.String("reportID", id.String()), zap.String("status", string(req.Status)))
		return nil, err
	}

	switch req.Status {
	case StatusApproved:
		message := "Your waste report has been approved and queued for cleanup."
		if err := s.notificationService.Notify(ctx, rep.ReporterID, notification.ReportApproved, message, &rep.ID, nil); err != nil {
			s.logger.Warn("Report approval notification failed", zap.Error(err), zap.String("reportID", id.String()))
		}
	case StatusCompleted:
		points := s.cfg.ReporterCompletionPoints
		if err := s.profileService.AwardPoints(ctx, rep.ReporterID, points, "waste report cleaned up"); err != nil {
			s.logger.Warn("Failed to award completion points", zap.Error(err), zap.String("reportID", id.String()))
		}
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.indexReport(ctx, updated)
	return updated, nil
}

// AssignCollector assigns the report to a collector and notifies them. The
// target profile must be an approved collector.
func (s *ServiceImplementation) AssignCollector(ctx context.Context, id uuid.UUID, collectorID uuid.UUID) (*Report, error) {
	collector, err := s.profileService.GetByID(ctx, collectorID)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Collector profile not found.")
	}
	if collector.Role != common.RoleCollector || !collector.IsAuthorized() {
		return nil, common.ErrBadRequest.WithDetails("The selected profile is not an approved collector.")
	}

	if err := s.repo.AssignCollector(ctx, id, collectorID); err != nil {
		return nil, err
	}

	rep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	message := "A waste report has been assigned to you for cleanup."
	if err := s.notificationService.Notify(ctx, collectorID, notification.EventAssignment, message, &rep.ID, nil); err != nil {
		s.logger.Warn("Assignment notification failed", zap.Error(err), zap.String("reportID", id.String()))
	}
	s.indexReport(ctx, rep)
	return rep, nil
}

// indexReport pushes the report document to the search index. Indexing is
// best effort: the database row is authoritative and the sync command can
// repair any drift.
func (s *ServiceImplementation) indexReport(ctx context.Context, rep *Report) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexReport(ctx, rep); err != nil {
		s.logger.Warn("Failed to index report", zap.Error(err), zap.String("reportID", rep.ID.String()))
	}
}

func (s *ServiceImplementation) removeFromIndex(ctx context.Context, id uuid.UUID) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.DeleteReport(ctx, id); err != nil {
		s.logger.Warn("Failed to remove report from index", zap.Error(err), zap.String("reportID", id.String()))
	}
}
