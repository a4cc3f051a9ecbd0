// File: internal/report/repository.go
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for report data operations.
type Repository interface {
	Create(ctx context.Context, rep *Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*Report, error)
	Update(ctx context.Context, rep *Report) error
	Delete(ctx context.Context, id uuid.UUID, reporterID uuid.UUID) error // reporterID for ownership check
	Search(ctx context.Context, query ReportSearchQuery) ([]Report, *common.Pagination, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ReportStatus, adminNotes *string, resolvedAt *time.Time) error
	AssignCollector(ctx context.Context, id uuid.UUID, collectorID uuid.UUID) error
	CountByReporterID(ctx context.Context, reporterID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, status ReportStatus) (int64, error)
	FindAllForIndexing(ctx context.Context, offset, limit int) ([]Report, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM report repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new report into the database.
func (r *gormRepository) Create(ctx context.Context, rep *Report) error {
	if err := r.db.WithContext(ctx).Create(rep).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A report with this identifier already exists.")
		}
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// FindByID retrieves a report by its ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	var rep Report
	err := r.db.WithContext(ctx).First(&rep, "reports.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Report not found.")
		}
		return nil, err
	}
	return &rep, nil
}

// Update saves the full report record.
func (r *gormRepository) Update(ctx context.Context, rep *Report) error {
	if err := r.db.WithContext(ctx).Save(rep).Error; err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	return nil
}

// Delete removes a report by ID, ensuring ownership.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID, reporterID uuid.UUID) error {
	var rep Report
	if err := r.db.WithContext(ctx).Where("id = ? AND reporter_id = ?", id, reporterID).First(&rep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound.WithDetails("Report not found or you do not have permission to delete it.")
		}
		return err
	}

	result := r.db.WithContext(ctx).Delete(&Report{BaseModel: common.BaseModel{ID: id}})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Report not found or already deleted.")
	}
	return nil
}

// Search retrieves reports based on query parameters.
func (r *gormRepository) Search(ctx context.Context, queryParams ReportSearchQuery) ([]Report, *common.Pagination, error) {
	var reports []Report
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Report{})

	if queryParams.SearchTerm != "" {
		searchTerm := "%" + strings.ToLower(queryParams.SearchTerm) + "%"
		dbQuery = dbQuery.Where("LOWER(reports.description) LIKE ? OR LOWER(reports.address) LIKE ?", searchTerm, searchTerm)
	}
	if queryParams.Status != "" {
		dbQuery = dbQuery.Where("reports.status = ?", queryParams.Status)
	}
	if queryParams.GarbageType != "" {
		dbQuery = dbQuery.Where("reports.garbage_type = ?", queryParams.GarbageType)
	}
	if queryParams.Density != "" {
		dbQuery = dbQuery.Where("reports.density = ?", queryParams.Density)
	}
	if queryParams.ReporterID != nil {
		if reporterID, err := uuid.Parse(*queryParams.ReporterID); err == nil {
			dbQuery = dbQuery.Where("reports.reporter_id = ?", reporterID)
		}
	}
	if queryParams.CollectorID != nil {
		if collectorID, err := uuid.Parse(*queryParams.CollectorID); err == nil {
			dbQuery = dbQuery.Where("reports.collector_id = ?", collectorID)
		}
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count reports: %w", err)
	}

	sortOrder := "ASC"
	if strings.ToLower(queryParams.SortOrder) == "desc" {
		sortOrder = "DESC"
	}
	validSortableFields := map[string]string{
		"created_at": "reports.created_at",
		"density":    "reports.density",
		"status":     "reports.status",
	}
	if dbSortField, ok := validSortableFields[queryParams.SortBy]; ok {
		dbQuery = dbQuery.Order(fmt.Sprintf("%s %s", dbSortField, sortOrder))
	} else {
		dbQuery = dbQuery.Order("reports.created_at DESC")
	}

	pagination := common.NewPagination(totalItems, queryParams.Page, queryParams.PageSize)
	dbQuery = dbQuery.Offset((pagination.CurrentPage - 1) * pagination.PageSize).Limit(pagination.PageSize)

	if err := dbQuery.Find(&reports).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to search reports: %w", err)
	}

	return reports, pagination, nil
}

// UpdateStatus updates the workflow status of a report.
func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ReportStatus, adminNotes *string, resolvedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if adminNotes != nil {
		updates["admin_notes"] = *adminNotes
	}
	if resolvedAt != nil {
		updates["resolved_at"] = *resolvedAt
	}

	result := r.db.WithContext(ctx).Model(&Report{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Report not found.")
	}
	return nil
}

// AssignCollector sets the collector responsible for a report.
func (r *gormRepository) AssignCollector(ctx context.Context, id uuid.UUID, collectorID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Report{}).Where("id = ?", id).Update("collector_id", collectorID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Report not found.")
	}
	return nil
}

// CountByReporterID counts all reports submitted by a profile.
func (r *gormRepository) CountByReporterID(ctx context.Context, reporterID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Report{}).Where("reporter_id = ?", reporterID).Count(&count).Error
	return count, err
}

// CountByStatus counts reports with a specific status.
func (r *gormRepository) CountByStatus(ctx context.Context, status ReportStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Report{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// FindAllForIndexing returns a batch of reports ordered by ID, used by the
// search index sync to page through the full table.
func (r *gormRepository) FindAllForIndexing(ctx context.Context, offset, limit int) ([]Report, error) {
	var reports []Report
	err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&reports).Error
	return reports, err
}
