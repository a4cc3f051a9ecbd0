// File: internal/waterquality/repository.go
package waterquality

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for water quality data operations.
type Repository interface {
	CreateStation(ctx context.Context, st *Station) error
	FindStationByID(ctx context.Context, id uuid.UUID) (*Station, error)
	FindStationBySlug(ctx context.Context, slug string) (*Station, error)
	ListStations(ctx context.Context) ([]Station, error)

	CreateReading(ctx context.Context, r *Reading) error
	LatestReading(ctx context.Context, stationID uuid.UUID) (*Reading, error)
	ReadingHistory(ctx context.Context, stationID uuid.UUID, page, pageSize int) ([]Reading, *common.Pagination, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM water quality repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateStation(ctx context.Context, st *Station) error {
	if err := r.db.WithContext(ctx).Create(st).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return common.ErrConflict.WithDetails("A station with this name already exists.")
		}
		return fmt.Errorf("failed to create station: %w", err)
	}
	return nil
}

func (r *gormRepository) FindStationByID(ctx context.Context, id uuid.UUID) (*Station, error) {
	var st Station
	err := r.db.WithContext(ctx).First(&st, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Station not found.")
		}
		return nil, err
	}
	return &st, nil
}

func (r *gormRepository) FindStationBySlug(ctx context.Context, slug string) (*Station, error) {
	var st Station
	err := r.db.WithContext(ctx).First(&st, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Station not found.")
		}
		return nil, err
	}
	return &st, nil
}

func (r *gormRepository) ListStations(ctx context.Context) ([]Station, error) {
	var stations []Station
	err := r.db.WithContext(ctx).Order("name ASC").Find(&stations).Error
	return stations, err
}

func (r *gormRepository) CreateReading(ctx context.Context, reading *Reading) error {
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to create reading: %w", err)
	}
	return nil
}

func (r *gormRepository) LatestReading(ctx context.Context, stationID uuid.UUID) (*Reading, error) {
	var reading Reading
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Order("measured_at DESC").
		First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("No readings recorded for this station.")
		}
		return nil, err
	}
	return &reading, nil
}

func (r *gormRepository) ReadingHistory(ctx context.Context, stationID uuid.UUID, page, pageSize int) ([]Reading, *common.Pagination, error) {
	var readings []Reading
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Reading{}).Where("station_id = ?", stationID)
	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count readings: %w", err)
	}

	pagination := common.NewPagination(totalItems, page, pageSize)
	err := dbQuery.Order("measured_at DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Limit(pagination.PageSize).
		Find(&readings).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch reading history: %w", err)
	}
	return readings, pagination, nil
}
