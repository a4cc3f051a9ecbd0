// File: internal/flood/repository.go
package flood

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for flood data operations.
type Repository interface {
	CreateStation(ctx context.Context, st *Station) error
	FindStationByID(ctx context.Context, id uuid.UUID) (*Station, error)
	FindStationBySlug(ctx context.Context, slug string) (*Station, error)
	ListStations(ctx context.Context) ([]Station, error)

	CreateLevelReading(ctx context.Context, r *LevelReading) error
	LatestReadings(ctx context.Context, stationID uuid.UUID, limit int) ([]LevelReading, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM flood repository.
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
		return fmt.Errorf("failed to create flood station: %w", err)
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

func (r *gormRepository) CreateLevelReading(ctx context.Context, reading *LevelReading) error {
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to create level reading: %w", err)
	}
	return nil
}

// LatestReadings returns the most recent readings for a station, newest first.
func (r *gormRepository) LatestReadings(ctx context.Context, stationID uuid.UUID, limit int) ([]LevelReading, error) {
	var readings []LevelReading
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Order("measured_at DESC").
		Limit(limit).
		Find(&readings).Error
	return readings, err
}
