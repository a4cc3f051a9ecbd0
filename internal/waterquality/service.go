// File: internal/waterquality/service.go
package waterquality

import (
	"context"
	"time"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines the interface for water quality business logic.
type Service interface {
	CreateStation(ctx context.Context, req CreateStationRequest) (*Station, error)
	ListStations(ctx context.Context) ([]Station, error)
	GetStationBySlug(ctx context.Context, stationSlug string) (*Station, error)

	RecordReading(ctx context.Context, stationID uuid.UUID, recordedByID uuid.UUID, req CreateReadingRequest) (*Reading, error)
	GetLatestReading(ctx context.Context, stationID uuid.UUID) (*Reading, error)
	GetReadingHistory(ctx context.Context, stationID uuid.UUID, page, pageSize int) ([]Reading, *common.Pagination, error)
}

// ServiceImplementation implements the water quality Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new water quality service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &ServiceImplementation{repo: repo, logger: logger}
}

// CreateStation registers a monitoring station, deriving its slug from the name.
func (s *ServiceImplementation) CreateStation(ctx context.Context, req CreateStationRequest) (*Station, error) {
	st := &Station{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if err := s.repo.CreateStation(ctx, st); err != nil {
		s.logger.Error("Failed to create station", zap.Error(err), zap.String("name", req.Name))
		return nil, err
	}
	s.logger.Info("Station created", zap.String("stationID", st.ID.String()), zap.String("slug", st.Slug))
	return st, nil
}

// ListStations returns all monitoring stations.
func (s *ServiceImplementation) ListStations(ctx context.Context) ([]Station, error) {
	return s.repo.ListStations(ctx)
}

// GetStationBySlug fetches one station by its slug.
func (s *ServiceImplementation) GetStationBySlug(ctx context.Context, stationSlug string) (*Station, error) {
	return s.repo.FindStationBySlug(ctx, stationSlug)
}

// RecordReading stores a new reading with its derived score and status.
func (s *ServiceImplementation) RecordReading(ctx context.Context, stationID uuid.UUID, recordedByID uuid.UUID, req CreateReadingRequest) (*Reading, error) {
	if _, err := s.repo.FindStationByID(ctx, stationID); err != nil {
		return nil, err
	}

	measuredAt := time.Now()
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}

	reading := &Reading{
		StationID:    stationID,
		RecordedByID: recordedByID,
		MeasuredAt:   measuredAt,
		PH:           *req.PH,
		DissolvedO2:  *req.DissolvedO2,
		Temperature:  *req.Temperature,
		Turbidity:    *req.Turbidity,
		Conductivity: *req.Conductivity,
		TotalSolids:  *req.TotalSolids,
		BOD:          *req.BOD,
		COD:          *req.COD,
	}
	reading.Score = Score(reading)
	reading.Status = Classify(reading.Score)

	if err := s.repo.CreateReading(ctx, reading); err != nil {
		s.logger.Error("Failed to record reading", zap.Error(err), zap.String("stationID", stationID.String()))
		return nil, err
	}

	s.logger.Info("Water quality reading recorded",
		zap.String("stationID", stationID.String()),
		zap.Float64("score", reading.Score),
		zap.String("status", string(reading.Status)))
	return reading, nil
}

// GetLatestReading returns the most recent reading for a station.
func (s *ServiceImplementation) GetLatestReading(ctx context.Context, stationID uuid.UUID) (*Reading, error) {
	return s.repo.LatestReading(ctx, stationID)
}

// GetReadingHistory returns the station's readings, newest first.
func (s *ServiceImplementation) GetReadingHistory(ctx context.Context, stationID uuid.UUID, page, pageSize int) ([]Reading, *common.Pagination, error) {
	return s.repo.ReadingHistory(ctx, stationID, page, pageSize)
}
