// File: internal/flood/service.go
package flood

import (
	"context"
	"time"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines the interface for flood forecast business logic.
type Service interface {
	CreateStation(ctx context.Context, req CreateStationRequest) (*Station, error)
	ListStations(ctx context.Context) ([]Station, error)

	RecordLevel(ctx context.Context, stationID uuid.UUID, recordedByID uuid.UUID, req CreateLevelReadingRequest) (*Forecast, error)
	GetForecast(ctx context.Context, stationSlug string) (*Forecast, error)
	GetAllForecasts(ctx context.Context) ([]Forecast, error)
}

// ServiceImplementation implements the flood Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new flood service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &ServiceImplementation{repo: repo, logger: logger}
}

// CreateStation registers a river gauge with its thresholds.
func (s *ServiceImplementation) CreateStation(ctx context.Context, req CreateStationRequest) (*Station, error) {
	st := &Station{
		Name:         req.Name,
		Slug:         slug.Make(req.Name),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		WarningLevel: req.WarningLevel,
		DangerLevel:  req.DangerLevel,
	}
	if err := s.repo.CreateStation(ctx, st); err != nil {
		s.logger.Error("Failed to create flood station", zap.Error(err), zap.String("name", req.Name))
		return nil, err
	}
	s.logger.Info("Flood station created", zap.String("stationID", st.ID.String()), zap.String("slug", st.Slug))
	return st, nil
}

// ListStations returns all river gauges.
func (s *ServiceImplementation) ListStations(ctx context.Context) ([]Station, error) {
	return s.repo.ListStations(ctx)
}

// RecordLevel stores a level reading and returns the resulting forecast.
func (s *ServiceImplementation) RecordLevel(ctx context.Context, stationID uuid.UUID, recordedByID uuid.UUID, req CreateLevelReadingRequest) (*Forecast, error) {
	st, err := s.repo.FindStationByID(ctx, stationID)
	if err != nil {
		return nil, err
	}

	measuredAt := time.Now()
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}

	reading := &LevelReading{
		StationID:    stationID,
		RecordedByID: recordedByID,
		LevelM:       *req.LevelM,
		MeasuredAt:   measuredAt,
	}
	if err := s.repo.CreateLevelReading(ctx, reading); err != nil {
		s.logger.Error("Failed to record level reading", zap.Error(err), zap.String("stationID", stationID.String()))
		return nil, err
	}

	forecast, err := s.forecastForStation(ctx, st)
	if err != nil {
		return nil, err
	}
	if forecast.Risk == RiskHigh {
		s.logger.Warn("High flood risk",
			zap.String("station", st.Slug),
			zap.Float64("levelM", forecast.CurrentLevel),
			zap.Float64("dangerLevel", st.DangerLevel))
	}
	return forecast, nil
}

// GetForecast derives the outlook for one station by slug.
func (s *ServiceImplementation) GetForecast(ctx context.Context, stationSlug string) (*Forecast, error) {
	st, err := s.repo.FindStationBySlug(ctx, stationSlug)
	if err != nil {
		return nil, err
	}
	return s.forecastForStation(ctx, st)
}

// GetAllForecasts derives the outlook for every station with readings.
// Stations without readings are skipped rather than reported at a made-up
// level.
func (s *ServiceImplementation) GetAllForecasts(ctx context.Context) ([]Forecast, error) {
	stations, err := s.repo.ListStations(ctx)
	if err != nil {
		return nil, err
	}

	forecasts := make([]Forecast, 0, len(stations))
	for i := range stations {
		forecast, err := s.forecastForStation(ctx, &stations[i])
		if err != nil {
			if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == common.ErrNotFound.StatusCode {
				continue
			}
			return nil, err
		}
		forecasts = append(forecasts, *forecast)
	}
	return forecasts, nil
}

func (s *ServiceImplementation) forecastForStation(ctx context.Context, st *Station) (*Forecast, error) {
	readings, err := s.repo.LatestReadings(ctx, st.ID, 2)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, common.ErrNotFound.WithDetails("No level readings recorded for this station.")
	}

	current := readings[0]
	var previous *float64
	if len(readings) > 1 {
		previous = &readings[1].LevelM
	}

	trend := DeriveTrend(current.LevelM, previous)
	risk := DeriveRisk(current.LevelM, st, trend)

	return &Forecast{
		Station:      ToStationResponse(st),
		CurrentLevel: current.LevelM,
		MeasuredAt:   current.MeasuredAt,
		Trend:        trend,
		Risk:         risk,
	}, nil
}
