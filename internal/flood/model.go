// File: internal/flood/model.go
package flood

import (
	"time"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
)

// Risk classifies a station's current flood risk.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Trend describes how the water level is moving between readings.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// Station is a river gauge with its flood thresholds in meters.
type Station struct {
	common.BaseModel
	Name         string   `gorm:"type:varchar(150);not null"`
	Slug         string   `gorm:"type:varchar(170);uniqueIndex:idx_flood_stations_slug;not null"`
	Latitude     *float64 `gorm:"type:decimal(10,8)"`
	Longitude    *float64 `gorm:"type:decimal(11,8)"`
	WarningLevel float64  `gorm:"not null"`
	DangerLevel  float64  `gorm:"not null"`
}

func (Station) TableName() string {
	return "flood_stations"
}

// LevelReading is one observed water level at a gauge.
type LevelReading struct {
	common.BaseModel
	StationID    uuid.UUID `gorm:"type:uuid;not null;index"`
	RecordedByID uuid.UUID `gorm:"type:uuid;not null"`
	LevelM       float64   `gorm:"not null"`
	MeasuredAt   time.Time `gorm:"not null;index"`
}

func (LevelReading) TableName() string {
	return "flood_level_readings"
}

// --- DTOs for API ---
type CreateStationRequest struct {
	Name         string   `json:"name" binding:"required,min=3,max=150"`
	Latitude     *float64 `json:"latitude,omitempty" binding:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude,omitempty" binding:"omitempty,longitude"`
	WarningLevel float64  `json:"warning_level" binding:"required,gt=0"`
	DangerLevel  float64  `json:"danger_level" binding:"required,gt=0,gtfield=WarningLevel"`
}

type CreateLevelReadingRequest struct {
	LevelM     *float64   `json:"level_m" binding:"required,gte=0"`
	MeasuredAt *time.Time `json:"measured_at,omitempty"`
}

type StationResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	WarningLevel float64   `json:"warning_level"`
	DangerLevel  float64   `json:"danger_level"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToStationResponse(st *Station) StationResponse {
	return StationResponse{
		ID:           st.ID,
		Name:         st.Name,
		Slug:         st.Slug,
		Latitude:     st.Latitude,
		Longitude:    st.Longitude,
		WarningLevel: st.WarningLevel,
		DangerLevel:  st.DangerLevel,
		CreatedAt:    st.CreatedAt,
	}
}

// Forecast is the derived flood outlook for a station.
type Forecast struct {
	Station      StationResponse `json:"station"`
	CurrentLevel float64         `json:"current_level_m"`
	MeasuredAt   time.Time       `json:"measured_at"`
	Trend        Trend           `json:"trend"`
	Risk         Risk            `json:"risk"`
}
