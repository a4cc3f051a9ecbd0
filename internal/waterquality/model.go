// File: internal/waterquality/model.go
package waterquality

import (
	"time"

	"riverrevive_backend/internal/common"

	"github.com/google/uuid"
)

// QualityStatus classifies a reading's overall score.
type QualityStatus string

const (
	StatusGood     QualityStatus = "good"
	StatusModerate QualityStatus = "moderate"
	StatusPoor     QualityStatus = "poor"
)

// Station is a monitoring point on the river.
type Station struct {
	common.BaseModel
	Name        string   `gorm:"type:varchar(150);not null"`
	Slug        string   `gorm:"type:varchar(170);uniqueIndex:idx_wq_stations_slug;not null"`
	Description *string  `gorm:"type:text"`
	Latitude    *float64 `gorm:"type:decimal(10,8)"`
	Longitude   *float64 `gorm:"type:decimal(11,8)"`
}

func (Station) TableName() string {
	return "water_quality_stations"
}

// Reading is one set of measured water parameters at a station. Score and
// Status are derived at write time and stored for cheap history queries.
type Reading struct {
	common.BaseModel
	StationID    uuid.UUID `gorm:"type:uuid;not null;index"`
	RecordedByID uuid.UUID `gorm:"type:uuid;not null"`
	MeasuredAt   time.Time `gorm:"not null;index"`

	PH           float64 `gorm:"not null"`
	DissolvedO2  float64 `gorm:"not null"` // mg/L
	Temperature  float64 `gorm:"not null"` // Celsius
	Turbidity    float64 `gorm:"not null"` // NTU
	Conductivity float64 `gorm:"not null"` // uS/cm
	TotalSolids  float64 `gorm:"not null"` // mg/L
	BOD          float64 `gorm:"not null"` // mg/L
	COD          float64 `gorm:"not null"` // mg/L

	Score  float64       `gorm:"not null"`
	Status QualityStatus `gorm:"type:varchar(20);not null"`
}

func (Reading) TableName() string {
	return "water_quality_readings"
}

// --- DTOs for API ---
type CreateStationRequest struct {
	Name        string   `json:"name" binding:"required,min=3,max=150"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=2000"`
	Latitude    *float64 `json:"latitude,omitempty" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" binding:"omitempty,longitude"`
}

type CreateReadingRequest struct {
	MeasuredAt   *time.Time `json:"measured_at,omitempty"`
	PH           *float64   `json:"ph" binding:"required,gte=0,lte=14"`
	DissolvedO2  *float64   `json:"dissolved_o2" binding:"required,gte=0,lte=30"`
	Temperature  *float64   `json:"temperature" binding:"required,gte=-5,lte=60"`
	Turbidity    *float64   `json:"turbidity" binding:"required,gte=0"`
	Conductivity *float64   `json:"conductivity" binding:"required,gte=0"`
	TotalSolids  *float64   `json:"total_solids" binding:"required,gte=0"`
	BOD          *float64   `json:"bod" binding:"required,gte=0"`
	COD          *float64   `json:"cod" binding:"required,gte=0"`
}

type StationResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToStationResponse(st *Station) StationResponse {
	return StationResponse{
		ID:          st.ID,
		Name:        st.Name,
		Slug:        st.Slug,
		Description: st.Description,
		Latitude:    st.Latitude,
		Longitude:   st.Longitude,
		CreatedAt:   st.CreatedAt,
	}
}

type ReadingResponse struct {
	ID           uuid.UUID     `json:"id"`
	StationID    uuid.UUID     `json:"station_id"`
	MeasuredAt   time.Time     `json:"measured_at"`
	PH           float64       `json:"ph"`
	DissolvedO2  float64       `json:"dissolved_o2"`
	Temperature  float64       `json:"temperature"`
	Turbidity    float64       `json:"turbidity"`
	Conductivity float64       `json:"conductivity"`
	TotalSolids  float64       `json:"total_solids"`
	BOD          float64       `json:"bod"`
	COD          float64       `json:"cod"`
	Score        float64       `json:"score"`
	Status       QualityStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

func ToReadingResponse(r *Reading) ReadingResponse {
	return ReadingResponse{
		ID:           r.ID,
		StationID:    r.StationID,
		MeasuredAt:   r.MeasuredAt,
		PH:           r.PH,
		DissolvedO2:  r.DissolvedO2,
		Temperature:  r.Temperature,
		Turbidity:    r.Turbidity,
		Conductivity: r.Conductivity,
		TotalSolids:  r.TotalSolids,
		BOD:          r.BOD,
		COD:          r.COD,
		Score:        r.Score,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
	}
}
