// File: internal/platform/database/migrate.go
package database

import (
	"riverrevive_backend/internal/event"
	"riverrevive_backend/internal/flood"
	"riverrevive_backend/internal/notification"
	"riverrevive_backend/internal/profile"
	"riverrevive_backend/internal/report"
	"riverrevive_backend/internal/waterquality"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for every application model.
// Run at startup; GORM only applies additive changes, so destructive schema
// moves still need a hand-written migration.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&profile.Profile{},
		&notification.Notification{},
		&report.Report{},
		&event.Event{},
		&waterquality.Station{},
		&waterquality.Reading{},
		&flood.Station{},
		&flood.LevelReading{},
	)
}
