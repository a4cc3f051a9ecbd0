// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"log"
	"riverrevive_backend/internal/app"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/event"
	"riverrevive_backend/internal/filestorage"
	"riverrevive_backend/internal/flood"
	"riverrevive_backend/internal/gate"
	"riverrevive_backend/internal/identity"
	"riverrevive_backend/internal/jobs"
	"riverrevive_backend/internal/notification"
	"riverrevive_backend/internal/platform/database"
	"riverrevive_backend/internal/platform/elasticsearch"
	"riverrevive_backend/internal/platform/logger"
	"riverrevive_backend/internal/profile"
	"riverrevive_backend/internal/report"
	"riverrevive_backend/internal/shared"
	"riverrevive_backend/internal/waterquality"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		elasticsearch.NewClient,
		identity.NewClient,

		// Notifications feed every other module, so they come first.
		notification.NewGORMRepository,
		notification.NewService,
		notification.NewHandler,

		// Profiles and the approval gate
		profile.NewGORMRepository,
		profile.NewService, // Provides *profile.ServiceImplementation
		wire.Bind(new(profile.Service), new(*profile.ServiceImplementation)),
		wire.Bind(new(shared.ProfileService), new(*profile.ServiceImplementation)),
		profile.NewHandler,
		gate.NewService,
		gate.NewHandler,

		// Waste reports (with Elasticsearch indexing and photo storage)
		filestorage.NewService,
		report.NewGORMRepository,
		report.NewESIndexer,
		wire.Bind(new(report.Indexer), new(*report.ESIndexer)),
		report.NewService,
		report.NewHandler,

		// Cleanup events
		event.NewGORMRepository,
		event.NewService,
		event.NewHandler,

		// Water quality and flood forecasting
		waterquality.NewGORMRepository,
		waterquality.NewService,
		waterquality.NewHandler,
		flood.NewGORMRepository,
		flood.NewService,
		flood.NewHandler,

		// Jobs
		jobs.NewEventReminderJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
