// File: cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"strings"
	"syscall"

	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/platform/database"
	platformElasticsearch "riverrevive_backend/internal/platform/elasticsearch"
	"riverrevive_backend/internal/platform/logger"
	"riverrevive_backend/internal/report"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

func main() {
	// Define CLI flags
	syncReportsCmd := flag.NewFlagSet("sync-reports", flag.ExitOnError)
	batchSize := syncReportsCmd.Int("batch-size", 100, "Batch size for syncing reports")
	esRefresh := syncReportsCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")

	if len(os.Args) > 1 && os.Args[1] == "sync-reports" {
		syncReportsCmd.Parse(os.Args[2:])

		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
		}
		appLogger, err := logger.New(cfg)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
		}
		db, err := database.NewGORM(cfg)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize database for sync", zap.Error(err))
		}
		sqlDB, _ := db.DB()
		defer sqlDB.Close()

		esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
		}

		// Ensure index exists before syncing
		if err := platformElasticsearch.CreateReportsIndexIfNotExists(esClient, appLogger); err != nil {
			appLogger.Fatal("FATAL: Failed to create/verify Elasticsearch index before sync", zap.Error(err))
		}

		reportRepo := report.NewGORMRepository(db)

		err = runReportSync(reportRepo, esClient, appLogger, *batchSize, *esRefresh)
		if err != nil {
			appLogger.Fatal("FATAL: Report synchronization failed", zap.Error(err))
		}
		appLogger.Info("Report synchronization completed successfully.")
		return
	}

	// Default: Start server
	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.ESClient != nil {
		if err := platformElasticsearch.CreateReportsIndexIfNotExists(server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch reports index. Report search will degrade until it exists.", zap.Error(err))
		}
	} else {
		log.Println("INFO: Elasticsearch client (server.ESClient) not initialized, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runReportSync performs the batch synchronization of waste reports to Elasticsearch.
func runReportSync(
	reportRepo report.Repository,
	esClient *platformElasticsearch.ESClientWrapper,
	logger *zap.Logger,
	batchSize int,
	esRefresh string,
) error {
	logger.Info("Starting report synchronization to Elasticsearch...",
		zap.Int("batchSize", batchSize),
		zap.String("esRefreshPolicy", esRefresh),
	)

	offset := 0
	totalSynced := 0
	totalFailed := 0
	batchNumber := 1

	for {
		logger.Info("Fetching batch of reports...", zap.Int("batchNumber", batchNumber), zap.Int("offset", offset), zap.Int("limit", batchSize))
		reports, err := reportRepo.FindAllForIndexing(context.Background(), offset, batchSize)
		if err != nil {
			logger.Error("Failed to fetch batch of reports", zap.Error(err), zap.Int("batchNumber", batchNumber))
			return fmt.Errorf("failed to fetch batch %d: %w", batchNumber, err)
		}

		if len(reports) == 0 {
			logger.Info("No more reports to sync.")
			break
		}
		logger.Info("Fetched reports for batch", zap.Int("count", len(reports)), zap.Int("batchNumber", batchNumber))

		var bulkRequestBody strings.Builder
		currentBatchIDs := make([]string, 0, len(reports))

		for i := range reports {
			rep := &reports[i]
			currentBatchIDs = append(currentBatchIDs, rep.ID.String())
			docJSON, errDoc := report.ReportToElasticsearchDoc(rep)
			if errDoc != nil {
				logger.Error("Failed to convert report to Elasticsearch document",
					zap.String("reportID", rep.ID.String()),
					zap.Error(errDoc),
				)
				totalFailed++
				continue // Skip this document
			}

			action := fmt.Sprintf(`{ "index" : { "_index" : "%s", "_id" : "%s" } }%s`, platformElasticsearch.ReportsIndexName, rep.ID.String(), "\n")
			bulkRequestBody.WriteString(action)
			bulkRequestBody.WriteString(docJSON)
			bulkRequestBody.WriteString("\n")
		}

		if bulkRequestBody.Len() == 0 {
			logger.Info("No documents to index in current batch, possibly due to conversion errors.", zap.Int("batchNumber", batchNumber))
			offset += len(reports)
			batchNumber++
			continue
		}

		logger.Info("Sending bulk request to Elasticsearch for batch", zap.Int("batchNumber", batchNumber), zap.Int("documentCount", len(currentBatchIDs)))

		req := esapi.BulkRequest{
			Body:    strings.NewReader(bulkRequestBody.String()),
			Refresh: esRefresh,
		}

		res, errBulk := req.Do(context.Background(), esClient.Client)
		if errBulk != nil {
			logger.Error("Failed to send bulk request to Elasticsearch", zap.Error(errBulk), zap.Int("batchNumber", batchNumber))
			totalFailed += len(currentBatchIDs) // Assume all in batch failed if request itself failed
			offset += len(reports)
			batchNumber++
			continue
		}

		batchSynced, batchFailed := parseBulkResponse(res, currentBatchIDs, logger, batchNumber)
		res.Body.Close()

		totalSynced += batchSynced
		totalFailed += batchFailed
		logger.Info("Batch processed.",
			zap.Int("batchNumber", batchNumber),
			zap.Int("syncedInBatch", batchSynced),
			zap.Int("failedInBatch", batchFailed),
		)

		offset += len(reports)
		batchNumber++
	}

	logger.Info("Report synchronization process finished.",
		zap.Int("totalReportsSyncedSuccessfully", totalSynced),
		zap.Int("totalReportsFailed", totalFailed),
	)
	if totalFailed > 0 {
		return fmt.Errorf("%d reports failed to sync", totalFailed)
	}
	return nil
}

// parseBulkResponse counts per-item successes and failures in a bulk response.
// A bulk request can succeed overall while individual items fail, so both the
// error and success paths decode item-level results.
func parseBulkResponse(res *esapi.Response, batchIDs []string, logger *zap.Logger, batchNumber int) (synced, failed int) {
	if res.IsError() {
		logger.Error("Elasticsearch bulk request returned an error", zap.String("status", res.Status()), zap.Int("batchNumber", batchNumber))
		var raw map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
			logger.Error("Failed to parse Elasticsearch bulk error response body", zap.Error(err))
			return 0, len(batchIDs)
		}
		hasErrors, ok := raw["errors"].(bool)
		if !ok || !hasErrors {
			logger.Warn("Elasticsearch bulk request had IsError() true but no 'errors:true' field in response", zap.Int("batchNumber", batchNumber))
			return 0, len(batchIDs)
		}
		items, _ := raw["items"].([]interface{})
		for i, item := range items {
			itemMap, _ := item.(map[string]interface{})
			indexMap, _ := itemMap["index"].(map[string]interface{})

			reportID := "unknown"
			if i < len(batchIDs) {
				reportID = batchIDs[i]
			}

			if errorVal, hasErr := indexMap["error"]; hasErr {
				logger.Error("Failed to index document in bulk batch",
					zap.String("reportID", reportID),
					zap.Any("error", errorVal),
					zap.Int("batchItemIndex", i),
				)
				failed++
			} else {
				synced++
			}
		}
		return synced, failed
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		logger.Error("Failed to parse Elasticsearch bulk success response body", zap.Error(err), zap.Int("batchNumber", batchNumber))
		return 0, len(batchIDs)
	}
	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			logger.Error("Failed to index document in bulk batch (item-level)",
				zap.String("reportID", item.Index.ID),
				zap.Any("error", item.Index.Error),
				zap.Int("status", item.Index.Status),
			)
			failed++
		} else {
			synced++
		}
	}
	return synced, failed
}
