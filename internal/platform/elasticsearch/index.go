package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const ReportsIndexName = "reports"

// defineReportsMapping returns the JSON string for the reports index mapping.
func defineReportsMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"description":  map[string]interface{}{"type": "text"},
				"address":      map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"location":     map[string]interface{}{"type": "geo_point"}, // For lat, lon
				"reporter_id":  map[string]interface{}{"type": "keyword"},
				"collector_id": map[string]interface{}{"type": "keyword"},
				"garbage_type": map[string]interface{}{"type": "keyword"},
				"density":      map[string]interface{}{"type": "keyword"},
				"status":       map[string]interface{}{"type": "keyword"},
				"created_at":   map[string]interface{}{"type": "date"},
				"updated_at":   map[string]interface{}{"type": "date"},
				"resolved_at":  map[string]interface{}{"type": "date"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling reports mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreateReportsIndexIfNotExists creates the reports index with the defined
// mapping if it does not already exist.
func CreateReportsIndexIfNotExists(client *ESClientWrapper, logger *zap.Logger) error {
	ctx := context.Background()
	log := logger.Named("elasticsearch_index_setup")

	req := esapi.IndicesExistsRequest{
		Index: []string{ReportsIndexName},
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if reports index exists", zap.Error(err))
		return fmt.Errorf("error checking if reports index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Reports index already exists", zap.String("index_name", ReportsIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Error("Error checking if reports index exists, unexpected status",
			zap.String("status", res.Status()),
			zap.String("index_name", ReportsIndexName),
		)
		return fmt.Errorf("error checking if reports index exists: status %s", res.Status())
	}

	mappingJSON, err := defineReportsMapping()
	if err != nil {
		log.Error("Failed to define reports mapping", zap.Error(err))
		return err
	}
	log.Debug("Reports index mapping defined", zap.String("mapping", mappingJSON))

	createReq := esapi.IndicesCreateRequest{
		Index: ReportsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}
	createRes, err := createReq.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating reports index", zap.Error(err), zap.String("index_name", ReportsIndexName))
		return fmt.Errorf("error creating reports index %s: %w", ReportsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err != nil {
			log.Error("Failed to parse reports index creation error response body", zap.Error(err), zap.String("status", createRes.Status()))
		} else {
			log.Error("Failed to create reports index",
				zap.String("status", createRes.Status()),
				zap.Any("error_details", errorBody),
				zap.String("index_name", ReportsIndexName),
			)
		}
		return fmt.Errorf("failed to create reports index %s: status %s", ReportsIndexName, createRes.Status())
	}

	log.Info("Reports index created successfully", zap.String("index_name", ReportsIndexName))
	return nil
}
