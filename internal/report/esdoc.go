// File: internal/report/esdoc.go
package report

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ReportToElasticsearchDoc converts a Report to its Elasticsearch document
// representation.
func ReportToElasticsearchDoc(r *Report) (string, error) {
	if r == nil {
		return "", errors.New("report cannot be nil")
	}

	doc := map[string]interface{}{
		"description":  r.Description,
		"address":      r.Address,
		"reporter_id":  r.ReporterID.String(),
		"garbage_type": r.GarbageType,
		"density":      string(r.Density),
		"status":       string(r.Status),
		"created_at":   r.CreatedAt,
		"updated_at":   r.UpdatedAt,
		"location": map[string]float64{
			"lat": r.Latitude,
			"lon": r.Longitude,
		},
	}

	if r.CollectorID != nil {
		doc["collector_id"] = r.CollectorID.String()
	} else {
		doc["collector_id"] = nil
	}
	if r.ResolvedAt != nil {
		doc["resolved_at"] = r.ResolvedAt
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report %s to Elasticsearch doc: %w", r.ID, err)
	}
	return string(docBytes), nil
}
