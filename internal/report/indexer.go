// File: internal/report/indexer.go
package report

import (
	"context"
	"fmt"
	"strings"

	"riverrevive_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Indexer maintains the report search index.
type Indexer interface {
	IndexReport(ctx context.Context, rep *Report) error
	DeleteReport(ctx context.Context, id uuid.UUID) error
}

// ESIndexer implements Indexer on top of the Elasticsearch client.
type ESIndexer struct {
	client *elasticsearch.ESClientWrapper
	logger *zap.Logger
}

var _ Indexer = (*ESIndexer)(nil)

// NewESIndexer creates a new Elasticsearch report indexer.
func NewESIndexer(client *elasticsearch.ESClientWrapper, logger *zap.Logger) *ESIndexer {
	return &ESIndexer{client: client, logger: logger}
}

// IndexReport upserts one report document.
func (i *ESIndexer) IndexReport(ctx context.Context, rep *Report) error {
	docJSON, err := ReportToElasticsearchDoc(rep)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      elasticsearch.ReportsIndexName,
		DocumentID: rep.ID.String(),
		Body:       strings.NewReader(docJSON),
	}
	res, err := req.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("failed to index report %s: %w", rep.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index report %s: status %s", rep.ID, res.Status())
	}
	return nil
}

// DeleteReport removes one report document. A missing document is not an
// error: the goal state is already reached.
func (i *ESIndexer) DeleteReport(ctx context.Context, id uuid.UUID) error {
	req := esapi.DeleteRequest{
		Index:      elasticsearch.ReportsIndexName,
		DocumentID: id.String(),
	}
	res, err := req.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("failed to delete report %s from index: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("failed to delete report %s from index: status %s", id, res.Status())
	}
	return nil
}
