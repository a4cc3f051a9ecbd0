package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReport(t *testing.T, router http.Handler, token string) uuid.UUID {
	t.Helper()
	lat, lng := 47.6097, -122.3331
	rr := doJSON(t, router, http.MethodPost, "/api/v1/reports", token, gin.H{
		"garbage_type": "plastic",
		"density":      "high",
		"description":  "Plastic bottles along the river bank.",
		"latitude":     lat,
		"longitude":    lng,
	})
	require.Equal(t, http.StatusCreated, rr.Code, "create report failed: %s", rr.Body.String())

	var created struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	decodeData(t, rr, &created)
	require.Equal(t, "pending", created.Status)
	return created.ID
}

// TestReportsAPI_FullWorkflow drives a waste report through its entire
// lifecycle: citizen submission, admin approval, collector assignment,
// in-progress, completion, and the reporter's points award.
func TestReportsAPI_FullWorkflow(t *testing.T) {
	router, env := setupTestServer(t)

	_, citizenToken := approvedUser(t, router, env, fmt.Sprintf("reporter-%s@test.com", uuid.NewString()[:8]), "citizen")
	collectorID, collectorToken := approvedUser(t, router, env, fmt.Sprintf("collector-%s@test.com", uuid.NewString()[:8]), "collector")
	_, adminToken := approvedUser(t, router, env, fmt.Sprintf("admin-%s@test.com", uuid.NewString()[:8]), "admin")

	reportID := createReport(t, router, citizenToken)

	// Citizens cannot touch the workflow endpoints.
	rr := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s/status", reportID), citizenToken, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Collectors cannot approve either; that transition is admin-only.
	rr = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s/status", reportID), collectorToken, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rr.Code, "body: %s", rr.Body.String())

	// Admin approves.
	rr = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s/status", reportID), adminToken, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, rr.Code, "approve failed: %s", rr.Body.String())

	// Admin assigns the collector.
	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/reports/%s/assign", reportID), adminToken, gin.H{"collector_id": collectorID})
	require.Equal(t, http.StatusOK, rr.Code, "assign failed: %s", rr.Body.String())

	// The collector sees the report in their queue.
	rr = doJSON(t, router, http.MethodGet, "/api/v1/reports/assigned", collectorToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var assigned struct {
		Data []struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &assigned))
	require.Len(t, assigned.Data, 1)
	assert.Equal(t, reportID, assigned.Data[0].ID)

	// Collector works the report to completion.
	rr = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s/status", reportID), collectorToken, gin.H{"status": "in-progress"})
	require.Equal(t, http.StatusOK, rr.Code, "in-progress failed: %s", rr.Body.String())

	rr = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s/status", reportID), collectorToken, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, rr.Code, "complete failed: %s", rr.Body.String())
	var completed struct {
		Status     string  `json:"status"`
		ResolvedAt *string `json:"resolved_at"`
	}
	decodeData(t, rr, &completed)
	assert.Equal(t, "completed", completed.Status)
	assert.NotNil(t, completed.ResolvedAt)

	// Completion awarded points to the reporter.
	rr = doJSON(t, router, http.MethodGet, "/api/v1/profiles/me", citizenToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me struct {
		Points int `json:"points"`
	}
	decodeData(t, rr, &me)
	assert.Equal(t, env.cfg.ReporterCompletionPoints, me.Points)

	// Completed is terminal for the workflow.
	rr = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s/status", reportID), adminToken, gin.H{"status": "in-progress"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReportsAPI_OwnershipRules(t *testing.T) {
	router, env := setupTestServer(t)

	_, ownerToken := approvedUser(t, router, env, fmt.Sprintf("owner-%s@test.com", uuid.NewString()[:8]), "citizen")
	_, otherToken := approvedUser(t, router, env, fmt.Sprintf("other-%s@test.com", uuid.NewString()[:8]), "citizen")

	reportID := createReport(t, router, ownerToken)

	// Another citizen cannot edit or delete the report.
	rr := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s", reportID), otherToken, gin.H{"density": "low"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/reports/%s", reportID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "body: %s", rr.Body.String())

	// The owner can update while the report is pending.
	rr = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s", reportID), ownerToken, gin.H{"density": "low"})
	require.Equal(t, http.StatusOK, rr.Code)

	// And delete it.
	rr = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/reports/%s", reportID), ownerToken, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestReportsAPI_ValidationErrors(t *testing.T) {
	router, env := setupTestServer(t)
	_, token := approvedUser(t, router, env, fmt.Sprintf("val-%s@test.com", uuid.NewString()[:8]), "citizen")

	// Unknown garbage type.
	rr := doJSON(t, router, http.MethodPost, "/api/v1/reports", token, gin.H{
		"garbage_type": "nuclear",
		"density":      "high",
		"latitude":     47.6,
		"longitude":    -122.3,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Missing coordinates.
	rr = doJSON(t, router, http.MethodPost, "/api/v1/reports", token, gin.H{
		"garbage_type": "plastic",
		"density":      "high",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
