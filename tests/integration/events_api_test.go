package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventsAPI_FullLifecycle schedules a cleanup event against an approved
// report, has a volunteer join, and completes it: the linked report closes
// and the volunteer earns points.
func TestEventsAPI_FullLifecycle(t *testing.T) {
	router, env := setupTestServer(t)

	_, citizenToken := approvedUser(t, router, env, fmt.Sprintf("reporter-%s@test.com", uuid.NewString()[:8]), "citizen")
	_, organizerToken := approvedUser(t, router, env, fmt.Sprintf("organizer-%s@test.com", uuid.NewString()[:8]), "collector")
	_, adminToken := approvedUser(t, router, env, fmt.Sprintf("admin-%s@test.com", uuid.NewString()[:8]), "admin")

	reportID := createReport(t, router, citizenToken)
	rr := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s/status", reportID), adminToken, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, rr.Code)

	// Citizens cannot organize events.
	rr = doJSON(t, router, http.MethodPost, "/api/v1/events", citizenToken, gin.H{
		"title":     "Unauthorized cleanup",
		"starts_at": time.Now().Add(48 * time.Hour),
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// The organizer schedules an event linked to the approved report.
	capacity := 2
	rr = doJSON(t, router, http.MethodPost, "/api/v1/events", organizerToken, gin.H{
		"title":      "River bank cleanup",
		"starts_at":  time.Now().Add(48 * time.Hour),
		"capacity":   capacity,
		"report_ids": []uuid.UUID{reportID},
	})
	require.Equal(t, http.StatusCreated, rr.Code, "create event failed: %s", rr.Body.String())
	var created struct {
		ID        uuid.UUID `json:"id"`
		Status    string    `json:"status"`
		SpotsLeft int       `json:"spots_left"`
	}
	decodeData(t, rr, &created)
	assert.Equal(t, "scheduled", created.Status)
	assert.Equal(t, capacity, created.SpotsLeft)

	// Scheduling against a pending report is refused.
	pendingReportID := createReport(t, router, citizenToken)
	rr = doJSON(t, router, http.MethodPost, "/api/v1/events", organizerToken, gin.H{
		"title":      "Cleanup of unapproved report",
		"starts_at":  time.Now().Add(48 * time.Hour),
		"report_ids": []uuid.UUID{pendingReportID},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", rr.Body.String())

	// The reporter volunteers for the event.
	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/join", created.ID), citizenToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, "join failed: %s", rr.Body.String())

	// Joining twice is refused.
	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/join", created.ID), citizenToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Completion records collected waste, closes the linked report, and
	// awards volunteer points.
	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/complete", created.ID), organizerToken, gin.H{
		"plastic_kg": 12.5,
		"organic_kg": 3.0,
		"metal_kg":   1.5,
		"other_kg":   0.0,
	})
	require.Equal(t, http.StatusOK, rr.Code, "complete failed: %s", rr.Body.String())
	var completedEvent struct {
		Status       string  `json:"status"`
		TotalWasteKG float64 `json:"total_waste_kg"`
	}
	decodeData(t, rr, &completedEvent)
	assert.Equal(t, "completed", completedEvent.Status)
	assert.InDelta(t, 17.0, completedEvent.TotalWasteKG, 0.001)

	rr = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/reports/%s", reportID), citizenToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var linkedReport struct {
		Status string `json:"status"`
	}
	decodeData(t, rr, &linkedReport)
	assert.Equal(t, "completed", linkedReport.Status)

	// The volunteer earned event points on top of the reporter completion
	// points for their own report.
	rr = doJSON(t, router, http.MethodGet, "/api/v1/profiles/me", citizenToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me struct {
		Points int `json:"points"`
	}
	decodeData(t, rr, &me)
	assert.Equal(t, env.cfg.VolunteerEventPoints+env.cfg.ReporterCompletionPoints, me.Points)
}

func TestEventsAPI_CapacityIsEnforced(t *testing.T) {
	router, env := setupTestServer(t)

	_, organizerToken := approvedUser(t, router, env, fmt.Sprintf("organizer-%s@test.com", uuid.NewString()[:8]), "collector")
	_, firstToken := approvedUser(t, router, env, fmt.Sprintf("vol1-%s@test.com", uuid.NewString()[:8]), "citizen")
	_, secondToken := approvedUser(t, router, env, fmt.Sprintf("vol2-%s@test.com", uuid.NewString()[:8]), "citizen")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/events", organizerToken, gin.H{
		"title":     "Tiny cleanup crew",
		"starts_at": time.Now().Add(24 * time.Hour),
		"capacity":  1,
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, rr, &created)

	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/join", created.ID), firstToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/join", created.ID), secondToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", rr.Body.String())

	// Leaving frees the spot.
	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/leave", created.ID), firstToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/join", created.ID), secondToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEventsAPI_OnlyOrganizerMutates(t *testing.T) {
	router, env := setupTestServer(t)

	_, organizerToken := approvedUser(t, router, env, fmt.Sprintf("organizer-%s@test.com", uuid.NewString()[:8]), "collector")
	_, rivalToken := approvedUser(t, router, env, fmt.Sprintf("rival-%s@test.com", uuid.NewString()[:8]), "collector")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/events", organizerToken, gin.H{
		"title":     "Original organizer event",
		"starts_at": time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	decodeData(t, rr, &created)

	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/cancel", created.ID), rivalToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code, "body: %s", rr.Body.String())

	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/cancel", created.ID), organizerToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
