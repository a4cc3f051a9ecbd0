package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riverrevive_backend/internal/notification"
)

// TestNotificationsAPI_ApprovalLifecycle checks that the admin approval
// decision lands as a notification and works through the read-state
// endpoints.
func TestNotificationsAPI_ApprovalLifecycle(t *testing.T) {
	router, env := setupTestServer(t)

	email := fmt.Sprintf("notif-%s@test.com", uuid.NewString()[:8])
	profileID := signUpUser(t, router, email, "secret-pass-1", "citizen", "Notified Citizen")
	token, _ := signIn(t, router, email, "secret-pass-1")

	_, adminToken := approvedUser(t, router, env, fmt.Sprintf("admin-%s@test.com", uuid.NewString()[:8]), "admin")
	rr := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/profiles/%s/approve", profileID), adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// The approval produced one unread notification.
	rr = doJSON(t, router, http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var countData struct {
		Unread int64 `json:"unread"`
	}
	decodeData(t, rr, &countData)
	assert.Equal(t, int64(1), countData.Unread)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listResp struct {
		Data []notification.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)
	approvalNotif := listResp.Data[0]
	assert.Equal(t, notification.ProfileApproved, approvalNotif.Type)
	assert.Equal(t, profileID, approvalNotif.ProfileID)
	assert.False(t, approvalNotif.IsRead)

	// Mark it read.
	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/notifications/%s/mark-read", approvalNotif.ID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &countData)
	assert.Equal(t, int64(0), countData.Unread)

	// Another profile cannot mark someone else's notification.
	_, otherToken := approvedUser(t, router, env, fmt.Sprintf("other-%s@test.com", uuid.NewString()[:8]), "citizen")
	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/notifications/%s/mark-read", approvalNotif.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "body: %s", rr.Body.String())
}

func TestNotificationsAPI_MarkAllRead(t *testing.T) {
	router, env := setupTestServer(t)

	citizenID, citizenToken := approvedUser(t, router, env, fmt.Sprintf("busy-%s@test.com", uuid.NewString()[:8]), "citizen")
	_, adminToken := approvedUser(t, router, env, fmt.Sprintf("admin-%s@test.com", uuid.NewString()[:8]), "admin")

	// Generate a report-approved notification on top of the profile-approved
	// one from approvedUser's decision.
	reportID := createReport(t, router, citizenToken)
	rr := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reports/%s/status", reportID), adminToken, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/notifications/unread-count", citizenToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var countData struct {
		Unread int64 `json:"unread"`
	}
	decodeData(t, rr, &countData)
	require.GreaterOrEqual(t, countData.Unread, int64(2), "expected notifications for profile %s", citizenID)

	rr = doJSON(t, router, http.MethodPost, "/api/v1/notifications/mark-all-read", citizenToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/notifications/unread-count", citizenToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &countData)
	assert.Equal(t, int64(0), countData.Unread)
}
