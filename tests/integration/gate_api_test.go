package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGateAPI_SignupAwaitsApproval walks the whole approval gate over HTTP:
// a fresh signup can authenticate but is held at awaiting_approval, every
// protected endpoint answers APPROVAL_PENDING, and an admin decision flips
// the account to authorized.
func TestGateAPI_SignupAwaitsApproval(t *testing.T) {
	router, env := setupTestServer(t)

	email := fmt.Sprintf("citizen-%s@test.com", uuid.NewString()[:8])
	profileID := signUpUser(t, router, email, "secret-pass-1", "citizen", "Pending Citizen")

	// Valid credentials, but the session is gated.
	token, state := signIn(t, router, email, "secret-pass-1")
	assert.Equal(t, "awaiting_approval", state)

	// The session endpoint reports the same gate state.
	rr := doJSON(t, router, http.MethodGet, "/api/v1/auth/session", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var sessionData struct {
		State struct {
			Kind string `json:"state"`
		} `json:"state"`
	}
	decodeData(t, rr, &sessionData)
	assert.Equal(t, "awaiting_approval", sessionData.State.Kind)

	// Protected endpoints are closed until approval.
	rr = doJSON(t, router, http.MethodGet, "/api/v1/profiles/me", token, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "APPROVAL_PENDING", errorCode(t, rr))

	rr = doJSON(t, router, http.MethodGet, "/api/v1/reports/my", token, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)

	// An approved admin works through the decision endpoints.
	_, adminToken := approvedUser(t, router, env, fmt.Sprintf("admin-%s@test.com", uuid.NewString()[:8]), "admin")

	rr = doJSON(t, router, http.MethodGet, "/api/v1/profiles/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/profiles/%s/approve", profileID), adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, "approve failed: %s", rr.Body.String())

	// The previously issued token now resolves to an authorized session.
	rr = doJSON(t, router, http.MethodGet, "/api/v1/profiles/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me struct {
		ID       uuid.UUID `json:"id"`
		Role     string    `json:"role"`
		Approved bool      `json:"approved"`
		Status   string    `json:"status"`
	}
	decodeData(t, rr, &me)
	assert.Equal(t, profileID, me.ID)
	assert.Equal(t, "citizen", me.Role)
	assert.True(t, me.Approved)
	assert.Equal(t, "approved", me.Status)
}

func TestGateAPI_RejectedProfileStaysLockedOut(t *testing.T) {
	router, env := setupTestServer(t)

	email := fmt.Sprintf("rejected-%s@test.com", uuid.NewString()[:8])
	profileID := signUpUser(t, router, email, "secret-pass-1", "collector", "Rejected Collector")
	token, _ := signIn(t, router, email, "secret-pass-1")

	_, adminToken := approvedUser(t, router, env, fmt.Sprintf("admin-%s@test.com", uuid.NewString()[:8]), "admin")
	rr := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/profiles/%s/reject", profileID), adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, "reject failed: %s", rr.Body.String())

	// A rejected profile still authenticates but never passes the gate.
	rr = doJSON(t, router, http.MethodGet, "/api/v1/profiles/me", token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGateAPI_InvalidCredentials(t *testing.T) {
	router, _ := setupTestServer(t)

	email := fmt.Sprintf("user-%s@test.com", uuid.NewString()[:8])
	signUpUser(t, router, email, "secret-pass-1", "citizen", "Some Citizen")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rr))
}

func TestGateAPI_DuplicateSignupConflicts(t *testing.T) {
	router, _ := setupTestServer(t)

	email := fmt.Sprintf("dup-%s@test.com", uuid.NewString()[:8])
	signUpUser(t, router, email, "secret-pass-1", "citizen", "First Signup")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":     email,
		"password":  "secret-pass-2",
		"role":      "citizen",
		"full_name": "Second Signup",
	})
	assert.Equal(t, http.StatusConflict, rr.Code, "body: %s", rr.Body.String())
}

func TestGateAPI_SessionWithoutTokenIsUnauthenticated(t *testing.T) {
	router, _ := setupTestServer(t)

	rr := doJSON(t, router, http.MethodGet, "/api/v1/auth/session", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var data struct {
		State struct {
			Kind string `json:"state"`
		} `json:"state"`
	}
	decodeData(t, rr, &data)
	assert.Equal(t, "unauthenticated", data.State.Kind)
}

func TestGateAPI_LogoutRevokesToken(t *testing.T) {
	router, env := setupTestServer(t)

	_, token := approvedUser(t, router, env, fmt.Sprintf("out-%s@test.com", uuid.NewString()[:8]), "citizen")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/profiles/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
