package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/event"
	"riverrevive_backend/internal/filestorage"
	"riverrevive_backend/internal/flood"
	"riverrevive_backend/internal/gate"
	"riverrevive_backend/internal/identity"
	"riverrevive_backend/internal/middleware"
	"riverrevive_backend/internal/notification"
	"riverrevive_backend/internal/platform/database"
	"riverrevive_backend/internal/profile"
	"riverrevive_backend/internal/report"
	"riverrevive_backend/internal/waterquality"
)

// testEnv exposes the pieces of the assembled application that tests reach
// into directly, next to the HTTP surface.
type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	identity identity.Client
	profiles profile.Service
}

// setupTestServer assembles the full API against an in-memory sqlite database
// and the in-memory identity provider, mirroring the production wiring.
func setupTestServer(t *testing.T) (*gin.Engine, *testEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory sqlite database")
	require.NoError(t, database.AutoMigrate(db), "failed to migrate schema")

	cfg := &config.Config{
		GinMode:                  gin.TestMode,
		ApprovalPolicy:           config.ApprovalPolicyManual,
		GateFetchTimeout:         2 * time.Second,
		GateRefreshInterval:      50 * time.Millisecond,
		ReporterCompletionPoints: 50,
		VolunteerEventPoints:     30,
		DefaultEventCapacity:     25,
		FileStoragePath:          t.TempDir(),
		MaxUploadSizeMB:          5,
	}
	logger := zap.NewNop()

	identityClient := identity.NewMemoryClient(logger)

	notificationService := notification.NewService(notification.NewGORMRepository(db), logger)
	notificationHandler := notification.NewHandler(notificationService, logger)

	profileService := profile.NewService(profile.NewGORMRepository(db), notificationService, cfg, logger)
	profileHandler := profile.NewHandler(profileService, logger)

	gateService := gate.NewService(identityClient, profileService, cfg, logger)
	gateHandler := gate.NewHandler(gateService, profileService, cfg, logger)

	storage, err := filestorage.NewService(cfg, logger)
	require.NoError(t, err)

	reportService := report.NewService(report.NewGORMRepository(db), profileService, notificationService, nil, cfg, logger)
	reportHandler := report.NewHandler(reportService, storage, logger)

	eventService := event.NewService(event.NewGORMRepository(db), reportService, profileService, notificationService, cfg, logger)
	eventHandler := event.NewHandler(eventService, logger)

	waterQualityHandler := waterquality.NewHandler(waterquality.NewService(waterquality.NewGORMRepository(db), logger), logger)
	floodHandler := flood.NewHandler(flood.NewService(flood.NewGORMRepository(db), logger), logger)

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	authMW := middleware.AuthMiddleware(gateService, logger)
	adminRoleMW := middleware.RoleAuthMiddleware(common.RoleAdmin)
	collectorRoleMW := middleware.RoleAuthMiddleware(common.RoleCollector, common.RoleAdmin)

	v1 := router.Group("/api/v1")
	gateHandler.RegisterRoutes(v1)
	profileHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	reportHandler.RegisterRoutes(v1, authMW, collectorRoleMW, adminRoleMW)
	eventHandler.RegisterRoutes(v1, authMW, collectorRoleMW)
	waterQualityHandler.RegisterRoutes(v1, authMW, collectorRoleMW)
	floodHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	notificationGroup := v1.Group("/notifications", authMW)
	notificationHandler.RegisterRoutes(notificationGroup)

	return router, &testEnv{
		db:       db,
		cfg:      cfg,
		identity: identityClient,
		profiles: profileService,
	}
}

// doJSON performs a JSON request against the router, with an optional bearer
// token, and returns the recorder.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the "data" envelope of a success response into out.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var wrapper struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &wrapper), "response body: %s", rr.Body.String())
	require.NoError(t, json.Unmarshal(wrapper.Data, out), "response data: %s", string(wrapper.Data))
}

// errorCode extracts the machine-readable error code of a failed response.
func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var apiErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr), "response body: %s", rr.Body.String())
	return apiErr.Code
}

// signUpUser registers an account over HTTP and returns its profile ID.
func signUpUser(t *testing.T, router http.Handler, email, password, role, fullName string) uuid.UUID {
	t.Helper()
	rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":     email,
		"password":  password,
		"role":      role,
		"full_name": fullName,
	})
	require.Equal(t, http.StatusCreated, rr.Code, "signup failed: %s", rr.Body.String())

	var data struct {
		Profile struct {
			ID uuid.UUID `json:"id"`
		} `json:"profile"`
	}
	decodeData(t, rr, &data)
	require.NotEqual(t, uuid.Nil, data.Profile.ID)
	return data.Profile.ID
}

// signIn logs in over HTTP and returns the bearer token plus the session
// state kind reported by the gate.
func signIn(t *testing.T, router http.Handler, email, password string) (token, stateKind string) {
	t.Helper()
	rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rr.Code, "login failed: %s", rr.Body.String())

	var data struct {
		State struct {
			Kind string `json:"state"`
		} `json:"state"`
		Token struct {
			IDToken string `json:"id_token"`
		} `json:"token"`
	}
	decodeData(t, rr, &data)
	require.NotEmpty(t, data.Token.IDToken)
	return data.Token.IDToken, data.State.Kind
}

// approvedUser signs up, approves, and logs in a user in one step.
func approvedUser(t *testing.T, router http.Handler, env *testEnv, email, role string) (uuid.UUID, string) {
	t.Helper()
	const password = "secret-pass-1"
	id := signUpUser(t, router, email, password, role, "Test "+role)
	_, err := env.profiles.Approve(context.Background(), id)
	require.NoError(t, err)
	token, state := signIn(t, router, email, password)
	require.Equal(t, "authorized", state)
	return id, token
}
