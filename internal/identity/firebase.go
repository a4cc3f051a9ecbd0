// File: internal/identity/firebase.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"riverrevive_backend/internal/config"
)

// FirebaseClient implements Client on top of the Firebase Admin SDK for user
// management and token verification, and the provider REST endpoint for
// password sign-in (the Admin SDK has no password grant).
type FirebaseClient struct {
	authClient *firebaseauth.Client
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Client = (*FirebaseClient)(nil)

// NewFirebaseClient initializes the Firebase Admin SDK and returns a Client
// backed by it.
func NewFirebaseClient(cfg *config.Config, logger *zap.Logger) (*FirebaseClient, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error

	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		// If ProjectID is not specified in config, let SDK infer from credentials
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseClient{
		authClient: authClient,
		endpoint:   strings.TrimRight(cfg.IdentityEndpoint, "/"),
		apiKey:     cfg.IdentityAPIKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}, nil
}

// SignUp creates the identity and attaches the signup metadata as custom
// claims so it is available on every verified token thereafter.
func (c *FirebaseClient) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Identity, error) {
	params := (&firebaseauth.UserToCreate{}).
		Email(email).
		Password(password)
	if name, ok := metadata[MetadataFullName]; ok && name != "" {
		params = params.DisplayName(name)
	}

	record, err := c.authClient.CreateUser(ctx, params)
	if err != nil {
		if firebaseauth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailAlreadyInUse
		}
		c.logger.Error("Failed to create identity", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	if len(metadata) > 0 {
		claims := make(map[string]interface{}, len(metadata))
		for k, v := range metadata {
			claims[k] = v
		}
		if err := c.authClient.SetCustomUserClaims(ctx, record.UID, claims); err != nil {
			// The identity exists but the metadata did not stick. Surface the
			// error so the caller can treat this as a partial failure.
			c.logger.Error("Failed to set signup claims", zap.Error(err), zap.String("uid", record.UID))
			return nil, fmt.Errorf("identity created but metadata could not be set: %w", err)
		}
	}

	c.logger.Info("Identity created", zap.String("uid", record.UID))
	return &Identity{
		UID:           record.UID,
		Email:         record.Email,
		EmailVerified: record.EmailVerified,
		Metadata:      metadata,
	}, nil
}

// signInResponse is the provider REST payload for a password sign-in.
type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

type signInErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword exchanges credentials for a session against the
// provider's REST endpoint.
func (c *FirebaseClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	reqBody, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign-in request: %w", err)
	}

	signInURL := fmt.Sprintf("%s/v1/accounts:signInWithPassword?key=%s", c.endpoint, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Identity sign-in request failed", zap.Error(err))
		return nil, fmt.Errorf("identity sign-in request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sign-in response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp signInErrorResponse
		_ = json.Unmarshal(body, &errResp)
		switch {
		case strings.HasPrefix(errResp.Error.Message, "INVALID_PASSWORD"),
			strings.HasPrefix(errResp.Error.Message, "INVALID_LOGIN_CREDENTIALS"),
			strings.HasPrefix(errResp.Error.Message, "EMAIL_NOT_FOUND"):
			c.logger.Info("Sign-in rejected by provider", zap.String("reason", errResp.Error.Message))
			return nil, ErrInvalidCredentials
		default:
			c.logger.Error("Unexpected sign-in failure", zap.Int("status", resp.StatusCode), zap.String("message", errResp.Error.Message))
			return nil, fmt.Errorf("identity sign-in failed: status %d: %s", resp.StatusCode, errResp.Error.Message)
		}
	}

	var ok signInResponse
	if err := json.Unmarshal(body, &ok); err != nil {
		return nil, fmt.Errorf("failed to decode sign-in response: %w", err)
	}

	expiresAt := time.Now()
	if secs, convErr := strconv.Atoi(ok.ExpiresIn); convErr == nil {
		expiresAt = expiresAt.Add(time.Duration(secs) * time.Second)
	}

	return &Session{
		UID:          ok.LocalID,
		Email:        ok.Email,
		IDToken:      ok.IDToken,
		RefreshToken: ok.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// VerifyToken verifies a Firebase ID token and returns its claims.
func (c *FirebaseClient) VerifyToken(ctx context.Context, idToken string) (*Token, error) {
	if idToken == "" {
		return nil, ErrInvalidToken
	}

	token, err := c.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		c.logger.Warn("ID token verification failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	out := &Token{
		UID:      token.UID,
		Metadata: make(map[string]string),
	}
	if email, ok := token.Claims["email"].(string); ok {
		out.Email = email
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		out.EmailVerified = verified
	}
	for _, key := range []string{MetadataFullName, MetadataRole} {
		if v, ok := token.Claims[key].(string); ok {
			out.Metadata[key] = v
		}
	}

	c.logger.Debug("ID token verified successfully", zap.String("uid", token.UID))
	return out, nil
}

// SignOut revokes all refresh tokens for a given identity.
func (c *FirebaseClient) SignOut(ctx context.Context, uid string) error {
	if err := c.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		c.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	c.logger.Info("Successfully revoked refresh tokens for identity", zap.String("uid", uid))
	return nil
}
