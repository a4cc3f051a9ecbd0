// File: internal/identity/memory.go
package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/platform/crypto"
)

const memoryTokenTTL = time.Hour

type memoryAccount struct {
	uid           string
	email         string
	passwordHash  string
	emailVerified bool
	metadata      map[string]string
}

type memoryToken struct {
	uid       string
	expiresAt time.Time
}

// MemoryClient is an in-memory Client for tests and demo deployments. It
// satisfies the same contract as the real provider: bcrypt-checked
// credentials, opaque bearer tokens, revocation on sign-out.
type MemoryClient struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount // keyed by normalized email
	tokens   map[string]memoryToken
	logger   *zap.Logger
}

var _ Client = (*MemoryClient)(nil)

// NewMemoryClient creates an empty in-memory identity client.
func NewMemoryClient(logger *zap.Logger) *MemoryClient {
	return &MemoryClient{
		accounts: make(map[string]*memoryAccount),
		tokens:   make(map[string]memoryToken),
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *MemoryClient) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*Identity, error) {
	hash, err := common.HashPassword(password)
	if err != nil {
		return nil, err
	}

	key := normalizeEmail(email)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.accounts[key]; exists {
		return nil, ErrEmailAlreadyInUse
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	acct := &memoryAccount{
		uid:           uuid.NewString(),
		email:         key,
		passwordHash:  hash,
		emailVerified: true,
		metadata:      meta,
	}
	c.accounts[key] = acct

	c.logger.Debug("Memory identity created", zap.String("uid", acct.uid))
	return &Identity{
		UID:           acct.uid,
		Email:         acct.email,
		EmailVerified: acct.emailVerified,
		Metadata:      meta,
	}, nil
}

func (c *MemoryClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	key := normalizeEmail(email)

	c.mu.Lock()
	defer c.mu.Unlock()

	acct, exists := c.accounts[key]
	if !exists || !common.CheckPasswordHash(password, acct.passwordHash) {
		return nil, ErrInvalidCredentials
	}

	tokenValue, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return nil, err
	}
	refreshValue, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(memoryTokenTTL)
	c.tokens[tokenValue] = memoryToken{uid: acct.uid, expiresAt: expiresAt}

	return &Session{
		UID:          acct.uid,
		Email:        acct.email,
		IDToken:      tokenValue,
		RefreshToken: refreshValue,
		ExpiresAt:    expiresAt,
	}, nil
}

func (c *MemoryClient) VerifyToken(ctx context.Context, idToken string) (*Token, error) {
	c.mu.RLock()
	tok, exists := c.tokens[idToken]
	c.mu.RUnlock()

	if !exists || time.Now().After(tok.expiresAt) {
		return nil, ErrInvalidToken
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, acct := range c.accounts {
		if acct.uid == tok.uid {
			meta := make(map[string]string, len(acct.metadata))
			for k, v := range acct.metadata {
				meta[k] = v
			}
			return &Token{
				UID:           acct.uid,
				Email:         acct.email,
				EmailVerified: acct.emailVerified,
				Metadata:      meta,
			}, nil
		}
	}
	return nil, ErrUserNotFound
}

func (c *MemoryClient) SignOut(ctx context.Context, uid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for value, tok := range c.tokens {
		if tok.uid == uid {
			delete(c.tokens, value)
		}
	}
	return nil
}
