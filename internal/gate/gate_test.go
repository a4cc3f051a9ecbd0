// File: internal/gate/gate_test.go
package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"riverrevive_backend/internal/common"
	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/identity"
	"riverrevive_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProfileService is a controllable in-memory ProfileService. Fetch
// latency per UID is configurable so stale-fetch and logout races can be
// exercised deterministically.
type fakeProfileService struct {
	mu       sync.Mutex
	profiles map[string]*shared.Profile
	delays   map[string]time.Duration
	errs     map[string]error
	creates  int
}

func newFakeProfileService() *fakeProfileService {
	return &fakeProfileService{
		profiles: make(map[string]*shared.Profile),
		delays:   make(map[string]time.Duration),
		errs:     make(map[string]error),
	}
}

func (f *fakeProfileService) put(uid string, approved bool, status, role string) *shared.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &shared.Profile{
		ID:          uuid.New(),
		ProviderUID: uid,
		Role:        role,
		Approved:    approved,
		Status:      status,
	}
	f.profiles[uid] = p
	return p
}

func (f *fakeProfileService) GetOrCreateFromToken(ctx context.Context, token *identity.Token) (*shared.Profile, bool, error) {
	f.mu.Lock()
	delay := f.delays[token.UID]
	fetchErr := f.errs[token.UID]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
	if fetchErr != nil {
		return nil, false, fetchErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[token.UID]; ok {
		snapshot := *p
		return &snapshot, false, nil
	}
	f.creates++
	p := &shared.Profile{
		ID:          uuid.New(),
		ProviderUID: token.UID,
		Role:        common.RoleCitizen,
		Approved:    false,
		Status:      shared.StatusPending,
	}
	f.profiles[token.UID] = p
	snapshot := *p
	return &snapshot, true, nil
}

func (f *fakeProfileService) CreateForSignup(ctx context.Context, ident *identity.Identity, role string, fields shared.SignupFields) (*shared.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	p := &shared.Profile{
		ID:          uuid.New(),
		ProviderUID: ident.UID,
		Role:        role,
		Approved:    false,
		Status:      shared.StatusPending,
	}
	f.profiles[ident.UID] = p
	snapshot := *p
	return &snapshot, nil
}

func (f *fakeProfileService) GetByProviderUID(ctx context.Context, providerUID string) (*shared.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[providerUID]; ok {
		snapshot := *p
		return &snapshot, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeProfileService) GetByID(ctx context.Context, id uuid.UUID) (*shared.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ID == id {
			snapshot := *p
			return &snapshot, nil
		}
	}
	return nil, common.ErrNotFound
}

func testGateConfig() *config.Config {
	return &config.Config{
		ApprovalPolicy:      config.ApprovalPolicyManual,
		GateFetchTimeout:    2 * time.Second,
		GateRefreshInterval: 30 * time.Millisecond,
	}
}

func waitForKind(t *testing.T, states <-chan State, want Kind) State {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case s, ok := <-states:
			require.True(t, ok, "state stream closed before reaching %s", want)
			if s.Kind == want {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func TestDerive(t *testing.T) {
	t.Run("fetch error is profile missing, never a default role", func(t *testing.T) {
		s := Derive(nil, errors.New("connection refused"))
		assert.Equal(t, KindProfileMissing, s.Kind)
		assert.Empty(t, s.Role)
	})

	t.Run("nil profile without error is profile missing", func(t *testing.T) {
		s := Derive(nil, nil)
		assert.Equal(t, KindProfileMissing, s.Kind)
	})

	t.Run("unapproved flag is never authorized regardless of status", func(t *testing.T) {
		for _, status := range []string{shared.StatusPending, shared.StatusApproved, shared.StatusRejected} {
			p := &shared.Profile{Role: common.RoleCitizen, Approved: false, Status: status}
			s := Derive(p, nil)
			assert.Equal(t, KindAwaitingApproval, s.Kind, "status=%s", status)
		}
	})

	t.Run("non-approved status is never authorized regardless of flag", func(t *testing.T) {
		for _, status := range []string{shared.StatusPending, shared.StatusRejected} {
			p := &shared.Profile{Role: common.RoleCollector, Approved: true, Status: status}
			s := Derive(p, nil)
			assert.Equal(t, KindAwaitingApproval, s.Kind, "status=%s", status)
		}
	})

	t.Run("fully approved profile is authorized with its role", func(t *testing.T) {
		p := &shared.Profile{Role: common.RoleAdmin, Approved: true, Status: shared.StatusApproved}
		s := Derive(p, nil)
		assert.Equal(t, KindAuthorized, s.Kind)
		assert.Equal(t, common.RoleAdmin, s.Role)
	})
}

func TestGateResolvesApprovedProfile(t *testing.T) {
	profiles := newFakeProfileService()
	profiles.put("uid-approved", true, shared.StatusApproved, common.RoleCollector)

	g := NewGate(profiles, testGateConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	waitForKind(t, g.States(), KindUnauthenticated)
	g.SetSession(&identity.Token{UID: "uid-approved"})
	waitForKind(t, g.States(), KindFetchingProfile)
	s := waitForKind(t, g.States(), KindAuthorized)
	assert.Equal(t, common.RoleCollector, s.Role)
}

func TestGateLogoutShortCircuitsInFlightFetch(t *testing.T) {
	profiles := newFakeProfileService()
	profiles.put("uid-slow", true, shared.StatusApproved, common.RoleCitizen)
	profiles.delays["uid-slow"] = 200 * time.Millisecond

	g := NewGate(profiles, testGateConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	waitForKind(t, g.States(), KindUnauthenticated)
	g.SetSession(&identity.Token{UID: "uid-slow"})
	waitForKind(t, g.States(), KindFetchingProfile)

	g.SignOut()
	waitForKind(t, g.States(), KindUnauthenticated)

	// The slow fetch resolves after logout; its result must be discarded.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, KindUnauthenticated, g.Current().Kind)
}

func TestGateDiscardsStaleFetchAfterSessionSwitch(t *testing.T) {
	profiles := newFakeProfileService()
	profiles.put("uid-a", true, shared.StatusApproved, common.RoleAdmin)
	profiles.put("uid-b", false, shared.StatusPending, common.RoleCitizen)
	profiles.delays["uid-a"] = 200 * time.Millisecond

	g := NewGate(profiles, testGateConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	waitForKind(t, g.States(), KindUnauthenticated)
	g.SetSession(&identity.Token{UID: "uid-a"})
	waitForKind(t, g.States(), KindFetchingProfile)

	// Switch to B while A's fetch is still in flight.
	g.SetSession(&identity.Token{UID: "uid-b"})
	waitForKind(t, g.States(), KindAwaitingApproval)

	// A's fetch resolving late must not flip B's state to Authorized.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, KindAwaitingApproval, g.Current().Kind)
	assert.Empty(t, g.Current().Role)
}

func TestGateDetectsApprovalFlip(t *testing.T) {
	profiles := newFakeProfileService()
	profiles.put("uid-pending", false, shared.StatusPending, common.RoleCitizen)

	g := NewGate(profiles, testGateConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	waitForKind(t, g.States(), KindUnauthenticated)
	g.SetSession(&identity.Token{UID: "uid-pending"})
	waitForKind(t, g.States(), KindAwaitingApproval)

	// Admin-side flip: the periodic re-fetch should pick it up.
	profiles.mu.Lock()
	profiles.profiles["uid-pending"].Approved = true
	profiles.profiles["uid-pending"].Status = shared.StatusApproved
	profiles.mu.Unlock()

	s := waitForKind(t, g.States(), KindAuthorized)
	assert.Equal(t, common.RoleCitizen, s.Role)
}

func TestGateReportsFetchFailureAsProfileMissing(t *testing.T) {
	profiles := newFakeProfileService()
	profiles.errs["uid-broken"] = errors.New("store unavailable")

	g := NewGate(profiles, testGateConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	waitForKind(t, g.States(), KindUnauthenticated)
	g.SetSession(&identity.Token{UID: "uid-broken"})
	s := waitForKind(t, g.States(), KindProfileMissing)
	assert.Contains(t, s.Reason, "store unavailable")
	assert.Empty(t, s.Role)
}

func TestServiceSignInWrongPassword(t *testing.T) {
	cfg := testGateConfig()
	idClient := identity.NewMemoryClient(zap.NewNop())
	profiles := newFakeProfileService()
	svc := NewService(idClient, profiles, cfg, zap.NewNop())

	_, err := idClient.SignUp(context.Background(), "a@x.com", "secret123", map[string]string{
		identity.MetadataRole: common.RoleCitizen,
	})
	require.NoError(t, err)

	_, err = svc.SignIn(context.Background(), SignInRequest{Email: "a@x.com", Password: "wrong-password"})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrInvalidCredentials.Code, apiErr.Code)
}

func TestServiceSignUpThenSignInYieldsAwaitingApproval(t *testing.T) {
	cfg := testGateConfig()
	idClient := identity.NewMemoryClient(zap.NewNop())
	profiles := newFakeProfileService()
	svc := NewService(idClient, profiles, cfg, zap.NewNop())

	profile, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "a@x.com",
		Password: "secret123",
		Role:     common.RoleCitizen,
		FullName: "Abe Tester",
	})
	require.NoError(t, err)
	assert.False(t, profile.Approved)
	assert.Equal(t, shared.StatusPending, profile.Status)
	assert.Equal(t, 1, profiles.creates)

	result, err := svc.SignIn(context.Background(), SignInRequest{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, KindAwaitingApproval, result.State.Kind)
	// Signup already created the row; sign-in must not create a second one.
	assert.Equal(t, 1, profiles.creates)
}
