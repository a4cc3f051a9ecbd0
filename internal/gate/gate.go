// File: internal/gate/gate.go

// Package gate turns a raw identity-provider session into a role-scoped,
// approval-gated application state. Each Gate owns one session: it reacts to
// session changes and user actions on a single goroutine, resolves the
// matching profile row, and publishes the derived State to its observer.
package gate

import (
	"context"
	"sync"
	"time"

	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/identity"
	"riverrevive_backend/internal/shared"

	"go.uber.org/zap"
)

type event interface{ isGateEvent() }

// sessionEvent carries a new session token, or nil for sign-out.
type sessionEvent struct {
	token *identity.Token
}

// fetchResult is the completion of an asynchronous profile fetch. The
// generation and UID are captured at fetch start so stale results can be
// discarded after the session has changed.
type fetchResult struct {
	gen     uint64
	uid     string
	profile *shared.Profile
	err     error
}

type refreshTick struct{}

func (sessionEvent) isGateEvent() {}
func (fetchResult) isGateEvent()  {}
func (refreshTick) isGateEvent()  {}

// Gate is the per-session approval gate. All state transitions happen on the
// goroutine running Run; SetSession and SignOut only enqueue events.
type Gate struct {
	profiles shared.ProfileService
	cfg      *config.Config
	logger   *zap.Logger

	mailbox chan event
	states  chan State

	mu      sync.RWMutex
	current State

	// Owned by the Run goroutine.
	gen   uint64
	token *identity.Token
}

// NewGate creates a gate with no active session.
func NewGate(profiles shared.ProfileService, cfg *config.Config, logger *zap.Logger) *Gate {
	return &Gate{
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
		mailbox:  make(chan event, 16),
		states:   make(chan State, 16),
		current:  Unauthenticated(),
	}
}

// States returns the stream of state transitions. It is closed when Run
// returns.
func (g *Gate) States() <-chan State {
	return g.states
}

// Current returns the most recently derived state.
func (g *Gate) Current() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// SetSession announces a new authenticated session to the gate. Any profile
// fetch still in flight for the previous session is invalidated.
func (g *Gate) SetSession(token *identity.Token) {
	g.mailbox <- sessionEvent{token: token}
}

// SignOut announces the end of the session. The gate transitions to
// Unauthenticated on the next loop turn, regardless of in-flight fetches.
func (g *Gate) SignOut() {
	g.mailbox <- sessionEvent{token: nil}
}

// Run drives the gate until ctx is cancelled. It emits the initial
// Unauthenticated state immediately, then one State per transition.
func (g *Gate) Run(ctx context.Context) {
	defer close(g.states)

	ticker := time.NewTicker(g.cfg.GateRefreshInterval)
	defer ticker.Stop()

	g.emit(ctx, g.Current())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.handleRefresh(ctx)
		case ev := <-g.mailbox:
			switch ev := ev.(type) {
			case sessionEvent:
				g.handleSession(ctx, ev.token)
			case fetchResult:
				g.handleFetchResult(ctx, ev)
			case refreshTick:
				g.handleRefresh(ctx)
			}
		}
	}
}

func (g *Gate) handleSession(ctx context.Context, token *identity.Token) {
	g.gen++
	g.token = token
	if token == nil {
		g.transition(ctx, Unauthenticated())
		return
	}
	g.transition(ctx, FetchingProfile())
	g.startFetch(ctx, token)
}

// startFetch resolves the profile off the loop goroutine, bounded by the
// configured fetch timeout. The result is tagged with the generation and UID
// so the loop can discard it if the session changed in the meantime.
func (g *Gate) startFetch(ctx context.Context, token *identity.Token) {
	gen := g.gen
	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, g.cfg.GateFetchTimeout)
		defer cancel()

		profile, _, err := g.profiles.GetOrCreateFromToken(fetchCtx, token)
		select {
		case g.mailbox <- fetchResult{gen: gen, uid: token.UID, profile: profile, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (g *Gate) handleFetchResult(ctx context.Context, r fetchResult) {
	if r.gen != g.gen || g.token == nil || r.uid != g.token.UID {
		g.logger.Debug("Discarding stale profile fetch result",
			zap.Uint64("resultGen", r.gen), zap.Uint64("currentGen", g.gen), zap.String("uid", r.uid))
		return
	}
	if r.err != nil {
		g.logger.Warn("Profile fetch failed", zap.Error(r.err), zap.String("uid", r.uid))
	}
	g.transition(ctx, Derive(r.profile, r.err))
}

// handleRefresh re-fetches the profile while the session is waiting on an
// approval decision, so an admin-side flip is picked up without a re-login.
func (g *Gate) handleRefresh(ctx context.Context) {
	if g.token == nil {
		return
	}
	if g.Current().Kind != KindAwaitingApproval {
		return
	}
	g.startFetch(ctx, g.token)
}

// transition publishes next when it differs from the current state. The
// resolved profile is kept current even when the kind does not change.
func (g *Gate) transition(ctx context.Context, next State) {
	g.mu.Lock()
	changed := next.Kind != g.current.Kind || next.Role != g.current.Role
	g.current = next
	g.mu.Unlock()

	if changed {
		g.emit(ctx, next)
	}
}

func (g *Gate) emit(ctx context.Context, s State) {
	select {
	case g.states <- s:
	case <-ctx.Done():
	}
}
