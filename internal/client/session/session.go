// Package session drives the authenticated-session state machine:
// login → second-factor verification → authenticated, with transparent
// expiry handling.
//
// The Manager is an explicitly owned, injected object; there is no package
// global. Exactly one Manager should exist per client process, and every
// component that needs identity or permissions takes it as a dependency.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"secureshare/internal/client/api"
	"secureshare/internal/client/models"
	"secureshare/internal/common"
	"secureshare/internal/logging"
	"secureshare/internal/rbac"
)

// State is the position of the session machine.
type State int

const (
	StateAnonymous State = iota
	StatePendingVerification
	StateAuthenticated
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StatePendingVerification:
		return "pending-verification"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// expiredMessage is the user-visible note set on session expiry.
const expiredMessage = "Session expired. Please login again."

// Manager owns the single live session. All state mutation goes through
// its transition methods; IsAuthenticated is true iff Identity is non-nil
// iff the state is StateAuthenticated.
type Manager struct {
	client api.Client
	store  Store
	clock  Clock
	log    logging.Logger

	mu             sync.Mutex
	state          State
	identity       *models.Identity
	roles          []rbac.Role
	perms          []rbac.Permission
	verificationID string
	countdown      Timer
	loading        bool
	lastError      string
}

// NewManager constructs a session manager in the anonymous state.
func NewManager(client api.Client, store Store, clock Clock, log logging.Logger) *Manager {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Manager{
		client: client,
		store:  store,
		clock:  clock,
		log:    log,
		state:  StateAnonymous,
	}
}

// ---- read access ----

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated
}

// Identity returns a copy of the session identity, or nil when anonymous.
func (m *Manager) Identity() *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	cp := *m.identity
	return &cp
}

func (m *Manager) Roles() []rbac.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]rbac.Role(nil), m.roles...)
}

func (m *Manager) Permissions() []rbac.Permission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]rbac.Permission(nil), m.perms...)
}

func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// LastError is the most recent user-visible error message, if any.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// ---- transitions ----

// SubmitCredentials validates and sanitizes the login input locally, then
// submits it. On acceptance the machine moves to pending-verification and
// a countdown of common.VerificationTTLSeconds starts; when it expires
// without a successful verification the machine returns to anonymous and
// the verification identifier is discarded.
func (m *Manager) SubmitCredentials(ctx context.Context, email, password string) error {
	email, err := validateCredentials(email, password)
	if err != nil {
		m.setError(err.Error())
		return err
	}

	m.mu.Lock()
	switch m.state {
	case StateAuthenticated:
		m.mu.Unlock()
		return common.ErrAlreadyAuthenticated
	case StatePendingVerification:
		m.mu.Unlock()
		return common.ErrVerificationPending
	}
	m.loading = true
	m.lastError = ""
	m.mu.Unlock()

	verificationID, err := m.client.Login(ctx, email, []byte(password))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false

	if err != nil {
		m.lastError = err.Error()
		return err
	}

	m.stopCountdownLocked()
	m.state = StatePendingVerification
	m.verificationID = verificationID
	m.countdown = m.clock.AfterFunc(common.VerificationTTLSeconds*time.Second, func() {
		m.onCountdownExpired(verificationID)
	})

	return nil
}

// onCountdownExpired fires from the clock goroutine when the verification
// window closes. It is a no-op unless the machine is still waiting on the
// same verification attempt.
func (m *Manager) onCountdownExpired(verificationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePendingVerification || m.verificationID != verificationID {
		return
	}

	m.verificationID = ""
	m.countdown = nil
	m.state = StateAnonymous
	m.lastError = common.ErrVerificationExpired.Error()
	if m.log != nil {
		m.log.Warn(context.Background(), "verification window expired")
	}
}

// SubmitVerificationCode completes the second-factor step. On success the
// identity is populated, roles and permissions are computed from the
// returned role, and the machine transitions to authenticated. A wrong
// code keeps the machine in pending-verification and does not reset the
// countdown.
func (m *Manager) SubmitVerificationCode(ctx context.Context, code string) error {
	m.mu.Lock()
	if m.state != StatePendingVerification {
		m.mu.Unlock()
		return common.ErrNotPendingVerify
	}
	verificationID := m.verificationID
	m.loading = true
	m.mu.Unlock()

	identity, err := m.client.VerifyLogin(ctx, verificationID, code)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false

	if err != nil {
		m.lastError = err.Error()
		if errors.Is(err, common.ErrVerificationExpired) {
			// server-side expiry: same outcome as the local countdown
			m.stopCountdownLocked()
			m.verificationID = ""
			m.state = StateAnonymous
		}
		return err
	}

	// a success racing the local countdown loses; the identifier is gone
	if m.state != StatePendingVerification || m.verificationID != verificationID {
		return common.ErrVerificationExpired
	}

	m.stopCountdownLocked()
	m.verificationID = ""
	m.identity = identity
	m.roles = []rbac.Role{identity.Role}
	m.perms = rbac.Permissions(identity.Role)
	m.state = StateAuthenticated
	m.lastError = ""

	if m.store != nil {
		if err := m.store.Save(ctx, snapshotFrom(identity, m.client.Token())); err != nil && m.log != nil {
			m.log.Error(ctx, "persisting session snapshot", "error", err)
		}
	}
	return nil
}

// ExpireSession clears the session from any state. It is invocable at any
// time (the API client calls it on every 401) and idempotent once the
// machine is in anonymous or expired, so concurrent expiry and logout
// converge to the same terminal state.
func (m *Manager) ExpireSession() {
	m.mu.Lock()

	if m.state == StateAnonymous || m.state == StateExpired {
		m.mu.Unlock()
		return
	}

	m.stopCountdownLocked()
	m.verificationID = ""
	m.identity = nil
	m.roles = nil
	m.perms = nil
	m.state = StateExpired
	m.lastError = expiredMessage
	m.mu.Unlock()

	m.client.SetToken("")
	if m.store != nil {
		if err := m.store.Clear(context.Background()); err != nil && m.log != nil {
			m.log.Error(context.Background(), "clearing session snapshot", "error", err)
		}
	}
}

// Logout requests server-side invalidation (best-effort; the client
// proceeds regardless of the outcome) and then expires the session.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.client.Logout(ctx); err != nil && m.log != nil {
		m.log.Warn(ctx, "server-side logout failed", "error", err)
	}
	m.ExpireSession()
	return nil
}

// Restore rehydrates an authenticated session from the durable snapshot,
// if one exists. It never restores cryptographic key material because none
// is ever persisted.
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	snap, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if snap == nil || !snap.IsAuthenticated {
		return nil
	}

	identity, err := identityFrom(snap)
	if err != nil {
		// a corrupt slot must not brick the client; drop it
		_ = m.store.Clear(ctx)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAnonymous {
		return nil
	}

	m.identity = identity
	m.roles = []rbac.Role{identity.Role}
	m.perms = rbac.Permissions(identity.Role)
	m.state = StateAuthenticated
	m.client.SetToken(snap.Token)
	return nil
}

// stopCountdownLocked cancels a pending verification timer. Every exit
// path from pending-verification goes through here so a stale timer never
// leaks into a later state. Callers must hold m.mu.
func (m *Manager) stopCountdownLocked() {
	if m.countdown != nil {
		m.countdown.Stop()
		m.countdown = nil
	}
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = msg
}
