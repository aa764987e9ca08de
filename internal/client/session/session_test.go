package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureshare/internal/client/models"
	"secureshare/internal/common"
	"secureshare/internal/cryptox"
	"secureshare/internal/rbac"
)

// ---- fake clock ----

type fakeTimer struct {
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	stoppedIt := !t.fired && !t.stopped
	t.stopped = true
	return stoppedIt
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every armed timer that has not been stopped.
func (c *fakeClock) fire() {
	c.mu.Lock()
	pending := append([]*fakeTimer(nil), c.timers...)
	c.timers = nil
	c.mu.Unlock()

	for _, t := range pending {
		if !t.stopped {
			t.fired = true
			t.fn()
		}
	}
}

func (c *fakeClock) armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// ---- fake client ----

type fakeClient struct {
	mu    sync.Mutex
	token string

	LoginRet string
	LoginErr error

	VerifyRet *models.Identity
	VerifyErr error

	LogoutErr   error
	LogoutCalls int

	LastLoginEmail    string
	LastLoginPassword []byte
	LastVerifyID      string
	LastVerifyCode    string
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Register(ctx context.Context, name, email string, password []byte) error {
	return nil
}

func (f *fakeClient) Login(ctx context.Context, email string, password []byte) (string, error) {
	f.LastLoginEmail = email
	f.LastLoginPassword = append([]byte(nil), password...)
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) VerifyLogin(ctx context.Context, verificationID, code string) (*models.Identity, error) {
	f.LastVerifyID = verificationID
	f.LastVerifyCode = code
	if f.VerifyErr != nil {
		return nil, f.VerifyErr
	}
	f.SetToken("tok-" + code)
	cp := *f.VerifyRet
	return &cp, nil
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.LogoutCalls++
	f.SetToken("")
	return f.LogoutErr
}

func (f *fakeClient) ListFiles(ctx context.Context) ([]models.FileRecord, error) { return nil, nil }

func (f *fakeClient) Upload(ctx context.Context, env *cryptox.Envelope, onProgress func(int)) (*models.FileRecord, error) {
	return nil, nil
}

func (f *fakeClient) Download(ctx context.Context, fileID string) (*cryptox.Envelope, error) {
	return nil, nil
}

func (f *fakeClient) DeleteFile(ctx context.Context, fileID string) error { return nil }

func (f *fakeClient) CreateShareGrant(ctx context.Context, fileID, granteeID string, perm models.GrantPermission, ttl int) (*models.ShareGrant, error) {
	return nil, nil
}

func (f *fakeClient) ResolveShareLink(ctx context.Context, token string) (*models.SharedFile, error) {
	return nil, nil
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]models.Identity, error) { return nil, nil }
func (f *fakeClient) DeleteUser(ctx context.Context, userID string) error      { return nil }

func (f *fakeClient) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// ---- in-memory store ----

type memStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

func (s *memStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	s.snap = &cp
	return nil
}

func (s *memStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, nil
	}
	cp := *s.snap
	return &cp, nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}

// ---- helpers ----

func aliceIdentity() *models.Identity {
	return &models.Identity{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: rbac.RoleUser}
}

func newTestManager(client *fakeClient) (*Manager, *fakeClock, *memStore) {
	clock := newFakeClock()
	store := &memStore{}
	return NewManager(client, store, clock, nil), clock, store
}

// ---- TESTS ----

func TestSubmitCredentials_LocalValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty password", "alice@example.com", "", common.ErrEmptyPassword},
		{"malformed email", "not-an-email", "pw", common.ErrMalformedEmail},
		{"empty email", "", "pw", common.ErrMalformedEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{LoginRet: "ver-1"}
			m, _, _ := newTestManager(client)

			err := m.SubmitCredentials(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, StateAnonymous, m.State())
			// no network call was made
			assert.Empty(t, client.LastLoginEmail)
		})
	}
}

func TestSubmitCredentials_SanitizesEmail(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-1"}
	m, _, _ := newTestManager(client)

	err := m.SubmitCredentials(context.Background(), "  alice@example.com  ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", client.LastLoginEmail)
}

func TestFullTransitionSequence(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-1", VerifyRet: aliceIdentity()}
	m, clock, store := newTestManager(client)
	ctx := context.Background()

	// valid credentials -> pending-verification with a verification id
	require.NoError(t, m.SubmitCredentials(ctx, "alice@example.com", "pw"))
	assert.Equal(t, StatePendingVerification, m.State())
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, 1, clock.armed())

	// wrong code -> still pending, countdown untouched
	client.VerifyErr = common.ErrInvalidCode
	err := m.SubmitVerificationCode(ctx, "000000")
	assert.ErrorIs(t, err, common.ErrInvalidCode)
	assert.Equal(t, StatePendingVerification, m.State())
	assert.Equal(t, 1, clock.armed())
	assert.NotEmpty(t, m.LastError())

	// correct code -> authenticated, permissions match the role table
	client.VerifyErr = nil
	require.NoError(t, m.SubmitVerificationCode(ctx, "123456"))
	assert.Equal(t, StateAuthenticated, m.State())
	assert.True(t, m.IsAuthenticated())
	require.NotNil(t, m.Identity())
	assert.Equal(t, "u1", m.Identity().ID)
	assert.Equal(t, rbac.Permissions(rbac.RoleUser), m.Permissions())
	assert.Equal(t, "ver-1", client.LastVerifyID)

	// countdown cancelled, snapshot persisted without key material
	assert.Equal(t, 0, clock.armed())
	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "user", snap.Role)
}

func TestCountdownExpiry_DiscardsVerificationID(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-1", VerifyRet: aliceIdentity()}
	m, clock, _ := newTestManager(client)
	ctx := context.Background()

	require.NoError(t, m.SubmitCredentials(ctx, "alice@example.com", "pw"))
	clock.fire()

	assert.Equal(t, StateAnonymous, m.State())
	assert.Equal(t, common.ErrVerificationExpired.Error(), m.LastError())

	// the identifier must not be reusable after expiry
	err := m.SubmitVerificationCode(ctx, "123456")
	assert.ErrorIs(t, err, common.ErrNotPendingVerify)
}

func TestSubmitVerificationCode_WithoutPending(t *testing.T) {
	m, _, _ := newTestManager(&fakeClient{})
	err := m.SubmitVerificationCode(context.Background(), "123456")
	assert.ErrorIs(t, err, common.ErrNotPendingVerify)
}

func TestSubmitCredentials_WhilePending(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-1"}
	m, _, _ := newTestManager(client)
	ctx := context.Background()

	require.NoError(t, m.SubmitCredentials(ctx, "alice@example.com", "pw"))
	err := m.SubmitCredentials(ctx, "alice@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrVerificationPending)
}

func TestServerSideVerificationExpiry(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-1", VerifyErr: common.ErrVerificationExpired}
	m, clock, _ := newTestManager(client)
	ctx := context.Background()

	require.NoError(t, m.SubmitCredentials(ctx, "alice@example.com", "pw"))
	err := m.SubmitVerificationCode(ctx, "123456")
	assert.ErrorIs(t, err, common.ErrVerificationExpired)
	assert.Equal(t, StateAnonymous, m.State())
	assert.Equal(t, 0, clock.armed())
}

func TestExpireSession_Idempotent(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-1", VerifyRet: aliceIdentity()}
	m, _, store := newTestManager(client)
	ctx := context.Background()

	require.NoError(t, m.SubmitCredentials(ctx, "alice@example.com", "pw"))
	require.NoError(t, m.SubmitVerificationCode(ctx, "123456"))
	require.True(t, m.IsAuthenticated())

	m.ExpireSession()
	assert.Equal(t, StateExpired, m.State())
	assert.Nil(t, m.Identity())
	assert.Empty(t, m.Roles())
	assert.Empty(t, m.Permissions())
	assert.Equal(t, expiredMessage, m.LastError())
	assert.Empty(t, client.Token())

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	// a second expiry (e.g. a 401 racing a logout) converges, no change
	m.ExpireSession()
	assert.Equal(t, StateExpired, m.State())
}

func TestExpireSession_FromAnonymousIsNoop(t *testing.T) {
	m, _, _ := newTestManager(&fakeClient{})
	m.ExpireSession()
	assert.Equal(t, StateAnonymous, m.State())
	assert.Empty(t, m.LastError())
}

func TestExpireSession_CancelsCountdown(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-1"}
	m, clock, _ := newTestManager(client)

	require.NoError(t, m.SubmitCredentials(context.Background(), "alice@example.com", "pw"))
	require.Equal(t, 1, clock.armed())

	m.ExpireSession()
	assert.Equal(t, 0, clock.armed())
}

func TestLogout_BestEffort(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-1", VerifyRet: aliceIdentity(), LogoutErr: common.ErrUnavailable}
	m, _, _ := newTestManager(client)
	ctx := context.Background()

	require.NoError(t, m.SubmitCredentials(ctx, "alice@example.com", "pw"))
	require.NoError(t, m.SubmitVerificationCode(ctx, "123456"))

	// server-side invalidation fails; the client proceeds regardless
	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, 1, client.LogoutCalls)
	assert.Equal(t, StateExpired, m.State())
	assert.False(t, m.IsAuthenticated())
}

func TestLoginAgainAfterExpiry(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-2", VerifyRet: aliceIdentity()}
	m, _, _ := newTestManager(client)
	ctx := context.Background()

	require.NoError(t, m.SubmitCredentials(ctx, "alice@example.com", "pw"))
	require.NoError(t, m.SubmitVerificationCode(ctx, "123456"))
	m.ExpireSession()

	// expired is a reset point, not a dead end
	require.NoError(t, m.SubmitCredentials(ctx, "alice@example.com", "pw"))
	assert.Equal(t, StatePendingVerification, m.State())
}

func TestRestore_RehydratesAuthenticatedSession(t *testing.T) {
	client := &fakeClient{LoginRet: "ver-1", VerifyRet: aliceIdentity()}
	m, _, store := newTestManager(client)
	ctx := context.Background()

	require.NoError(t, m.SubmitCredentials(ctx, "alice@example.com", "pw"))
	require.NoError(t, m.SubmitVerificationCode(ctx, "123456"))
	token := client.Token()
	require.NotEmpty(t, token)

	// a fresh manager over the same store picks the session back up
	client2 := &fakeClient{}
	m2 := NewManager(client2, store, newFakeClock(), nil)
	require.NoError(t, m2.Restore(ctx))

	assert.True(t, m2.IsAuthenticated())
	require.NotNil(t, m2.Identity())
	assert.Equal(t, "u1", m2.Identity().ID)
	assert.Equal(t, rbac.Permissions(rbac.RoleUser), m2.Permissions())
	assert.Equal(t, token, client2.Token())
}

func TestRestore_EmptySlot(t *testing.T) {
	m, _, _ := newTestManager(&fakeClient{})
	require.NoError(t, m.Restore(context.Background()))
	assert.Equal(t, StateAnonymous, m.State())
}

func TestBadCredentials_SurfacedAndStaysAnonymous(t *testing.T) {
	client := &fakeClient{LoginErr: common.ErrUnauthorized}
	m, _, _ := newTestManager(client)

	err := m.SubmitCredentials(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, StateAnonymous, m.State())
	assert.NotEmpty(t, m.LastError())
}
