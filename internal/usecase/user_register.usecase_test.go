package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"user-service/internal/domain"
	"user-service/internal/repository"
	"user-service/pkg/utils"
	"user-service/pkg/xerrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProducer struct {
	mu   sync.Mutex
	msgs []*RegistrationEventMessage
	err  error
}

func (p *fakeProducer) PublishRegistration(_ context.Context, msg *RegistrationEventMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakeProducer) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

type sentMail struct {
	to, subject string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (e *fakeEmail) Send(to, subject, _ string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, sentMail{to: to, subject: subject})
	return nil
}

func (e *fakeEmail) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sent)
}

type publishedEvent struct {
	eventType string
	uid       int64
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *fakeNotifier) Publish(_ context.Context, eventType string, uid int64, _ interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{eventType: eventType, uid: uid})
	return nil
}

func (n *fakeNotifier) has(eventType string, uid int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ev := range n.events {
		if ev.eventType == eventType && ev.uid == uid {
			return true
		}
	}
	return false
}

type fixedEstimator struct{ score int }

func (e fixedEstimator) Score(string) int { return e.score }

// gateHooks parks the first registration inside the creation critical
// section so a competitor can be raced against its held locks.
type gateHooks struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateHooks() *gateHooks {
	return &gateHooks{entered: make(chan struct{}), release: make(chan struct{})}
}

func (h *gateHooks) Transform(_ context.Context, _ string, ev *HookEvent) (*HookEvent, error) {
	h.once.Do(func() { close(h.entered) })
	<-h.release
	return ev, nil
}

func (h *gateHooks) Notify(string, *HookEvent) {}

type testEnv struct {
	uc       *UserUsecase
	mr       *miniredis.Miniredis
	users    *repository.UserRepository
	locks    *repository.LockRepository
	groups   *repository.GroupRepository
	producer *fakeProducer
	email    *fakeEmail
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T, hooks HookRunner) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := &testEnv{
		mr:       mr,
		users:    repository.NewUserRepository(rdb),
		locks:    repository.NewLockRepository(rdb),
		groups:   repository.NewGroupRepository(rdb),
		producer: &fakeProducer{},
		email:    &fakeEmail{},
		notifier: &fakeNotifier{},
	}
	env.uc = NewUserUsecase(
		env.users,
		env.locks,
		env.groups,
		hooks,
		env.producer,
		env.email,
		env.notifier,
		fixedEstimator{score: 4},
		Policy{MinPasswordLength: 8, MinPasswordStrength: 1, DefaultDigestFreq: "off"},
		zap.NewNop(),
	)
	return env
}

func TestRegisterTrimsAndAppliesDefaults(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{
		Username: "Ada ",
		Email:    "ada@example.com",
		Password: "Str0ng!Passw0rd#2024",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), uid)

	u, err := env.users.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "Ada", u.Username)
	require.Equal(t, "ada", u.Userslug)
	require.Equal(t, domain.DefaultAccountType, u.AccountType)
	require.Equal(t, domain.StatusOnline, u.Status)
	require.NotZero(t, u.JoinDate)
	require.Equal(t, u.JoinDate, u.LastOnline)
	require.Equal(t, "bcrypt", env.mr.HGet("user:1", "password:algo"))
	require.True(t, strings.HasPrefix(env.mr.HGet("user:1", "password"), "$2"))
	require.True(t, utils.CheckPasswordHash("Str0ng!Passw0rd#2024", env.mr.HGet("user:1", "password")))
	require.Equal(t, "off", env.mr.HGet("user:1:settings", "dailyDigestFreq"))
}

func TestRegisterFansOutSideEffects(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{
		Username: "Grace",
		Email:    "grace@example.com",
		Fullname: "Grace Hopper",
	})
	require.NoError(t, err)

	got, err := env.users.GetUIDByUsername(ctx, "Grace")
	require.NoError(t, err)
	require.Equal(t, uid, got)

	count, err := env.users.UserCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	for _, group := range []string{repository.GroupRegisteredUsers, repository.GroupUnverifiedUsers} {
		member, err := env.groups.IsMember(ctx, group, uid)
		require.NoError(t, err)
		require.True(t, member, "expected membership in %s", group)
	}

	require.Equal(t, 1, env.producer.published())
	require.True(t, env.notifier.has("welcome", uid))
	require.True(t, env.mr.Exists("fullname:sorted"))

	available, err := env.users.IsEmailAvailable(ctx, "grace@example.com")
	require.NoError(t, err)
	require.False(t, available)
}

func TestRegisterAssignsMonotonicUIDs(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	var last int64
	for _, name := range []string{"ada", "grace", "katherine"} {
		uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: name})
		require.NoError(t, err)
		require.Greater(t, uid, last)
		last = uid
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	// Email shape is checked before the username.
	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "x", Email: "not-an-email"})
	require.ErrorIs(t, err, xerrors.ErrInvalidEmail)

	_, err = env.uc.Register(ctx, &domain.RegistrationRequest{Username: "x"})
	require.ErrorIs(t, err, xerrors.ErrInvalidUsername)

	_, err = env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada", Password: "short"})
	require.ErrorIs(t, err, xerrors.ErrPasswordTooShort)
}

func TestRegisterRejectsTakenEmailBeforeLocking(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = env.uc.Register(ctx, &domain.RegistrationRequest{Username: "grace", Email: "ada@example.com"})
	require.ErrorIs(t, err, xerrors.ErrEmailTaken)
}

func TestRegisterNormalizesAccountTypeAlias(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{
		Username:         "ada",
		AccountTypeAlias: " teacher ",
	})
	require.NoError(t, err)

	u, err := env.users.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, "teacher", u.AccountType)
}

func TestRegisterRenamesOnUsernameCollision(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada"})
	require.NoError(t, err)

	// A sequential duplicate is renamed, not rejected.
	uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada"})
	require.NoError(t, err)

	u, err := env.users.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, "ada 0", u.Username)
	require.Equal(t, "ada-0", u.Userslug)
	require.True(t, env.notifier.has("username_changed", uid))
}

func TestRegisterConsentFlagsStoredAsInts(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{
		Username:    "ada",
		GDPRConsent: true,
		AcceptTos:   true,
	})
	require.NoError(t, err)

	u, err := env.users.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, 1, u.GDPRConsent)
	require.Equal(t, 1, u.AcceptTos)
}

func TestRegisterHonorsExplicitTimestamp(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{
		Username:  "ada",
		Timestamp: 1600000000000,
	})
	require.NoError(t, err)

	u, err := env.users.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, int64(1600000000000), u.JoinDate)
}

func TestBootstrapAdminEmailConfirmedWithoutMail(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "admin", Email: "admin@example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(1), uid)

	u, err := env.users.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, 1, u.EmailConfirmed)
	require.Zero(t, env.email.count())

	// The second account gets a validation mail attempt instead.
	uid, err = env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(2), uid)

	require.Eventually(t, func() bool { return env.email.count() == 1 },
		2*time.Second, 10*time.Millisecond)

	u, err = env.users.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	require.Zero(t, u.EmailConfirmed)
}

func TestValidationEmailFailureIsBestEffort(t *testing.T) {
	env := newTestEnv(t, nil)
	env.email.err = errors.New("smtp unreachable")
	ctx := context.Background()

	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "admin", Email: "admin@example.com"})
	require.NoError(t, err)

	// Delivery fails, registration still succeeds.
	uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(2), uid)
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	hooks := newGateHooks()
	env := newTestEnv(t, hooks)
	ctx := context.Background()

	result := make(chan error, 1)
	go func() {
		_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada", Email: "first@example.com"})
		result <- err
	}()
	<-hooks.entered

	// The competitor hits the held username lock and loses immediately.
	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada", Email: "second@example.com"})
	require.ErrorIs(t, err, xerrors.ErrUsernameTaken)

	close(hooks.release)
	require.NoError(t, <-result)

	uid, err := env.users.GetUIDByUsername(ctx, "ada")
	require.NoError(t, err)
	require.Equal(t, int64(1), uid)
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	hooks := newGateHooks()
	env := newTestEnv(t, hooks)
	ctx := context.Background()

	result := make(chan error, 1)
	go func() {
		_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada", Email: "shared@example.com"})
		result <- err
	}()
	<-hooks.entered

	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "grace", Email: "shared@example.com"})
	require.ErrorIs(t, err, xerrors.ErrEmailTaken)

	close(hooks.release)
	require.NoError(t, <-result)
}

func TestRegisterConcurrentSameEmailDifferentCase(t *testing.T) {
	hooks := newGateHooks()
	env := newTestEnv(t, hooks)
	ctx := context.Background()

	result := make(chan error, 1)
	go func() {
		_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada", Email: "Shared@Example.com"})
		result <- err
	}()
	<-hooks.entered

	// Case variants of one email contend for the same lock.
	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "grace", Email: "shared@example.com"})
	require.ErrorIs(t, err, xerrors.ErrEmailTaken)

	close(hooks.release)
	require.NoError(t, <-result)
}

func TestRegisterReleasesLocksOnSuccess(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	for _, value := range []string{"Ada", "ada@example.com"} {
		locked, err := env.locks.IsLocked(ctx, value)
		require.NoError(t, err)
		require.False(t, locked, "lock for %q must not survive the registration", value)
	}
}

func TestRegisterDownstreamFailureReleasesLocks(t *testing.T) {
	env := newTestEnv(t, nil)
	env.producer.err = errors.New("kafka down")
	ctx := context.Background()

	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada", Email: "ada@example.com"})
	require.Error(t, err)

	// Known gap: the primary record survives the failed fan-out.
	u, err := env.users.GetUserByUID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, u)

	for _, value := range []string{"ada", "ada@example.com"} {
		locked, lockErr := env.locks.IsLocked(ctx, value)
		require.NoError(t, lockErr)
		require.False(t, locked)
	}

	// The username stays claimable after the failure.
	env.producer.err = nil
	_, err = env.uc.Register(ctx, &domain.RegistrationRequest{Username: "grace", Email: "grace@example.com"})
	require.NoError(t, err)
}

type upgradingHooks struct{}

func (upgradingHooks) Transform(_ context.Context, _ string, ev *HookEvent) (*HookEvent, error) {
	user := *ev.User
	user.Fullname = "Set By Hook"
	return &HookEvent{User: &user, Data: ev.Data}, nil
}

func (upgradingHooks) Notify(string, *HookEvent) {}

func TestBeforeCreateHookReplacesRecord(t *testing.T) {
	env := newTestEnv(t, upgradingHooks{})
	ctx := context.Background()

	uid, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada"})
	require.NoError(t, err)

	u, err := env.users.GetUserByUID(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, "Set By Hook", u.Fullname)
}

type failingHooks struct{}

func (failingHooks) Transform(context.Context, string, *HookEvent) (*HookEvent, error) {
	return nil, errors.New("plugin exploded")
}

func (failingHooks) Notify(string, *HookEvent) {}

func TestBeforeCreateHookFailureAbortsBeforeUIDAssignment(t *testing.T) {
	env := newTestEnv(t, failingHooks{})
	ctx := context.Background()

	_, err := env.uc.Register(ctx, &domain.RegistrationRequest{Username: "ada"})
	require.Error(t, err)

	// No identity was burned and the lock is gone.
	require.False(t, env.mr.Exists("global:nextUid"))
	locked, err := env.locks.IsLocked(ctx, "ada")
	require.NoError(t, err)
	require.False(t, locked)
}
