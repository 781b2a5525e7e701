package coursehub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*User

	createCalls int
	lookupErr   error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*User)}
}

func (s *memUserStore) findLocked(email string) *User {
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *memUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	return s.findLocked(email) != nil, nil
}

func (s *memUserStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.UserByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *memUserStore) UserByEmailWithPassword(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	u := s.findLocked(email)
	if u == nil {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *memUserStore) UserByID(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	out.PasswordHash = ""
	return &out, nil
}

func (s *memUserStore) PasswordHash(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return "", ErrUserNotFound
	}
	return u.PasswordHash, nil
}

func (s *memUserStore) CreateUser(_ context.Context, user *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.findLocked(user.Email) != nil {
		return nil, ErrDuplicateEmail
	}
	stored := *user
	stored.Email = strings.ToLower(stored.Email)
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	s.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *memUserStore) UpdateProfile(_ context.Context, id string, update ProfileUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if update.Email != nil {
		if other := s.findLocked(*update.Email); other != nil && other.ID != id {
			return nil, ErrDuplicateEmail
		}
		u.Email = *update.Email
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	u.UpdatedAt = time.Now().UTC()
	out := *u
	out.PasswordHash = ""
	return &out, nil
}

func (s *memUserStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *memUserStore) UpdateAvatar(_ context.Context, id string, avatar Avatar) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Avatar = avatar
	out := *u
	out.PasswordHash = ""
	return &out, nil
}

func (s *memUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type captureMailer struct {
	mu   sync.Mutex
	sent []MailMessage
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no activation mail sent")
	}
	code, ok := m.sent[len(m.sent)-1].Data["activationCode"].(string)
	if !ok || len(code) != 4 {
		t.Fatalf("unexpected activation code %v", m.sent[len(m.sent)-1].Data["activationCode"])
	}
	return code
}

type fakeAvatarStore struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
	uploadErr error
}

func (f *fakeAvatarStore) Upload(_ context.Context, source string) (Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return Avatar{}, f.uploadErr
	}
	f.uploads++
	id := fmt.Sprintf("avatars/%d", f.uploads)
	return Avatar{PublicID: id, URL: "https://cdn.test/" + id}, nil
}

func (f *fakeAvatarStore) Destroy(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	engine  *Engine
	mr      *miniredis.Miniredis
	rdb     *redis.Client
	users   *memUserStore
	mailer  *captureMailer
	avatars *fakeAvatarStore
	clock   *testClock
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Tokens.ActivationSecret = []byte("activation-secret-for-tests-0001")
	cfg.Tokens.AccessSecret = []byte("access-secret-for-tests-00000001")
	cfg.Tokens.RefreshSecret = []byte("refresh-secret-for-tests-0000001")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.SaltLength = 16
	cfg.Password.KeyLength = 16
	return cfg
}

func newTestEnv(t *testing.T, opts ...func(*Builder)) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	env := &testEnv{
		mr:      mr,
		rdb:     rdb,
		users:   newMemUserStore(),
		mailer:  &captureMailer{},
		avatars: &fakeAvatarStore{},
		clock:   &testClock{now: time.Now()},
	}

	b := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(env.users).
		WithMailer(env.mailer).
		WithAvatarStore(env.avatars).
		WithClock(env.clock.Now)
	for _, opt := range opts {
		opt(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	env.engine = engine

	t.Cleanup(func() {
		_ = engine.Close(context.Background())
		_ = rdb.Close()
		mr.Close()
	})
	return env
}

// signup registers and activates an account.
func (env *testEnv) signup(t *testing.T, name, email, password string) *User {
	t.Helper()
	ctx := context.Background()

	reg, err := env.engine.Register(ctx, RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	u, err := env.engine.Activate(ctx, reg.ActivationToken, env.mailer.lastCode(t))
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	return u
}

func (env *testEnv) login(t *testing.T, email, password string) *LoginResult {
	t.Helper()
	res, err := env.engine.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return res
}

func wrongCode(code string) string {
	if code == "1000" {
		return "1001"
	}
	return "1000"
}

func requireErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
