package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcdev12/sushirush/go/internal/models"
)

type fakeRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	hashes   map[uuid.UUID]string
	sessions map[uuid.UUID]*Session
	stats    map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[uuid.UUID]*models.User),
		hashes:   make(map[uuid.UUID]string),
		sessions: make(map[uuid.UUID]*Session),
		stats:    make(map[uuid.UUID]bool),
	}
}

func (f *fakeRepo) CreateUser(ctx context.Context, user models.User, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, ErrEmailTaken
		}
	}
	stored := user
	f.users[user.ID] = &stored
	f.hashes[user.ID] = passwordHash
	f.stats[user.ID] = true
	out := stored
	return &out, nil
}

func (f *fakeRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeRepo) GetCredentials(ctx context.Context, email string) (*models.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, f.hashes[id], nil
		}
	}
	return nil, "", ErrUserNotFound
}

func (f *fakeRepo) UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, settings models.UserSettings) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.DisplayName = displayName
	s := settings
	u.Settings = &s
	out := *u
	return &out, nil
}

func (f *fakeRepo) CreateSession(ctx context.Context, session Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := session
	f.sessions[session.ID] = &s
	return nil
}

func (f *fakeRepo) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *s
	if u, ok := f.users[s.UserID]; ok {
		out.Email = u.Email
		out.DisplayName = u.DisplayName
		out.Role = u.Role
	}
	return &out, nil
}

func (f *fakeRepo) RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok && s.RevokedAt == nil {
		t := at
		s.RevokedAt = &t
	}
	return nil
}

func newTestApp(t *testing.T) (*App, *fakeRepo, *clockwork.FakeClock) {
	t.Helper()
	repo := newFakeRepo()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	app := NewApp(repo, clock, Config{
		JWTSecret:   []byte("test-secret"),
		SessionTTL:  time.Hour,
		AdminEmails: []string{"Boss@Sushi.example"},
		BcryptCost:  bcrypt.MinCost,
	})
	return app, repo, clock
}

func mustSignUp(t *testing.T, app *App, email string) *AuthResult {
	t.Helper()
	result, err := app.SignUp(context.Background(), SignUpRequest{
		Email:       email,
		Password:    "salmon1",
		DisplayName: "Tester",
	})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	return result
}

func TestSignUp_CreatesUserStatsAndSession(t *testing.T) {
	app, repo, _ := newTestApp(t)

	result := mustSignUp(t, app, "  Ana@Example.com ")

	if result.User.Email != "ana@example.com" {
		t.Errorf("expected normalized email, got %q", result.User.Email)
	}
	if result.User.Role != models.RolePlayer {
		t.Errorf("expected player role, got %q", result.User.Role)
	}
	if !repo.stats[result.User.ID] {
		t.Error("expected a stats row for the new user")
	}
	if repo.hashes[result.User.ID] == "salmon1" {
		t.Error("expected password to be hashed")
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(repo.sessions))
	}
}

func TestSignUp_Validation(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	if _, err := app.SignUp(ctx, SignUpRequest{Email: "not-an-email", Password: "salmon1"}); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := app.SignUp(ctx, SignUpRequest{Email: "a@b.co", Password: "12345"}); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}

	mustSignUp(t, app, "dup@example.com")
	if _, err := app.SignUp(ctx, SignUpRequest{Email: "DUP@example.com", Password: "salmon1"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignUp_DefaultsDisplayNameToMailbox(t *testing.T) {
	app, _, _ := newTestApp(t)

	result, err := app.SignUp(context.Background(), SignUpRequest{Email: "tuna@example.com", Password: "salmon1"})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	if result.User.DisplayName != "tuna" {
		t.Errorf("expected display name tuna, got %q", result.User.DisplayName)
	}
}

func TestSignIn(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()
	mustSignUp(t, app, "eel@example.com")

	if _, err := app.SignIn(ctx, SignInRequest{Email: "eel@example.com", Password: "wrong!"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := app.SignIn(ctx, SignInRequest{Email: "nobody@example.com", Password: "salmon1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	result, err := app.SignIn(ctx, SignInRequest{Email: "EEL@example.com", Password: "salmon1"})
	if err != nil {
		t.Fatalf("expected sign in to succeed, got %v", err)
	}
	if _, err := app.Authenticate(ctx, result.Token); err != nil {
		t.Errorf("expected token to authenticate, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	app, _, clock := newTestApp(t)
	ctx := context.Background()
	result := mustSignUp(t, app, "uni@example.com")

	id, err := app.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("expected token to authenticate, got %v", err)
	}
	if id.UserID != result.User.ID || id.Email != "uni@example.com" || id.DisplayName != "Tester" {
		t.Errorf("unexpected identity: %+v", id)
	}
	if id.IsAdmin {
		t.Error("expected non-admin identity")
	}

	clock.Advance(2 * time.Hour)
	if _, err := app.Authenticate(ctx, result.Token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired after ttl, got %v", err)
	}
}

func TestAuthenticate_RejectsForeignKey(t *testing.T) {
	app, _, clock := newTestApp(t)
	result := mustSignUp(t, app, "ikura@example.com")

	other := NewApp(newFakeRepo(), clock, Config{JWTSecret: []byte("other-secret"), BcryptCost: bcrypt.MinCost})
	if _, err := other.Authenticate(context.Background(), result.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := app.Authenticate(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestSignOut_RevokesSession(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()
	result := mustSignUp(t, app, "ebi@example.com")

	if err := app.SignOut(ctx, result.Token); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	if err := app.SignOut(ctx, result.Token); err != nil {
		t.Fatalf("expected second sign out to be a no-op, got %v", err)
	}
	if _, err := app.Authenticate(ctx, result.Token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected revoked session to be rejected, got %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()
	result := mustSignUp(t, app, "tamago@example.com")

	blank := "   "
	if _, err := app.UpdateSettings(ctx, result.User.ID, UpdateSettingsRequest{DisplayName: &blank}); !errors.Is(err, ErrInvalidDisplayName) {
		t.Errorf("expected ErrInvalidDisplayName, got %v", err)
	}

	name := " Chef "
	off := false
	user, err := app.UpdateSettings(ctx, result.User.ID, UpdateSettingsRequest{DisplayName: &name, SoundEnabled: &off})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if user.DisplayName != "Chef" {
		t.Errorf("expected trimmed name Chef, got %q", user.DisplayName)
	}
	if user.Settings == nil || user.Settings.SoundEnabled || !user.Settings.Notifications {
		t.Errorf("expected sound off and notifications on, got %+v", user.Settings)
	}
}

func TestAuthenticate_FollowsProfileChanges(t *testing.T) {
	app, repo, _ := newTestApp(t)
	ctx := context.Background()
	result := mustSignUp(t, app, "unagi@example.com")

	name := "Sushi Sensei"
	if _, err := app.UpdateSettings(ctx, result.User.ID, UpdateSettingsRequest{DisplayName: &name}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	repo.mu.Lock()
	repo.users[result.User.ID].Role = models.RoleAdmin
	repo.mu.Unlock()

	id, err := app.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("expected existing token to authenticate, got %v", err)
	}
	if id.DisplayName != "Sushi Sensei" {
		t.Errorf("expected renamed identity, got %q", id.DisplayName)
	}
	if id.Role != models.RoleAdmin || !id.IsAdmin {
		t.Errorf("expected promoted identity, got %+v", id)
	}
}

func TestIsAdmin(t *testing.T) {
	app, _, _ := newTestApp(t)

	if !app.IsAdmin(&models.User{Email: "boss@sushi.example", Role: models.RolePlayer}) {
		t.Error("expected listed email to be admin")
	}
	if !app.IsAdmin(&models.User{Email: "x@y.z", Role: models.RoleAdmin}) {
		t.Error("expected admin role to be admin")
	}
	if app.IsAdmin(&models.User{Email: "x@y.z", Role: models.RolePlayer}) {
		t.Error("expected plain player not to be admin")
	}
	if app.IsAdmin(nil) {
		t.Error("expected nil user not to be admin")
	}

	result := mustSignUp(t, app, "boss@sushi.example")
	id, err := app.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if !id.IsAdmin {
		t.Error("expected identity to carry admin flag")
	}
}
