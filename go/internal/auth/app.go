package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcdev12/sushirush/go/internal/models"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// AuthRepository defines what the app layer needs from the repository
type AuthRepository interface {
	CreateUser(ctx context.Context, user models.User, passwordHash string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetCredentials(ctx context.Context, email string) (*models.User, string, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, settings models.UserSettings) (*models.User, error)
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error
}

// App handles accounts and sessions
type App struct {
	repo       AuthRepository
	tokens     *TokenIssuer
	clock      clockwork.Clock
	sessionTTL time.Duration
	bcryptCost int
	admins     map[string]struct{}
}

// NewApp creates a new auth App
func NewApp(repo AuthRepository, clock clockwork.Clock, cfg Config) *App {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		if email = normalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &App{
		repo:       repo,
		tokens:     NewTokenIssuer(cfg.JWTSecret, clock),
		clock:      clock,
		sessionTTL: ttl,
		bcryptCost: cost,
		admins:     admins,
	}
}

// SignUp registers an account and starts a session
func (a *App) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.repo.CreateUser(ctx, models.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		Role:        models.RolePlayer,
		CreatedAt:   a.clock.Now().UTC(),
	}, string(hash))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("user signed up")
	return a.startSession(ctx, user)
}

// SignIn checks credentials and starts a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (a *App) SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error) {
	user, hash, err := a.repo.GetCredentials(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	log.Info().Str("user_id", user.ID.String()).Msg("user signed in")
	return a.startSession(ctx, user)
}

// SignOut revokes the session behind a token
func (a *App) SignOut(ctx context.Context, token string) error {
	_, _, sessionID, err := a.tokens.Parse(token)
	if err != nil {
		return err
	}
	if err := a.repo.RevokeSession(ctx, sessionID, a.clock.Now().UTC()); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	log.Info().Str("session_id", sessionID.String()).Msg("session revoked")
	return nil
}

// Authenticate resolves a token into the caller identity. The session must
// exist and be neither revoked nor expired.
func (a *App) Authenticate(ctx context.Context, token string) (Identity, error) {
	_, userID, sessionID, err := a.tokens.Parse(token)
	if err != nil {
		return Identity{}, err
	}

	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Identity{}, err
	}
	if session.UserID != userID || !session.Active(a.clock.Now()) {
		return Identity{}, ErrSessionExpired
	}

	// Profile fields come from the users row so renames apply without a new token.
	return Identity{
		UserID:      userID,
		SessionID:   sessionID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		Role:        session.Role,
		IsAdmin:     a.isAdmin(session.Email, session.Role),
	}, nil
}

// GetUser retrieves a user by ID
func (a *App) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateSettings changes the display name and preference flags
func (a *App) UpdateSettings(ctx context.Context, userID uuid.UUID, req UpdateSettingsRequest) (*models.User, error) {
	user, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	displayName := user.DisplayName
	if req.DisplayName != nil {
		displayName = strings.TrimSpace(*req.DisplayName)
		if displayName == "" {
			return nil, ErrInvalidDisplayName
		}
	}

	settings := models.UserSettings{Notifications: true, SoundEnabled: true}
	if user.Settings != nil {
		settings = *user.Settings
	}
	if req.Notifications != nil {
		settings.Notifications = *req.Notifications
	}
	if req.SoundEnabled != nil {
		settings.SoundEnabled = *req.SoundEnabled
	}
	settings.UpdatedAt = a.clock.Now().UTC()

	updated, err := a.repo.UpdateProfile(ctx, userID, displayName, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return updated, nil
}

// IsAdmin reports whether the user has the admin role or a listed admin email
func (a *App) IsAdmin(user *models.User) bool {
	if user == nil {
		return false
	}
	return a.isAdmin(user.Email, user.Role)
}

func (a *App) isAdmin(email string, role models.Role) bool {
	if role == models.RoleAdmin {
		return true
	}
	_, ok := a.admins[normalizeEmail(email)]
	return ok
}

func (a *App) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	now := a.clock.Now().UTC()
	session := Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(a.sessionTTL),
		CreatedAt: now,
	}
	if err := a.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	token, err := a.tokens.Issue(Identity{
		UserID:      user.ID,
		SessionID:   session.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
		IsAdmin:   a.IsAdmin(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
