package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/sushirush/go/internal/auth/db"
	"github.com/mcdev12/sushirush/go/internal/models"
	"github.com/mcdev12/sushirush/go/internal/sqlutil"
)

const uniqueViolation = "23505"

// Repository implements user and session data access
type Repository struct {
	db      *sql.DB
	queries *db.Queries
}

// NewRepository creates a new auth repository
func NewRepository(database *sql.DB, queries *db.Queries) *Repository {
	return &Repository{
		db:      database,
		queries: queries,
	}
}

// CreateUser inserts the account and its zeroed stats row in one transaction
func (r *Repository) CreateUser(ctx context.Context, user models.User, passwordHash string) (*models.User, error) {
	var created db.User
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		q := r.queries.WithTx(tx)

		var err error
		created, err = q.CreateUser(ctx, db.CreateUserParams{
			ID:           user.ID,
			Email:        user.Email,
			DisplayName:  user.DisplayName,
			PasswordHash: passwordHash,
			Role:         string(user.Role),
			CreatedAt:    user.CreatedAt,
		})
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		if err := q.InitUserStats(ctx, created.ID); err != nil {
			return fmt.Errorf("failed to init user stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dbUserToModel(created)
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return dbUserToModel(row)
}

// GetCredentials retrieves a user and its password hash by email
func (r *Repository) GetCredentials(ctx context.Context, email string) (*models.User, string, error) {
	row, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to get user by email: %w", err)
	}
	user, err := dbUserToModel(row)
	if err != nil {
		return nil, "", err
	}
	return user, row.PasswordHash, nil
}

// UpdateProfile stores the display name and settings
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, settings models.UserSettings) (*models.User, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	row, err := r.queries.UpdateUserProfile(ctx, db.UpdateUserProfileParams{
		ID:          id,
		DisplayName: displayName,
		Settings:    pqtype.NullRawMessage{RawMessage: raw, Valid: true},
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return dbUserToModel(row)
}

// CreateSession records an issued session
func (r *Repository) CreateSession(ctx context.Context, session Session) error {
	err := r.queries.CreateSession(ctx, db.CreateSessionParams{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID
func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	row, err := r.queries.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &Session{
		ID:        row.ID,
		UserID:    row.UserID,
		ExpiresAt: row.ExpiresAt,
		RevokedAt: sqlutil.FromSqlTime(row.RevokedAt),
		CreatedAt: row.CreatedAt,

		Email:       row.Email,
		DisplayName: row.DisplayName,
		Role:        models.Role(row.Role),
	}, nil
}

// RevokeSession marks a session revoked; revoking twice keeps the first time
func (r *Repository) RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := r.queries.RevokeSession(ctx, db.RevokeSessionParams{ID: id, RevokedAt: at}); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func dbUserToModel(row db.User) (*models.User, error) {
	user := &models.User{
		ID:          row.ID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		PhotoURL:    sqlutil.FromSqlStringPtr(row.PhotoUrl),
		Role:        models.Role(row.Role),
		CreatedAt:   row.CreatedAt,
	}
	if row.Settings.Valid {
		var settings models.UserSettings
		if err := json.Unmarshal(row.Settings.RawMessage, &settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings for user %s: %w", row.ID, err)
		}
		user.Settings = &settings
	}
	return user, nil
}
