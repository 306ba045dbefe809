package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// UserDB is the identity repository, a view over the shared pool.
type UserDB struct {
	conn *sql.DB
}

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

const userColumns = `id, email, username, password_hash, image, provider, provider_id, created_at, updated_at`

// Create inserts a new identity record.
//
// The caller's struct is modified in place: ID and timestamps are assigned
// here. provider_id is stored as NULL when empty so the UNIQUE constraint
// only bites for real external ids (SQLite treats NULLs as distinct).
// A duplicate email or provider_id surfaces as apperror.ErrConflict.
func (db *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Image == "" {
		user.Image = model.DefaultAvatar
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, username, password_hash, image, provider, provider_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Image,
		user.Provider,
		nullable(user.ProviderID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves an identity by its internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves an identity by email. Emails are compared exactly as
// stored (case-sensitive).
func (db *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetByEmailOrProviderID finds an identity by either key. The OAuth sign-in
// uses this so a returning Google account is matched by its stable external
// id even if the email on the account changed.
func (db *UserDB) GetByEmailOrProviderID(ctx context.Context, email, providerID string) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? OR provider_id = ?`,
		email, providerID,
	)
}

// UpdateProfile refreshes username and image for an existing identity.
// Used when an OAuth provider reports changed profile fields on a
// subsequent sign-in. Denormalized copies on existing comments/replies are
// left alone on purpose — they are a point-in-time snapshot.
func (db *UserDB) UpdateProfile(ctx context.Context, id, username, image string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, image = ?, updated_at = ? WHERE id = ?`,
		username, image, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user profile %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

func (db *UserDB) getUser(ctx context.Context, query string, args ...any) (*model.User, error) {
	var (
		u          model.User
		providerID sql.NullString
	)

	err := db.conn.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Image,
		&u.Provider,
		&providerID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(args[0]))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	u.ProviderID = providerID.String
	return &u, nil
}

// nullable converts an empty string to NULL for optional unique columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
