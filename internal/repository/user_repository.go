// internal/repository/user_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/models"
)

var userColumns = []string{
	"id", "email", "password_hash", "is_active", "is_staff", "is_superuser",
	"last_login", "refresh_token", "refresh_token_expires_at", "created_at", "updated_at",
}

// UserRepository stores users.
type UserRepository struct {
	base
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{base: newBase(db)}
}

// CreateWithProfile inserts the user and its profile in one transaction.
// The email is normalized first; an existing email yields ErrDuplicate.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	now := r.now()
	user.Email = models.NormalizeEmail(user.Email)
	user.CreatedAt, user.UpdatedAt = now, now
	profile.CreatedAt, profile.UpdatedAt = now, now

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		b := r.withTx(tx)

		userID, err := b.insert(ctx, b.sb.Insert("users").
			Columns("email", "password_hash", "is_active", "is_staff", "is_superuser", "created_at", "updated_at").
			Values(user.Email, user.PasswordHash, user.IsActive, user.IsStaff, user.IsSuperuser, now, now))
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		profileID, err := b.insert(ctx, b.sb.Insert("profiles").
			Columns("user_id", "first_name", "last_name", "phone_number", "birth_date", "bio", "avatar", "created_at", "updated_at").
			Values(userID, profile.FirstName, profile.LastName, profile.PhoneNumber, utcPtr(profile.BirthDate),
				profile.Bio, profile.Avatar, now, now))
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}

		user.ID = userID
		profile.ID = profileID
		profile.UserID = userID
		profile.User = user
		return nil
	})
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.get(ctx, &u, r.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": id})); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks the user up by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	query := r.sb.Select(userColumns...).From("users").Where(sq.Eq{"email": models.NormalizeEmail(email)})
	if err := r.get(ctx, &u, query); err != nil {
		return nil, err
	}
	return &u, nil
}

// RecordLogin stores the issued refresh token and the login time.
func (r *UserRepository) RecordLogin(ctx context.Context, id int64, refreshToken string, expiresAt time.Time) error {
	now := r.now()
	return r.execAffecting(ctx, r.sb.Update("users").
		Set("last_login", now).
		Set("refresh_token", refreshToken).
		Set("refresh_token_expires_at", expiresAt.UTC()).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}))
}

// ClearRefreshToken forgets the stored refresh token, logging the user out.
func (r *UserRepository) ClearRefreshToken(ctx context.Context, id int64) error {
	return r.execAffecting(ctx, r.sb.Update("users").
		Set("refresh_token", nil).
		Set("refresh_token_expires_at", nil).
		Set("updated_at", r.now()).
		Where(sq.Eq{"id": id}))
}
