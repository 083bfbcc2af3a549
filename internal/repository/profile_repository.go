// internal/repository/profile_repository.go
package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/models"
)

var profileColumns = []string{
	"id", "user_id", "first_name", "last_name", "phone_number", "birth_date", "bio", "avatar", "created_at", "updated_at",
}

// ProfileRepository stores profiles.
type ProfileRepository struct {
	base
	users *UserRepository
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{base: newBase(db), users: NewUserRepository(db)}
}

// GetByUserID loads the profile of a user together with the user record.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var p models.Profile
	if err := r.get(ctx, &p, r.sb.Select(profileColumns...).From("profiles").Where(sq.Eq{"user_id": userID})); err != nil {
		return nil, err
	}
	p.User = user
	return &p, nil
}

// Update writes the editable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = r.now()
	return r.execAffecting(ctx, r.sb.Update("profiles").
		Set("first_name", p.FirstName).
		Set("last_name", p.LastName).
		Set("phone_number", p.PhoneNumber).
		Set("birth_date", utcPtr(p.BirthDate)).
		Set("bio", p.Bio).
		Set("avatar", p.Avatar).
		Set("updated_at", p.UpdatedAt).
		Where(sq.Eq{"id": p.ID}))
}
