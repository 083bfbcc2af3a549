// internal/models/user.go
package models

import (
	"strings"
	"time"
)

type User struct {
	ID                    int64      `db:"id" json:"id"`
	Email                 string     `db:"email" json:"email"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	IsStaff               bool       `db:"is_staff" json:"is_staff"`
	IsSuperuser           bool       `db:"is_superuser" json:"is_superuser"`
	LastLogin             *time.Time `db:"last_login" json:"last_login,omitempty"`
	RefreshToken          *string    `db:"refresh_token" json:"-"`
	RefreshTokenExpiresAt *time.Time `db:"refresh_token_expires_at" json:"-"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// NormalizeEmail lower-cases and trims an address so that uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Profile struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	PhoneNumber string     `db:"phone_number" json:"phone_number"`
	BirthDate   *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Bio         string     `db:"bio" json:"bio"`
	Avatar      string     `db:"avatar" json:"avatar,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	User *User `db:"-" json:"user,omitempty"`
}

// FullName joins first and last name, falling back to the owner's email.
func (p *Profile) FullName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name != "" {
		return name
	}
	if p.User != nil {
		return p.User.Email
	}
	return ""
}
