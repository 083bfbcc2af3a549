// internal/service/account_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/models"
	"github.com/gurkanbulca/todoapp/internal/repository"
	"github.com/gurkanbulca/todoapp/internal/validation"
	"github.com/gurkanbulca/todoapp/pkg/auth"
	"github.com/gurkanbulca/todoapp/pkg/email"
	"github.com/gurkanbulca/todoapp/pkg/storage"
)

const birthDateLayout = "2006-01-02"

type SignupInput struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput is the profile edit payload. Names and phone are required here
// even though signup creates the profile with them empty.
type ProfileInput struct {
	FirstName   string `json:"first_name" validate:"required,max=150"`
	LastName    string `json:"last_name" validate:"required,max=150"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	BirthDate   string `json:"birth_date"`
	Bio         string `json:"bio" validate:"max=500"`
}

// Session is what a successful signup or login returns.
type Session struct {
	Profile *models.Profile `json:"profile"`
	Tokens  *auth.TokenPair `json:"tokens"`
}

// AccountService owns users and their profiles: signup, login, token
// refresh, profile edits and avatars.
type AccountService struct {
	users     *repository.UserRepository
	profiles  *repository.ProfileRepository
	tokens    *auth.TokenManager
	passwords *auth.PasswordManager
	mailer    email.EmailService
	media     *storage.Storage
	logger    *log.Logger
	now       func() time.Time
}

func NewAccountService(
	db *database.DB,
	tokens *auth.TokenManager,
	passwords *auth.PasswordManager,
	mailer email.EmailService,
	media *storage.Storage,
	logger *log.Logger,
) *AccountService {
	return &AccountService{
		users:     repository.NewUserRepository(db),
		profiles:  repository.NewProfileRepository(db),
		tokens:    tokens,
		passwords: passwords,
		mailer:    mailer,
		media:     media,
		logger:    logger.With("component", "accounts"),
		now:       time.Now,
	}
}

// Signup creates a user and its profile together and logs the user in.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Email = models.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := s.validateSignup(in); err != nil {
		return nil, err
	}

	hash, err := s.passwords.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: in.Email, PasswordHash: hash, IsActive: true}
	profile := &models.Profile{FirstName: in.FirstName, LastName: in.LastName}
	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validation.New("email", "A user with that email already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	// Welcome mail is best-effort
	recipient := email.Recipient{Email: user.Email, Name: profile.FullName()}
	if err := s.mailer.SendWelcomeEmail(ctx, recipient); err != nil {
		s.logger.Warn("failed to send welcome email", "user_id", user.ID, "err", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return &Session{Profile: profile, Tokens: tokens}, nil
}

func (s *AccountService) validateSignup(in SignupInput) error {
	errs := validation.Struct(in)
	if !errs.Has("password") {
		if err := s.passwords.ValidatePassword(in.Password); err != nil {
			errs.Add("password", passwordMessage(err))
		}
	}
	return errs.Err()
}

func passwordMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), auth.ErrWeakPassword.Error()+": ")
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// Login checks the credentials and issues a fresh token pair.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validation.Struct(in).Err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.passwords.ComparePassword(user.PasswordHash, in.Password); err != nil {
		s.logger.Info("login failed", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &Session{Profile: profile, Tokens: tokens}, nil
}

func (s *AccountService) issueTokens(ctx context.Context, user *models.User) (*auth.TokenPair, error) {
	tokens, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.IsStaff)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	if err := s.users.RecordLogin(ctx, user.ID, tokens.RefreshToken, tokens.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}
	return tokens, nil
}

// Refresh exchanges the user's current refresh token for a new access token.
// A refresh token that was replaced by a later login or cleared by logout is rejected.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive || user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, ErrUnauthenticated
	}

	tokens, err := s.tokens.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return tokens, nil
}

func (s *AccountService) Logout(ctx context.Context, profile *models.Profile) error {
	if err := s.users.ClearRefreshToken(ctx, profile.UserID); err != nil {
		return fmt.Errorf("clear refresh token: %w", notFound(err))
	}
	return nil
}

// ResolveProfile turns an access token into the acting profile.
func (s *AccountService) ResolveProfile(ctx context.Context, accessToken string) (*models.Profile, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	profile, err := s.profiles.GetByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !profile.User.IsActive {
		return nil, ErrUnauthenticated
	}
	return profile, nil
}

// UpdateProfile replaces the editable profile fields.
func (s *AccountService) UpdateProfile(ctx context.Context, profile *models.Profile, in ProfileInput) (*models.Profile, error) {
	birthDate, err := s.validateProfileInput(&in)
	if err != nil {
		return nil, err
	}

	updated := *profile
	updated.FirstName = in.FirstName
	updated.LastName = in.LastName
	updated.PhoneNumber = in.PhoneNumber
	updated.BirthDate = birthDate
	updated.Bio = in.Bio

	if err := s.profiles.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update profile: %w", notFound(err))
	}
	return &updated, nil
}

func (s *AccountService) validateProfileInput(in *ProfileInput) (*time.Time, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.BirthDate = strings.TrimSpace(in.BirthDate)

	errs := validation.Struct(in)

	var birthDate *time.Time
	if in.BirthDate != "" {
		d, err := time.Parse(birthDateLayout, in.BirthDate)
		switch {
		case err != nil:
			errs.Add("birth_date", "Enter a valid date.")
		case d.After(s.now()):
			errs.Add("birth_date", "Birth date cannot be in the future.")
		default:
			birthDate = &d
		}
	}
	return birthDate, errs.Err()
}

// UploadAvatar stores a new avatar image and drops the previous one.
func (s *AccountService) UploadAvatar(ctx context.Context, profile *models.Profile, r io.Reader, filename string) (*models.Profile, error) {
	upload := struct {
		Avatar string `json:"avatar" validate:"imageext"`
	}{Avatar: filename}
	if err := validation.Struct(upload).Err(); err != nil {
		return nil, err
	}

	path, err := s.media.SaveAvatar(r, filename)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFile) {
			return nil, validation.New("avatar", "The submitted file is empty.")
		}
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	previous := profile.Avatar
	updated := *profile
	updated.Avatar = path
	if err := s.profiles.Update(ctx, &updated); err != nil {
		s.removeFile(path)
		return nil, fmt.Errorf("update profile: %w", notFound(err))
	}

	if previous != "" {
		s.removeFile(previous)
	}
	return &updated, nil
}

func (s *AccountService) removeFile(path string) {
	if err := s.media.Remove(path); err != nil {
		s.logger.Warn("failed to remove file", "path", path, "err", err)
	}
}

// CreateSuperuser creates an active staff superuser with an empty profile.
func (s *AccountService) CreateSuperuser(ctx context.Context, emailAddr, password string) (*models.User, error) {
	in := struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required"`
	}{Email: models.NormalizeEmail(emailAddr), Password: password}

	errs := validation.Struct(in)
	if !errs.Has("password") {
		if err := s.passwords.ValidatePassword(password); err != nil {
			errs.Add("password", passwordMessage(err))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: in.Email, PasswordHash: hash, IsActive: true, IsStaff: true, IsSuperuser: true}
	if err := s.users.CreateWithProfile(ctx, user, &models.Profile{}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validation.New("email", "A user with that email already exists.")
		}
		return nil, fmt.Errorf("create superuser: %w", err)
	}
	return user, nil
}
