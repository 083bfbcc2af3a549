package service

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/database/databasetest"
	"github.com/gurkanbulca/todoapp/internal/logger"
	"github.com/gurkanbulca/todoapp/internal/models"
	"github.com/gurkanbulca/todoapp/internal/validation"
	"github.com/gurkanbulca/todoapp/pkg/auth"
	"github.com/gurkanbulca/todoapp/pkg/email"
	"github.com/gurkanbulca/todoapp/pkg/storage"
)

const testPassword = "Secret123"

// TestHelpers wires every service against a throwaway database, an in-memory
// media store and a recording mailer.
type TestHelpers struct {
	t           *testing.T
	db          *database.DB
	fs          afero.Fs
	mailer      *email.MockEmailService
	tokens      *auth.TokenManager
	accounts    *AccountService
	todos       *TodoService
	tags        *TagService
	attachments *AttachmentService
	contact     *ContactService
}

func NewTestHelpers(t *testing.T) *TestHelpers {
	t.Helper()

	db := databasetest.Open(t)
	fs := afero.NewMemMapFs()
	media := storage.New(fs)
	mailer := email.NewMockEmailService()
	tokens := auth.NewTokenManager("test-access", "test-refresh", 15*time.Minute, time.Hour)
	passwords := auth.NewPasswordManager(auth.DefaultPasswordPolicy()).WithCost(bcrypt.MinCost)
	log := logger.Discard()

	return &TestHelpers{
		t:           t,
		db:          db,
		fs:          fs,
		mailer:      mailer,
		tokens:      tokens,
		accounts:    NewAccountService(db, tokens, passwords, mailer, media, log),
		todos:       NewTodoService(db, media, log, TodoOptions{Location: time.UTC, PageSize: 10, RecentLimit: 5}),
		tags:        NewTagService(db, log, 20),
		attachments: NewAttachmentService(db, media, log),
		contact:     NewContactService(mailer, "admin@example.com", log),
	}
}

// CreateProfile signs up a user and returns its profile as the auth middleware would resolve it.
func (h *TestHelpers) CreateProfile(emailAddr string) *models.Profile {
	h.t.Helper()
	session, err := h.accounts.Signup(context.Background(), SignupInput{
		Email:           emailAddr,
		Password:        testPassword,
		PasswordConfirm: testPassword,
	})
	require.NoError(h.t, err)
	return session.Profile
}

func (h *TestHelpers) CreateTodo(profile *models.Profile, in TodoInput) *models.Todo {
	h.t.Helper()
	todo, err := h.todos.Create(context.Background(), profile, in)
	require.NoError(h.t, err)
	return todo
}

func (h *TestHelpers) CreateTag(profile *models.Profile, name string) *models.Tag {
	h.t.Helper()
	tag, err := h.tags.Create(context.Background(), profile, TagInput{Name: name})
	require.NoError(h.t, err)
	return tag
}

func (h *TestHelpers) CountRows(table string) int {
	h.t.Helper()
	var n int
	require.NoError(h.t, h.db.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM "+table))
	return n
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	verr, ok := validation.As(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.True(t, verr.Has(field), "expected error on %q, got %s", field, verr.Error())
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
