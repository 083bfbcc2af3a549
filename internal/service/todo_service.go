// internal/service/todo_service.go
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"golang.org/x/text/cases"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/filter"
	"github.com/gurkanbulca/todoapp/internal/models"
	"github.com/gurkanbulca/todoapp/internal/repository"
	"github.com/gurkanbulca/todoapp/internal/validation"
	"github.com/gurkanbulca/todoapp/pkg/storage"
)

const maxTagNameLength = 30

// TodoInput is the create/update payload. Priority 0 means the default.
type TodoInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    int     `json:"priority"`
	DueDate     string  `json:"due_date"`
	IsDone      bool    `json:"is_done"`
	Tags        []int64 `json:"tags"`
	NewTags     string  `json:"new_tags"`
}

// TodoOptions carries the settings the todo service reads from config.
type TodoOptions struct {
	Location    *time.Location
	PageSize    int
	RecentLimit int
}

type Dashboard struct {
	Counts repository.StatusCounts `json:"counts"`
	Recent []*models.Todo          `json:"recent"`
}

type TodoService struct {
	db          *database.DB
	todos       *repository.TodoRepository
	tags        *repository.TagRepository
	attachments *repository.AttachmentRepository
	media       *storage.Storage
	logger      *log.Logger
	opts        TodoOptions
	now         func() time.Time
}

func NewTodoService(db *database.DB, media *storage.Storage, logger *log.Logger, opts TodoOptions) *TodoService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 5
	}
	return &TodoService{
		db:          db,
		todos:       repository.NewTodoRepository(db),
		tags:        repository.NewTagRepository(db),
		attachments: repository.NewAttachmentRepository(db),
		media:       media,
		logger:      logger.With("component", "todos"),
		opts:        opts,
		now:         time.Now,
	}
}

// List returns one page of the profile's todos filtered by the query parameters.
func (s *TodoService) List(ctx context.Context, profile *models.Profile, params url.Values) (*ListResult[*models.Todo], error) {
	f := filter.ParseTodoFilter(params, s.opts.Location)
	page := filter.ParsePage(params, s.opts.PageSize)

	todos, total, err := s.todos.List(ctx, profile.ID, f, page)
	if err != nil {
		return nil, err
	}
	for _, t := range todos {
		t.Profile = profile
	}

	return &ListResult[*models.Todo]{
		Items:      todos,
		Page:       page.Number,
		PageSize:   page.Size,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *TodoService) Get(ctx context.Context, profile *models.Profile, id int64) (*models.Todo, error) {
	todo, err := s.todos.Get(ctx, profile.ID, id)
	if err != nil {
		return nil, notFound(err)
	}
	todo.Profile = profile
	return todo, nil
}

// Create validates the input and stores the todo, its tag links and any new tags in one transaction.
func (s *TodoService) Create(ctx context.Context, profile *models.Profile, in TodoInput) (*models.Todo, error) {
	v, err := s.validateTodoInput(ctx, profile, in)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{
		ProfileID:   profile.ID,
		Title:       v.title,
		Description: in.Description,
		Priority:    v.priority,
		DueDate:     v.dueDate,
		IsDone:      in.IsDone,
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		todos := s.todos.WithTx(tx)
		if err := todos.Create(ctx, todo); err != nil {
			return err
		}
		return s.saveTags(ctx, tx, profile.ID, todo.ID, v)
	})
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	s.logger.Debug("todo created", "todo_id", todo.ID, "profile_id", profile.ID)
	return s.Get(ctx, profile, todo.ID)
}

// Update replaces the todo's fields and tag set, then adds any new tags.
func (s *TodoService) Update(ctx context.Context, profile *models.Profile, id int64, in TodoInput) (*models.Todo, error) {
	todo, err := s.todos.Get(ctx, profile.ID, id)
	if err != nil {
		return nil, notFound(err)
	}

	v, err := s.validateTodoInput(ctx, profile, in)
	if err != nil {
		return nil, err
	}

	todo.Title = v.title
	todo.Description = in.Description
	todo.Priority = v.priority
	todo.DueDate = v.dueDate
	todo.IsDone = in.IsDone

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		todos := s.todos.WithTx(tx)
		if err := todos.Update(ctx, todo); err != nil {
			return err
		}
		return s.saveTags(ctx, tx, profile.ID, todo.ID, v)
	})
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", notFound(err))
	}

	return s.Get(ctx, profile, todo.ID)
}

// saveTags links the validated existing tags plus the new tag names, creating
// names the profile does not have yet.
func (s *TodoService) saveTags(ctx context.Context, tx *sqlx.Tx, profileID, todoID int64, v *todoValues) error {
	ids := make([]int64, 0, len(v.tags)+len(v.newTags))
	for _, t := range v.tags {
		ids = append(ids, t.ID)
	}

	created, err := getOrCreateTags(ctx, s.tags.WithTx(tx), profileID, v.newTags)
	if err != nil {
		return err
	}
	for _, t := range created {
		ids = append(ids, t.ID)
	}
	return s.todos.WithTx(tx).SetTags(ctx, todoID, dedupeIDs(ids))
}

// getOrCreateTags returns the profile's tags matching names case-insensitively,
// creating the ones that are missing.
func getOrCreateTags(ctx context.Context, tags *repository.TagRepository, profileID int64, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	existing, err := tags.ListAll(ctx, profileID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]models.Tag, len(existing))
	for _, t := range existing {
		byName[foldTagName(t.Name)] = t
	}

	result := make([]models.Tag, 0, len(names))
	for _, name := range names {
		key := foldTagName(name)
		if t, ok := byName[key]; ok {
			result = append(result, t)
			continue
		}
		t := models.Tag{ProfileID: profileID, Name: name}
		if err := tags.Create(ctx, &t); err != nil {
			return nil, err
		}
		byName[key] = t
		result = append(result, t)
	}
	return result, nil
}

// ToggleDone flips the done flag; completed_at follows it.
func (s *TodoService) ToggleDone(ctx context.Context, profile *models.Profile, id int64) (*models.Todo, error) {
	todo, err := s.todos.Get(ctx, profile.ID, id)
	if err != nil {
		return nil, notFound(err)
	}
	todo.IsDone = !todo.IsDone
	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("toggle todo: %w", notFound(err))
	}
	todo.Profile = profile
	return todo, nil
}

// Archive marks the todo archived. There is no unarchive.
func (s *TodoService) Archive(ctx context.Context, profile *models.Profile, id int64) (*models.Todo, error) {
	todo, err := s.todos.Get(ctx, profile.ID, id)
	if err != nil {
		return nil, notFound(err)
	}
	if todo.Archived {
		todo.Profile = profile
		return todo, nil
	}
	todo.Archived = true
	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("archive todo: %w", notFound(err))
	}
	todo.Profile = profile
	return todo, nil
}

// Delete removes the todo. Attachment rows and tag links cascade; attachment files are removed afterwards.
func (s *TodoService) Delete(ctx context.Context, profile *models.Profile, id int64) error {
	if _, err := s.todos.Get(ctx, profile.ID, id); err != nil {
		return notFound(err)
	}

	attachments, err := s.attachments.ListByTodo(ctx, id)
	if err != nil {
		return err
	}

	if err := s.todos.Delete(ctx, profile.ID, id); err != nil {
		return fmt.Errorf("delete todo: %w", notFound(err))
	}

	for _, a := range attachments {
		if err := s.media.Remove(a.File); err != nil {
			s.logger.Warn("failed to remove attachment file", "todo_id", id, "path", a.File, "err", err)
		}
	}
	return nil
}

func (s *TodoService) Dashboard(ctx context.Context, profile *models.Profile) (*Dashboard, error) {
	counts, err := s.todos.CountByStatus(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.todos.Recent(ctx, profile.ID, s.opts.RecentLimit)
	if err != nil {
		return nil, err
	}
	for _, t := range recent {
		t.Profile = profile
	}
	return &Dashboard{Counts: counts, Recent: recent}, nil
}

// todoValues is a TodoInput after validation.
type todoValues struct {
	title    string
	priority models.Priority
	dueDate  *time.Time
	tags     []models.Tag
	newTags  []string
}

// validateTodoInput checks every field before anything is written.
func (s *TodoService) validateTodoInput(ctx context.Context, profile *models.Profile, in TodoInput) (*todoValues, error) {
	v := &todoValues{
		title:    strings.TrimSpace(in.Title),
		priority: models.Priority(in.Priority),
	}
	if v.priority == 0 {
		v.priority = models.PriorityMedium
	}

	errs := validation.Struct(struct {
		Title    string `json:"title" validate:"required,max=200"`
		Priority int    `json:"priority" validate:"oneof=1 2 3"`
	}{Title: v.title, Priority: int(v.priority)})

	if in.DueDate != "" {
		due, ok := parseDueDate(in.DueDate, s.opts.Location)
		switch {
		case !ok:
			errs.Add("due_date", "Enter a valid date/time.")
		case due.Before(s.now()):
			errs.Add("due_date", "Due date cannot be in the past.")
		default:
			v.dueDate = &due
		}
	}

	if ids := dedupeIDs(in.Tags); len(ids) > 0 {
		tags, err := s.tags.GetMany(ctx, profile.ID, ids)
		if err != nil {
			return nil, err
		}
		if len(tags) != len(ids) {
			errs.Add("tags", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			v.tags = tags
		}
	}

	v.newTags = splitTagNames(in.NewTags)
	for _, name := range v.newTags {
		if len([]rune(name)) > maxTagNameLength {
			errs.Add("new_tags", fmt.Sprintf("Each tag must be at most %d characters.", maxTagNameLength))
			break
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

// parseDueDate accepts RFC 3339 or a naive "2006-01-02T15:04[:05]" read in loc.
func parseDueDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	for _, layout := range []string{filter.DateTimeLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// splitTagNames splits a comma separated list, dropping empty parts and
// case-insensitive duplicates. The first spelling wins.
func splitTagNames(raw string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		key := foldTagName(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

func foldTagName(name string) string {
	return cases.Fold().String(name)
}

func dedupeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
