// internal/repository/todo_repository.go
package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/filter"
	"github.com/gurkanbulca/todoapp/internal/models"
)

var todoColumns = []string{
	"todos.id", "todos.profile_id", "todos.title", "todos.description", "todos.priority", "todos.is_done",
	"todos.due_date", "todos.completed_at", "todos.archived", "todos.created_at", "todos.updated_at",
}

// TodoRepository stores todos and their tag links.
type TodoRepository struct {
	base
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *database.DB) *TodoRepository {
	return &TodoRepository{base: newBase(db)}
}

// WithTx returns a copy running its queries in tx.
func (r *TodoRepository) WithTx(tx *sqlx.Tx) *TodoRepository {
	return &TodoRepository{base: r.withTx(tx)}
}

// List returns one page of the profile's todos matching f in the default order, and the total match count.
func (r *TodoRepository) List(ctx context.Context, profileID int64, f filter.TodoFilter, page filter.Page) ([]*models.Todo, int, error) {
	where := f.Where(profileID)

	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("todos").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count todos: %w", err)
	}

	todos := []*models.Todo{}
	query := r.sb.Select(todoColumns...).From("todos").Where(where).
		OrderBy(filter.DefaultOrder...).
		Limit(page.Limit()).Offset(page.Offset())
	if err := r.selectAll(ctx, &todos, query); err != nil {
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}

	if err := r.loadTags(ctx, todos); err != nil {
		return nil, 0, err
	}
	return todos, total, nil
}

// Recent returns the profile's most recently created todos.
func (r *TodoRepository) Recent(ctx context.Context, profileID int64, limit int) ([]*models.Todo, error) {
	todos := []*models.Todo{}
	query := r.sb.Select(todoColumns...).From("todos").
		Where(sq.Eq{"todos.profile_id": profileID}).
		OrderBy("todos.created_at DESC", "todos.id DESC").
		Limit(uint64(limit))
	if err := r.selectAll(ctx, &todos, query); err != nil {
		return nil, fmt.Errorf("list recent todos: %w", err)
	}
	if err := r.loadTags(ctx, todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// StatusCounts holds how many of a profile's todos fall in each status.
type StatusCounts struct {
	Open     int `db:"open_count" json:"open"`
	Done     int `db:"done_count" json:"done"`
	Archived int `db:"archived_count" json:"archived"`
}

// CountByStatus counts the profile's open, done and archived todos.
func (r *TodoRepository) CountByStatus(ctx context.Context, profileID int64) (StatusCounts, error) {
	var counts StatusCounts
	query := r.sb.Select().
		Column(sq.Expr("COALESCE(SUM(CASE WHEN is_done = ? AND archived = ? THEN 1 ELSE 0 END), 0) AS open_count", false, false)).
		Column(sq.Expr("COALESCE(SUM(CASE WHEN is_done = ? AND archived = ? THEN 1 ELSE 0 END), 0) AS done_count", true, false)).
		Column(sq.Expr("COALESCE(SUM(CASE WHEN archived = ? THEN 1 ELSE 0 END), 0) AS archived_count", true)).
		From("todos").
		Where(sq.Eq{"profile_id": profileID})
	if err := r.get(ctx, &counts, query); err != nil {
		return counts, fmt.Errorf("count todos by status: %w", err)
	}
	return counts, nil
}

// Get returns the todo only if it belongs to the profile.
func (r *TodoRepository) Get(ctx context.Context, profileID, id int64) (*models.Todo, error) {
	var todo models.Todo
	query := r.sb.Select(todoColumns...).From("todos").Where(sq.Eq{"todos.id": id, "todos.profile_id": profileID})
	if err := r.get(ctx, &todo, query); err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, []*models.Todo{&todo}); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Create applies the save rules, inserts the todo and sets its ID.
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	now := r.now()
	todo.BeforeSave(now)
	todo.CreatedAt, todo.UpdatedAt = now, now

	id, err := r.insert(ctx, r.sb.Insert("todos").
		Columns("profile_id", "title", "description", "priority", "is_done", "due_date", "completed_at",
			"archived", "created_at", "updated_at").
		Values(todo.ProfileID, todo.Title, todo.Description, todo.Priority, todo.IsDone, utcPtr(todo.DueDate),
			utcPtr(todo.CompletedAt), todo.Archived, now, now))
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	todo.ID = id
	return nil
}

// Update saves every mutable column. The owning profile is part of the key and never changes.
func (r *TodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	now := r.now()
	todo.BeforeSave(now)
	todo.UpdatedAt = now

	return r.execAffecting(ctx, r.sb.Update("todos").
		Set("title", todo.Title).
		Set("description", todo.Description).
		Set("priority", todo.Priority).
		Set("is_done", todo.IsDone).
		Set("due_date", utcPtr(todo.DueDate)).
		Set("completed_at", utcPtr(todo.CompletedAt)).
		Set("archived", todo.Archived).
		Set("updated_at", now).
		Where(sq.Eq{"id": todo.ID, "profile_id": todo.ProfileID}))
}

// Delete removes the todo. Tag links and attachment rows cascade.
func (r *TodoRepository) Delete(ctx context.Context, profileID, id int64) error {
	return r.execAffecting(ctx, r.sb.Delete("todos").Where(sq.Eq{"id": id, "profile_id": profileID}))
}

// SetTags replaces the todo's tag links with tagIDs.
func (r *TodoRepository) SetTags(ctx context.Context, todoID int64, tagIDs []int64) error {
	if err := r.run(ctx, r.sb.Delete("todo_tags").Where(sq.Eq{"todo_id": todoID})); err != nil {
		return fmt.Errorf("clear todo tags: %w", err)
	}
	return r.AddTags(ctx, todoID, tagIDs)
}

// AddTags links tags to the todo, skipping links that already exist.
func (r *TodoRepository) AddTags(ctx context.Context, todoID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	insert := r.sb.Insert("todo_tags").Columns("todo_id", "tag_id")
	for _, tagID := range tagIDs {
		insert = insert.Values(todoID, tagID)
	}
	if err := r.run(ctx, insert.Suffix("ON CONFLICT DO NOTHING")); err != nil {
		return fmt.Errorf("link todo tags: %w", err)
	}
	return nil
}

type todoTagRow struct {
	TodoID int64 `db:"todo_id"`
	models.Tag
}

func (r *TodoRepository) loadTags(ctx context.Context, todos []*models.Todo) error {
	if len(todos) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(todos))
	byID := make(map[int64]*models.Todo, len(todos))
	for _, t := range todos {
		t.Tags = []models.Tag{}
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}

	var rows []todoTagRow
	query := r.sb.Select("tt.todo_id", "tg.id", "tg.profile_id", "tg.name").
		From("todo_tags tt").
		Join("tags tg ON tg.id = tt.tag_id").
		Where(sq.Eq{"tt.todo_id": ids}).
		OrderBy("tg.name ASC", "tg.id ASC")
	if err := r.selectAll(ctx, &rows, query); err != nil {
		return fmt.Errorf("load todo tags: %w", err)
	}

	for _, row := range rows {
		if t, ok := byID[row.TodoID]; ok {
			t.Tags = append(t.Tags, row.Tag)
		}
	}
	return nil
}
