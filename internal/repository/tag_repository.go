// internal/repository/tag_repository.go
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

var tagColumns = []string{"id", "profile_id", "name"}

// TagRepository stores tags. Every query is scoped to a profile.
type TagRepository struct {
	base
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *database.DB) *TagRepository {
	return &TagRepository{base: newBase(db)}
}

// WithTx returns a copy running its queries in tx.
func (r *TagRepository) WithTx(tx *sqlx.Tx) *TagRepository {
	return &TagRepository{base: r.withTx(tx)}
}

// List returns one page of the profile's tags ordered by name, and the total count.
func (r *TagRepository) List(ctx context.Context, profileID int64, page filter.Page) ([]models.Tag, int, error) {
	scope := sq.Eq{"profile_id": profileID}

	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("tags").Where(scope))
	if err != nil {
		return nil, 0, fmt.Errorf("count tags: %w", err)
	}

	tags := []models.Tag{}
	query := r.sb.Select(tagColumns...).From("tags").Where(scope).
		OrderBy("name ASC", "id ASC").
		Limit(page.Limit()).Offset(page.Offset())
	if err := r.selectAll(ctx, &tags, query); err != nil {
		return nil, 0, fmt.Errorf("list tags: %w", err)
	}
	return tags, total, nil
}

// ListAll returns every tag of the profile ordered by name.
func (r *TagRepository) ListAll(ctx context.Context, profileID int64) ([]models.Tag, error) {
	tags := []models.Tag{}
	query := r.sb.Select(tagColumns...).From("tags").Where(sq.Eq{"profile_id": profileID}).OrderBy("name ASC", "id ASC")
	if err := r.selectAll(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Get returns the profile's tag with the given id.
func (r *TagRepository) Get(ctx context.Context, profileID, id int64) (*models.Tag, error) {
	var tag models.Tag
	query := r.sb.Select(tagColumns...).From("tags").Where(sq.Eq{"id": id, "profile_id": profileID})
	if err := r.get(ctx, &tag, query); err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetMany returns the tags among ids that belong to the profile.
func (r *TagRepository) GetMany(ctx context.Context, profileID int64, ids []int64) ([]models.Tag, error) {
	tags := []models.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	query := r.sb.Select(tagColumns...).From("tags").
		Where(sq.Eq{"profile_id": profileID, "id": ids}).
		OrderBy("name ASC")
	if err := r.selectAll(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	return tags, nil
}

// Create inserts the tag and sets its ID.
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	id, err := r.insert(ctx, r.sb.Insert("tags").Columns("profile_id", "name").Values(tag.ProfileID, tag.Name))
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	tag.ID = id
	return nil
}

// Delete removes a tag of the profile. Todo links go with it through the foreign key.
func (r *TagRepository) Delete(ctx context.Context, profileID, id int64) error {
	return r.execAffecting(ctx, r.sb.Delete("tags").Where(sq.Eq{"id": id, "profile_id": profileID}))
}
