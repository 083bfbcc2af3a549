// internal/repository/attachment_repository.go
package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/models"
)

var attachmentColumns = []string{"id", "todo_id", "file", "original_name", "size", "content_type", "uploaded_at"}

// AttachmentRepository stores attachment rows. Callers check todo ownership first.
type AttachmentRepository struct {
	base
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *database.DB) *AttachmentRepository {
	return &AttachmentRepository{base: newBase(db)}
}

// Create inserts the attachment row and stamps uploaded_at.
func (r *AttachmentRepository) Create(ctx context.Context, a *models.Attachment) error {
	a.UploadedAt = r.now()
	id, err := r.insert(ctx, r.sb.Insert("attachments").
		Columns("todo_id", "file", "original_name", "size", "content_type", "uploaded_at").
		Values(a.TodoID, a.File, a.OriginalName, a.Size, a.ContentType, a.UploadedAt))
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	a.ID = id
	return nil
}

// ListByTodo returns the todo's attachments, newest first.
func (r *AttachmentRepository) ListByTodo(ctx context.Context, todoID int64) ([]models.Attachment, error) {
	attachments := []models.Attachment{}
	query := r.sb.Select(attachmentColumns...).From("attachments").
		Where(sq.Eq{"todo_id": todoID}).
		OrderBy("uploaded_at DESC", "id DESC")
	if err := r.selectAll(ctx, &attachments, query); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// Get returns one attachment of the todo.
func (r *AttachmentRepository) Get(ctx context.Context, todoID, id int64) (*models.Attachment, error) {
	var a models.Attachment
	query := r.sb.Select(attachmentColumns...).From("attachments").Where(sq.Eq{"id": id, "todo_id": todoID})
	if err := r.get(ctx, &a, query); err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes the attachment row. The stored file is left to the caller.
func (r *AttachmentRepository) Delete(ctx context.Context, todoID, id int64) error {
	return r.execAffecting(ctx, r.sb.Delete("attachments").Where(sq.Eq{"id": id, "todo_id": todoID}))
}
