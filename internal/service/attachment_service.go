// internal/service/attachment_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/models"
	"github.com/gurkanbulca/todoapp/internal/repository"
	"github.com/gurkanbulca/todoapp/internal/validation"
	"github.com/gurkanbulca/todoapp/pkg/storage"
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// AttachmentService manages files attached to todos. Every call first checks
// that the todo belongs to the acting profile.
type AttachmentService struct {
	todos       *repository.TodoRepository
	attachments *repository.AttachmentRepository
	media       *storage.Storage
	logger      *log.Logger
}

func NewAttachmentService(db *database.DB, media *storage.Storage, logger *log.Logger) *AttachmentService {
	return &AttachmentService{
		todos:       repository.NewTodoRepository(db),
		attachments: repository.NewAttachmentRepository(db),
		media:       media,
		logger:      logger.With("component", "attachments"),
	}
}

func (s *AttachmentService) checkOwner(ctx context.Context, profile *models.Profile, todoID int64) error {
	if _, err := s.todos.Get(ctx, profile.ID, todoID); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *AttachmentService) List(ctx context.Context, profile *models.Profile, todoID int64) ([]models.Attachment, error) {
	if err := s.checkOwner(ctx, profile, todoID); err != nil {
		return nil, err
	}
	return s.attachments.ListByTodo(ctx, todoID)
}

func (s *AttachmentService) Upload(ctx context.Context, profile *models.Profile, todoID int64, up Upload) (*models.Attachment, error) {
	if err := s.checkOwner(ctx, profile, todoID); err != nil {
		return nil, err
	}

	path, size, err := s.media.SaveAttachment(up.Body, up.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFile) {
			return nil, validation.New("file", "The submitted file is empty.")
		}
		return nil, fmt.Errorf("save attachment: %w", err)
	}

	a := &models.Attachment{
		TodoID:       todoID,
		File:         path,
		OriginalName: storage.CleanName(up.Filename),
		Size:         size,
		ContentType:  up.ContentType,
	}
	if a.ContentType == "" {
		a.ContentType = "application/octet-stream"
	}
	if err := s.attachments.Create(ctx, a); err != nil {
		if rmErr := s.media.Remove(path); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", "path", path, "err", rmErr)
		}
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	return a, nil
}

// Open returns the attachment and its file. The caller closes the file.
func (s *AttachmentService) Open(ctx context.Context, profile *models.Profile, todoID, id int64) (*models.Attachment, afero.File, error) {
	if err := s.checkOwner(ctx, profile, todoID); err != nil {
		return nil, nil, err
	}
	a, err := s.attachments.Get(ctx, todoID, id)
	if err != nil {
		return nil, nil, notFound(err)
	}

	f, err := s.media.Open(a.File)
	if err != nil {
		if errors.Is(err, afero.ErrFileNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open attachment: %w", err)
	}
	return a, f, nil
}

func (s *AttachmentService) Delete(ctx context.Context, profile *models.Profile, todoID, id int64) error {
	if err := s.checkOwner(ctx, profile, todoID); err != nil {
		return err
	}
	a, err := s.attachments.Get(ctx, todoID, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.attachments.Delete(ctx, todoID, id); err != nil {
		return notFound(err)
	}
	if err := s.media.Remove(a.File); err != nil {
		s.logger.Warn("failed to remove attachment file", "attachment_id", id, "path", a.File, "err", err)
	}
	return nil
}
