// internal/service/tag_service.go
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gurkanbulca/todoapp/internal/database"
	"github.com/gurkanbulca/todoapp/internal/filter"
	"github.com/gurkanbulca/todoapp/internal/models"
	"github.com/gurkanbulca/todoapp/internal/repository"
	"github.com/gurkanbulca/todoapp/internal/validation"
)

type TagInput struct {
	Name string `json:"name"`
}

type TagService struct {
	tags     *repository.TagRepository
	logger   *log.Logger
	pageSize int
}

func NewTagService(db *database.DB, logger *log.Logger, pageSize int) *TagService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &TagService{
		tags:     repository.NewTagRepository(db),
		logger:   logger.With("component", "tags"),
		pageSize: pageSize,
	}
}

func (s *TagService) List(ctx context.Context, profile *models.Profile, params url.Values) (*ListResult[models.Tag], error) {
	page := filter.ParsePage(params, s.pageSize)
	tags, total, err := s.tags.List(ctx, profile.ID, page)
	if err != nil {
		return nil, err
	}
	return &ListResult[models.Tag]{
		Items:      tags,
		Page:       page.Number,
		PageSize:   page.Size,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}, nil
}

// Create adds a tag unless the profile already has one with the same name, ignoring case.
func (s *TagService) Create(ctx context.Context, profile *models.Profile, in TagInput) (*models.Tag, error) {
	name, err := s.validateTagName(ctx, profile, in.Name)
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{ProfileID: profile.ID, Name: name}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func (s *TagService) validateTagName(ctx context.Context, profile *models.Profile, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	errs := validation.Struct(struct {
		Name string `json:"name" validate:"required,max=30"`
	}{Name: name})
	if err := errs.Err(); err != nil {
		return "", err
	}

	existing, err := s.tags.ListAll(ctx, profile.ID)
	if err != nil {
		return "", err
	}
	key := foldTagName(name)
	for _, t := range existing {
		if foldTagName(t.Name) == key {
			return "", validation.New("name", "Tag with this name already exists.")
		}
	}
	return name, nil
}

// Delete removes the tag from the profile and from every todo carrying it.
func (s *TagService) Delete(ctx context.Context, profile *models.Profile, id int64) error {
	if err := s.tags.Delete(ctx, profile.ID, id); err != nil {
		return notFound(err)
	}
	s.logger.Debug("tag deleted", "tag_id", id, "profile_id", profile.ID)
	return nil
}
