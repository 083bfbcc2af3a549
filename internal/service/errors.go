// internal/service/errors.go
package service

import (
	"errors"

	"github.com/gurkanbulca/todoapp/internal/repository"
)

var (
	// ErrNotFound covers both missing records and records owned by another profile.
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// notFound maps a repository miss to ErrNotFound and passes everything else through.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ListResult is one page of a paginated listing.
type ListResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
