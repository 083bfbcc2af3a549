package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_Create(t *testing.T) {
	h := NewTestHelpers(t)
	ctx := context.Background()
	profile := h.CreateProfile("alice@example.com")
	other := h.CreateProfile("bob@example.com")

	tag, err := h.tags.Create(ctx, profile, TagInput{Name: "  Work "})
	require.NoError(t, err)
	assert.Equal(t, "Work", tag.Name)

	tests := []struct {
		name  string
		input string
	}{
		{"blank", "   "},
		{"too long", strings.Repeat("t", 31)},
		{"duplicate ignoring case", "wORK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.tags.Create(ctx, profile, TagInput{Name: tt.input})
			assertFieldError(t, err, "name")
		})
	}

	_, err = h.tags.Create(ctx, other, TagInput{Name: "work"})
	assert.NoError(t, err, "another profile may use the same name")
}

func TestTagService_ListPaginates(t *testing.T) {
	h := NewTestHelpers(t)
	ctx := context.Background()
	profile := h.CreateProfile("carol@example.com")
	for i := 0; i < 25; i++ {
		h.CreateTag(profile, fmt.Sprintf("tag%02d", i))
	}

	page, err := h.tags.List(ctx, profile, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 20)
	assert.Equal(t, "tag00", page.Items[0].Name)

	page, err = h.tags.List(ctx, profile, url.Values{"page": {"2"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "tag24", page.Items[4].Name)

	page, err = h.tags.List(ctx, profile, url.Values{"page": {"7"}})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 25, page.Total)
}

func TestTagService_DeleteKeepsTodos(t *testing.T) {
	h := NewTestHelpers(t)
	ctx := context.Background()
	profile := h.CreateProfile("dave@example.com")
	other := h.CreateProfile("erin@example.com")

	tag := h.CreateTag(profile, "temp")
	todo := h.CreateTodo(profile, TodoInput{Title: "tagged", Tags: []int64{tag.ID}})

	assert.ErrorIs(t, h.tags.Delete(ctx, other, tag.ID), ErrNotFound)
	require.NoError(t, h.tags.Delete(ctx, profile, tag.ID))
	assert.ErrorIs(t, h.tags.Delete(ctx, profile, tag.ID), ErrNotFound)

	reloaded, err := h.todos.Get(ctx, profile, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Tags)
}
