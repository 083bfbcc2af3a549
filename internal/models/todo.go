// internal/models/todo.go
package models

import (
	"strings"
	"time"
)

type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// Status is derived from the done and archived flags.
type Status string

const (
	StatusOpen     Status = "open"
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

type Tag struct {
	ID        int64  `db:"id" json:"id"`
	ProfileID int64  `db:"profile_id" json:"-"`
	Name      string `db:"name" json:"name"`
}

type Todo struct {
	ID          int64      `db:"id" json:"id"`
	ProfileID   int64      `db:"profile_id" json:"-"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Priority    Priority   `db:"priority" json:"priority"`
	IsDone      bool       `db:"is_done" json:"is_done"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Archived    bool       `db:"archived" json:"archived"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	Tags    []Tag    `db:"-" json:"tags"`
	Profile *Profile `db:"-" json:"-"`
}

// BeforeSave applies the invariants every stored todo must satisfy:
// the title is trimmed and completed_at is present exactly when the todo is done.
func (t *Todo) BeforeSave(now time.Time) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Priority == 0 {
		t.Priority = PriorityMedium
	}
	if t.IsDone {
		if t.CompletedAt == nil {
			completed := now
			t.CompletedAt = &completed
		}
	} else {
		t.CompletedAt = nil
	}
}

func (t *Todo) Status() Status {
	switch {
	case t.Archived:
		return StatusArchived
	case t.IsDone:
		return StatusDone
	default:
		return StatusOpen
	}
}

func (t *Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.IsDone && t.DueDate.Before(now)
}

func (t *Todo) OwnerFullName() string {
	if t.Profile == nil {
		return ""
	}
	return t.Profile.FullName()
}

type Attachment struct {
	ID           int64     `db:"id" json:"id"`
	TodoID       int64     `db:"todo_id" json:"todo_id"`
	File         string    `db:"file" json:"file"`
	OriginalName string    `db:"original_name" json:"original_name"`
	Size         int64     `db:"size" json:"size"`
	ContentType  string    `db:"content_type" json:"content_type"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}
