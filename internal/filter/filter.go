// Package filter turns todo list query parameters into SQL predicates.
//
// Parsing is permissive: a value that cannot be parsed leaves that filter
// unset instead of failing the request.
package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/gurkanbulca/todoapp/internal/models"
)

// DateTimeLayout is the format accepted by due_after and due_before.
const DateTimeLayout = "2006-01-02T15:04"

// DefaultOrder is the todo list ordering: open first, then by priority, newest first.
var DefaultOrder = []string{
	"todos.is_done ASC",
	"todos.priority ASC",
	"todos.created_at DESC",
	"todos.id DESC",
}

// TodoFilter is the parsed form of a todo list query string. Nil or empty
// fields are not applied.
type TodoFilter struct {
	Search    string
	Status    models.Status
	Priority  *int
	TagID     *int64
	DueAfter  *time.Time
	DueBefore *time.Time
}

// ParseTodoFilter reads q, status, priority, tag, due_after and due_before.
// Values are trimmed first; a blank value applies no filter. Naive due bounds
// are interpreted in loc.
func ParseTodoFilter(params url.Values, loc *time.Location) TodoFilter {
	if loc == nil {
		loc = time.UTC
	}

	get := func(key string) string {
		return strings.TrimSpace(params.Get(key))
	}

	f := TodoFilter{Search: get("q")}

	switch status := models.Status(get("status")); status {
	case models.StatusOpen, models.StatusDone, models.StatusArchived:
		f.Status = status
	}

	if v, ok := parseDigits(get("priority")); ok && v <= int64(^uint32(0)>>1) {
		p := int(v)
		f.Priority = &p
	}
	if v, ok := parseDigits(get("tag")); ok {
		f.TagID = &v
	}

	f.DueAfter = parseDateTime(get("due_after"), loc)
	f.DueBefore = parseDateTime(get("due_before"), loc)

	return f
}

// Where builds the predicate for todos owned by profileID that match f.
func (f TodoFilter) Where(profileID int64) sq.Sqlizer {
	conds := sq.And{sq.Eq{"todos.profile_id": profileID}}

	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		conds = append(conds, sq.Or{
			sq.Expr(`LOWER(todos.title) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(todos.description) LIKE ? ESCAPE '\'`, pattern),
		})
	}

	switch f.Status {
	case models.StatusOpen:
		conds = append(conds, sq.Eq{"todos.is_done": false}, sq.Eq{"todos.archived": false})
	case models.StatusDone:
		conds = append(conds, sq.Eq{"todos.is_done": true}, sq.Eq{"todos.archived": false})
	case models.StatusArchived:
		conds = append(conds, sq.Eq{"todos.archived": true})
	}

	if f.Priority != nil {
		conds = append(conds, sq.Eq{"todos.priority": *f.Priority})
	}

	if f.TagID != nil {
		conds = append(conds, sq.Expr(
			"EXISTS (SELECT 1 FROM todo_tags tt JOIN tags tg ON tg.id = tt.tag_id"+
				" WHERE tt.todo_id = todos.id AND tt.tag_id = ? AND tg.profile_id = ?)",
			*f.TagID, profileID,
		))
	}

	if f.DueAfter != nil {
		conds = append(conds, sq.GtOrEq{"todos.due_date": f.DueAfter.UTC()})
	}
	if f.DueBefore != nil {
		conds = append(conds, sq.LtOrEq{"todos.due_date": f.DueBefore.UTC()})
	}

	return conds
}

func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseDateTime(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, loc)
	if err != nil {
		return nil
	}
	return &t
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
