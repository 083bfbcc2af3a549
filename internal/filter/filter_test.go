package filter

import (
	"net/url"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/todoapp/internal/models"
)

func TestParseTodoFilter(t *testing.T) {
	istanbul, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		check func(t *testing.T, f TodoFilter)
	}{
		{
			name:  "empty query applies nothing",
			query: "",
			check: func(t *testing.T, f TodoFilter) {
				assert.Equal(t, TodoFilter{}, f)
			},
		},
		{
			name:  "all filters",
			query: "q=milk&status=done&priority=1&tag=12&due_after=2025-01-02T09:30&due_before=2025-01-31T18:00",
			check: func(t *testing.T, f TodoFilter) {
				assert.Equal(t, "milk", f.Search)
				assert.Equal(t, models.StatusDone, f.Status)
				require.NotNil(t, f.Priority)
				assert.Equal(t, 1, *f.Priority)
				require.NotNil(t, f.TagID)
				assert.Equal(t, int64(12), *f.TagID)
				require.NotNil(t, f.DueAfter)
				assert.True(t, f.DueAfter.Equal(time.Date(2025, 1, 2, 9, 30, 0, 0, istanbul)))
				require.NotNil(t, f.DueBefore)
				assert.Equal(t, istanbul, f.DueBefore.Location())
			},
		},
		{
			name:  "padded values are trimmed",
			query: "q=+milk+&status=+open&priority=+2+&tag=7+&due_after=+2025-01-02T09:30+",
			check: func(t *testing.T, f TodoFilter) {
				assert.Equal(t, "milk", f.Search)
				assert.Equal(t, models.StatusOpen, f.Status)
				require.NotNil(t, f.Priority)
				assert.Equal(t, 2, *f.Priority)
				require.NotNil(t, f.TagID)
				assert.Equal(t, int64(7), *f.TagID)
				require.NotNil(t, f.DueAfter)
			},
		},
		{
			name:  "whitespace only values apply nothing",
			query: "q=+++&status=+&priority=+&tag=%09",
			check: func(t *testing.T, f TodoFilter) {
				assert.Equal(t, TodoFilter{}, f)
			},
		},
		{
			name:  "unknown status is ignored",
			query: "status=pending",
			check: func(t *testing.T, f TodoFilter) {
				assert.Empty(t, f.Status)
			},
		},
		{
			name:  "non numeric priority and tag are ignored",
			query: "priority=high&tag=-3",
			check: func(t *testing.T, f TodoFilter) {
				assert.Nil(t, f.Priority)
				assert.Nil(t, f.TagID)
			},
		},
		{
			name:  "numeric priority outside the enum still applies",
			query: "priority=9",
			check: func(t *testing.T, f TodoFilter) {
				require.NotNil(t, f.Priority)
				assert.Equal(t, 9, *f.Priority)
			},
		},
		{
			name:  "unparseable due bounds are ignored",
			query: "due_after=tomorrow&due_before=2025-13-01T00:00",
			check: func(t *testing.T, f TodoFilter) {
				assert.Nil(t, f.DueAfter)
				assert.Nil(t, f.DueBefore)
			},
		},
		{
			name:  "overflowing tag id is ignored",
			query: "tag=99999999999999999999",
			check: func(t *testing.T, f TodoFilter) {
				assert.Nil(t, f.TagID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			tt.check(t, ParseTodoFilter(params, istanbul))
		})
	}
}

func TestParseTodoFilter_UnparseableEqualsOmitted(t *testing.T) {
	bad, _ := url.ParseQuery("status=open&due_after=not-a-date")
	omitted, _ := url.ParseQuery("status=open")

	assert.Equal(t, ParseTodoFilter(omitted, time.UTC), ParseTodoFilter(bad, time.UTC))
}

func TestTodoFilter_Where(t *testing.T) {
	priority := 1
	tagID := int64(5)
	after := time.Date(2025, 1, 1, 12, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))

	tests := []struct {
		name         string
		filter       TodoFilter
		wantContains []string
		wantArgs     []interface{}
	}{
		{
			name:         "scope only",
			filter:       TodoFilter{},
			wantContains: []string{"todos.profile_id = ?"},
			wantArgs:     []interface{}{int64(3)},
		},
		{
			name:   "search escapes wildcards",
			filter: TodoFilter{Search: "50%_Off"},
			wantContains: []string{
				`LOWER(todos.title) LIKE ? ESCAPE '\'`,
				" OR ",
				`LOWER(todos.description) LIKE ? ESCAPE '\'`,
			},
			wantArgs: []interface{}{int64(3), `%50\%\_off%`, `%50\%\_off%`},
		},
		{
			name:         "open status",
			filter:       TodoFilter{Status: models.StatusOpen},
			wantContains: []string{"todos.is_done = ?", "todos.archived = ?"},
			wantArgs:     []interface{}{int64(3), false, false},
		},
		{
			name:         "done status",
			filter:       TodoFilter{Status: models.StatusDone},
			wantContains: []string{"todos.is_done = ?", "todos.archived = ?"},
			wantArgs:     []interface{}{int64(3), true, false},
		},
		{
			name:         "archived status ignores done flag",
			filter:       TodoFilter{Status: models.StatusArchived},
			wantContains: []string{"todos.archived = ?"},
			wantArgs:     []interface{}{int64(3), true},
		},
		{
			name:         "priority and tag",
			filter:       TodoFilter{Priority: &priority, TagID: &tagID},
			wantContains: []string{"todos.priority = ?", "EXISTS (SELECT 1 FROM todo_tags", "tg.profile_id = ?"},
			wantArgs:     []interface{}{int64(3), 1, int64(5), int64(3)},
		},
		{
			name:         "due bounds are inclusive and normalized to UTC",
			filter:       TodoFilter{DueAfter: &after, DueBefore: &after},
			wantContains: []string{"todos.due_date >= ?", "todos.due_date <= ?"},
			wantArgs:     []interface{}{int64(3), after.UTC(), after.UTC()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := tt.filter.Where(3).ToSql()
			require.NoError(t, err)

			for _, want := range tt.wantContains {
				assert.Contains(t, query, want)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestTodoFilter_Where_NotContainsStatusWhenAbsent(t *testing.T) {
	query, _, err := TodoFilter{Search: "x"}.Where(1).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, query, "is_done")
	assert.NotContains(t, query, "archived")
}

func TestTodoFilter_Where_DollarPlaceholders(t *testing.T) {
	priority := 2
	query, _, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("todos.id").From("todos").
		Where(TodoFilter{Search: "a", Priority: &priority}.Where(7)).
		OrderBy(DefaultOrder...).
		ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "todos.profile_id = $1")
	assert.Contains(t, query, "todos.priority = $4")
	assert.Contains(t, query, "ORDER BY todos.is_done ASC, todos.priority ASC, todos.created_at DESC, todos.id DESC")
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query      string
		wantNumber int
		wantOffset uint64
	}{
		{"", 1, 0},
		{"page=2", 2, 10},
		{"page=0", 1, 0},
		{"page=-4", 1, 0},
		{"page=abc", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			params, _ := url.ParseQuery(tt.query)
			p := ParsePage(params, 10)
			assert.Equal(t, tt.wantNumber, p.Number)
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.Equal(t, uint64(10), p.Limit())
		})
	}
}

func TestPage_TotalPages(t *testing.T) {
	p := Page{Number: 1, Size: 10}
	assert.Equal(t, 1, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 2, p.TotalPages(11))
}
