// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/gurkanbulca/todoapp/internal/database"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// base holds what every repository needs: a statement builder, the handle
// statements run on (the pool or a transaction) and a clock.
type base struct {
	db   *database.DB
	exec sqlx.ExtContext
	sb   sq.StatementBuilderType
	now  func() time.Time
}

func newBase(db *database.DB) base {
	return base{
		db:   db,
		exec: db.DB,
		sb:   db.Builder,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (b base) withTx(tx *sqlx.Tx) base {
	b.exec = tx
	return b
}

func (b base) get(ctx context.Context, dest interface{}, query sq.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := sqlx.GetContext(ctx, b.exec, dest, sql, args...); err != nil {
		if database.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (b base) selectAll(ctx context.Context, dest interface{}, query sq.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.SelectContext(ctx, b.exec, dest, sql, args...)
}

// insert runs an INSERT ... RETURNING id and returns the new id.
func (b base) insert(ctx context.Context, query sq.InsertBuilder) (int64, error) {
	sql, args, err := query.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var id int64
	if err := b.exec.QueryRowxContext(ctx, sql, args...).Scan(&id); err != nil {
		if database.IsUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// execAffecting runs a statement and returns ErrNotFound when it touched no rows.
func (b base) execAffecting(ctx context.Context, query sq.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	res, err := b.exec.ExecContext(ctx, sql, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (b base) run(ctx context.Context, query sq.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	_, err = b.exec.ExecContext(ctx, sql, args...)
	return err
}

func (b base) count(ctx context.Context, query sq.SelectBuilder) (int, error) {
	var n int
	if err := b.get(ctx, &n, query); err != nil {
		return 0, err
	}
	return n, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
