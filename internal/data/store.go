package data

import (
	"context"
	"database/sql"
	"fmt"

	"go-wiki-api/internal/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Repository is the contract shared by the entity repositories.
// K is the id type and P the partial-update type of entity T.
type Repository[T any, K comparable, P any] interface {
	List(ctx context.Context, opts query.Options) ([]T, error)
	GetByID(ctx context.Context, id K) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, id K, patch P) (*T, error)
	Delete(ctx context.Context, id K) error
}

// Store is the handle every repository is built on. It carries the pool,
// the dialect and a statement builder emitting the dialect's placeholders.
type Store struct {
	db       *sqlx.DB
	dialect  Dialect
	sb       sq.StatementBuilderType
	compiler *query.Compiler
}

// NewStore wraps an open pool.
func NewStore(db *sqlx.DB, dialect Dialect) *Store {
	return &Store{
		db:       db,
		dialect:  dialect,
		sb:       sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder()),
		compiler: query.NewCompiler(dialect.Placeholder()),
	}
}

// DB exposes the pool, e.g. for the policy adapter and metrics.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// inTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// list compiles opts for kind and scans every row into T. No rows is an
// empty, non-nil slice.
func list[T any](ctx context.Context, s *Store, kind query.Kind, opts query.Options, extra ...sq.Sqlizer) ([]T, error) {
	b, err := s.compiler.Compile(kind, opts, extra...)
	if err != nil {
		return nil, err
	}
	out, err := selectAll[T](ctx, s.db, b)
	if err != nil {
		return nil, HandleSQLError(err, kind)
	}
	return out, nil
}

// getByID loads a single row of kind, returning ErrNotFound when absent.
func getByID[T any](ctx context.Context, q sqlx.QueryerContext, s *Store, kind query.Kind, id any) (*T, error) {
	b := s.sb.Select(kind.Columns...).From(kind.Table).Where(sq.Eq{kind.IDColumn: id})
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var out T
	if err := sqlx.GetContext(ctx, q, &out, stmt, args...); err != nil {
		return nil, HandleSQLError(err, kind)
	}
	return &out, nil
}

func selectAll[T any](ctx context.Context, q sqlx.QueryerContext, b sq.Sqlizer) ([]T, error) {
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := sqlx.SelectContext(ctx, q, &out, stmt, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func execContext(ctx context.Context, e sqlx.ExecerContext, b sq.Sqlizer) (sql.Result, error) {
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return e.ExecContext(ctx, stmt, args...)
}

// mustAffect turns a zero-row update or delete into ErrNotFound.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
