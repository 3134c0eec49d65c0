package data

import (
	"context"
	"time"

	"go-wiki-api/internal/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// UserRepository stores user accounts.
type UserRepository struct {
	store *Store
	now   func() time.Time
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store, now: time.Now}
}

func (r *UserRepository) List(ctx context.Context, opts query.Options) ([]User, error) {
	return list[User](ctx, r.store, query.User, opts)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return getByID[User](ctx, r.store.db, r.store, query.User, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	stmt, args, err := r.store.sb.Select(query.User.Columns...).
		From(query.User.Table).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var user User
	if err := sqlx.GetContext(ctx, r.store.db, &user, stmt, args...); err != nil {
		return nil, HandleSQLError(err, query.User)
	}
	return &user, nil
}

// Create inserts the user and sets its generated id.
func (r *UserRepository) Create(ctx context.Context, user *User) error {
	user.CreatedAt = r.now().UTC().Truncate(time.Second)
	b := r.store.sb.Insert("users").
		Columns("email", "password", "name", "active", "created_at").
		Values(user.Email, user.Password, user.Name, user.Active, user.CreatedAt)

	if r.store.dialect == Postgres {
		stmt, args, err := b.Suffix("RETURNING id").ToSql()
		if err != nil {
			return err
		}
		if err := r.store.db.QueryRowxContext(ctx, stmt, args...).Scan(&user.ID); err != nil {
			return HandleSQLError(err, query.User)
		}
		return nil
	}

	res, err := execContext(ctx, r.store.db, b)
	if err != nil {
		return HandleSQLError(err, query.User)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// Update supports only toggling the active flag.
func (r *UserRepository) Update(ctx context.Context, id int64, active bool) (*User, error) {
	if err := r.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetActive enables or disables authentication for a user.
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.store.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getByID[User](ctx, tx, r.store, query.User, id); err != nil {
			return err
		}
		b := r.store.sb.Update("users").Set("active", active).Where("id = ?", id)
		if _, err := execContext(ctx, tx, b); err != nil {
			return HandleSQLError(err, query.User)
		}
		return nil
	})
}

// Discard removes an account that was never activated. Active accounts are
// left alone and reported as ErrNotFound.
func (r *UserRepository) Discard(ctx context.Context, id int64) error {
	b := r.store.sb.Delete("users").Where(sq.Eq{"id": id, "active": false})
	res, err := execContext(ctx, r.store.db, b)
	if err != nil {
		return HandleSQLError(err, query.User)
	}
	return mustAffect(res)
}

// Delete is reserved; accounts are deactivated instead.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return ErrNotImplemented
}
