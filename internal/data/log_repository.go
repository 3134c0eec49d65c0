package data

import (
	"context"
	"fmt"
	"time"

	"go-wiki-api/internal/query"

	sq "github.com/Masterminds/squirrel"
)

// logEntryKind is used only for error mapping of entry inserts.
var logEntryKind = query.Kind{Name: "log entry", Table: "log_entries", IDColumn: "position"}

// LogRepository stores audit logs and their entries.
type LogRepository struct {
	store *Store
}

func NewLogRepository(store *Store) *LogRepository {
	return &LogRepository{store: store}
}

func (r *LogRepository) List(ctx context.Context, opts query.Options) ([]Log, error) {
	return list[Log](ctx, r.store, query.Log, opts)
}

// GetByID returns the log with its entries in position order.
func (r *LogRepository) GetByID(ctx context.Context, id string) (*Log, error) {
	l, err := getByID[Log](ctx, r.store.db, r.store, query.Log, id)
	if err != nil {
		return nil, err
	}
	b := r.store.sb.Select("log_id", "position", "level", "message", "created_at").
		From("log_entries").
		Where(sq.Eq{"log_id": id}).
		OrderBy("position")
	entries, err := selectAll[LogEntry](ctx, r.store.db, b)
	if err != nil {
		return nil, HandleSQLError(err, logEntryKind)
	}
	l.Entries = entries
	return l, nil
}

// Create inserts a provisional log row. The caller supplies the id.
func (r *LogRepository) Create(ctx context.Context, l *Log) error {
	b := r.store.sb.Insert("logs").
		Columns("id", "method", "route", "user_id", "status", "created_at").
		Values(l.ID, l.Method, l.Route, l.UserID, l.Status, l.CreatedAt)
	if _, err := execContext(ctx, r.store.db, b); err != nil {
		return HandleSQLError(err, query.Log)
	}
	return nil
}

// AddEntry appends an entry. An unknown log id is ErrInvalidReference.
func (r *LogRepository) AddEntry(ctx context.Context, e *LogEntry) error {
	b := r.store.sb.Insert("log_entries").
		Columns("log_id", "position", "level", "message", "created_at").
		Values(e.LogID, e.Position, e.Level, e.Message, e.CreatedAt)
	if _, err := execContext(ctx, r.store.db, b); err != nil {
		return HandleSQLError(err, logEntryKind)
	}
	return nil
}

// Finalize sets the terminal status. It succeeds once per log; later calls
// and unknown ids return ErrNotFound.
func (r *LogRepository) Finalize(ctx context.Context, id string, status int, at time.Time) error {
	b := r.store.sb.Update("logs").
		Set("status", status).
		Set("finalized_at", at).
		Where(sq.Eq{"id": id, "finalized_at": nil})
	res, err := execContext(ctx, r.store.db, b)
	if err != nil {
		return HandleSQLError(err, query.Log)
	}
	if err := mustAffect(res); err != nil {
		return fmt.Errorf("log %s not open: %w", id, err)
	}
	return nil
}
