package data

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go-wiki-api/internal/query"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	mysqlDuplicateKey = regexp.MustCompile(`for key '([^']+)'`)
	// modernc prefixes the SQLite message with its own "constraint failed: ".
	sqliteUniqueColumn = regexp.MustCompile(`(?:UNIQUE|PRIMARY KEY) constraint failed: ([A-Za-z0-9_.]+)`)
)

// HandleSQLError maps driver errors to the package's sentinel errors so that
// callers never need to know which database is behind the store.
func HandleSQLError(err error, kind query.Kind) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			field := ""
			if m := mysqlDuplicateKey.FindStringSubmatch(mysqlErr.Message); m != nil {
				field = constraintField(kind, m[1])
			}
			return &ConflictError{Entity: kind.Name, Field: field}
		case 1451, 1452:
			return fmt.Errorf("%w: %s", ErrInvalidReference, mysqlErr.Message)
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &ConflictError{Entity: kind.Name, Field: constraintField(kind, pgErr.ConstraintName)}
		case "23503":
			return fmt.Errorf("%w: %s", ErrInvalidReference, pgErr.Detail)
		}
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xFF == sqlite3.SQLITE_CONSTRAINT {
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY constraint failed"):
			return &ConflictError{Entity: kind.Name, Field: sqliteConflictField(kind, msg)}
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return fmt.Errorf("%w: %s", ErrInvalidReference, msg)
		}
	}

	return fmt.Errorf("sql error: %w", err)
}

// sqliteConflictField returns the first column named by a SQLite UNIQUE or
// PRIMARY KEY failure, e.g. "UNIQUE constraint failed: tags.id (1555)".
func sqliteConflictField(kind query.Kind, msg string) string {
	m := sqliteUniqueColumn.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	return constraintField(kind, m[1])
}

// constraintField recovers the column behind a constraint or key name.
// Unique indexes are named uq_<table>_<column>; primary keys map to the id.
func constraintField(kind query.Kind, name string) string {
	if i := strings.LastIndex(name, "."); i != -1 {
		name = name[i+1:]
	}
	switch {
	case name == "PRIMARY", strings.HasSuffix(name, "_pkey"):
		return fieldName(kind, kind.IDColumn)
	case strings.HasPrefix(name, "uq_"+kind.Table+"_"):
		return fieldName(kind, strings.TrimPrefix(name, "uq_"+kind.Table+"_"))
	}
	return fieldName(kind, name)
}

// fieldName translates a column back to its public field name.
func fieldName(kind query.Kind, column string) string {
	for field, col := range kind.Sortable {
		if col == column {
			return field
		}
	}
	return column
}
