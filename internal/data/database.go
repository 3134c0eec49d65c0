package data

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go-wiki-api/internal/config"
	"go-wiki-api/migrations"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewDB opens a connection pool for the configured driver and waits for the
// database to answer a ping, retrying with exponential backoff.
func NewDB(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, Dialect, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}
	dsn, err := prepareDSN(dialect, cfg.DSN, false)
	if err != nil {
		return nil, "", err
	}

	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == SQLite {
		// A single writer avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.ConnectTimeout
	err = backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, dialect, nil
}

// ApplyMigrations runs all up migrations embedded for the configured driver.
// It uses its own connection so the migration driver can be closed afterwards.
func ApplyMigrations(cfg config.DBConfig) error {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return err
	}
	dsn, err := prepareDSN(dialect, cfg.DSN, true)
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.FS, string(dialect))
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case MySQL:
		driver, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case Postgres:
		driver, err = migratepgx.WithInstance(db.DB, &migratepgx.Config{})
	case SQLite:
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// prepareDSN fills in the driver options the repositories rely on.
func prepareDSN(dialect Dialect, dsn string, forMigrations bool) (string, error) {
	switch dialect {
	case MySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		if cfg.Loc == nil {
			cfg.Loc = time.UTC
		}
		// Migration files hold several statements each.
		cfg.MultiStatements = forMigrations
		return cfg.FormatDSN(), nil
	case SQLite:
		return prepareSQLiteDSN(dsn)
	}
	return dsn, nil
}

func prepareSQLiteDSN(uri string) (string, error) {
	query := url.Values{}
	var err error
	if i := strings.Index(uri, "?"); i != -1 {
		query, err = url.ParseQuery(uri[i+1:])
		if err != nil {
			return uri, fmt.Errorf("error parsing dsn: %w", err)
		}
		uri = uri[:i]
	}

	has := func(prefix string) bool {
		for _, val := range query["_pragma"] {
			if strings.HasPrefix(val, prefix) {
				return true
			}
		}
		return false
	}
	if !has("foreign_keys") {
		query.Add("_pragma", "foreign_keys(1)")
	}
	if !has("journal_mode") {
		query.Add("_pragma", "journal_mode(WAL)")
	}
	if !has("busy_timeout") {
		query.Add("_pragma", "busy_timeout(5000)")
	}
	if !query.Has("_txlock") {
		query.Set("_txlock", "immediate")
	}
	return uri + "?" + query.Encode(), nil
}
