package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	appfs "github.com/MorenaCaparros/plataformaAPA-sub001/fs"
)

// Engines
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite3"
)

const migrationsDir = "migrations"

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	if conf.Database.Engine == EngineSQLite {
		return OpenSQLite(dbName)
	}

	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(conf.Database.Engine, u.String())
}

// Open opens the application database. With the sqlite3 engine, the database name is the DSN.
func Open(conf *core.Config) (*sqlx.DB, error) {
	return open(conf.Database.Name, false, conf)
}

// OpenSQLite opens a sqlite database with foreign keys enforced.
// A single connection is kept so that in-memory databases survive between queries.
func OpenSQLite(dsn string) (*sqlx.DB, error) {
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parsing sqlite DSN")
	}
	q := u.Query()
	q.Set("_foreign_keys", "1")
	u.RawQuery = q.Encode()

	db, err := sqlx.Open(EngineSQLite, u.String())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Ping waits for the database to accept connections.
func Ping(ctx context.Context, db *sqlx.DB) error {
	return ping(ctx, db)
}

func exists(db *sqlx.DB, query, msg string) (bool, error) {
	var found bool
	if err := db.Get(&found, query); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, errors.Wrap(err, msg)
	}
	return found, nil
}

func createAppUser(db *sqlx.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	found, err := exists(db, fmt.Sprintf("SELECT true FROM pg_roles WHERE rolname='%s'", conf.Database.User), "checking app user")
	if err != nil {
		return err
	}
	if !found {
		q := fmt.Sprintf("CREATE USER %s CREATEDB ENCRYPTED PASSWORD '%s'", conf.Database.User, conf.Database.Password)
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sqlx.DB, conf *core.Config) error {
	found, err := exists(db, fmt.Sprintf("SELECT true FROM pg_database WHERE datname='%s'", conf.Database.Name), "checking DB")
	if err != nil {
		return err
	}
	if !found {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the application role and database on a postgres server. sqlite creates files on open.
func CreateIfNotExist(ctx context.Context, conf *core.Config) error {
	if conf.Database.Engine == EngineSQLite {
		return nil
	}

	// connect as admin
	db, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(ctx, db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(db, conf); err != nil {
		return errors.Wrap(err, "creating app user")
	}

	// create DB as app user
	appDB, err := open("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = appDB.Close() }()
	if err = createDB(appDB, conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// GooseRunFunc runs a goose command over the embedded migrations.
var GooseRunFunc = goose.RunFS

// RunMigrations runs a goose command (up, down, status, redo, version...) on `db`.
func RunMigrations(db *sqlx.DB, command string, args ...string) error {
	if err := goose.SetDialect(db.DriverName()); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	if err := GooseRunFunc(command, db.DB, appfs.FS, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "running migrations %s", command)
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(db *sqlx.DB) error {
	return RunMigrations(db, "up")
}

// WithTx runs `fn` in a transaction, committed when `fn` succeeds and rolled back otherwise.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
