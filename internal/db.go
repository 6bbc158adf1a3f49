package internal

import (
	"database/sql"
	"log"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
)

// Connection pragmas: the cron importer writes while the API reads, so WAL
// avoids reader starvation during the weekly upsert bursts. Timestamps are
// stored RFC3339/UTC to round-trip through the updated_at scans.
var sqlitePragmas = url.Values{
	"_busy_timeout":    {"5000"},
	"_journal_mode":    {"WAL"},
	"_foreign_keys":    {"on"},
	"_loc":             {"UTC"},
	"_datetime_format": {"rfc3339"},
}

// Migrate applies any pending schema migrations from migrationsPath against
// the sqlite database at dbPath. An up-to-date schema is not an error.
func Migrate(migrationsPath, dbPath string) error {
	m, err := migrate.New("file://"+migrationsPath, "sqlite3://"+dbPath)
	if err != nil {
		return errors.Wrap(err, "failed to initialize migrations")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "failed to apply migrations")
	}

	return nil
}

// Connect opens the station/price database at dbPath with the deployment's
// sqlite pragmas applied, and verifies the connection before returning.
func Connect(dbPath string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	dsn := dbPath + sep + sqlitePragmas.Encode()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", dbPath)
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrapf(err, "failed to reach database %s", dbPath)
	}

	log.Printf("fuel price database ready: %s", dbPath)
	return db, nil
}
