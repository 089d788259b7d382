package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

var DB *sql.DB

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// Dialect captures the SQL differences between the supported drivers.
type Dialect struct {
	Driver       string
	InsertIgnore string
	schema       []string
}

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return Dialect{Driver: driver, InsertIgnore: "INSERT IGNORE INTO", schema: mysqlSchema}, nil
	case "sqlite3":
		return Dialect{Driver: driver, InsertIgnore: "INSERT OR IGNORE INTO", schema: sqliteSchema}, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// Open opens and pings a database for driver.
func Open(driver, dsn string) (*sql.DB, error) {
	if _, err := DialectFor(driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if driver == "sqlite3" {
		// One writer at a time; a second connection would hit SQLITE_BUSY
		// inside transactions.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	return db, nil
}

// Connect opens the process-wide database.
func Connect(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	DB = db

	logrus.WithField("driver", driver).Info("Database connected successfully")
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}

// CreateTables creates the schema for dialect if it does not exist.
func CreateTables(db *sql.DB, dialect Dialect) error {
	for _, stmt := range dialect.schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	logrus.WithField("driver", dialect.Driver).Info("Database tables created successfully")
	return nil
}

// IsUniqueViolation reports whether err is a unique or primary key
// constraint failure from either driver.
func IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
