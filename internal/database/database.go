package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kevinpasricha/team-to-doers/internal/config"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Store handles all database operations. It supports both SQLite
// (default, file-backed) and PostgreSQL.
type Store struct {
	db     *sql.DB
	driver string
}

// New opens the database configured in cfg, retrying the initial
// connection, and initializes the schema.
func New(cfg *config.Config) (*Store, error) {
	var db *sql.DB
	var err error

	switch cfg.Database.Driver {
	case "postgres":
		db, err = openPostgres(cfg)
	case "sqlite", "":
		db, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, driver: cfg.Database.Driver}
	if s.driver == "" {
		s.driver = "sqlite"
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("Database initialized (driver: %s)", s.driver)
	return s, nil
}

func openSQLite(cfg *config.Config) (*sql.DB, error) {
	dataDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := cfg.Database.Path
	if cfg.Database.WALMode {
		dsn += "?_journal=WAL&_busy_timeout=5000"
	}

	db, err := connectWithRetry("sqlite3", dsn, cfg)
	if err != nil {
		return nil, err
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func openPostgres(cfg *config.Config) (*sql.DB, error) {
	db, err := connectWithRetry("postgres", cfg.Database.DSN, cfg)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func connectWithRetry(driver, dsn string, cfg *config.Config) (*sql.DB, error) {
	var lastErr error
	for i := 0; i < cfg.Database.MaxRetries; i++ {
		db, err := sql.Open(driver, dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				return db, nil
			}
			db.Close()
		}
		lastErr = err
		log.Printf("Database connection attempt %d/%d failed: %v", i+1, cfg.Database.MaxRetries, err)
		time.Sleep(time.Duration(cfg.Database.RetryDelay) * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.Database.MaxRetries, lastErr)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts ?-style placeholders to the $n form PostgreSQL
// expects. Queries throughout the store are written with ?.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insertID runs an INSERT and returns the generated row id. PostgreSQL
// has no LastInsertId, so the query gets a RETURNING clause there.
func (s *Store) insertID(query string, args ...any) (int64, error) {
	if s.driver == "postgres" {
		var id int64
		err := s.db.QueryRow(s.rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
