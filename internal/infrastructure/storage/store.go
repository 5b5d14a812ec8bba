package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ContentCurator/internal/ports"
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store persists the curation tables in Postgres or SQLite.
type Store struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
	now    func() time.Time
	logger *slog.Logger
}

var (
	_ ports.TopicRepository     = (*Store)(nil)
	_ ports.SourceRepository    = (*Store)(nil)
	_ ports.ItemRepository      = (*Store)(nil)
	_ ports.PrincipleRepository = (*Store)(nil)
	_ ports.ReportRepository    = (*Store)(nil)
	_ ports.ActionRepository    = (*Store)(nil)
	_ ports.FeedbackRepository  = (*Store)(nil)
)

// Open connects to the database and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverPostgres
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	store, err := New(ctx, db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing connection pool and applies the schema.
func New(ctx context.Context, db *sql.DB, driver string) (*Store, error) {
	s := &Store{db: db, driver: driver, now: time.Now, logger: slog.Default()}

	switch driver {
	case DriverPostgres:
		s.sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	case DriverSQLite:
		s.sb = sq.StatementBuilder.PlaceholderFormat(sq.Question)
		// SQLite serializes writers; a single connection also keeps
		// in-memory databases alive for the lifetime of the pool.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// WithLogger sets the logger used for row-level warnings.
func (s *Store) WithLogger(log *slog.Logger) *Store {
	if log != nil {
		s.logger = log
	}
	return s
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver reports the backend name.
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func (s *Store) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) utcNow() time.Time {
	return s.now().UTC()
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i > 0 {
		return stmt[:i]
	}
	return stmt
}
