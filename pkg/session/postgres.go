package session

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/robfig/cron/v3"
)

// Migrations holds the goose migrations for the identity_sessions table.
// Apply them with pkg/db.Migrate before using PostgresStore.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// DBTX is the subset of *pgxpool.Pool used by PostgresStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the identity_sessions table.
type PostgresStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewPostgresStore creates a PostgreSQL-backed session store.
//
// Example:
//
//	pool := db.MustOpen(ctx, cfg.Database)
//	if err := db.Migrate(ctx, pool, session.Migrations, "identity_migrations", log); err != nil {
//	    return err
//	}
//	store := session.NewPostgresStore(pool, log)
func NewPostgresStore(db DBTX, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostgresStore{db: db, logger: logger}
}

const (
	insertSessionSQL = `INSERT INTO identity_sessions (id, token, data, expires_at) VALUES ($1, $2, $3, $4)`
	selectSessionSQL = `SELECT data FROM identity_sessions WHERE token = $1`
	updateSessionSQL = `UPDATE identity_sessions SET token = $2, data = $3, expires_at = $4, updated_at = now() WHERE id = $1`
	deleteSessionSQL = `DELETE FROM identity_sessions WHERE id = $1`
	purgeSessionsSQL = `DELETE FROM identity_sessions WHERE expires_at < $1`
)

// Create persists a new session.
func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	data, err := Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, insertSessionSQL, sess.ID, sess.Token, data, sess.ExpiresAt)
	return err
}

// Get retrieves a session by token.
func (s *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	var data []byte
	if err := s.db.QueryRow(ctx, selectSessionSQL, token).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return sess, nil
}

// Update saves the session, including a rotated token.
func (s *PostgresStore) Update(ctx context.Context, sess *Session) error {
	data, err := Marshal(sess)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, updateSessionSQL, sess.ID, sess.Token, data, sess.ExpiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, deleteSessionSQL, id)
	return err
}

// DeleteExpired removes sessions that expired before now and returns how many were removed.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, purgeSessionsSQL, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// StartCleanup schedules DeleteExpired with a cron spec (e.g. "@every 10m")
// and returns a function that stops the scheduler.
func (s *PostgresStore) StartCleanup(spec string) (stop func(), err error) {
	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := s.DeleteExpired(ctx, time.Now())
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to purge expired sessions", slog.Any("error", err))
			return
		}
		if n > 0 {
			s.logger.InfoContext(ctx, "purged expired sessions", slog.Int64("count", n))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return func() { <-c.Stop().Done() }, nil
}

var _ Store = (*PostgresStore)(nil)
