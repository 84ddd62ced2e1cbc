package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type PostgresRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewPostgresRepository(db DBTX, logger zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

type postgresStore struct {
	conn   *sql.DB
	tx     *sql.Tx
	logger zerolog.Logger

	users         UserRepository
	dissertations DissertationRepository
	milestones    MilestoneRepository
	submissions   SubmissionRepository
	messages      MessageRepository
}

func NewPostgresStore(db *sql.DB, logger zerolog.Logger) Store {
	return newPostgresStore(db, nil, logger)
}

func newPostgresStore(conn *sql.DB, tx *sql.Tx, logger zerolog.Logger) *postgresStore {
	var q DBTX = conn
	if tx != nil {
		q = tx
	}

	base := NewPostgresRepository(q, logger)

	return &postgresStore{
		conn:          conn,
		tx:            tx,
		logger:        logger,
		users:         &userRepository{base},
		dissertations: &dissertationRepository{base},
		milestones:    &milestoneRepository{base},
		submissions:   &submissionRepository{base},
		messages:      &messageRepository{base},
	}
}

func (s *postgresStore) Users() UserRepository                 { return s.users }
func (s *postgresStore) Dissertations() DissertationRepository { return s.dissertations }
func (s *postgresStore) Milestones() MilestoneRepository       { return s.milestones }
func (s *postgresStore) Submissions() SubmissionRepository     { return s.submissions }
func (s *postgresStore) Messages() MessageRepository           { return s.messages }

func (s *postgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			}
			return
		}
		if cmErr := tx.Commit(); cmErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cmErr)
		}
	}()

	return fn(newPostgresStore(s.conn, tx, s.logger))
}

func (s *postgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.conn.PingContext(ctx)
}

const uniqueViolation = "23505"

// translateError maps driver errors onto repository errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}
