package repository

import (
	"context"
	"errors"
	"io"

	"github.com/RubachokBoss/thesisflow/internal/models"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// ErrFileNotFound is returned by FileStorage when the object does not exist.
var ErrFileNotFound = errors.New("file not found")

// Lookups return (nil, nil) when the record does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

type DissertationRepository interface {
	Create(ctx context.Context, d *models.Dissertation) error
	GetByID(ctx context.Context, id string) (*models.Dissertation, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.Dissertation, error)
	GetBySupervisorID(ctx context.Context, supervisorID string) ([]models.Dissertation, error)
	GetAllWithDetails(ctx context.Context) ([]models.DissertationWithDetails, error)
	Delete(ctx context.Context, id string) error
}

type MilestoneRepository interface {
	CreateBatch(ctx context.Context, milestones []models.Milestone) error
	GetByID(ctx context.Context, id string) (*models.Milestone, error)
	GetBySubmissionID(ctx context.Context, submissionID string) (*models.Milestone, error)
	// GetByStudentID returns the student's milestones ordered by position.
	GetByStudentID(ctx context.Context, studentID string) ([]models.Milestone, error)
	// LockByStudentID is GetByStudentID that also holds row locks on the
	// sequence until the surrounding transaction ends.
	LockByStudentID(ctx context.Context, studentID string) ([]models.Milestone, error)
	Update(ctx context.Context, m *models.Milestone) error
	DeleteByDissertationID(ctx context.Context, dissertationID string) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	GetByStudentID(ctx context.Context, studentID string) ([]models.Submission, error)
	GetByStudentIDs(ctx context.Context, studentIDs []string) ([]models.SubmissionWithStudent, error)
	UpdateReview(ctx context.Context, id, feedback, grade string, status models.SubmissionStatus) error
	Delete(ctx context.Context, id string) error
	// DeleteByStudentID removes every submission of the student and returns
	// what was removed so stored files can be cleaned up.
	DeleteByStudentID(ctx context.Context, studentID string) ([]models.Submission, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	GetByDissertationID(ctx context.Context, dissertationID string) ([]models.Message, error)
	DeleteByDissertationID(ctx context.Context, dissertationID string) error
}

// Store groups the repositories over one connection or transaction.
type Store interface {
	Users() UserRepository
	Dissertations() DissertationRepository
	Milestones() MilestoneRepository
	Submissions() SubmissionRepository
	Messages() MessageRepository

	// WithinTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithinTx on a transactional Store reuses the transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

// FileStorage keeps uploaded submission files.
type FileStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, key string) error
}
