package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
)

type milestoneRepository struct {
	*PostgresRepository
}

const milestoneColumns = `id, dissertation_id, student_id, position, title, due_date, status, submission_id, created_at, updated_at`

func scanMilestone(row interface{ Scan(...interface{}) error }) (*models.Milestone, error) {
	m := &models.Milestone{}
	var dueDate sql.NullTime
	var submissionID sql.NullString

	err := row.Scan(
		&m.ID,
		&m.DissertationID,
		&m.StudentID,
		&m.Position,
		&m.Title,
		&dueDate,
		&m.Status,
		&submissionID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		d := dueDate.Time
		m.DueDate = &d
	}
	if submissionID.Valid {
		s := submissionID.String
		m.SubmissionID = &s
	}

	return m, nil
}

func (r *milestoneRepository) CreateBatch(ctx context.Context, milestones []models.Milestone) error {
	query := `
		INSERT INTO milestones (id, dissertation_id, student_id, position, title, due_date, status, submission_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, m := range milestones {
		_, err := r.db.ExecContext(ctx, query,
			m.ID,
			m.DissertationID,
			m.StudentID,
			m.Position,
			m.Title,
			m.DueDate,
			m.Status,
			m.SubmissionID,
			m.CreatedAt,
			m.UpdatedAt,
		)
		if err != nil {
			return translateError(err)
		}
	}

	return nil
}

func (r *milestoneRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE ` + where

	m, err := scanMilestone(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *milestoneRepository) GetByID(ctx context.Context, id string) (*models.Milestone, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *milestoneRepository) GetBySubmissionID(ctx context.Context, submissionID string) (*models.Milestone, error) {
	return r.getOne(ctx, "submission_id = $1", submissionID)
}

func (r *milestoneRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.Milestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM milestones
		WHERE student_id = $1
		ORDER BY position
	`
	return r.list(ctx, query, studentID)
}

func (r *milestoneRepository) LockByStudentID(ctx context.Context, studentID string) ([]models.Milestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM milestones
		WHERE student_id = $1
		ORDER BY position
		FOR UPDATE
	`
	return r.list(ctx, query, studentID)
}

func (r *milestoneRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, *m)
	}

	return milestones, rows.Err()
}

func (r *milestoneRepository) Update(ctx context.Context, m *models.Milestone) error {
	query := `
		UPDATE milestones
		SET due_date = $1, status = $2, submission_id = $3, updated_at = $4
		WHERE id = $5
	`

	m.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query, m.DueDate, m.Status, m.SubmissionID, m.UpdatedAt, m.ID)
	return err
}

func (r *milestoneRepository) DeleteByDissertationID(ctx context.Context, dissertationID string) error {
	query := `DELETE FROM milestones WHERE dissertation_id = $1`
	_, err := r.db.ExecContext(ctx, query, dissertationID)
	return err
}
