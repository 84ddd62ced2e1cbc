package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/RubachokBoss/thesisflow/internal/models"
)

type submissionRepository struct {
	*PostgresRepository
}

const submissionColumns = `s.id, s.student_id, s.milestone_id, s.title, s.content, s.file_name, s.file_type, s.file_size, s.file_hash, s.storage_key, s.status, s.grade, s.feedback, s.submitted_at, s.updated_at`

func submissionDest(s *models.Submission) []interface{} {
	return []interface{}{
		&s.ID,
		&s.StudentID,
		&s.MilestoneID,
		&s.Title,
		&s.Content,
		&s.FileName,
		&s.FileType,
		&s.FileSize,
		&s.FileHash,
		&s.StorageKey,
		&s.Status,
		&s.Grade,
		&s.Feedback,
		&s.SubmittedAt,
		&s.UpdatedAt,
	}
}

func (r *submissionRepository) Create(ctx context.Context, s *models.Submission) error {
	query := `
		INSERT INTO submissions (id, student_id, milestone_id, title, content, file_name, file_type, file_size, file_hash, storage_key, status, grade, feedback, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.StudentID,
		s.MilestoneID,
		s.Title,
		s.Content,
		s.FileName,
		s.FileType,
		s.FileSize,
		s.FileHash,
		s.StorageKey,
		s.Status,
		s.Grade,
		s.Feedback,
		s.SubmittedAt,
		s.UpdatedAt,
	)

	return translateError(err)
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions s WHERE s.id = $1`

	s := &models.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(submissionDest(s)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (r *submissionRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions s
		WHERE s.student_id = $1
		ORDER BY s.submitted_at DESC
	`

	return r.list(ctx, query, studentID)
}

func (r *submissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(submissionDest(&s)...); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}

	return submissions, rows.Err()
}

func (r *submissionRepository) GetByStudentIDs(ctx context.Context, studentIDs []string) ([]models.SubmissionWithStudent, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + submissionColumns + `,
			u.id, u.subject, u.display_name, u.avatar_url
		FROM submissions s
		JOIN users u ON s.student_id = u.id
		WHERE s.student_id = ANY($1)
		ORDER BY s.submitted_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(studentIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []models.SubmissionWithStudent
	for rows.Next() {
		var s models.SubmissionWithStudent
		dest := append(submissionDest(&s.Submission),
			&s.Student.ID,
			&s.Student.Subject,
			&s.Student.Name,
			&s.Student.AvatarURL,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}

	return submissions, rows.Err()
}

func (r *submissionRepository) UpdateReview(ctx context.Context, id, feedback, grade string, status models.SubmissionStatus) error {
	query := `
		UPDATE submissions
		SET feedback = $1, grade = $2, status = $3, updated_at = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query, feedback, grade, status, time.Now(), id)
	return err
}

func (r *submissionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM submissions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *submissionRepository) DeleteByStudentID(ctx context.Context, studentID string) ([]models.Submission, error) {
	query := `
		DELETE FROM submissions s
		WHERE s.student_id = $1
		RETURNING ` + submissionColumns

	return r.list(ctx, query, studentID)
}
