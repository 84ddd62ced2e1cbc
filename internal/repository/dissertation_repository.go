package repository

import (
	"context"
	"database/sql"

	"github.com/RubachokBoss/thesisflow/internal/models"
)

type dissertationRepository struct {
	*PostgresRepository
}

func (r *dissertationRepository) Create(ctx context.Context, d *models.Dissertation) error {
	query := `
		INSERT INTO dissertations (id, title, student_id, supervisor_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.Title,
		d.StudentID,
		d.SupervisorID,
		d.Status,
		d.CreatedAt,
	)

	return translateError(err)
}

func (r *dissertationRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.Dissertation, error) {
	query := `
		SELECT id, title, student_id, supervisor_id, status, created_at
		FROM dissertations
		WHERE ` + where

	d := &models.Dissertation{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&d.ID,
		&d.Title,
		&d.StudentID,
		&d.SupervisorID,
		&d.Status,
		&d.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (r *dissertationRepository) GetByID(ctx context.Context, id string) (*models.Dissertation, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *dissertationRepository) GetByStudentID(ctx context.Context, studentID string) (*models.Dissertation, error) {
	return r.getOne(ctx, "student_id = $1", studentID)
}

func (r *dissertationRepository) GetBySupervisorID(ctx context.Context, supervisorID string) ([]models.Dissertation, error) {
	query := `
		SELECT id, title, student_id, supervisor_id, status, created_at
		FROM dissertations
		WHERE supervisor_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, supervisorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dissertations []models.Dissertation
	for rows.Next() {
		var d models.Dissertation
		if err := rows.Scan(&d.ID, &d.Title, &d.StudentID, &d.SupervisorID, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		dissertations = append(dissertations, d)
	}

	return dissertations, rows.Err()
}

func (r *dissertationRepository) GetAllWithDetails(ctx context.Context) ([]models.DissertationWithDetails, error) {
	query := `
		SELECT
			d.id, d.title, d.status, d.created_at,
			d.student_id, COALESCE(st.display_name, ''),
			d.supervisor_id, COALESCE(sv.display_name, '')
		FROM dissertations d
		LEFT JOIN users st ON d.student_id = st.id
		LEFT JOIN users sv ON d.supervisor_id = sv.id
		ORDER BY d.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dissertations []models.DissertationWithDetails
	for rows.Next() {
		var d models.DissertationWithDetails
		err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.Status,
			&d.CreatedAt,
			&d.Student.ID,
			&d.Student.Name,
			&d.Supervisor.ID,
			&d.Supervisor.Name,
		)
		if err != nil {
			return nil, err
		}
		dissertations = append(dissertations, d)
	}

	return dissertations, rows.Err()
}

func (r *dissertationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM dissertations WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
