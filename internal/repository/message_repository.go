package repository

import (
	"context"

	"github.com/RubachokBoss/thesisflow/internal/models"
)

type messageRepository struct {
	*PostgresRepository
}

func (r *messageRepository) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (id, dissertation_id, sender_id, sender_role, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.DissertationID,
		m.SenderID,
		m.Sender,
		m.Text,
		m.Timestamp,
	)

	return err
}

func (r *messageRepository) GetByDissertationID(ctx context.Context, dissertationID string) ([]models.Message, error) {
	query := `
		SELECT id, dissertation_id, sender_id, sender_role, text, created_at
		FROM messages
		WHERE dissertation_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, dissertationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.DissertationID, &m.SenderID, &m.Sender, &m.Text, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (r *messageRepository) DeleteByDissertationID(ctx context.Context, dissertationID string) error {
	query := `DELETE FROM messages WHERE dissertation_id = $1`
	_, err := r.db.ExecContext(ctx, query, dissertationID)
	return err
}
