package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type MessageService interface {
	// List and Send address the thread of studentID's dissertation.
	// Students may omit studentID.
	List(ctx context.Context, p Principal, studentID string) ([]models.Message, error)
	Send(ctx context.Context, p Principal, studentID string, req *models.SendMessageRequest) (*models.Message, error)
}

type messageService struct {
	store  repository.Store
	logger zerolog.Logger
}

func NewMessageService(store repository.Store, logger zerolog.Logger) MessageService {
	return &messageService{
		store:  store,
		logger: logger,
	}
}

func (s *messageService) thread(ctx context.Context, p Principal, studentID string) (*models.Dissertation, error) {
	switch p.Role {
	case models.RoleStudent:
		if studentID != "" && studentID != p.UserID {
			return nil, ErrForbidden
		}
		studentID = p.UserID
	case models.RoleSupervisor:
		if studentID == "" {
			return nil, fmt.Errorf("%w: studentId is required", ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: only students and supervisors can message", ErrForbidden)
	}
	if err := validateID("studentId", studentID); err != nil {
		return nil, err
	}

	d, err := s.store.Dissertations().GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dissertation: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: no dissertation for student %s", ErrNotFound, studentID)
	}
	if p.IsSupervisor() && d.SupervisorID != p.UserID {
		return nil, fmt.Errorf("%w: not the supervisor of this student", ErrForbidden)
	}
	return d, nil
}

func (s *messageService) List(ctx context.Context, p Principal, studentID string) ([]models.Message, error) {
	d, err := s.thread(ctx, p, studentID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.Messages().GetByDissertationID(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

func (s *messageService) Send(ctx context.Context, p Principal, studentID string, req *models.SendMessageRequest) (*models.Message, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	d, err := s.thread(ctx, p, studentID)
	if err != nil {
		return nil, err
	}

	m := &models.Message{
		ID:             uuid.New().String(),
		DissertationID: d.ID,
		SenderID:       p.UserID,
		Sender:         p.Role,
		Text:           req.Text,
		Timestamp:      time.Now(),
	}
	if err := s.store.Messages().Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.logger.Debug().
		Str("dissertation_id", d.ID).
		Str("sender_id", p.UserID).
		Msg("Message sent")

	return m, nil
}
