package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/RubachokBoss/thesisflow/pkg/metrics"
	"github.com/rs/zerolog"
)

type MilestoneService interface {
	// List returns the ordered milestones of studentID. Students may omit
	// studentID to list their own.
	List(ctx context.Context, p Principal, studentID string) ([]models.Milestone, error)
	SetDueDate(ctx context.Context, p Principal, req *models.SetDueDateRequest) (*models.Milestone, error)
}

type milestoneService struct {
	store    repository.Store
	notifier Notifier
	logger   zerolog.Logger
}

func NewMilestoneService(store repository.Store, notifier Notifier, logger zerolog.Logger) MilestoneService {
	return &milestoneService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *milestoneService) List(ctx context.Context, p Principal, studentID string) ([]models.Milestone, error) {
	if studentID == "" {
		if !p.IsStudent() {
			return nil, fmt.Errorf("%w: studentId is required", ErrInvalidInput)
		}
		studentID = p.UserID
	}
	if err := validateID("studentId", studentID); err != nil {
		return nil, err
	}

	ok, err := canAccessStudent(ctx, s.store, p, studentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	milestones, err := s.store.Milestones().GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get milestones: %w", err)
	}
	if milestones == nil {
		milestones = []models.Milestone{}
	}
	return milestones, nil
}

func (s *milestoneService) SetDueDate(ctx context.Context, p Principal, req *models.SetDueDateRequest) (*models.Milestone, error) {
	if err := p.require(models.RoleSupervisor); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	dueDate, err := time.Parse(models.DueDateLayout, strings.TrimSpace(req.DueDate))
	if err != nil {
		return nil, fmt.Errorf("%w: dueDate must be formatted as YYYY-MM-DD", ErrInvalidInput)
	}

	var updated *models.Milestone
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		m, err := tx.Milestones().GetByID(ctx, req.MilestoneID)
		if err != nil {
			return fmt.Errorf("failed to get milestone: %w", err)
		}
		if m == nil {
			return fmt.Errorf("%w: milestone %s", ErrNotFound, req.MilestoneID)
		}

		ok, err := supervises(ctx, tx, p.UserID, m.StudentID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: not the supervisor of this student", ErrForbidden)
		}

		milestones, err := tx.Milestones().LockByStudentID(ctx, m.StudentID)
		if err != nil {
			return fmt.Errorf("failed to lock milestones: %w", err)
		}

		for i := range milestones {
			if milestones[i].ID == m.ID {
				m = &milestones[i]
				break
			}
		}

		from := m.Status
		m.DueDate = &dueDate
		if activatable(milestones, m) {
			m.Status = models.MilestoneStatusInProgress
		}

		if err := tx.Milestones().Update(ctx, m); err != nil {
			return fmt.Errorf("failed to update milestone: %w", err)
		}
		if from != m.Status {
			metrics.RecordMilestoneTransition(from.String(), m.Status.String())
		}

		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("milestone_id", updated.ID).
		Str("student_id", updated.StudentID).
		Str("due_date", updated.DueDateString()).
		Str("status", updated.Status.String()).
		Msg("Milestone due date set")

	// A finished milestone has nothing left to be due.
	if updated.Status != models.MilestoneStatusComplete {
		s.notifyDueDate(ctx, updated)
	}

	return updated, nil
}

// activatable reports whether setting a due date on m may move it to In
// Progress. Complete milestones keep their status, and a milestone does not
// jump ahead of another active milestone of the same student.
func activatable(milestones []models.Milestone, m *models.Milestone) bool {
	switch m.Status {
	case models.MilestoneStatusComplete:
		return false
	case models.MilestoneStatusPending, models.MilestoneStatusInProgress:
		return true
	}

	for _, other := range milestones {
		if other.ID != m.ID && other.Status.Active() {
			return false
		}
	}
	return true
}

func (s *milestoneService) notifyDueDate(ctx context.Context, m *models.Milestone) {
	student, err := s.store.Users().GetByID(ctx, m.StudentID)
	if err != nil || student == nil {
		s.logger.Warn().Err(err).Str("student_id", m.StudentID).Msg("Skipping due date notification")
		return
	}
	s.notifier.Notify(ctx, dueDateNotification(student, m))
}
