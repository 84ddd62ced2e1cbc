package service

import (
	"context"
	"fmt"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/RubachokBoss/thesisflow/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sequencer owns the status lattice of a student's milestones. Every method
// expects to run inside a transaction; Advance and Revert lock the whole
// sequence so concurrent steps for one student serialize.
type Sequencer struct {
	logger zerolog.Logger
}

func NewSequencer(logger zerolog.Logger) *Sequencer {
	return &Sequencer{logger: logger}
}

// Initialize creates the template milestones for a new dissertation, all
// Upcoming with no due date.
func (s *Sequencer) Initialize(ctx context.Context, tx repository.Store, d *models.Dissertation) ([]models.Milestone, error) {
	now := time.Now()
	milestones := make([]models.Milestone, 0, len(models.MilestoneTemplate))
	for i, title := range models.MilestoneTemplate {
		milestones = append(milestones, models.Milestone{
			ID:             uuid.New().String(),
			DissertationID: d.ID,
			StudentID:      d.StudentID,
			Position:       i,
			Title:          title,
			Status:         models.MilestoneStatusUpcoming,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if err := tx.Milestones().CreateBatch(ctx, milestones); err != nil {
		return nil, fmt.Errorf("failed to create milestones: %w", err)
	}

	s.logger.Info().
		Str("dissertation_id", d.ID).
		Str("student_id", d.StudentID).
		Int("count", len(milestones)).
		Msg("Milestones initialized")

	return milestones, nil
}

// Active locks the student's sequence and returns the milestone currently
// In Progress.
func (s *Sequencer) Active(ctx context.Context, tx repository.Store, studentID string) (*models.Milestone, error) {
	milestones, err := tx.Milestones().LockByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock milestones: %w", err)
	}

	for i := range milestones {
		if milestones[i].Status == models.MilestoneStatusInProgress {
			return &milestones[i], nil
		}
	}
	return nil, ErrNoActiveMilestone
}

// Advance completes the milestone with submissionID and promotes its
// successor: In Progress when a due date is already set, Pending otherwise.
func (s *Sequencer) Advance(ctx context.Context, tx repository.Store, studentID, milestoneID, submissionID string) error {
	milestones, idx, err := s.locate(ctx, tx, studentID, milestoneID)
	if err != nil {
		return err
	}

	current := &milestones[idx]
	if current.Status != models.MilestoneStatusInProgress {
		return fmt.Errorf("%w: milestone %s is %s", ErrNoActiveMilestone, current.ID, current.Status)
	}

	if err := s.transition(ctx, tx, current, models.MilestoneStatusComplete, &submissionID); err != nil {
		return err
	}

	if idx+1 >= len(milestones) {
		s.logger.Info().Str("student_id", studentID).Msg("Milestone sequence completed")
		return nil
	}

	next := &milestones[idx+1]
	if next.Status != models.MilestoneStatusUpcoming {
		return nil
	}

	promoted := models.MilestoneStatusPending
	if next.HasDueDate() {
		promoted = models.MilestoneStatusInProgress
	}
	return s.transition(ctx, tx, next, promoted, nil)
}

// Revert undoes Advance for milestoneID: the milestone goes back to In
// Progress without a submission and a successor promoted by Advance goes
// back to Upcoming. A Complete successor means the history has moved on
// and nothing is changed.
func (s *Sequencer) Revert(ctx context.Context, tx repository.Store, studentID, milestoneID string) error {
	milestones, idx, err := s.locate(ctx, tx, studentID, milestoneID)
	if err != nil {
		return err
	}

	var next *models.Milestone
	if idx+1 < len(milestones) {
		next = &milestones[idx+1]
		if next.Status == models.MilestoneStatusComplete {
			return fmt.Errorf("%w: %q is already complete", ErrSequenceDiverged, next.Title)
		}
	}

	if err := s.transition(ctx, tx, &milestones[idx], models.MilestoneStatusInProgress, nil); err != nil {
		return err
	}

	if next == nil {
		return nil
	}

	switch next.Status {
	case models.MilestoneStatusPending, models.MilestoneStatusInProgress:
		if next.SubmissionID == nil {
			return s.transition(ctx, tx, next, models.MilestoneStatusUpcoming, nil)
		}
	}
	return nil
}

func (s *Sequencer) locate(ctx context.Context, tx repository.Store, studentID, milestoneID string) ([]models.Milestone, int, error) {
	milestones, err := tx.Milestones().LockByStudentID(ctx, studentID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to lock milestones: %w", err)
	}

	for i := range milestones {
		if milestones[i].ID == milestoneID {
			return milestones, i, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: milestone %s", ErrNotFound, milestoneID)
}

func (s *Sequencer) transition(ctx context.Context, tx repository.Store, m *models.Milestone, to models.MilestoneStatus, submissionID *string) error {
	from := m.Status
	m.Status = to
	m.SubmissionID = submissionID

	if err := tx.Milestones().Update(ctx, m); err != nil {
		return fmt.Errorf("failed to update milestone: %w", err)
	}

	metrics.RecordMilestoneTransition(from.String(), to.String())

	s.logger.Debug().
		Str("milestone_id", m.ID).
		Str("student_id", m.StudentID).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("Milestone transition")

	return nil
}
