package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type DissertationService interface {
	Create(ctx context.Context, p Principal, req *models.CreateDissertationRequest) (*models.Dissertation, error)
	List(ctx context.Context, p Principal) ([]models.DissertationWithDetails, error)
	Delete(ctx context.Context, p Principal, id string) error
}

type dissertationService struct {
	store     repository.Store
	storage   repository.FileStorage
	sequencer *Sequencer
	logger    zerolog.Logger
}

func NewDissertationService(store repository.Store, storage repository.FileStorage, sequencer *Sequencer, logger zerolog.Logger) DissertationService {
	return &dissertationService{
		store:     store,
		storage:   storage,
		sequencer: sequencer,
		logger:    logger,
	}
}

func (s *dissertationService) Create(ctx context.Context, p Principal, req *models.CreateDissertationRequest) (*models.Dissertation, error) {
	if err := p.require(models.RoleAdmin); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if err := s.checkRole(ctx, req.StudentID, models.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.checkRole(ctx, req.SupervisorID, models.RoleSupervisor); err != nil {
		return nil, err
	}

	d := &models.Dissertation{
		ID:           uuid.New().String(),
		Title:        req.Title,
		StudentID:    req.StudentID,
		SupervisorID: req.SupervisorID,
		Status:       models.DissertationStatusInProgress,
		CreatedAt:    time.Now(),
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Dissertations().GetByStudentID(ctx, d.StudentID)
		if err != nil {
			return fmt.Errorf("failed to check existing dissertation: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: student already has a dissertation", ErrConflict)
		}

		if err := tx.Dissertations().Create(ctx, d); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: student already has a dissertation", ErrConflict)
			}
			return fmt.Errorf("failed to create dissertation: %w", err)
		}

		_, err = s.sequencer.Initialize(ctx, tx, d)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("dissertation_id", d.ID).
		Str("student_id", d.StudentID).
		Str("supervisor_id", d.SupervisorID).
		Msg("Dissertation created")

	return d, nil
}

func (s *dissertationService) checkRole(ctx context.Context, userID string, role models.Role) error {
	u, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return fmt.Errorf("%w: %s %s", ErrNotFound, role, userID)
	}
	if u.Role != role {
		return fmt.Errorf("%w: user %s is not a %s", ErrInvalidInput, userID, role)
	}
	return nil
}

func (s *dissertationService) List(ctx context.Context, p Principal) ([]models.DissertationWithDetails, error) {
	if err := p.require(models.RoleAdmin); err != nil {
		return nil, err
	}

	list, err := s.store.Dissertations().GetAllWithDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dissertations: %w", err)
	}
	if list == nil {
		list = []models.DissertationWithDetails{}
	}
	return list, nil
}

// Delete removes the dissertation together with its milestones,
// submissions, stored files and messages.
func (s *dissertationService) Delete(ctx context.Context, p Principal, id string) error {
	if err := p.require(models.RoleAdmin); err != nil {
		return err
	}
	if err := validateID("dissertation id", id); err != nil {
		return err
	}

	var removed []models.Submission
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		d, err := tx.Dissertations().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get dissertation: %w", err)
		}
		if d == nil {
			return fmt.Errorf("%w: dissertation %s", ErrNotFound, id)
		}

		removed, err = tx.Submissions().DeleteByStudentID(ctx, d.StudentID)
		if err != nil {
			return fmt.Errorf("failed to delete submissions: %w", err)
		}
		if err := tx.Milestones().DeleteByDissertationID(ctx, d.ID); err != nil {
			return fmt.Errorf("failed to delete milestones: %w", err)
		}
		if err := tx.Messages().DeleteByDissertationID(ctx, d.ID); err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Dissertations().Delete(ctx, d.ID); err != nil {
			return fmt.Errorf("failed to delete dissertation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, sub := range removed {
		if !sub.HasFile() {
			continue
		}
		if err := s.storage.Delete(context.WithoutCancel(ctx), *sub.StorageKey); err != nil {
			s.logger.Error().Err(err).Str("key", *sub.StorageKey).Msg("Failed to remove stored file")
		}
	}

	s.logger.Info().
		Str("dissertation_id", id).
		Int("submissions_removed", len(removed)).
		Msg("Dissertation deleted")

	return nil
}
