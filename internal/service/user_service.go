package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/rs/zerolog"
)

type UserService interface {
	Me(ctx context.Context, p Principal) (*models.User, error)
	UpdateProfile(ctx context.Context, p Principal, req *models.UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context, p Principal) ([]models.User, error)
	MyStudents(ctx context.Context, p Principal) ([]models.UserSummary, error)
	MySupervisor(ctx context.Context, p Principal) (*models.UserSummary, error)
}

type userService struct {
	store  repository.Store
	logger zerolog.Logger
}

func NewUserService(store repository.Store, logger zerolog.Logger) UserService {
	return &userService{
		store:  store,
		logger: logger,
	}
}

func (s *userService) Me(ctx context.Context, p Principal) (*models.User, error) {
	u, err := s.store.Users().GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, p.UserID)
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, p Principal, req *models.UpdateProfileRequest) (*models.User, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if err := s.store.Users().UpdateDisplayName(ctx, p.UserID, req.DisplayName); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info().Str("user_id", p.UserID).Msg("Profile updated")

	return s.Me(ctx, p)
}

func (s *userService) ListUsers(ctx context.Context, p Principal) ([]models.User, error) {
	if err := p.require(models.RoleAdmin); err != nil {
		return nil, err
	}

	users, err := s.store.Users().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *userService) MyStudents(ctx context.Context, p Principal) ([]models.UserSummary, error) {
	if err := p.require(models.RoleSupervisor); err != nil {
		return nil, err
	}

	dissertations, err := s.store.Dissertations().GetBySupervisorID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dissertations: %w", err)
	}

	ids := make([]string, 0, len(dissertations))
	for _, d := range dissertations {
		ids = append(ids, d.StudentID)
	}

	summaries := []models.UserSummary{}
	if len(ids) == 0 {
		return summaries, nil
	}

	students, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get students: %w", err)
	}
	for i := range students {
		summaries = append(summaries, students[i].Summary())
	}
	return summaries, nil
}

func (s *userService) MySupervisor(ctx context.Context, p Principal) (*models.UserSummary, error) {
	if err := p.require(models.RoleStudent); err != nil {
		return nil, err
	}

	d, err := s.store.Dissertations().GetByStudentID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dissertation: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: no dissertation assigned", ErrNotFound)
	}

	supervisor, err := s.store.Users().GetByID(ctx, d.SupervisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get supervisor: %w", err)
	}
	if supervisor == nil {
		return nil, fmt.Errorf("%w: supervisor %s", ErrNotFound, d.SupervisorID)
	}

	summary := supervisor.Summary()
	return &summary, nil
}
