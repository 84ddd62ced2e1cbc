package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/RubachokBoss/thesisflow/pkg/metrics"
	"github.com/rs/zerolog"
)

type ReviewService interface {
	Review(ctx context.Context, p Principal, submissionID string, req *models.ReviewSubmissionRequest) (*models.Submission, error)
}

type reviewService struct {
	store    repository.Store
	notifier Notifier
	logger   zerolog.Logger
}

func NewReviewService(store repository.Store, notifier Notifier, logger zerolog.Logger) ReviewService {
	return &reviewService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *reviewService) Review(ctx context.Context, p Principal, submissionID string, req *models.ReviewSubmissionRequest) (sub *models.Submission, err error) {
	defer func() { metrics.RecordSubmissionOperation("review", err) }()

	if err := p.require(models.RoleSupervisor); err != nil {
		return nil, err
	}
	if err := validateID("submission id", submissionID); err != nil {
		return nil, err
	}

	req.Feedback = strings.TrimSpace(req.Feedback)
	req.Grade = strings.TrimSpace(req.Grade)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	sub, err = s.store.Submissions().GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: submission %s", ErrNotFound, submissionID)
	}

	ok, err := supervises(ctx, s.store, p.UserID, sub.StudentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: not the supervisor of this student", ErrForbidden)
	}

	if err := s.store.Submissions().UpdateReview(ctx, sub.ID, req.Feedback, req.Grade, models.SubmissionStatusReviewed); err != nil {
		return nil, fmt.Errorf("failed to review submission: %w", err)
	}

	sub, err = s.store.Submissions().GetByID(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: submission %s", ErrNotFound, submissionID)
	}

	s.logger.Info().
		Str("submission_id", sub.ID).
		Str("supervisor_id", p.UserID).
		Str("grade", req.Grade).
		Msg("Submission reviewed")

	if student, err := s.store.Users().GetByID(ctx, sub.StudentID); err == nil && student != nil {
		s.notifier.Notify(ctx, reviewNotification(student, sub))
	}

	return sub, nil
}
