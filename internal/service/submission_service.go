package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/RubachokBoss/thesisflow/pkg/hash"
	"github.com/RubachokBoss/thesisflow/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SubmissionService interface {
	Create(ctx context.Context, p Principal, req *models.CreateSubmissionRequest) (*models.Submission, error)
	Delete(ctx context.Context, p Principal, submissionID string) error
	ListMine(ctx context.Context, p Principal) ([]models.Submission, error)
	ListForSupervisor(ctx context.Context, p Principal) ([]models.SubmissionWithStudent, error)
	Get(ctx context.Context, p Principal, submissionID string) (*models.Submission, error)
	Download(ctx context.Context, p Principal, submissionID, fileName string) (*FileDownload, error)
}

// FileDownload is an open stored file. The caller closes Content.
type FileDownload struct {
	Content     io.ReadCloser
	Size        int64
	FileName    string
	ContentType string
}

type submissionService struct {
	store     repository.Store
	storage   repository.FileStorage
	sequencer *Sequencer
	hasher    hash.Hasher
	notifier  Notifier
	logger    zerolog.Logger
}

func NewSubmissionService(
	store repository.Store,
	storage repository.FileStorage,
	sequencer *Sequencer,
	hasher hash.Hasher,
	notifier Notifier,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		store:     store,
		storage:   storage,
		sequencer: sequencer,
		hasher:    hasher,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *submissionService) Create(ctx context.Context, p Principal, req *models.CreateSubmissionRequest) (sub *models.Submission, err error) {
	defer func() { metrics.RecordSubmissionOperation("create", err) }()

	if err := p.require(models.RoleStudent); err != nil {
		return nil, err
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && !req.HasFile() {
		return nil, fmt.Errorf("%w: content or file is required", ErrInvalidInput)
	}

	// Fail fast before uploading anything; the check is repeated under lock.
	if err := s.ensureActive(ctx, p.UserID); err != nil {
		return nil, err
	}

	now := time.Now()
	sub = &models.Submission{
		ID:          uuid.New().String(),
		StudentID:   p.UserID,
		Content:     req.Content,
		Status:      models.SubmissionStatusInReview,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	if req.HasFile() {
		if err := s.storeFile(ctx, sub, req, now); err != nil {
			return nil, err
		}
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		active, err := s.sequencer.Active(ctx, tx, p.UserID)
		if err != nil {
			return err
		}

		sub.MilestoneID = active.ID
		sub.Title = active.Title

		if err := tx.Submissions().Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}

		return s.sequencer.Advance(ctx, tx, p.UserID, active.ID, sub.ID)
	})
	if err != nil {
		if sub.HasFile() {
			s.removeFile(ctx, *sub.StorageKey)
		}
		return nil, err
	}

	s.logger.Info().
		Str("submission_id", sub.ID).
		Str("student_id", sub.StudentID).
		Str("milestone_id", sub.MilestoneID).
		Bool("has_file", sub.HasFile()).
		Msg("Submission created")

	s.notifySupervisor(ctx, sub)

	return sub, nil
}

func (s *submissionService) ensureActive(ctx context.Context, studentID string) error {
	milestones, err := s.store.Milestones().GetByStudentID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to get milestones: %w", err)
	}
	for _, m := range milestones {
		if m.Status == models.MilestoneStatusInProgress {
			return nil
		}
	}
	return ErrNoActiveMilestone
}

func (s *submissionService) storeFile(ctx context.Context, sub *models.Submission, req *models.CreateSubmissionRequest, now time.Time) error {
	fileName := path.Base(strings.ReplaceAll(req.FileName, "\\", "/"))
	if fileName == "." || fileName == "/" {
		return fmt.Errorf("%w: invalid file name", ErrInvalidInput)
	}

	fileType := req.FileType
	if fileType == "" {
		fileType = http.DetectContentType(req.FileData)
	}

	key := repository.StoragePath(sub.ID, fileName, now)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(req.FileData), int64(len(req.FileData)), fileType); err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}

	fileHash := s.hasher.Sum(req.FileData)
	sub.FileName = &fileName
	sub.FileType = &fileType
	sub.FileSize = int64(len(req.FileData))
	sub.FileHash = &fileHash
	sub.StorageKey = &key

	s.logger.Debug().
		Str("submission_id", sub.ID).
		Str("key", key).
		Str("hash", fileHash).
		Int64("size", sub.FileSize).
		Msg("Submission file stored")

	return nil
}

func (s *submissionService) removeFile(ctx context.Context, key string) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to remove stored file")
	}
}

func (s *submissionService) Delete(ctx context.Context, p Principal, submissionID string) (err error) {
	defer func() { metrics.RecordSubmissionOperation("delete", err) }()

	if err := validateID("submission id", submissionID); err != nil {
		return err
	}

	var removed *models.Submission
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		sub, err := tx.Submissions().GetByID(ctx, submissionID)
		if err != nil {
			return fmt.Errorf("failed to get submission: %w", err)
		}
		if sub == nil {
			return fmt.Errorf("%w: submission %s", ErrNotFound, submissionID)
		}
		if !p.IsStudent() || sub.StudentID != p.UserID {
			return fmt.Errorf("%w: only the owner can delete a submission", ErrForbidden)
		}

		m, err := tx.Milestones().GetBySubmissionID(ctx, sub.ID)
		if err != nil {
			return fmt.Errorf("failed to get milestone: %w", err)
		}
		if m != nil {
			if err := s.sequencer.Revert(ctx, tx, sub.StudentID, m.ID); err != nil {
				return err
			}
		}

		if err := tx.Submissions().Delete(ctx, sub.ID); err != nil {
			return fmt.Errorf("failed to delete submission: %w", err)
		}

		removed = sub
		return nil
	})
	if err != nil {
		return err
	}

	if removed.HasFile() {
		s.removeFile(ctx, *removed.StorageKey)
	}

	s.logger.Info().
		Str("submission_id", removed.ID).
		Str("student_id", removed.StudentID).
		Msg("Submission deleted")

	return nil
}

func (s *submissionService) ListMine(ctx context.Context, p Principal) ([]models.Submission, error) {
	if err := p.require(models.RoleStudent); err != nil {
		return nil, err
	}

	subs, err := s.store.Submissions().GetByStudentID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	return subs, nil
}

func (s *submissionService) ListForSupervisor(ctx context.Context, p Principal) ([]models.SubmissionWithStudent, error) {
	if err := p.require(models.RoleSupervisor); err != nil {
		return nil, err
	}

	dissertations, err := s.store.Dissertations().GetBySupervisorID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dissertations: %w", err)
	}

	studentIDs := make([]string, 0, len(dissertations))
	for _, d := range dissertations {
		studentIDs = append(studentIDs, d.StudentID)
	}

	subs, err := s.store.Submissions().GetByStudentIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	if subs == nil {
		subs = []models.SubmissionWithStudent{}
	}
	return subs, nil
}

func (s *submissionService) Get(ctx context.Context, p Principal, submissionID string) (*models.Submission, error) {
	if err := validateID("submission id", submissionID); err != nil {
		return nil, err
	}

	sub, err := s.store.Submissions().GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: submission %s", ErrNotFound, submissionID)
	}

	ok, err := canAccessStudent(ctx, s.store, p, sub.StudentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return sub, nil
}

func (s *submissionService) Download(ctx context.Context, p Principal, submissionID, fileName string) (*FileDownload, error) {
	sub, err := s.Get(ctx, p, submissionID)
	if err != nil {
		return nil, err
	}

	if !sub.HasFile() || sub.FileName == nil || *sub.FileName != fileName {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, fileName)
	}

	content, size, err := s.storage.Download(ctx, *sub.StorageKey)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, fileName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	contentType := "application/octet-stream"
	if sub.FileType != nil && *sub.FileType != "" {
		contentType = *sub.FileType
	}

	return &FileDownload{
		Content:     content,
		Size:        size,
		FileName:    *sub.FileName,
		ContentType: contentType,
	}, nil
}

func (s *submissionService) notifySupervisor(ctx context.Context, sub *models.Submission) {
	d, err := s.store.Dissertations().GetByStudentID(ctx, sub.StudentID)
	if err != nil || d == nil {
		s.logger.Warn().Err(err).Str("student_id", sub.StudentID).Msg("Skipping submission notification")
		return
	}

	users, err := s.store.Users().GetByIDs(ctx, []string{d.SupervisorID, sub.StudentID})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Skipping submission notification")
		return
	}

	var supervisor, student *models.User
	for i := range users {
		switch users[i].ID {
		case d.SupervisorID:
			supervisor = &users[i]
		case sub.StudentID:
			student = &users[i]
		}
	}
	if supervisor == nil || student == nil {
		return
	}

	s.notifier.Notify(ctx, submissionNotification(supervisor, student, sub))
}
