package service

import (
	"context"
	"testing"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.setDueDate(t, 0, "2026-11-01")
	sub := f.submit(t, "proposal")
	before := f.statuses(t)

	reviewed, err := f.reviews.Review(ctx, f.supervisor, sub.ID, &models.ReviewSubmissionRequest{Feedback: "Solid start", Grade: "A-"})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusReviewed, reviewed.Status)
	require.NotNil(t, reviewed.Grade)
	assert.Equal(t, "A-", *reviewed.Grade)
	assert.Equal(t, "Solid start", *reviewed.Feedback)

	assert.Equal(t, before, f.statuses(t))
	assert.Contains(t, f.notifier.kinds(), models.NotificationSubmissionReview)
}

func TestReview_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.setDueDate(t, 0, "2026-11-01")
	sub := f.submit(t, "proposal")
	req := &models.ReviewSubmissionRequest{Feedback: "ok", Grade: "B"}

	_, err := f.reviews.Review(ctx, f.student, sub.ID, req)
	assert.ErrorIs(t, err, ErrForbidden)

	other := f.addUser(t, models.RoleSupervisor, "Other")
	_, err = f.reviews.Review(ctx, other, sub.ID, req)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.reviews.Review(ctx, f.supervisor, uuid.New().String(), req)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.reviews.Review(ctx, f.supervisor, "missing", req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.reviews.Review(ctx, f.supervisor, sub.ID, &models.ReviewSubmissionRequest{Feedback: " ", Grade: "B"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
