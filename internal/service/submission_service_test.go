package service

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_CreateAndDeleteScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, []models.MilestoneStatus{up, up, up, up, up, up}, f.statuses(t))

	f.setDueDate(t, 0, "2026-11-01")
	assert.Equal(t, prog, f.statuses(t)[0])

	sub := f.submit(t, "My proposal")
	assert.Equal(t, models.MilestoneTemplate[0], sub.Title)
	assert.Equal(t, models.SubmissionStatusInReview, sub.Status)

	ms := f.milestoneList(t)
	assert.Equal(t, done, ms[0].Status)
	require.NotNil(t, ms[0].SubmissionID)
	assert.Equal(t, sub.ID, *ms[0].SubmissionID)
	assert.Equal(t, pend, ms[1].Status)

	require.NoError(t, f.submissions.Delete(ctx, f.student, sub.ID))

	ms = f.milestoneList(t)
	assert.Equal(t, prog, ms[0].Status)
	assert.Nil(t, ms[0].SubmissionID)
	assert.Equal(t, up, ms[1].Status)

	_, err := f.submissions.Get(ctx, f.student, sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmission_CreateRequiresActiveMilestone(t *testing.T) {
	f := newFixture(t)

	_, err := f.submissions.Create(context.Background(), f.student, &models.CreateSubmissionRequest{Content: "early"})
	assert.ErrorIs(t, err, ErrNoActiveMilestone)
}

func TestSubmission_PendingIsNotActive(t *testing.T) {
	f := newFixture(t)

	f.setDueDate(t, 0, "2026-11-01")
	f.submit(t, "proposal")

	_, err := f.submissions.Create(context.Background(), f.student, &models.CreateSubmissionRequest{Content: "intro"})
	assert.ErrorIs(t, err, ErrNoActiveMilestone)
}

func TestSubmission_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setDueDate(t, 0, "2026-11-01")

	_, err := f.submissions.Create(ctx, f.student, &models.CreateSubmissionRequest{Content: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.submissions.Create(ctx, f.supervisor, &models.CreateSubmissionRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Equal(t, prog, f.statuses(t)[0])
}

func TestSubmission_DeleteByNonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.setDueDate(t, 0, "2026-11-01")
	sub := f.submit(t, "proposal")

	other := f.addUser(t, models.RoleStudent, "Other")
	assert.ErrorIs(t, f.submissions.Delete(ctx, other, sub.ID), ErrForbidden)
	assert.ErrorIs(t, f.submissions.Delete(ctx, f.supervisor, sub.ID), ErrForbidden)
	assert.ErrorIs(t, f.submissions.Delete(ctx, f.student, uuid.New().String()), ErrNotFound)
	assert.ErrorIs(t, f.submissions.Delete(ctx, f.student, "missing"), ErrInvalidInput)

	assert.Equal(t, done, f.statuses(t)[0])
}

func TestSubmission_ConcurrentCreatesOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setDueDate(t, 0, "2026-11-01")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.submissions.Create(ctx, f.student, &models.CreateSubmissionRequest{Content: "race"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrNoActiveMilestone)
	}
	assert.Equal(t, 1, succeeded)

	assert.Equal(t, []models.MilestoneStatus{done, pend, up, up, up, up}, f.statuses(t))
	subs, err := f.submissions.ListMine(ctx, f.student)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubmission_FileLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setDueDate(t, 0, "2026-11-01")

	sub, err := f.submissions.Create(ctx, f.student, &models.CreateSubmissionRequest{
		FileName: "proposal.pdf",
		FileType: "application/pdf",
		FileData: []byte("%PDF-1.4 fake"),
	})
	require.NoError(t, err)
	require.True(t, sub.HasFile())
	assert.Equal(t, 1, f.files.Len())
	assert.Equal(t, "proposal.pdf", *sub.FileName)
	assert.NotEmpty(t, *sub.FileHash)

	dl, err := f.submissions.Download(ctx, f.supervisor, sub.ID, "proposal.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(dl.Content)
	require.NoError(t, err)
	dl.Content.Close()
	assert.Equal(t, "%PDF-1.4 fake", string(body))
	assert.Equal(t, "application/pdf", dl.ContentType)

	_, err = f.submissions.Download(ctx, f.student, sub.ID, "other.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	stranger := f.addUser(t, models.RoleSupervisor, "Stranger")
	_, err = f.submissions.Download(ctx, stranger, sub.ID, "proposal.pdf")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.submissions.Delete(ctx, f.student, sub.ID))
	assert.Equal(t, 0, f.files.Len())
}

func TestSubmission_NoActiveMilestoneStoresNoFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.setDueDate(t, 0, "2026-11-01")
	f.submit(t, "proposal")

	_, err := f.submissions.Create(ctx, f.student, &models.CreateSubmissionRequest{
		FileName: "a.txt",
		FileData: []byte("data"),
	})
	assert.ErrorIs(t, err, ErrNoActiveMilestone)
	assert.Equal(t, 0, f.files.Len())
}

func TestSubmission_ListForSupervisor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.setDueDate(t, 0, "2026-11-01")
	sub := f.submit(t, "proposal")

	list, err := f.submissions.ListForSupervisor(ctx, f.supervisor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sub.ID, list[0].ID)
	assert.Equal(t, "Stu Dent", list[0].Student.Name)

	other := f.addUser(t, models.RoleSupervisor, "Other")
	list, err = f.submissions.ListForSupervisor(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.submissions.ListForSupervisor(ctx, f.student)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Contains(t, f.notifier.kinds(), models.NotificationSubmissionNew)
}

func TestMalformedIDsAreInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.submissions.Get(ctx, f.student, "abc")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.submissions.Download(ctx, f.student, "abc", "file.pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, f.dissertations.Delete(ctx, f.admin, "abc"), ErrInvalidInput)

	_, err = f.milestones.List(ctx, f.supervisor, "abc")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.messages.List(ctx, f.supervisor, "abc")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.messages.Send(ctx, f.supervisor, "abc", &models.SendMessageRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
