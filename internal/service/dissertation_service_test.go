package service

import (
	"context"
	"testing"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDissertation_CreateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dissertations.Create(ctx, f.admin, &models.CreateDissertationRequest{
		Title:        "Second",
		StudentID:    f.student.UserID,
		SupervisorID: f.supervisor.UserID,
	})
	assert.ErrorIs(t, err, ErrConflict)

	newStudent := f.addUser(t, models.RoleStudent, "New")
	_, err = f.dissertations.Create(ctx, f.supervisor, &models.CreateDissertationRequest{
		Title:        "Not mine to create",
		StudentID:    newStudent.UserID,
		SupervisorID: f.supervisor.UserID,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.dissertations.Create(ctx, f.admin, &models.CreateDissertationRequest{
		Title:        "Swapped roles",
		StudentID:    f.supervisor.UserID,
		SupervisorID: newStudent.UserID,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.dissertations.Create(ctx, f.admin, &models.CreateDissertationRequest{
		Title:        "Ghost",
		StudentID:    "6f1c1c7e-3c55-4c4b-9f57-000000000000",
		SupervisorID: f.supervisor.UserID,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := f.dissertations.List(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Stu Dent", list[0].Student.Name)
	assert.Equal(t, "Sue Pervisor", list[0].Supervisor.Name)
}

func TestDissertation_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.setDueDate(t, 0, "2026-11-01")
	_, err := f.submissions.Create(ctx, f.student, &models.CreateSubmissionRequest{
		Content:  "proposal",
		FileName: "p.txt",
		FileData: []byte("text"),
	})
	require.NoError(t, err)
	_, err = f.messages.Send(ctx, f.student, "", &models.SendMessageRequest{Text: "hi"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.dissertations.Delete(ctx, f.supervisor, f.dissertation.ID), ErrForbidden)
	require.NoError(t, f.dissertations.Delete(ctx, f.admin, f.dissertation.ID))

	assert.Empty(t, f.milestoneList(t))
	subs, err := f.store.Submissions().GetByStudentID(ctx, f.student.UserID)
	require.NoError(t, err)
	assert.Empty(t, subs)
	msgs, err := f.store.Messages().GetByDissertationID(ctx, f.dissertation.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, 0, f.files.Len())

	assert.ErrorIs(t, f.dissertations.Delete(ctx, f.admin, f.dissertation.ID), ErrNotFound)
}
