package service

import (
	"context"
	"testing"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages_Thread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.messages.Send(ctx, f.student, "", &models.SendMessageRequest{Text: "Draft attached"})
	require.NoError(t, err)
	_, err = f.messages.Send(ctx, f.supervisor, f.student.UserID, &models.SendMessageRequest{Text: "Thanks"})
	require.NoError(t, err)

	msgs, err := f.messages.List(ctx, f.supervisor, f.student.UserID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleStudent, msgs[0].Sender)
	assert.Equal(t, models.RoleSupervisor, msgs[1].Sender)
}

func TestMessages_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.messages.Send(ctx, f.student, "", &models.SendMessageRequest{Text: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.messages.List(ctx, f.supervisor, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	other := f.addUser(t, models.RoleSupervisor, "Other")
	_, err = f.messages.List(ctx, other, f.student.UserID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.messages.List(ctx, f.admin, f.student.UserID)
	assert.ErrorIs(t, err, ErrForbidden)

	lonely := f.addUser(t, models.RoleStudent, "Lonely")
	_, err = f.messages.List(ctx, lonely, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
