package service

import (
	"context"
	"testing"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	up   = models.MilestoneStatusUpcoming
	pend = models.MilestoneStatusPending
	prog = models.MilestoneStatusInProgress
	done = models.MilestoneStatusComplete
)

func TestSequencer_InitializeCreatesTemplate(t *testing.T) {
	f := newFixture(t)

	ms := f.milestoneList(t)
	require.Len(t, ms, len(models.MilestoneTemplate))
	for i, m := range ms {
		assert.Equal(t, i, m.Position)
		assert.Equal(t, models.MilestoneTemplate[i], m.Title)
		assert.Equal(t, up, m.Status)
		assert.False(t, m.HasDueDate())
		assert.Nil(t, m.SubmissionID)
		assert.Equal(t, f.dissertation.ID, m.DissertationID)
	}
}

func TestSequencer_AdvanceThenRevertRestores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seq := NewSequencer(zerolog.Nop())

	f.setDueDate(t, 0, "2026-11-01")
	first := f.milestoneList(t)[0]

	err := f.store.WithinTx(ctx, func(tx repository.Store) error {
		return seq.Advance(ctx, tx, f.student.UserID, first.ID, "sub-1")
	})
	require.NoError(t, err)
	assert.Equal(t, []models.MilestoneStatus{done, pend, up, up, up, up}, f.statuses(t))

	err = f.store.WithinTx(ctx, func(tx repository.Store) error {
		return seq.Revert(ctx, tx, f.student.UserID, first.ID)
	})
	require.NoError(t, err)

	ms := f.milestoneList(t)
	assert.Equal(t, []models.MilestoneStatus{prog, up, up, up, up, up}, f.statuses(t))
	assert.Nil(t, ms[0].SubmissionID)
	assert.Equal(t, "2026-11-01", ms[0].DueDateString())
}

func TestSequencer_AdvancePromotesDatedSuccessorToInProgress(t *testing.T) {
	f := newFixture(t)

	f.setDueDate(t, 0, "2026-11-01")
	// Not activated yet: milestone 0 is the active one.
	second := f.setDueDate(t, 1, "2026-12-01")
	assert.Equal(t, up, second.Status)

	f.submit(t, "proposal")
	assert.Equal(t, []models.MilestoneStatus{done, prog, up, up, up, up}, f.statuses(t))
}

func TestSequencer_AdvanceLastMilestone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seq := NewSequencer(zerolog.Nop())

	ms := f.milestoneList(t)
	last := ms[len(ms)-1]
	last.Status = prog
	require.NoError(t, f.store.Milestones().Update(ctx, &last))

	err := f.store.WithinTx(ctx, func(tx repository.Store) error {
		return seq.Advance(ctx, tx, f.student.UserID, last.ID, "sub-final")
	})
	require.NoError(t, err)
	assert.Equal(t, []models.MilestoneStatus{up, up, up, up, up, done}, f.statuses(t))
}

func TestSequencer_RevertDivergedFailsWithoutChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seq := NewSequencer(zerolog.Nop())

	f.setDueDate(t, 0, "2026-11-01")
	first := f.submit(t, "proposal")
	f.setDueDate(t, 1, "2026-12-01")
	f.submit(t, "intro")

	before := f.statuses(t)
	assert.Equal(t, []models.MilestoneStatus{done, done, pend, up, up, up}, before)

	err := f.store.WithinTx(ctx, func(tx repository.Store) error {
		return seq.Revert(ctx, tx, f.student.UserID, first.MilestoneID)
	})
	assert.ErrorIs(t, err, ErrSequenceDiverged)
	assert.Equal(t, before, f.statuses(t))

	err = f.submissions.Delete(ctx, f.student, first.ID)
	assert.ErrorIs(t, err, ErrSequenceDiverged)
	_, err = f.submissions.Get(ctx, f.student, first.ID)
	assert.NoError(t, err)
}

func TestSequencer_AdvanceUnknownMilestone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seq := NewSequencer(zerolog.Nop())

	err := f.store.WithinTx(ctx, func(tx repository.Store) error {
		return seq.Advance(ctx, tx, f.student.UserID, "missing", "sub")
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
