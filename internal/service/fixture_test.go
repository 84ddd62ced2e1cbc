package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository/memory"
	"github.com/RubachokBoss/thesisflow/pkg/hash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []*models.EmailNotificationEvent
}

func (n *recordingNotifier) Notify(_ context.Context, e *models.EmailNotificationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) kinds() []models.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.NotificationKind, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Kind)
	}
	return out
}

type fixture struct {
	store    *memory.Store
	files    *memory.FileStorage
	notifier *recordingNotifier

	dissertations DissertationService
	milestones    MilestoneService
	submissions   SubmissionService
	reviews       ReviewService
	messages      MessageService
	users         UserService

	admin      Principal
	student    Principal
	supervisor Principal

	dissertation *models.Dissertation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := zerolog.Nop()
	hasher, err := hash.NewHasher(hash.SHA256)
	require.NoError(t, err)

	f := &fixture{
		store:    memory.NewStore(),
		files:    memory.NewFileStorage(),
		notifier: &recordingNotifier{},
	}

	sequencer := NewSequencer(log)
	f.dissertations = NewDissertationService(f.store, f.files, sequencer, log)
	f.milestones = NewMilestoneService(f.store, f.notifier, log)
	f.submissions = NewSubmissionService(f.store, f.files, sequencer, hasher, f.notifier, log)
	f.reviews = NewReviewService(f.store, f.notifier, log)
	f.messages = NewMessageService(f.store, log)
	f.users = NewUserService(f.store, log)

	f.admin = f.addUser(t, models.RoleAdmin, "Admin")
	f.student = f.addUser(t, models.RoleStudent, "Stu Dent")
	f.supervisor = f.addUser(t, models.RoleSupervisor, "Sue Pervisor")

	f.dissertation, err = f.dissertations.Create(context.Background(), f.admin, &models.CreateDissertationRequest{
		Title:        "On Milestones",
		StudentID:    f.student.UserID,
		SupervisorID: f.supervisor.UserID,
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) addUser(t *testing.T, role models.Role, name string) Principal {
	t.Helper()

	now := time.Now()
	u := &models.User{
		ID:          uuid.New().String(),
		Subject:     uuid.New().String(),
		Email:       uuid.New().String()[:8] + "@example.com",
		DisplayName: name,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return NewPrincipal(u)
}

func (f *fixture) milestoneList(t *testing.T) []models.Milestone {
	t.Helper()
	ms, err := f.store.Milestones().GetByStudentID(context.Background(), f.student.UserID)
	require.NoError(t, err)
	return ms
}

func (f *fixture) statuses(t *testing.T) []models.MilestoneStatus {
	t.Helper()
	ms := f.milestoneList(t)
	out := make([]models.MilestoneStatus, len(ms))
	for i, m := range ms {
		out[i] = m.Status
	}
	return out
}

func (f *fixture) setDueDate(t *testing.T, position int, date string) *models.Milestone {
	t.Helper()
	m, err := f.milestones.SetDueDate(context.Background(), f.supervisor, &models.SetDueDateRequest{
		MilestoneID: f.milestoneList(t)[position].ID,
		DueDate:     date,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) submit(t *testing.T, content string) *models.Submission {
	t.Helper()
	sub, err := f.submissions.Create(context.Background(), f.student, &models.CreateSubmissionRequest{Content: content})
	require.NoError(t, err)
	return sub
}
