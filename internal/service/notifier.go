package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/google/uuid"
)

// Notifier delivers e-mail notifications. Implementations never block the
// caller on delivery and never report delivery failures.
type Notifier interface {
	Notify(ctx context.Context, event *models.EmailNotificationEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, *models.EmailNotificationEvent) {}

// NopNotifier drops every notification.
func NopNotifier() Notifier { return nopNotifier{} }

func newNotification(kind models.NotificationKind, to *models.User, subject, text string) *models.EmailNotificationEvent {
	return &models.EmailNotificationEvent{
		ID:        uuid.New().String(),
		Kind:      kind,
		ToEmail:   to.Email,
		ToName:    to.DisplayName,
		Subject:   subject,
		Text:      text,
		HTML:      fmt.Sprintf("<p>%s</p>", html.EscapeString(text)),
		Timestamp: time.Now().Unix(),
	}
}

func dueDateNotification(student *models.User, m *models.Milestone) *models.EmailNotificationEvent {
	return newNotification(
		models.NotificationDueDateSet,
		student,
		"Due date set for "+m.Title,
		fmt.Sprintf("Hello %s, your supervisor set the due date for %q to %s.", student.DisplayName, m.Title, m.DueDateString()),
	)
}

func submissionNotification(supervisor, student *models.User, s *models.Submission) *models.EmailNotificationEvent {
	return newNotification(
		models.NotificationSubmissionNew,
		supervisor,
		"New submission from "+student.DisplayName,
		fmt.Sprintf("Hello %s, %s submitted %q for review.", supervisor.DisplayName, student.DisplayName, s.Title),
	)
}

func reviewNotification(student *models.User, s *models.Submission) *models.EmailNotificationEvent {
	grade := ""
	if s.Grade != nil {
		grade = *s.Grade
	}
	return newNotification(
		models.NotificationSubmissionReview,
		student,
		"Your submission was reviewed",
		fmt.Sprintf("Hello %s, your submission %q was reviewed. Grade: %s.", student.DisplayName, s.Title, grade),
	)
}
