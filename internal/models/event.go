package models

type NotificationKind string

const (
	NotificationDueDateSet       NotificationKind = "milestone.due_date_set"
	NotificationSubmissionNew    NotificationKind = "submission.created"
	NotificationSubmissionReview NotificationKind = "submission.reviewed"
)

// EmailNotificationEvent is published to the notification queue and turned
// into an outbound e-mail by the notification worker.
type EmailNotificationEvent struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	ToEmail   string           `json:"to_email"`
	ToName    string           `json:"to_name"`
	Subject   string           `json:"subject"`
	Text      string           `json:"text"`
	HTML      string           `json:"html"`
	Timestamp int64            `json:"timestamp"`
}
