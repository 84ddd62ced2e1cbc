package models

import (
	"encoding/json"
	"time"
)

type MilestoneStatus string

const (
	MilestoneStatusUpcoming   MilestoneStatus = "Upcoming"
	MilestoneStatusPending    MilestoneStatus = "Pending"
	MilestoneStatusInProgress MilestoneStatus = "In Progress"
	MilestoneStatusComplete   MilestoneStatus = "Complete"
)

func (s MilestoneStatus) String() string {
	return string(s)
}

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestoneStatusUpcoming, MilestoneStatusPending, MilestoneStatusInProgress, MilestoneStatusComplete:
		return true
	default:
		return false
	}
}

// Active reports whether the milestone is the one the student is currently
// working towards.
func (s MilestoneStatus) Active() bool {
	return s == MilestoneStatusPending || s == MilestoneStatusInProgress
}

// MilestoneTemplate is the fixed sequence every dissertation goes through.
var MilestoneTemplate = []string{
	"Dissertation Proposal",
	"Chapter 1: Introduction",
	"Chapter 2: Literature Review",
	"Chapter 3: Methodology",
	"Chapter 4: Results & Analysis",
	"Final Draft Submission",
}

// DueDateTBD is how an unset due date is rendered.
const DueDateTBD = "TBD"

const DueDateLayout = "2006-01-02"

type Milestone struct {
	ID             string          `db:"id"`
	DissertationID string          `db:"dissertation_id"`
	StudentID      string          `db:"student_id"`
	Position       int             `db:"position"`
	Title          string          `db:"title"`
	DueDate        *time.Time      `db:"due_date"`
	Status         MilestoneStatus `db:"status"`
	SubmissionID   *string         `db:"submission_id"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (m *Milestone) HasDueDate() bool {
	return m.DueDate != nil
}

func (m *Milestone) DueDateString() string {
	if m.DueDate == nil {
		return DueDateTBD
	}
	return m.DueDate.Format(DueDateLayout)
}

type milestoneJSON struct {
	ID             string          `json:"id"`
	DissertationID string          `json:"dissertationId"`
	StudentID      string          `json:"studentId"`
	Position       int             `json:"position"`
	Title          string          `json:"title"`
	DueDate        string          `json:"dueDate"`
	Status         MilestoneStatus `json:"status"`
	SubmissionID   *string         `json:"submissionId"`
}

func (m Milestone) MarshalJSON() ([]byte, error) {
	return json.Marshal(milestoneJSON{
		ID:             m.ID,
		DissertationID: m.DissertationID,
		StudentID:      m.StudentID,
		Position:       m.Position,
		Title:          m.Title,
		DueDate:        m.DueDateString(),
		Status:         m.Status,
		SubmissionID:   m.SubmissionID,
	})
}
