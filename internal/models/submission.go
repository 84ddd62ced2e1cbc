package models

import (
	"time"
)

type SubmissionStatus string

const (
	SubmissionStatusInReview SubmissionStatus = "In Review"
	SubmissionStatusReviewed SubmissionStatus = "Reviewed"
)

func (s SubmissionStatus) String() string {
	return string(s)
}

type Submission struct {
	ID          string           `json:"id" db:"id"`
	StudentID   string           `json:"studentId" db:"student_id"`
	MilestoneID string           `json:"milestoneId" db:"milestone_id"`
	Title       string           `json:"title" db:"title"`
	Content     string           `json:"content" db:"content"`
	FileName    *string          `json:"fileName" db:"file_name"`
	FileType    *string          `json:"fileType" db:"file_type"`
	FileSize    int64            `json:"fileSize,omitempty" db:"file_size"`
	FileHash    *string          `json:"fileHash,omitempty" db:"file_hash"`
	StorageKey  *string          `json:"-" db:"storage_key"`
	Status      SubmissionStatus `json:"status" db:"status"`
	Grade       *string          `json:"grade" db:"grade"`
	Feedback    *string          `json:"feedback" db:"feedback"`
	SubmittedAt time.Time        `json:"submittedAt" db:"submitted_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
}

func (s *Submission) HasFile() bool {
	return s.StorageKey != nil && *s.StorageKey != ""
}

type StudentRef struct {
	ID        string `json:"id"`
	Subject   string `json:"uid"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type SubmissionWithStudent struct {
	Submission
	Student StudentRef `json:"student"`
}
