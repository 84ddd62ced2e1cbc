package models

import (
	"time"
)

const DissertationStatusInProgress = "In Progress"

type Dissertation struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	StudentID    string    `json:"studentId" db:"student_id"`
	SupervisorID string    `json:"supervisorId" db:"supervisor_id"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type PersonRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DissertationWithDetails struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	Student    PersonRef `json:"student"`
	Supervisor PersonRef `json:"supervisor"`
}
