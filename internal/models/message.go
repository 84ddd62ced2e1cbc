package models

import (
	"time"
)

type Message struct {
	ID             string    `json:"id" db:"id"`
	DissertationID string    `json:"dissertationId" db:"dissertation_id"`
	SenderID       string    `json:"senderId" db:"sender_id"`
	Sender         Role      `json:"sender" db:"sender_role"`
	Text           string    `json:"text" db:"text"`
	Timestamp      time.Time `json:"timestamp" db:"created_at"`
}
