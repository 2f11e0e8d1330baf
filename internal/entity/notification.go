package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationSuccess = "success"
	NotificationError   = "error"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Type      string    `json:"type"` // 'success' or 'error'
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
