package events

import (
	"time"

	"github.com/spec-kit/shift-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventShiftCreated       EventType = "shift_created"
	EventShiftStatusChanged EventType = "shift_status_changed"
	EventShiftDeleted       EventType = "shift_deleted"
	EventUserCreated        EventType = "user_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	Type      EventType      `json:"type"`
	Actor     domain.Session `json:"actor"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   interface{}    `json:"payload"`
}

// ShiftCreatedPayload payload.
type ShiftCreatedPayload struct {
	ShiftID int64              `json:"shift_id"`
	UserID  int64              `json:"user_id"`
	Date    string             `json:"date"`
	Status  domain.ShiftStatus `json:"status"`
	Type    domain.ShiftType   `json:"shift_type"`
}

// ShiftStatusChangedPayload payload.
type ShiftStatusChangedPayload struct {
	ShiftID   int64              `json:"shift_id"`
	OldStatus domain.ShiftStatus `json:"old_status"`
	NewStatus domain.ShiftStatus `json:"new_status"`
}

// ShiftDeletedPayload payload.
type ShiftDeletedPayload struct {
	ShiftID int64 `json:"shift_id"`
	UserID  int64 `json:"user_id"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	UserID int64       `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}
